package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesCode(t *testing.T) {
	err := State(CodeTooSoon, "Please wait")
	assert.True(t, Is(err, CodeTooSoon))
	assert.False(t, Is(err, CodeBanned))
	assert.False(t, Is(errors.New("plain"), CodeTooSoon))
}

func TestIsSeesWrappedErrors(t *testing.T) {
	inner := NotFound("Order")
	wrapped := fmt.Errorf("checking eligibility: %w", inner)
	assert.True(t, Is(wrapped, CodeNotFound))
}

func TestFromWrapsUnknownAsInternal(t *testing.T) {
	appErr := From(errors.New("driver: bad connection"))
	assert.Equal(t, CodeInternal, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)

	original := Forbidden("Not your order")
	assert.Same(t, original, From(original))
}

func TestWithExtra(t *testing.T) {
	err := State(CodeTooSoon, "Please wait").WithExtra("seconds_remaining", int64(30))
	assert.EqualValues(t, 30, err.Extra["seconds_remaining"])
}
