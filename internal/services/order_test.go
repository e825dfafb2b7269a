package services

import (
	"testing"
	"time"

	"github.com/quickbites/backend/internal/models"
	"github.com/quickbites/backend/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderLifecycle(t *testing.T) {
	now := time.Now()
	p := newPipeline(t, now, 10)
	user := createUser(t, p.db, true)
	restaurant, menu := createRestaurantWithMenu(t, p.db)

	orders := NewOrderService(p.db)
	orders.Now = func() time.Time { return now }

	order, err := orders.Create(user.ID, CreateOrderRequest{
		RestaurantID: restaurant.ID,
		Items:        []OrderItemRequest{{MenuID: menu.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPlaced, order.Status)
	assert.EqualValues(t, menu.Price*2, order.Total)
	require.Len(t, order.Items, 1)

	// Delivering a Placed order skips Preparing and is rejected.
	_, err = orders.MarkDelivered(order.ID)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidState))

	order, err = orders.Accept(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparing, order.Status)

	// Accepting twice is rejected by the status guard.
	_, err = orders.Accept(order.ID)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidState))

	order, err = orders.MarkDelivered(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, order.Status)
	require.NotNil(t, order.DeliveredAt)
	assert.WithinDuration(t, now, *order.DeliveredAt, time.Second)
}

func TestOrderCreateValidatesMenu(t *testing.T) {
	now := time.Now()
	p := newPipeline(t, now, 10)
	user := createUser(t, p.db, true)
	restaurant, _ := createRestaurantWithMenu(t, p.db)

	orders := NewOrderService(p.db)

	_, err := orders.Create(user.ID, CreateOrderRequest{
		RestaurantID: restaurant.ID,
		Items:        []OrderItemRequest{{MenuID: 9999, Quantity: 1}},
	})
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))

	_, err = orders.Create(user.ID, CreateOrderRequest{
		RestaurantID: 9999,
		Items:        []OrderItemRequest{{MenuID: 1, Quantity: 1}},
	})
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
}

func TestEnsureForSubmissionSeedsProfile(t *testing.T) {
	now := time.Now()
	p := newPipeline(t, now, 10)
	user := createUser(t, p.db, true)

	profile, err := p.profiles.EnsureForSubmission(user)
	require.NoError(t, err)
	assert.True(t, profile.VerifiedMobile)
	assert.True(t, profile.VerifiedEmail)
	assert.Equal(t, 1, profile.TotalOrders)
	assert.EqualValues(t, 50, profile.AvgTrustScore)
	assert.Equal(t, models.LevelBronze, profile.ReviewerLevel)

	// Second call returns the existing row unchanged.
	again, err := p.profiles.EnsureForSubmission(user)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)
}
