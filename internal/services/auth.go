package services

import (
	"errors"
	"time"

	"github.com/quickbites/backend/internal/models"
	"github.com/quickbites/backend/internal/utils"
	"github.com/quickbites/backend/pkg/apperror"
	"gorm.io/gorm"
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{db: db, jwtSecret: jwtSecret}
}

type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type AuthResponse struct {
	Tokens utils.TokenPair `json:"tokens"`
	User   models.User     `json:"user"`
}

func (s *AuthService) Signup(req SignupRequest) (*AuthResponse, error) {
	if !utils.IsValidEmail(req.Email) {
		return nil, apperror.BadRequest("Invalid email format")
	}
	if !utils.IsValidPassword(req.Password) {
		return nil, apperror.BadRequest("Password must be at least 8 characters")
	}

	if req.Role == "" {
		req.Role = models.RoleCustomer
	}
	// Admin accounts are provisioned out of band, never via public signup.
	if req.Role == models.RoleAdmin || !utils.IsValidRole(req.Role) {
		return nil, apperror.BadRequest("Invalid role")
	}

	var existingUser models.User
	if err := s.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return nil, apperror.BadRequest("User already exists")
	}

	user := models.User{
		Name:     utils.SanitizeString(req.Name),
		Email:    utils.SanitizeString(req.Email),
		Password: req.Password, // hashed in BeforeCreate hook
		Phone:    utils.SanitizeString(req.Phone),
		Role:     req.Role,
	}

	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.BadRequest("User already exists")
		}
		return nil, err
	}

	return s.issueTokens(&user)
}

func (s *AuthService) Login(req LoginRequest) (*AuthResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	if !user.CheckPassword(req.Password) {
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	// Revoke all existing refresh tokens for this user
	s.db.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).Update("is_revoked", true)

	return s.issueTokens(&user)
}

func (s *AuthService) Refresh(req RefreshRequest) (*AuthResponse, error) {
	claims, err := utils.ValidateToken(req.RefreshToken, s.jwtSecret)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid refresh token")
	}
	if claims.Type != string(utils.RefreshToken) {
		return nil, apperror.Unauthorized("Invalid token type")
	}

	var refreshToken models.RefreshToken
	if err := s.db.Where("token = ? AND is_revoked = ? AND expires_at > ?",
		req.RefreshToken, false, time.Now()).First(&refreshToken).Error; err != nil {
		return nil, apperror.Unauthorized("Refresh token not found or expired")
	}

	var user models.User
	if err := s.db.First(&user, refreshToken.UserID).Error; err != nil {
		return nil, apperror.Unauthorized("User not found")
	}

	var resp *AuthResponse
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RefreshToken{}).
			Where("id = ?", refreshToken.ID).
			Update("is_revoked", true).Error; err != nil {
			return err
		}

		tokenPair, err := utils.GenerateTokenPair(user.ID, user.Email, user.Role, s.jwtSecret)
		if err != nil {
			return err
		}

		newRefresh := models.RefreshToken{
			UserID:    user.ID,
			Token:     tokenPair.RefreshToken,
			ExpiresAt: time.Unix(tokenPair.RefreshTokenExpiresAt, 0),
		}
		if err := tx.Create(&newRefresh).Error; err != nil {
			return err
		}

		resp = &AuthResponse{Tokens: *tokenPair, User: user}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *AuthService) Logout(refreshToken string) error {
	return s.db.Model(&models.RefreshToken{}).
		Where("token = ?", refreshToken).
		Update("is_revoked", true).Error
}

func (s *AuthService) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User")
		}
		return nil, err
	}
	return &user, nil
}

// VerifyMobile marks the user's phone number as verified. OTP delivery is
// handled upstream; this records the outcome the review gate checks.
func (s *AuthService) VerifyMobile(userID uint) (*models.User, error) {
	res := s.db.Model(&models.User{}).Where("id = ?", userID).Update("is_verified", true)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperror.NotFound("User")
	}
	return s.GetUserByID(userID)
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	tokenPair, err := utils.GenerateTokenPair(user.ID, user.Email, user.Role, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	refreshToken := models.RefreshToken{
		UserID:    user.ID,
		Token:     tokenPair.RefreshToken,
		ExpiresAt: time.Unix(tokenPair.RefreshTokenExpiresAt, 0),
	}
	if err := s.db.Create(&refreshToken).Error; err != nil {
		return nil, err
	}

	return &AuthResponse{Tokens: *tokenPair, User: *user}, nil
}
