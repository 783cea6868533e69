package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/inna-tuzhikova/hasker/internal/apperrors"
	"github.com/inna-tuzhikova/hasker/internal/auth"
	"github.com/inna-tuzhikova/hasker/internal/database"
	"github.com/inna-tuzhikova/hasker/internal/models"
)

type AuthHandler struct {
	db     *gorm.DB
	issuer *auth.TokenIssuer
}

func NewAuthHandler(db *gorm.DB, issuer *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{db: db, issuer: issuer}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterRequest
	if err := bindJSON(c, &input); err != nil {
		apperrors.Abort(c, err)
		return
	}
	if input.Password != input.PasswordConfirm {
		apperrors.Abort(c, apperrors.Validation("passwords do not match").WithContext("field", "password_confirm"))
		return
	}

	hashedPassword, err := auth.HashPassword(input.Password)
	if err != nil {
		apperrors.Abort(c, apperrors.Internal("failed to hash password", err))
		return
	}

	user := models.User{
		Username: strings.TrimSpace(input.Username),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Password: hashedPassword,
		Avatar:   input.Avatar,
	}

	// the unique indexes decide, no lookup beforehand
	if err := h.db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			apperrors.Abort(c, apperrors.Conflict("username or email already exists"))
			return
		}
		apperrors.Abort(c, apperrors.Internal("failed to create user", err))
		return
	}

	token, err := h.issuer.GenerateToken(user.ID, user.Username)
	if err != nil {
		apperrors.Abort(c, apperrors.Internal("failed to generate token", err))
		return
	}

	c.JSON(http.StatusCreated, models.AuthResponse{
		Token:   token,
		User:    user,
		Message: "User registered successfully",
	})
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginRequest
	if err := bindJSON(c, &input); err != nil {
		apperrors.Abort(c, err)
		return
	}

	var user models.User
	err := h.db.WithContext(c.Request.Context()).Where("username = ?", strings.TrimSpace(input.Username)).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperrors.Abort(c, apperrors.Unauthorized("invalid credentials"))
			return
		}
		apperrors.Abort(c, apperrors.Internal("failed to load user", err))
		return
	}

	if !auth.CheckPassword(user.Password, input.Password) {
		apperrors.Abort(c, apperrors.Unauthorized("invalid credentials"))
		return
	}

	token, err := h.issuer.GenerateToken(user.ID, user.Username)
	if err != nil {
		apperrors.Abort(c, apperrors.Internal("failed to generate token", err))
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		Token:   token,
		User:    user,
		Message: "Login successful",
	})
}

// GetMe returns the current authenticated user
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).Take(&user, userID).Error; err != nil {
		apperrors.Abort(c, userLookupError(err))
		return
	}

	c.JSON(http.StatusOK, privateUser(&user))
}

func userLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("user not found")
	}
	return apperrors.Internal("failed to load user", err)
}
