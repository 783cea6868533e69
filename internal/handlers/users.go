package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/inna-tuzhikova/hasker/internal/apperrors"
	"github.com/inna-tuzhikova/hasker/internal/database"
	"github.com/inna-tuzhikova/hasker/internal/models"
)

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// GetUserProfile returns a user's public profile with activity counters
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	userID, err := paramID(c, "id")
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	db := h.db.WithContext(c.Request.Context())

	var user models.User
	if err := db.Take(&user, userID).Error; err != nil {
		apperrors.Abort(c, userLookupError(err))
		return
	}

	var questionCount, answerCount int64
	if err := db.Model(&models.Question{}).Where("author_id = ?", userID).Count(&questionCount).Error; err != nil {
		apperrors.Abort(c, apperrors.Internal("failed to count questions", err))
		return
	}
	if err := db.Model(&models.Answer{}).Where("author_id = ?", userID).Count(&answerCount).Error; err != nil {
		apperrors.Abort(c, apperrors.Internal("failed to count answers", err))
		return
	}

	profile := publicUser(&user)
	profile["question_count"] = questionCount
	profile["answer_count"] = answerCount
	c.JSON(http.StatusOK, profile)
}

// UpdateSettings changes the email, avatar or phone of the current user. Empty fields are left untouched.
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	var input models.SettingsRequest
	if err := bindJSON(c, &input); err != nil {
		apperrors.Abort(c, err)
		return
	}

	updates := map[string]any{}
	if input.Email != "" {
		updates["email"] = strings.ToLower(strings.TrimSpace(input.Email))
	}
	if input.Avatar != "" {
		updates["avatar"] = input.Avatar
	}
	if input.Phone != "" {
		updates["phone"] = input.Phone
	}

	db := h.db.WithContext(c.Request.Context())

	var user models.User
	if err := db.Take(&user, userID).Error; err != nil {
		apperrors.Abort(c, userLookupError(err))
		return
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			if database.IsUniqueViolation(err) {
				apperrors.Abort(c, apperrors.Conflict("email already in use"))
				return
			}
			apperrors.Abort(c, apperrors.Internal("failed to update settings", err))
			return
		}
		if err := db.Take(&user, userID).Error; err != nil {
			apperrors.Abort(c, userLookupError(err))
			return
		}
	}

	c.JSON(http.StatusOK, privateUser(&user))
}
