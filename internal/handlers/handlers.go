package handlers

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/inna-tuzhikova/hasker/internal/apperrors"
	"github.com/inna-tuzhikova/hasker/internal/auth"
	"github.com/inna-tuzhikova/hasker/internal/forum"
	"github.com/inna-tuzhikova/hasker/internal/middleware"
)

// Handler combines all handler types
type Handler struct {
	Auth     *AuthHandler
	User     *UserHandler
	Question *QuestionHandler
	API      *APIHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, svc *forum.Service, issuer *auth.TokenIssuer) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(db, issuer),
		User:     NewUserHandler(db),
		Question: NewQuestionHandler(svc),
		API:      NewAPIHandler(svc),
	}
}

// paramID parses a positive numeric path parameter. Malformed ids are reported as not found.
func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.NotFound("invalid " + name)
	}
	return uint(id), nil
}

// currentUser returns the authenticated user id set by the auth middleware.
func currentUser(c *gin.Context) (uint, error) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		return 0, apperrors.Unauthorized("authentication required")
	}
	return id, nil
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.Validation("invalid request body").WithContext("details", err.Error())
	}
	return nil
}

// pageRequest reads ?page=; anything that is not a positive number is an invalid page.
func pageRequest(c *gin.Context) (forum.PageRequest, error) {
	raw := c.Query("page")
	if raw == "" {
		return forum.PageRequest{Page: 1, Size: forum.DefaultPageSize}, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return forum.PageRequest{}, apperrors.NotFound("invalid page")
	}
	return forum.PageRequest{Page: page, Size: forum.DefaultPageSize}, nil
}

// pageURL links to another page of the current listing, keeping the other query parameters.
func pageURL(c *gin.Context, page *int) *string {
	if page == nil {
		return nil
	}
	query := c.Request.URL.Query()
	if *page == 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(*page))
	}
	u := url.URL{Path: c.Request.URL.Path, RawQuery: query.Encode()}
	link := u.String()
	return &link
}
