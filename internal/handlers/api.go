package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inna-tuzhikova/hasker/internal/apperrors"
	"github.com/inna-tuzhikova/hasker/internal/forum"
	"github.com/inna-tuzhikova/hasker/internal/models"
)

// APIHandler serves the read-only question listings
type APIHandler struct {
	svc *forum.Service
}

func NewAPIHandler(svc *forum.Service) *APIHandler {
	return &APIHandler{svc: svc}
}

type listFunc func(c *gin.Context, req forum.PageRequest) (forum.Page[models.Question], error)

func (h *APIHandler) list(fn listFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := pageRequest(c)
		if err != nil {
			apperrors.Abort(c, err)
			return
		}

		page, err := fn(c, req)
		if err != nil {
			apperrors.Abort(c, err)
			return
		}

		c.JSON(http.StatusOK, newQuestionList(c, page))
	}
}

// Recent lists questions, newest first
func (h *APIHandler) Recent() gin.HandlerFunc {
	return h.list(func(c *gin.Context, req forum.PageRequest) (forum.Page[models.Question], error) {
		return h.svc.Recent(c.Request.Context(), req)
	})
}

// Trending lists questions by rating
func (h *APIHandler) Trending() gin.HandlerFunc {
	return h.list(func(c *gin.Context, req forum.PageRequest) (forum.Page[models.Question], error) {
		return h.svc.Trending(c.Request.Context(), req)
	})
}

// Search matches ?q= against caption and text, or a tag with the "tag:" prefix
func (h *APIHandler) Search() gin.HandlerFunc {
	return h.list(func(c *gin.Context, req forum.PageRequest) (forum.Page[models.Question], error) {
		q, ok := c.GetQuery("q")
		if !ok {
			return forum.Page[models.Question]{}, apperrors.Validation("query parameter q is required")
		}
		return h.svc.Search(c.Request.Context(), q, req)
	})
}

// ByTag lists questions with the tag from the path
func (h *APIHandler) ByTag() gin.HandlerFunc {
	return h.list(func(c *gin.Context, req forum.PageRequest) (forum.Page[models.Question], error) {
		return h.svc.SearchByTag(c.Request.Context(), c.Param("tag"), req)
	})
}

// TopTrending returns the best rated questions as a plain array
func (h *APIHandler) TopTrending(c *gin.Context) {
	questions, err := h.svc.TopTrending(c.Request.Context(), forum.TopTrendingLimit)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, newQuestionResponses(questions))
}

// Detail returns one question
func (h *APIHandler) Detail(c *gin.Context) {
	questionID, err := paramID(c, "id")
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	question, err := h.svc.Question(c.Request.Context(), questionID)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, newQuestionResponse(question))
}

// Answers lists the answers of a question
func (h *APIHandler) Answers(c *gin.Context) {
	questionID, err := paramID(c, "id")
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	req, err := pageRequest(c)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	question, err := h.svc.Question(c.Request.Context(), questionID)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	page, err := h.svc.Answers(c.Request.Context(), questionID, req)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	results := make([]answerResponse, 0, len(page.Results))
	for i := range page.Results {
		results = append(results, newAnswerResponse(&page.Results[i], question))
	}
	c.JSON(http.StatusOK, listResponse[answerResponse]{
		Count:    page.Count,
		Next:     pageURL(c, page.Next),
		Previous: pageURL(c, page.Previous),
		Results:  results,
	})
}
