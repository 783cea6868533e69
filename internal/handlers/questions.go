package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inna-tuzhikova/hasker/internal/apperrors"
	"github.com/inna-tuzhikova/hasker/internal/forum"
	"github.com/inna-tuzhikova/hasker/internal/models"
)

// QuestionHandler serves the authenticated write side: asking, answering, voting and best answers.
type QuestionHandler struct {
	svc *forum.Service
}

func NewQuestionHandler(svc *forum.Service) *QuestionHandler {
	return &QuestionHandler{svc: svc}
}

// Ask creates a question
func (h *QuestionHandler) Ask(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	var input forum.AskInput
	if err := bindJSON(c, &input); err != nil {
		apperrors.Abort(c, err)
		return
	}

	question, err := h.svc.AskQuestion(c.Request.Context(), userID, input)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, newQuestionResponse(question))
}

// Delete removes a question owned by the current user
func (h *QuestionHandler) Delete(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	questionID, err := paramID(c, "id")
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	if err := h.svc.DeleteQuestion(c.Request.Context(), questionID, userID); err != nil {
		apperrors.Abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddAnswer posts an answer to a question
func (h *QuestionHandler) AddAnswer(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	questionID, err := paramID(c, "id")
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	var input forum.AnswerInput
	if err := bindJSON(c, &input); err != nil {
		apperrors.Abort(c, err)
		return
	}

	answer, err := h.svc.AddAnswer(c.Request.Context(), questionID, userID, input)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	question, err := h.svc.Question(c.Request.Context(), questionID)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, newAnswerResponse(answer, question))
}

// VoteQuestion returns a handler voting on a question in one direction
func (h *QuestionHandler) VoteQuestion(dir models.Direction) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := currentUser(c)
		if err != nil {
			apperrors.Abort(c, err)
			return
		}
		questionID, err := paramID(c, "id")
		if err != nil {
			apperrors.Abort(c, err)
			return
		}

		result, err := h.svc.VoteQuestion(c.Request.Context(), questionID, userID, dir)
		if err != nil {
			apperrors.Abort(c, err)
			return
		}

		c.JSON(http.StatusOK, voteResponse(result, dir))
	}
}

// VoteAnswer returns a handler voting on an answer in one direction
func (h *QuestionHandler) VoteAnswer(dir models.Direction) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := currentUser(c)
		if err != nil {
			apperrors.Abort(c, err)
			return
		}
		questionID, err := paramID(c, "id")
		if err != nil {
			apperrors.Abort(c, err)
			return
		}
		answerID, err := paramID(c, "answerId")
		if err != nil {
			apperrors.Abort(c, err)
			return
		}

		result, err := h.svc.VoteAnswer(c.Request.Context(), questionID, answerID, userID, dir)
		if err != nil {
			apperrors.Abort(c, err)
			return
		}

		c.JSON(http.StatusOK, voteResponse(result, dir))
	}
}

// ToggleCorrect marks, unmarks or replaces the best answer of a question
func (h *QuestionHandler) ToggleCorrect(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	questionID, err := paramID(c, "id")
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	answerID, err := paramID(c, "answerId")
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	sel, err := h.svc.SetCorrectAnswer(c.Request.Context(), questionID, answerID, userID)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transition":        sel.Transition,
		"correct_answer_id": sel.AnswerID,
	})
}

// voteResponse reports "ok" for a counted vote and "already_<dir>_voted" for a repeated one.
func voteResponse(result forum.VoteResult, dir models.Direction) gin.H {
	status := "ok"
	if result.Outcome == forum.VoteAlreadyCast {
		status = "already_" + dir.String() + "_voted"
	}
	return gin.H{
		"status":  status,
		"outcome": result.Outcome,
		"rating":  result.Rating,
	}
}
