package forum

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inna-tuzhikova/hasker/internal/apperrors"
	"github.com/inna-tuzhikova/hasker/internal/metrics"
	"github.com/inna-tuzhikova/hasker/internal/models"
)

// ErrAnswerMismatch is returned when the answer belongs to a different question.
var ErrAnswerMismatch = apperrors.Validation("answer does not belong to this question")

// Transition names the state change made by SetCorrectAnswer.
type Transition string

const (
	CorrectSelected Transition = "selected"
	CorrectCleared  Transition = "cleared"
	CorrectReplaced Transition = "replaced"
)

// Selection is the outcome of a toggle. AnswerID is nil once the question has no correct answer.
type Selection struct {
	Transition Transition
	AnswerID   *uint
}

// SetCorrectAnswer toggles the best answer of a question on behalf of its author.
// Marking the current best answer again clears it; marking another answer replaces it in place.
func (s *Service) SetCorrectAnswer(ctx context.Context, questionID, answerID, actorID uint) (Selection, error) {
	var sel Selection
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var question models.Question
		err := tx.Select("id", "author_id").
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Take(&question, questionID).Error
		if err != nil {
			return notFound(err, "question")
		}

		var answer models.Answer
		if err := tx.Select("id", "question_id").Take(&answer, answerID).Error; err != nil {
			return notFound(err, "answer")
		}

		if question.AuthorID != actorID {
			return apperrors.Forbidden("only the author of the question can choose the correct answer")
		}
		if answer.QuestionID != question.ID {
			return ErrAnswerMismatch
		}

		var current models.CorrectAnswer
		err = tx.Where("question_id = ?", question.ID).Take(&current).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			record := models.CorrectAnswer{QuestionID: question.ID, AnswerID: answer.ID}
			if err := tx.Create(&record).Error; err != nil {
				return apperrors.Internal("failed to set correct answer", err)
			}
			sel = Selection{Transition: CorrectSelected, AnswerID: &record.AnswerID}
		case err != nil:
			return apperrors.Internal("failed to load correct answer", err)
		case current.AnswerID == answer.ID:
			if err := tx.Delete(&current).Error; err != nil {
				return apperrors.Internal("failed to clear correct answer", err)
			}
			sel = Selection{Transition: CorrectCleared}
		default:
			if err := tx.Model(&current).Update("answer_id", answer.ID).Error; err != nil {
				return apperrors.Internal("failed to replace correct answer", err)
			}
			id := answer.ID
			sel = Selection{Transition: CorrectReplaced, AnswerID: &id}
		}
		return nil
	})
	if err != nil {
		return Selection{}, err
	}

	metrics.CorrectAnswerTransitionsTotal.WithLabelValues(string(sel.Transition)).Inc()
	s.logger.Debug("Correct answer toggled",
		zap.Uint("question_id", questionID),
		zap.Uint("answer_id", answerID),
		zap.String("transition", string(sel.Transition)),
	)

	// cached trending entries carry the correct answer id
	s.invalidateTrending(ctx)
	return sel, nil
}

// CorrectAnswerOf returns the id of the question's correct answer, or nil when unset.
func (s *Service) CorrectAnswerOf(ctx context.Context, questionID uint) (*uint, error) {
	var question models.Question
	err := s.db.WithContext(ctx).
		Select("id").
		Preload("CorrectAnswer").
		Take(&question, questionID).Error
	if err != nil {
		return nil, notFound(err, "question")
	}
	return question.CorrectAnswerID(), nil
}
