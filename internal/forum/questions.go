package forum

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inna-tuzhikova/hasker/internal/apperrors"
	"github.com/inna-tuzhikova/hasker/internal/metrics"
	"github.com/inna-tuzhikova/hasker/internal/models"
	"github.com/inna-tuzhikova/hasker/internal/notify"
)

// AskInput is the payload of a new question. Tags is a comma separated list.
type AskInput struct {
	Caption string `json:"caption" validate:"required,max=100"`
	Text    string `json:"text" validate:"required,max=1000"`
	Tags    string `json:"tags"`
}

// AnswerInput is the payload of a new answer.
type AnswerInput struct {
	Text string `json:"text" validate:"required,max=1000"`
}

// AskQuestion creates a question, creating missing tags on the way.
func (s *Service) AskQuestion(ctx context.Context, authorID uint, in AskInput) (*models.Question, error) {
	in.Caption = strings.TrimSpace(in.Caption)
	in.Text = strings.TrimSpace(in.Text)
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	tagTexts, err := ParseTagList(in.Tags)
	if err != nil {
		return nil, err
	}

	question := models.Question{
		Caption:   in.Caption,
		Text:      in.Text,
		AuthorID:  authorID,
		CreatedAt: s.now(),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&question.Author, authorID).Error; err != nil {
			return notFound(err, "user")
		}

		tags, err := getOrCreateTags(tx, tagTexts)
		if err != nil {
			return err
		}

		if err := tx.Omit("Author", "Tags").Create(&question).Error; err != nil {
			return apperrors.Internal("failed to create question", err)
		}
		if err := tx.Model(&question).Association("Tags").Append(tags); err != nil {
			return apperrors.Internal("failed to tag question", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.QuestionsCreatedTotal.Inc()
	s.logger.Info("Question asked",
		zap.Uint("question_id", question.ID),
		zap.Uint("author_id", authorID),
		zap.Strings("tags", tagTexts),
	)
	s.invalidateTrending(ctx)
	return &question, nil
}

// getOrCreateTags inserts missing tags and returns all of them in the order given.
func getOrCreateTags(tx *gorm.DB, texts []string) ([]models.Tag, error) {
	rows := make([]models.Tag, 0, len(texts))
	for _, text := range texts {
		rows = append(rows, models.Tag{Text: text})
	}
	err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "text"}}, DoNothing: true}).
		Create(&rows).Error
	if err != nil {
		return nil, apperrors.Internal("failed to create tags", err)
	}

	var stored []models.Tag
	if err := tx.Where("text IN ?", texts).Find(&stored).Error; err != nil {
		return nil, apperrors.Internal("failed to load tags", err)
	}
	byText := make(map[string]models.Tag, len(stored))
	for _, t := range stored {
		byText[t.Text] = t
	}

	tags := make([]models.Tag, 0, len(texts))
	for _, text := range texts {
		tags = append(tags, byText[text])
	}
	return tags, nil
}

// AddAnswer posts an answer and notifies the question's author.
// Notification failures are logged and never fail the request.
func (s *Service) AddAnswer(ctx context.Context, questionID, authorID uint, in AnswerInput) (*models.Answer, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	var question models.Question
	answer := models.Answer{
		QuestionID: questionID,
		AuthorID:   authorID,
		Text:       in.Text,
		CreatedAt:  s.now(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Author").Take(&question, questionID).Error; err != nil {
			return notFound(err, "question")
		}
		if err := tx.Take(&answer.Author, authorID).Error; err != nil {
			return notFound(err, "user")
		}
		if err := tx.Omit("Author", "Question").Create(&answer).Error; err != nil {
			return apperrors.Internal("failed to create answer", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.AnswersCreatedTotal.Inc()
	s.logger.Info("Answer added",
		zap.Uint("question_id", questionID),
		zap.Uint("answer_id", answer.ID),
		zap.Uint("author_id", authorID),
	)

	if question.AuthorID != authorID {
		s.notifyNewAnswer(ctx, &question, &answer)
	}
	return &answer, nil
}

func (s *Service) notifyNewAnswer(ctx context.Context, question *models.Question, answer *models.Answer) {
	if s.notifier == nil {
		return
	}
	event := notify.NewAnswerEvent{
		QuestionID:        question.ID,
		QuestionCaption:   question.Caption,
		AnswerID:          answer.ID,
		AnswerAuthor:      answer.Author.Username,
		RecipientID:       question.Author.ID,
		RecipientUsername: question.Author.Username,
		RecipientEmail:    question.Author.Email,
		RecipientPhone:    question.Author.Phone,
	}
	if err := s.notifier.NotifyNewAnswer(ctx, event); err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		s.logger.Warn("Failed to notify question author",
			zap.Uint("question_id", question.ID),
			zap.Uint("answer_id", answer.ID),
			zap.Error(err),
		)
		return
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
}

// DeleteQuestion removes a question with its answers, votes, tag links and correct answer.
// Only the author may delete a question.
func (s *Service) DeleteQuestion(ctx context.Context, questionID, actorID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var question models.Question
		err := tx.Select("id", "author_id").
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Take(&question, questionID).Error
		if err != nil {
			return notFound(err, "question")
		}
		if question.AuthorID != actorID {
			return apperrors.Forbidden("only the author can delete the question")
		}

		var answerIDs []uint
		if err := tx.Model(&models.Answer{}).Where("question_id = ?", questionID).Pluck("id", &answerIDs).Error; err != nil {
			return apperrors.Internal("failed to load answers", err)
		}

		err = tx.Where("target_kind = ? AND target_id = ?", string(models.TargetQuestion), questionID).
			Delete(&models.Vote{}).Error
		if err != nil {
			return apperrors.Internal("failed to delete question votes", err)
		}
		if err := tx.Where("question_id = ?", questionID).Delete(&models.CorrectAnswer{}).Error; err != nil {
			return apperrors.Internal("failed to delete correct answer", err)
		}
		if len(answerIDs) > 0 {
			err := tx.Where("target_kind = ? AND target_id IN ?", string(models.TargetAnswer), answerIDs).
				Delete(&models.Vote{}).Error
			if err != nil {
				return apperrors.Internal("failed to delete answer votes", err)
			}
		}
		if err := tx.Where("question_id = ?", questionID).Delete(&models.Answer{}).Error; err != nil {
			return apperrors.Internal("failed to delete answers", err)
		}
		if err := tx.Exec("DELETE FROM question_tags WHERE question_id = ?", questionID).Error; err != nil {
			return apperrors.Internal("failed to unlink tags", err)
		}
		if err := tx.Delete(&models.Question{}, questionID).Error; err != nil {
			return apperrors.Internal("failed to delete question", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Question deleted", zap.Uint("question_id", questionID), zap.Uint("actor_id", actorID))
	s.invalidateTrending(ctx)
	return nil
}
