// Package notify tells question authors about new answers.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// NewAnswerEvent describes an answer that was just posted.
type NewAnswerEvent struct {
	QuestionID      uint
	QuestionCaption string
	AnswerID        uint
	AnswerAuthor    string

	RecipientID       uint
	RecipientUsername string
	RecipientEmail    string
	RecipientPhone    string
}

// Notifier delivers new answer events. Implementations must be safe for concurrent use.
type Notifier interface {
	NotifyNewAnswer(ctx context.Context, event NewAnswerEvent) error
}

// QuestionURL builds the public link to a question.
func QuestionURL(baseURL string, questionID uint) string {
	return fmt.Sprintf("%s/api/questions/%d", baseURL, questionID)
}

// LogNotifier only logs events. Used when no SMS provider is configured.
type LogNotifier struct {
	logger  *zap.Logger
	baseURL string
}

func NewLogNotifier(logger *zap.Logger, baseURL string) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify"), baseURL: baseURL}
}

func (n *LogNotifier) NotifyNewAnswer(_ context.Context, event NewAnswerEvent) error {
	n.logger.Info("New answer",
		zap.Uint("question_id", event.QuestionID),
		zap.Uint("answer_id", event.AnswerID),
		zap.String("answer_author", event.AnswerAuthor),
		zap.String("recipient", event.RecipientUsername),
		zap.String("url", QuestionURL(n.baseURL, event.QuestionID)),
	)
	return nil
}
