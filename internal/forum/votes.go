package forum

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inna-tuzhikova/hasker/internal/apperrors"
	"github.com/inna-tuzhikova/hasker/internal/metrics"
	"github.com/inna-tuzhikova/hasker/internal/models"
)

// VoteOutcome tells which branch of the vote protocol ran.
type VoteOutcome string

const (
	// VoteRecorded means this was the voter's first vote on the target.
	VoteRecorded VoteOutcome = "recorded"
	// VoteReversed means an opposite vote was flipped; the rating moved by two.
	VoteReversed VoteOutcome = "reversed"
	// VoteAlreadyCast means the same direction was already stored; nothing changed.
	VoteAlreadyCast VoteOutcome = "already_cast"
)

type VoteResult struct {
	Outcome VoteOutcome
	Rating  int
}

// CastVote applies one vote to a question or an answer and returns the new rating.
//
// The target row is locked first so votes on one target are serialized. The vote row is
// inserted with ON CONFLICT DO NOTHING against the (voter, target) unique index; when the
// insert is a no-op the stored vote is flipped only if it points the other way.
// The rating is always adjusted with an in-database increment.
func (s *Service) CastVote(ctx context.Context, target models.Votable, voterID uint, dir models.Direction) (VoteResult, error) {
	if dir != models.Up && dir != models.Down {
		return VoteResult{}, apperrors.Validation("vote direction must be up or down")
	}

	vt := target.VoteTarget()
	table := target.TableName()

	var result VoteResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked struct {
			ID     uint
			Rating int
		}
		err := tx.Table(table).
			Select("id", "rating").
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", vt.ID).
			Take(&locked).Error
		if err != nil {
			return notFound(err, string(vt.Kind))
		}

		vote := models.Vote{
			VoterID:    voterID,
			TargetKind: vt.Kind,
			TargetID:   vt.ID,
			Value:      dir,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&vote)
		if res.Error != nil {
			return apperrors.Internal("failed to record vote", res.Error)
		}

		delta := 0
		if res.RowsAffected == 1 {
			result.Outcome = VoteRecorded
			delta = int(dir)
		} else {
			res = tx.Model(&models.Vote{}).
				Where("voter_id = ? AND target_kind = ? AND target_id = ? AND value <> ?",
					voterID, string(vt.Kind), vt.ID, int(dir)).
				Updates(map[string]any{"value": int(dir), "updated_at": s.now()})
			if res.Error != nil {
				return apperrors.Internal("failed to reverse vote", res.Error)
			}
			if res.RowsAffected == 1 {
				result.Outcome = VoteReversed
				delta = 2 * int(dir)
			} else {
				result.Outcome = VoteAlreadyCast
			}
		}

		if delta == 0 {
			result.Rating = locked.Rating
			return nil
		}

		err = tx.Table(table).
			Where("id = ?", vt.ID).
			UpdateColumn("rating", gorm.Expr("rating + ?", delta)).Error
		if err != nil {
			return apperrors.Internal("failed to update rating", err)
		}
		if err := tx.Table(table).Select("rating").Where("id = ?", vt.ID).Row().Scan(&result.Rating); err != nil {
			return apperrors.Internal("failed to read rating", err)
		}
		return nil
	})
	if err != nil {
		return VoteResult{}, err
	}

	metrics.VotesTotal.WithLabelValues(string(vt.Kind), string(result.Outcome)).Inc()
	s.logger.Debug("Vote cast",
		zap.String("target", string(vt.Kind)),
		zap.Uint("target_id", vt.ID),
		zap.Uint("voter_id", voterID),
		zap.Stringer("direction", dir),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("rating", result.Rating),
	)

	if vt.Kind == models.TargetQuestion && result.Outcome != VoteAlreadyCast {
		s.invalidateTrending(ctx)
	}
	return result, nil
}

// VoteQuestion casts a vote on a question by id.
func (s *Service) VoteQuestion(ctx context.Context, questionID, voterID uint, dir models.Direction) (VoteResult, error) {
	var question models.Question
	if err := s.db.WithContext(ctx).Select("id").Take(&question, questionID).Error; err != nil {
		return VoteResult{}, notFound(err, "question")
	}
	return s.CastVote(ctx, &question, voterID, dir)
}

// VoteAnswer casts a vote on an answer of the given question.
func (s *Service) VoteAnswer(ctx context.Context, questionID, answerID, voterID uint, dir models.Direction) (VoteResult, error) {
	var answer models.Answer
	err := s.db.WithContext(ctx).
		Select("id", "question_id").
		Where("id = ? AND question_id = ?", answerID, questionID).
		Take(&answer).Error
	if err != nil {
		return VoteResult{}, notFound(err, "answer")
	}
	return s.CastVote(ctx, &answer, voterID, dir)
}
