package forum

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inna-tuzhikova/hasker/internal/apperrors"
	"github.com/inna-tuzhikova/hasker/internal/models"
)

func correctRecords(t *testing.T, env *testEnv, questionID uint) int64 {
	t.Helper()

	var n int64
	require.NoError(t, env.db.Model(&models.CorrectAnswer{}).Where("question_id = ?", questionID).Count(&n).Error)
	return n
}

func TestSetCorrectAnswer_Toggle(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	helper := env.createUser(t, "helper")
	q := env.ask(t, author, "Question", "Body", "go")
	a := env.answer(t, q, helper, "Answer")

	current, err := env.svc.CorrectAnswerOf(ctx, q.ID)
	require.NoError(t, err)
	assert.Nil(t, current)

	sel, err := env.svc.SetCorrectAnswer(ctx, q.ID, a.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, CorrectSelected, sel.Transition)
	require.NotNil(t, sel.AnswerID)
	assert.Equal(t, a.ID, *sel.AnswerID)

	current, err = env.svc.CorrectAnswerOf(ctx, q.ID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, a.ID, *current)

	sel, err = env.svc.SetCorrectAnswer(ctx, q.ID, a.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, CorrectCleared, sel.Transition)
	assert.Nil(t, sel.AnswerID)

	current, err = env.svc.CorrectAnswerOf(ctx, q.ID)
	require.NoError(t, err)
	assert.Nil(t, current)
	assert.Equal(t, int64(0), correctRecords(t, env, q.ID))
}

func TestSetCorrectAnswer_Replace(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	helper := env.createUser(t, "helper")
	q := env.ask(t, author, "Question", "Body", "go")
	a1 := env.answer(t, q, helper, "First answer")
	a2 := env.answer(t, q, helper, "Second answer")

	_, err := env.svc.SetCorrectAnswer(ctx, q.ID, a1.ID, author.ID)
	require.NoError(t, err)

	var before models.CorrectAnswer
	require.NoError(t, env.db.Where("question_id = ?", q.ID).Take(&before).Error)

	sel, err := env.svc.SetCorrectAnswer(ctx, q.ID, a2.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, CorrectReplaced, sel.Transition)
	require.NotNil(t, sel.AnswerID)
	assert.Equal(t, a2.ID, *sel.AnswerID)

	// updated in place, never duplicated
	var after models.CorrectAnswer
	require.NoError(t, env.db.Where("question_id = ?", q.ID).Take(&after).Error)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, a2.ID, after.AnswerID)
	assert.Equal(t, int64(1), correctRecords(t, env, q.ID))
}

func TestSetCorrectAnswer_AnswerFromAnotherQuestion(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	q1 := env.ask(t, author, "First", "Body", "go")
	q2 := env.ask(t, author, "Second", "Body", "go")
	a1 := env.answer(t, q1, author, "Answer to first")
	a2 := env.answer(t, q2, author, "Answer to second")

	_, err := env.svc.SetCorrectAnswer(ctx, q1.ID, a1.ID, author.ID)
	require.NoError(t, err)

	_, err = env.svc.SetCorrectAnswer(ctx, q1.ID, a2.ID, author.ID)
	assert.ErrorIs(t, err, ErrAnswerMismatch)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	current, err := env.svc.CorrectAnswerOf(ctx, q1.ID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, a1.ID, *current)
}

func TestSetCorrectAnswer_OnlyAuthor(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	other := env.createUser(t, "other")
	q := env.ask(t, author, "Question", "Body", "go")
	a := env.answer(t, q, other, "Answer")

	_, err := env.svc.SetCorrectAnswer(ctx, q.ID, a.ID, other.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	assert.Equal(t, int64(0), correctRecords(t, env, q.ID))
}

func TestSetCorrectAnswer_NotFound(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	q := env.ask(t, author, "Question", "Body", "go")
	a := env.answer(t, q, author, "Answer")

	_, err := env.svc.SetCorrectAnswer(ctx, 404, a.ID, author.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	_, err = env.svc.SetCorrectAnswer(ctx, q.ID, 404, author.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	_, err = env.svc.CorrectAnswerOf(ctx, 404)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
