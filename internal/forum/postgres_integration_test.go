//go:build integration

package forum

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/inna-tuzhikova/hasker/internal/database"
	"github.com/inna-tuzhikova/hasker/internal/models"
)

// setupPostgresService runs the forum against a real PostgreSQL so row locks are exercised.
func setupPostgresService(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("hasker"),
		postgres.WithUsername("hasker"),
		postgres.WithPassword("hasker"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.OpenPostgres(dsn, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	env := &testEnv{
		db:       db,
		clock:    clockwork.NewFakeClockAt(testStart),
		cache:    newMemoryCache(),
		notifier: &recordingNotifier{},
	}
	env.svc = NewService(db, zap.NewNop(),
		WithClock(env.clock),
		WithCache(env.cache),
		WithNotifier(env.notifier),
	)
	return env
}

func TestPostgres_ConcurrentVotes(t *testing.T) {
	env := setupPostgresService(t)
	author := env.createUser(t, "author")
	q := env.ask(t, author, "Contended", "body", "go")
	voters := users(t, env, 30)

	var wg sync.WaitGroup
	for _, v := range voters {
		wg.Add(1)
		go func(voterID uint) {
			defer wg.Done()
			// every voter flips once and ends up voting up
			_, _ = env.svc.VoteQuestion(context.Background(), q.ID, voterID, models.Up)
			_, _ = env.svc.VoteQuestion(context.Background(), q.ID, voterID, models.Down)
			_, _ = env.svc.VoteQuestion(context.Background(), q.ID, voterID, models.Up)
		}(v.ID)
	}
	wg.Wait()

	assert.Equal(t, len(voters), env.rating(t, q))

	var sum int64
	err := env.db.Model(&models.Vote{}).
		Where("target_kind = ? AND target_id = ?", string(models.TargetQuestion), q.ID).
		Select("COALESCE(SUM(value), 0)").
		Row().Scan(&sum)
	require.NoError(t, err)
	assert.Equal(t, int64(env.rating(t, q)), sum)
}

func TestPostgres_ConcurrentSameVoter(t *testing.T) {
	env := setupPostgresService(t)
	author := env.createUser(t, "author")
	voter := env.createUser(t, "voter")
	q := env.ask(t, author, "Flip flop", "body", "go")
	a := env.answer(t, q, author, "answer")

	var wg sync.WaitGroup
	for i := range 40 {
		dir := models.Up
		if i%2 == 1 {
			dir = models.Down
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.VoteAnswer(context.Background(), q.ID, a.ID, voter.ID, dir)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var vote models.Vote
	require.NoError(t, env.db.Where("voter_id = ? AND target_kind = ? AND target_id = ?",
		voter.ID, string(models.TargetAnswer), a.ID).Take(&vote).Error)
	assert.Equal(t, int(vote.Value), env.rating(t, a))
}

func TestPostgres_ConcurrentCorrectAnswer(t *testing.T) {
	env := setupPostgresService(t)
	author := env.createUser(t, "author")
	helper := env.createUser(t, "helper")
	q := env.ask(t, author, "Pick one", "body", "go")
	answers := []*models.Answer{
		env.answer(t, q, helper, "first"),
		env.answer(t, q, helper, "second"),
		env.answer(t, q, helper, "third"),
	}

	var wg sync.WaitGroup
	for i := range 30 {
		a := answers[i%len(answers)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.SetCorrectAnswer(context.Background(), q.ID, a.ID, author.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var count int64
	require.NoError(t, env.db.Model(&models.CorrectAnswer{}).Where("question_id = ?", q.ID).Count(&count).Error)
	assert.LessOrEqual(t, count, int64(1))
}
