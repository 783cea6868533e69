package forum

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inna-tuzhikova/hasker/internal/database"
	"github.com/inna-tuzhikova/hasker/internal/models"
	"github.com/inna-tuzhikova/hasker/internal/notify"
)

var testStart = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// setupTestDB creates an in-memory SQLite database with all tables migrated
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLite(":memory:", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

type testEnv struct {
	svc      *Service
	db       *gorm.DB
	clock    *clockwork.FakeClock
	cache    *memoryCache
	notifier *recordingNotifier
}

func setupTestService(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		db:       setupTestDB(t),
		clock:    clockwork.NewFakeClockAt(testStart),
		cache:    newMemoryCache(),
		notifier: &recordingNotifier{},
	}
	env.svc = NewService(env.db, zap.NewNop(),
		WithClock(env.clock),
		WithCache(env.cache),
		WithNotifier(env.notifier),
	)
	return env
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

// ask creates a question through the service and moves the clock forward so creation times differ.
func (e *testEnv) ask(t *testing.T, author *models.User, caption, text, tags string) *models.Question {
	t.Helper()

	q, err := e.svc.AskQuestion(context.Background(), author.ID, AskInput{Caption: caption, Text: text, Tags: tags})
	require.NoError(t, err)
	e.clock.Advance(time.Minute)
	return q
}

// insertQuestion writes a question row directly, bypassing validation and the vote protocol.
func (e *testEnv) insertQuestion(t *testing.T, author *models.User, caption string, rating int) *models.Question {
	t.Helper()

	q := &models.Question{
		Caption:   caption,
		Text:      "text of " + caption,
		AuthorID:  author.ID,
		CreatedAt: e.clock.Now().UTC(),
		Rating:    rating,
	}
	require.NoError(t, e.db.Omit("Author").Create(q).Error)
	e.clock.Advance(time.Minute)
	return q
}

func (e *testEnv) answer(t *testing.T, question *models.Question, author *models.User, text string) *models.Answer {
	t.Helper()

	a, err := e.svc.AddAnswer(context.Background(), question.ID, author.ID, AnswerInput{Text: text})
	require.NoError(t, err)
	e.clock.Advance(time.Minute)
	return a
}

func (e *testEnv) rating(t *testing.T, target models.Votable) int {
	t.Helper()

	var rating int
	err := e.db.Table(target.TableName()).Select("rating").Where("id = ?", target.VoteTarget().ID).Row().Scan(&rating)
	require.NoError(t, err)
	return rating
}

func users(t *testing.T, e *testEnv, n int) []*models.User {
	t.Helper()

	out := make([]*models.User, 0, n)
	for i := range n {
		out = append(out, e.createUser(t, fmt.Sprintf("voter%d", i)))
	}
	return out
}

// memoryCache is a TrendingCache kept in a map.
type memoryCache struct {
	mu          sync.Mutex
	lists       map[int][]models.Question
	invalidated int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{lists: make(map[int][]models.Question)}
}

func (c *memoryCache) Get(_ context.Context, n int) ([]models.Question, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	qs, ok := c.lists[n]
	return qs, ok, nil
}

func (c *memoryCache) Set(_ context.Context, n int, questions []models.Question) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[n] = questions
	return nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists = make(map[int][]models.Question)
	c.invalidated++
	return nil
}

func (c *memoryCache) invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.NewAnswerEvent
	err    error
}

func (n *recordingNotifier) NotifyNewAnswer(_ context.Context, event notify.NewAnswerEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}
