package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inna-tuzhikova/hasker/internal/models"
)

func setupTestCache(t *testing.T) (*RedisTrending, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisTrending(client, time.Minute), mr
}

func sampleQuestions() []models.Question {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return []models.Question{
		{
			ID:            2,
			Caption:       "How do channels work?",
			Text:          "Buffered vs unbuffered",
			AuthorID:      5,
			Author:        models.User{ID: 5, Username: "gopher"},
			CreatedAt:     created,
			Rating:        10,
			Tags:          []models.Tag{{Text: "go"}, {Text: "channels"}},
			CorrectAnswer: &models.CorrectAnswer{QuestionID: 2, AnswerID: 9},
		},
		{
			ID:        1,
			Caption:   "What is a goroutine?",
			Text:      "Explain please",
			AuthorID:  6,
			Author:    models.User{ID: 6, Username: "newbie"},
			CreatedAt: created.Add(-time.Hour),
			Rating:    3,
			Tags:      []models.Tag{},
		},
	}
}

func TestRedisTrending_Miss(t *testing.T) {
	cache, _ := setupTestCache(t)

	questions, ok, err := cache.Get(context.Background(), 20)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, questions)
}

func TestRedisTrending_SetAndGet(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, 20, sampleQuestions()))

	questions, ok, err := cache.Get(ctx, 20)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, questions, 2)

	first := questions[0]
	assert.Equal(t, uint(2), first.ID)
	assert.Equal(t, "gopher", first.Author.Username)
	assert.Equal(t, 10, first.Rating)
	assert.Equal(t, []string{"go", "channels"}, []string{first.Tags[0].Text, first.Tags[1].Text})
	require.NotNil(t, first.CorrectAnswerID())
	assert.Equal(t, uint(9), *first.CorrectAnswerID())
	assert.True(t, first.CreatedAt.Equal(sampleQuestions()[0].CreatedAt))

	assert.Nil(t, questions[1].CorrectAnswerID())

	// lists for other sizes are independent
	_, ok, err = cache.Get(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisTrending_Invalidate(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, 20, sampleQuestions()))
	require.NoError(t, cache.Set(ctx, 5, sampleQuestions()[:1]))
	assert.True(t, mr.Exists(trendingKey))

	require.NoError(t, cache.Invalidate(ctx))
	assert.False(t, mr.Exists(trendingKey))

	_, ok, err := cache.Get(ctx, 20)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisTrending_Expires(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, 20, sampleQuestions()))
	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, 20)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisTrending_CorruptEntry(t *testing.T) {
	cache, mr := setupTestCache(t)

	mr.HSet(trendingKey, "20", "not json")

	_, ok, err := cache.Get(context.Background(), 20)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNoop(t *testing.T) {
	var c TrendingCache = Noop{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 20, sampleQuestions()))
	_, ok, err := c.Get(ctx, 20)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Invalidate(ctx))
}
