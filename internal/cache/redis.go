package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/inna-tuzhikova/hasker/internal/models"
)

const trendingKey = "hasker:top_trending"

// RedisTrending keeps every cached list as a field of one hash so a single DEL invalidates all of them.
type RedisTrending struct {
	rdb goredis.Cmdable
	ttl time.Duration
}

func NewRedisTrending(rdb goredis.Cmdable, ttl time.Duration) *RedisTrending {
	return &RedisTrending{rdb: rdb, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// cachedQuestion carries the fields the model hides from JSON (author, correct answer).
type cachedQuestion struct {
	ID              uint      `json:"id"`
	Caption         string    `json:"caption"`
	Text            string    `json:"text"`
	AuthorID        uint      `json:"author_id"`
	AuthorName      string    `json:"author_name"`
	CreatedAt       time.Time `json:"created_at"`
	Rating          int       `json:"rating"`
	Tags            []string  `json:"tags"`
	CorrectAnswerID *uint     `json:"correct_answer_id,omitempty"`
}

func (r *RedisTrending) Get(ctx context.Context, n int) ([]models.Question, bool, error) {
	data, err := r.rdb.HGet(ctx, trendingKey, strconv.Itoa(n)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("trending cache get: %w", err)
	}

	var entries []cachedQuestion
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("trending cache decode: %w", err)
	}
	return fromCached(entries), true, nil
}

func (r *RedisTrending) Set(ctx context.Context, n int, questions []models.Question) error {
	encoded, err := json.Marshal(toCached(questions))
	if err != nil {
		return fmt.Errorf("trending cache encode: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, trendingKey, strconv.Itoa(n), encoded)
	pipe.Expire(ctx, trendingKey, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("trending cache set: %w", err)
	}
	return nil
}

func (r *RedisTrending) Invalidate(ctx context.Context) error {
	if err := r.rdb.Del(ctx, trendingKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate trending cache: %w", err)
	}
	return nil
}

func toCached(questions []models.Question) []cachedQuestion {
	entries := make([]cachedQuestion, 0, len(questions))
	for _, q := range questions {
		tags := make([]string, 0, len(q.Tags))
		for _, t := range q.Tags {
			tags = append(tags, t.Text)
		}
		entries = append(entries, cachedQuestion{
			ID:              q.ID,
			Caption:         q.Caption,
			Text:            q.Text,
			AuthorID:        q.AuthorID,
			AuthorName:      q.Author.Username,
			CreatedAt:       q.CreatedAt,
			Rating:          q.Rating,
			Tags:            tags,
			CorrectAnswerID: q.CorrectAnswerID(),
		})
	}
	return entries
}

func fromCached(entries []cachedQuestion) []models.Question {
	questions := make([]models.Question, 0, len(entries))
	for _, e := range entries {
		q := models.Question{
			ID:        e.ID,
			Caption:   e.Caption,
			Text:      e.Text,
			AuthorID:  e.AuthorID,
			Author:    models.User{ID: e.AuthorID, Username: e.AuthorName},
			CreatedAt: e.CreatedAt,
			Rating:    e.Rating,
			Tags:      make([]models.Tag, 0, len(e.Tags)),
		}
		for _, t := range e.Tags {
			q.Tags = append(q.Tags, models.Tag{Text: t})
		}
		if e.CorrectAnswerID != nil {
			q.CorrectAnswer = &models.CorrectAnswer{QuestionID: e.ID, AnswerID: *e.CorrectAnswerID}
		}
		questions = append(questions, q)
	}
	return questions
}
