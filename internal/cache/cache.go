// Package cache keeps the top trending question list out of the database hot path.
package cache

import (
	"context"

	"github.com/inna-tuzhikova/hasker/internal/models"
)

// TrendingCache stores top-N trending lists keyed by N.
// A miss is reported as ok == false with a nil error.
type TrendingCache interface {
	Get(ctx context.Context, n int) (questions []models.Question, ok bool, err error)
	Set(ctx context.Context, n int, questions []models.Question) error
	// Invalidate drops every cached list; called whenever a rating or the question set changes.
	Invalidate(ctx context.Context) error
}

// Noop never stores anything. Used when REDIS_URL is empty.
type Noop struct{}

func (Noop) Get(context.Context, int) ([]models.Question, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, int, []models.Question) error         { return nil }
func (Noop) Invalidate(context.Context) error                          { return nil }
