package forum

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inna-tuzhikova/hasker/internal/apperrors"
	"github.com/inna-tuzhikova/hasker/internal/metrics"
	"github.com/inna-tuzhikova/hasker/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// TopTrendingLimit is the size of the top trending list shown next to every page.
	TopTrendingLimit = 20

	tagSearchPrefix = "tag:"
)

const (
	orderRecent   = "created_at DESC, rating DESC, id DESC"
	orderTrending = "rating DESC, created_at DESC, id DESC"
)

var questionPreloads = []string{"Author", "Tags", "CorrectAnswer"}

// PageRequest selects a page. Zero values fall back to the first page of DefaultPageSize items.
type PageRequest struct {
	Page int
	Size int
}

func (r PageRequest) normalize() PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Size <= 0 {
		r.Size = DefaultPageSize
	}
	if r.Size > MaxPageSize {
		r.Size = MaxPageSize
	}
	return r
}

// Page is one slice of an ordered listing.
type Page[T any] struct {
	Results  []T
	Count    int64
	Page     int
	NumPages int
	Next     *int
	Previous *int
}

// paginate counts the rows matched by scope, then loads the requested page in the given order.
func paginate[T any](ctx context.Context, db *gorm.DB, req PageRequest, scope func(*gorm.DB) *gorm.DB, order string, preloads ...string) (Page[T], error) {
	req = req.normalize()

	var count int64
	if err := scope(db.WithContext(ctx).Model(new(T))).Count(&count).Error; err != nil {
		return Page[T]{}, apperrors.Internal("failed to count results", err)
	}

	numPages := int((count + int64(req.Size) - 1) / int64(req.Size))
	if numPages == 0 {
		numPages = 1
	}
	if req.Page > numPages {
		return Page[T]{}, apperrors.NotFound("invalid page").WithContext("page", req.Page)
	}

	query := scope(db.WithContext(ctx))
	for _, p := range preloads {
		query = query.Preload(p)
	}
	results := make([]T, 0, req.Size)
	err := query.Order(order).
		Offset((req.Page - 1) * req.Size).
		Limit(req.Size).
		Find(&results).Error
	if err != nil {
		return Page[T]{}, apperrors.Internal("failed to load results", err)
	}

	page := Page[T]{
		Results:  results,
		Count:    count,
		Page:     req.Page,
		NumPages: numPages,
	}
	if req.Page < numPages {
		next := req.Page + 1
		page.Next = &next
	}
	if req.Page > 1 {
		prev := req.Page - 1
		page.Previous = &prev
	}
	return page, nil
}

func allQuestions(db *gorm.DB) *gorm.DB { return db }

// Recent lists questions, newest first.
func (s *Service) Recent(ctx context.Context, req PageRequest) (Page[models.Question], error) {
	return paginate[models.Question](ctx, s.db, req, allQuestions, orderRecent, questionPreloads...)
}

// Trending lists questions by rating, highest first.
func (s *Service) Trending(ctx context.Context, req PageRequest) (Page[models.Question], error) {
	return paginate[models.Question](ctx, s.db, req, allQuestions, orderTrending, questionPreloads...)
}

// TopTrending returns at most n questions in trending order.
// Lists are served from the trending cache; concurrent misses share one database query.
func (s *Service) TopTrending(ctx context.Context, n int) ([]models.Question, error) {
	if n <= 0 {
		return nil, apperrors.Validation("n must be positive")
	}

	cached, ok, err := s.cache.Get(ctx, n)
	switch {
	case err != nil:
		metrics.TrendingCacheTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Trending cache lookup failed", zap.Error(err))
	case ok:
		metrics.TrendingCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		metrics.TrendingCacheTotal.WithLabelValues("miss").Inc()
	}

	v, err, _ := s.trending.Do(strconv.Itoa(n), func() (any, error) {
		var questions []models.Question
		query := s.db.WithContext(ctx)
		for _, p := range questionPreloads {
			query = query.Preload(p)
		}
		if err := query.Order(orderTrending).Limit(n).Find(&questions).Error; err != nil {
			return nil, apperrors.Internal("failed to load trending questions", err)
		}
		if err := s.cache.Set(ctx, n, questions); err != nil {
			s.logger.Warn("Failed to fill trending cache", zap.Error(err))
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Question), nil
}

// Search dispatches "tag:<name>" queries to SearchByTag and everything else to SearchByText.
func (s *Service) Search(ctx context.Context, q string, req PageRequest) (Page[models.Question], error) {
	q = strings.TrimSpace(q)
	if rest, ok := strings.CutPrefix(q, tagSearchPrefix); ok {
		return s.SearchByTag(ctx, strings.TrimSpace(rest), req)
	}
	return s.SearchByText(ctx, q, req)
}

// SearchByText matches q case-insensitively against caption or text.
func (s *Service) SearchByText(ctx context.Context, q string, req PageRequest) (Page[models.Question], error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return Page[models.Question]{}, apperrors.Validation("search query is required")
	}

	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	scope := func(db *gorm.DB) *gorm.DB {
		return db.Where(`(LOWER(caption) LIKE ? ESCAPE '\' OR LOWER(text) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	return paginate[models.Question](ctx, s.db, req, scope, orderTrending, questionPreloads...)
}

// SearchByTag lists questions carrying the exact tag. An unknown tag gives an empty page.
func (s *Service) SearchByTag(ctx context.Context, tag string, req PageRequest) (Page[models.Question], error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return Page[models.Question]{}, apperrors.Validation("tag is required")
	}

	scope := func(db *gorm.DB) *gorm.DB {
		tagged := db.Session(&gorm.Session{NewDB: true}).
			Table("question_tags").
			Select("question_tags.question_id").
			Joins("JOIN tags ON tags.id = question_tags.tag_id").
			Where("tags.text = ?", tag)
		return db.Where("id IN (?)", tagged)
	}
	return paginate[models.Question](ctx, s.db, req, scope, orderTrending, questionPreloads...)
}

// Question loads a question with its author, tags and correct answer.
func (s *Service) Question(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	query := s.db.WithContext(ctx)
	for _, p := range questionPreloads {
		query = query.Preload(p)
	}
	if err := query.Take(&question, id).Error; err != nil {
		return nil, notFound(err, "question")
	}
	return &question, nil
}

// Answers lists the answers of a question, best rated first.
func (s *Service) Answers(ctx context.Context, questionID uint, req PageRequest) (Page[models.Answer], error) {
	var exists int64
	if err := s.db.WithContext(ctx).Model(&models.Question{}).Where("id = ?", questionID).Count(&exists).Error; err != nil {
		return Page[models.Answer]{}, apperrors.Internal("failed to load question", err)
	}
	if exists == 0 {
		return Page[models.Answer]{}, apperrors.NotFound("question not found")
	}

	scope := func(db *gorm.DB) *gorm.DB {
		return db.Where("question_id = ?", questionID)
	}
	return paginate[models.Answer](ctx, s.db, req, scope, "rating DESC, created_at DESC, id DESC", "Author")
}

// escapeLike escapes the LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
