// Package forum holds the question and answer workflows: voting, best answer selection,
// listings and search.
package forum

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/inna-tuzhikova/hasker/internal/apperrors"
	"github.com/inna-tuzhikova/hasker/internal/cache"
	"github.com/inna-tuzhikova/hasker/internal/notify"
)

// Service runs every forum operation against the database.
// Writes touching a rating or the correct answer hold a row lock on the target for the whole transaction.
type Service struct {
	db       *gorm.DB
	logger   *zap.Logger
	clock    clockwork.Clock
	cache    cache.TrendingCache
	notifier notify.Notifier
	validate *validator.Validate
	trending singleflight.Group
}

type Option func(*Service)

func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) { s.clock = clock }
}

func WithCache(c cache.TrendingCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func NewService(db *gorm.DB, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		db:       db,
		logger:   logger.Named("forum"),
		clock:    clockwork.NewRealClock(),
		cache:    cache.Noop{},
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

func (s *Service) invalidateTrending(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Failed to invalidate trending cache", zap.Error(err))
	}
}

// notFound maps gorm.ErrRecordNotFound to a NotFound error and wraps everything else as internal.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(what + " not found")
	}
	return apperrors.Internal("failed to load "+what, err)
}

// validationError turns validator failures into a client facing message naming the first bad field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.Validation(err.Error())
	}
	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())

	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", field)
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		msg = fmt.Sprintf("%s is invalid", field)
	}
	return apperrors.Validation(msg).WithContext("field", field)
}
