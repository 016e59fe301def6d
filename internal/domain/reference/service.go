package reference

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

var valuePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,47}$`)

// Service serves reference tables and validates enumerated fields against
// them. Lookups are cached; the tables change rarely and every write
// validates at least one field.
type Service struct {
	repo   Repository
	cache  *cache.Cache
	logger *slog.Logger
}

// NewService creates a new reference service.
func NewService(repo Repository, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		repo:   repo,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// List returns the values of category ordered for display.
func (s *Service) List(ctx context.Context, category Category) ([]Value, error) {
	if cached, ok := s.cache.Get(string(category)); ok {
		return cached.([]Value), nil
	}
	values, err := s.repo.List(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("listing %s values: %w", category, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	s.cache.SetDefault(string(category), values)
	return values, nil
}

// Categories returns every category that has values.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return s.repo.Categories(ctx)
}

// Validate reports whether value is allowed in category.
func (s *Service) Validate(ctx context.Context, category Category, value string) error {
	values, err := s.List(ctx, category)
	if err != nil {
		return err
	}
	allowed := make([]string, 0, len(values))
	for _, v := range values {
		if v.Value == value {
			return nil
		}
		allowed = append(allowed, v.Value)
	}
	return fmt.Errorf("%w: %s %q is not one of %s", ErrInvalidInput, category, value, strings.Join(allowed, ", "))
}

// Add inserts a new value and drops the cached category.
func (s *Service) Add(ctx context.Context, v Value) (*Value, error) {
	v.Value = strings.TrimSpace(v.Value)
	v.Label = strings.TrimSpace(v.Label)
	if !valuePattern.MatchString(string(v.Category)) {
		return nil, fmt.Errorf("%w: category %q must be snake_case", ErrInvalidInput, v.Category)
	}
	if !valuePattern.MatchString(v.Value) {
		return nil, fmt.Errorf("%w: value %q must be snake_case", ErrInvalidInput, v.Value)
	}
	if v.Label == "" {
		v.Label = v.Value
	}
	if err := s.repo.Add(ctx, &v); err != nil {
		return nil, fmt.Errorf("adding %s value: %w", v.Category, err)
	}
	s.cache.Delete(string(v.Category))
	if s.logger != nil {
		s.logger.Info("reference value added", "category", v.Category, "value", v.Value)
	}
	return &v, nil
}
