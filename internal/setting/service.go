// AngelaMos | 2026
// service.go

package setting

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/carterperez-dev/storefront/internal/core"
)

// Cache is the read-through layer in front of the settings table.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

type Service struct {
	repo   Repository
	cache  Cache
	logger *slog.Logger
}

// NewService builds the settings service. cache may be nil, in which case
// every read goes to the database.
func NewService(repo Repository, cache Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

func (s *Service) Get(ctx context.Context, key string) (*Setting, error) {
	if s.cache != nil {
		var cached Setting
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, core.ErrNotFound) {
			s.logger.WarnContext(ctx, "settings cache read failed",
				"key", key,
				"error", err,
			)
		}
	}

	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	s.remember(ctx, setting)
	return setting, nil
}

func (s *Service) List(ctx context.Context) ([]Setting, error) {
	return s.repo.List(ctx)
}

// Put creates the key or replaces its value.
func (s *Service) Put(ctx context.Context, key, value string) (*Setting, error) {
	setting := &Setting{
		ID:    uuid.New().String(),
		Key:   key,
		Value: value,
	}

	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, err
	}

	s.remember(ctx, setting)
	return setting, nil
}

func (s *Service) Delete(ctx context.Context, key string) error {
	if err := s.repo.Delete(ctx, key); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "settings cache invalidation failed",
				"key", key,
				"error", err,
			)
		}
	}

	return nil
}

func (s *Service) remember(ctx context.Context, setting *Setting) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Set(ctx, setting.Key, setting); err != nil {
		s.logger.WarnContext(ctx, "settings cache write failed",
			"key", setting.Key,
			"error", err,
		)
	}
}
