package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"rhythm-unlock-service/theme"
	"rhythm-unlock-service/unlock"
	"rhythm-unlock-service/utils"
)

// MetricsLoader fetches a fresh copy of the theme metrics.
type MetricsLoader func(ctx context.Context) (*theme.Metrics, error)

// FileMetricsLoader reads metrics from a local YAML file.
func FileMetricsLoader(path string) MetricsLoader {
	return func(context.Context) (*theme.Metrics, error) {
		return theme.LoadFile(path)
	}
}

// ObjectMetricsLoader reads metrics from a bucket object.
func ObjectMetricsLoader(f theme.ObjectFetcher, key string) MetricsLoader {
	return func(ctx context.Context) (*theme.Metrics, error) {
		return theme.LoadObject(ctx, f, key)
	}
}

// UnlockService owns the unlock registry and keeps it in step with the theme
// metrics and the catalog.
type UnlockService struct {
	Catalog   *CatalogService
	Profiles  *ProfileService
	GameState *GameState

	load     MetricsLoader
	metrics  *theme.Metrics
	registry *unlock.Registry
	enabled  atomic.Bool
	log      logrus.FieldLogger
}

func NewUnlockService(catalog *CatalogService, profiles *ProfileService, state *GameState, load MetricsLoader, log logrus.FieldLogger) *UnlockService {
	if log == nil {
		log = utils.Log
	}
	s := &UnlockService{
		Catalog:   catalog,
		Profiles:  profiles,
		GameState: state,
		load:      load,
		metrics:   theme.NewMetrics(),
		log:       log,
	}
	s.enabled.Store(true)
	s.registry = unlock.NewRegistry(unlock.Deps{
		Metrics:   s.metrics,
		Catalog:   catalog,
		Progress:  profiles,
		Grants:    profiles,
		Selection: state,
		Enabled:   s.Enabled,
		Log:       log,
	})
	return s
}

func (s *UnlockService) Registry() *unlock.Registry { return s.registry }

func (s *UnlockService) Enabled() bool { return s.enabled.Load() }

func (s *UnlockService) SetEnabled(on bool) {
	s.enabled.Store(on)
	s.log.Infof("[Unlock] unlock system enabled=%t", on)
}

// Reload fetches the theme metrics again and rebuilds every entry.
func (s *UnlockService) Reload(ctx context.Context) error {
	if s.load == nil {
		return fmt.Errorf("no metrics loader configured")
	}
	m, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("load theme metrics: %w", err)
	}
	s.metrics.Replace(m)
	if err := s.registry.Load(); err != nil {
		return err
	}
	s.log.Infof("[Unlock] ✅ loaded %d unlock entries", s.registry.NumUnlocks())
	return nil
}

// ResolveIfStale re-resolves entries when the catalog changed since the last
// resolve. It reports whether a resolve happened.
func (s *UnlockService) ResolveIfStale() bool {
	if !s.registry.Stale() {
		return false
	}
	s.registry.Resolve()
	s.log.Debug("[Unlock] re-resolved unlock entries after catalog change")
	return true
}
