// Package app assembles the grouping stack from configuration. The server and
// the groupctl CLI share it so both apply the same defaults.
package app

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/dealdesk/backend/config"
	"github.com/dealdesk/backend/internal/domain"
	"github.com/dealdesk/backend/internal/usecase"
)

// NewComparator builds the token comparator described by the grouping config.
// An empty prefix pattern list keeps the built-in patterns.
func NewComparator(cfg config.GroupingConfig, logger *zap.Logger) (*usecase.TokenComparator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var patterns []*regexp.Regexp
	if len(cfg.PrefixPatterns) > 0 {
		compiled, err := usecase.CompilePrefixPatterns(cfg.PrefixPatterns)
		if err != nil {
			return nil, err
		}
		patterns = compiled
	}

	// Comparison tracing is debug level; keep it quiet unless asked for
	traceLogger := zap.NewNop()
	if cfg.DebugLogging {
		traceLogger = logger.Named("grouping")
	}

	normalizer := usecase.NewNameNormalizer(patterns, traceLogger)
	return usecase.NewTokenComparator(normalizer, nil, traceLogger), nil
}

// NewGroupingService wires a grouping service from configuration. cache and deals may be nil.
func NewGroupingService(
	cfg *config.Config,
	cache domain.CacheRepository,
	deals domain.DealSource,
	logger *zap.Logger,
) (*usecase.GroupingService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	mode := domain.GroupingMode(cfg.Grouping.Mode)
	emptyNames := domain.EmptyNamePolicy(cfg.Grouping.EmptyNames)

	comparator, err := NewComparator(cfg.Grouping, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build comparator: %w", err)
	}

	service := usecase.NewGroupingService(
		comparator,
		cache,
		deals,
		usecase.GroupingServiceConfig{
			CacheTTL:         cfg.Cache.TTL,
			DefaultThreshold: cfg.Grouping.Threshold,
			Mode:             mode,
			EmptyNames:       emptyNames,
		},
		logger,
	)

	if _, err := service.ResolveOptions(nil, mode, emptyNames); err != nil {
		return nil, err
	}
	return service, nil
}
