package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dealdesk/backend/config"
	"github.com/dealdesk/backend/internal/domain"
)

func testConfig() *config.Config {
	return &config.Config{
		Grouping: config.GroupingConfig{
			Threshold:  0.9,
			Mode:       "transitive",
			EmptyNames: "merge",
		},
		Cache: config.CacheConfig{Type: "memory", TTL: time.Minute},
	}
}

func TestNewGroupingService(t *testing.T) {
	t.Run("applies configured defaults", func(t *testing.T) {
		service, err := NewGroupingService(testConfig(), nil, nil, nil)
		require.NoError(t, err)

		assert.Equal(t, domain.GroupOptions{
			Threshold:  0.9,
			Mode:       domain.ModeTransitive,
			EmptyNames: domain.EmptyNamesMerge,
		}, service.Defaults())
	})

	t.Run("uses configured prefix patterns", func(t *testing.T) {
		cfg := testConfig()
		cfg.Grouping.PrefixPatterns = []string{`(?i)^acme\s+`}

		service, err := NewGroupingService(cfg, nil, nil, nil)
		require.NoError(t, err)

		comparison, err := service.Compare("Acme Widget", "Regional Widget", nil)
		require.NoError(t, err)
		assert.Equal(t, "widget", comparison.NormalizedA)
		assert.Equal(t, "regional widget", comparison.NormalizedB)
	})

	t.Run("rejects invalid prefix pattern", func(t *testing.T) {
		cfg := testConfig()
		cfg.Grouping.PrefixPatterns = []string{`^(unclosed`}

		_, err := NewGroupingService(cfg, nil, nil, nil)
		assert.Error(t, err)
	})

	t.Run("rejects unknown mode", func(t *testing.T) {
		cfg := testConfig()
		cfg.Grouping.Mode = "chained"

		_, err := NewGroupingService(cfg, nil, nil, nil)
		assert.True(t, errors.Is(err, domain.ErrInvalidRequest))
	})
}

func TestNewComparator_DebugLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	quiet, err := NewComparator(config.GroupingConfig{}, logger)
	require.NoError(t, err)
	quiet.Similarity("Regional Content Subscription", "G2 Content: Regional Content Subscription")
	assert.Zero(t, logs.Len())

	verbose, err := NewComparator(config.GroupingConfig{DebugLogging: true}, logger)
	require.NoError(t, err)
	verbose.Similarity("Regional Content Subscription", "G2 Content: Regional Content Subscription")
	assert.NotZero(t, logs.FilterMessage("token subset").Len())
}

func TestNewGroupingService_GroupsWithDefaults(t *testing.T) {
	service, err := NewGroupingService(testConfig(), nil, nil, nil)
	require.NoError(t, err)

	result, err := service.GroupProducts(context.Background(), &domain.GroupRequest{
		Products: []domain.Product{
			{LineItemID: "a"},
			{LineItemID: "b"},
		},
	})
	require.NoError(t, err)

	// Merge policy from config puts unnamed items together
	assert.Equal(t, 1, result.GroupCount)
}
