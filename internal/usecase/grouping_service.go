package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dealdesk/backend/internal/domain"
)

// GroupingServiceConfig holds configuration for the grouping service
type GroupingServiceConfig struct {
	CacheTTL         time.Duration
	DefaultThreshold float64
	Mode             domain.GroupingMode
	EmptyNames       domain.EmptyNamePolicy
}

// GroupingService groups deal line items and serves review operations on the groups
type GroupingService struct {
	comparator *TokenComparator
	grouper    *Grouper
	cache      domain.CacheRepository
	deals      domain.DealSource
	cacheTTL   time.Duration
	defaults   domain.GroupOptions
	logger     *zap.Logger
}

// NewGroupingService creates a grouping service. cache and deals may be nil.
func NewGroupingService(
	comparator *TokenComparator,
	cache domain.CacheRepository,
	deals domain.DealSource,
	config GroupingServiceConfig,
	logger *zap.Logger,
) *GroupingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if comparator == nil {
		comparator = NewTokenComparator(nil, nil, logger)
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	defaults := domain.GroupOptions{
		Threshold:  config.DefaultThreshold,
		Mode:       config.Mode,
		EmptyNames: config.EmptyNames,
	}
	if defaults.Threshold <= 0 || defaults.Threshold > 1 {
		defaults.Threshold = domain.DefaultThreshold
	}
	if defaults.Mode == "" {
		defaults.Mode = domain.ModeSeed
	}
	if defaults.EmptyNames == "" {
		defaults.EmptyNames = domain.EmptyNamesIsolate
	}

	return &GroupingService{
		comparator: comparator,
		grouper:    NewGrouper(comparator, logger),
		cache:      cache,
		deals:      deals,
		cacheTTL:   cacheTTL,
		defaults:   defaults,
		logger:     logger,
	}
}

// Defaults returns the options used when a request leaves them unset
func (s *GroupingService) Defaults() domain.GroupOptions {
	return s.defaults
}

// ResolveOptions fills unset options from the service defaults and validates them
func (s *GroupingService) ResolveOptions(
	threshold *float64,
	mode domain.GroupingMode,
	emptyNames domain.EmptyNamePolicy,
) (domain.GroupOptions, error) {
	opts := s.defaults

	if threshold != nil {
		if *threshold < 0 || *threshold > 1 {
			return opts, fmt.Errorf("%w: got %v", domain.ErrInvalidThreshold, *threshold)
		}
		opts.Threshold = *threshold
	}

	switch mode {
	case "":
	case domain.ModeSeed, domain.ModeTransitive:
		opts.Mode = mode
	default:
		return opts, fmt.Errorf("%w: unknown grouping mode %q", domain.ErrInvalidRequest, mode)
	}

	switch emptyNames {
	case "":
	case domain.EmptyNamesIsolate, domain.EmptyNamesMerge:
		opts.EmptyNames = emptyNames
	default:
		return opts, fmt.Errorf("%w: unknown empty name policy %q", domain.ErrInvalidRequest, emptyNames)
	}

	return opts, nil
}

// GroupProducts groups the request's products.
// Flow: resolve options -> check cache -> group -> cache -> filter -> return
func (s *GroupingService) GroupProducts(ctx context.Context, request *domain.GroupRequest) (*domain.GroupResult, error) {
	if request == nil {
		return nil, domain.ErrInvalidRequest
	}

	opts, err := s.ResolveOptions(request.Threshold, request.Mode, request.EmptyNames)
	if err != nil {
		return nil, err
	}

	result, err := s.group(ctx, request.Products, opts)
	if err != nil {
		return nil, err
	}

	result.Groups = FilterGroups(result.Groups, request.Query)
	result.GroupCount = len(result.Groups)
	return result, nil
}

// GroupDeal fetches a deal's line items from the deal source and groups them
func (s *GroupingService) GroupDeal(ctx context.Context, dealID string, opts domain.GroupOptions, query string) (*domain.GroupResult, error) {
	if strings.TrimSpace(dealID) == "" {
		return nil, domain.ErrInvalidRequest
	}
	if s.deals == nil {
		return nil, domain.ErrDealSourceUnavailable
	}

	products, err := s.deals.ListLineItems(ctx, dealID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("fetched deal line items",
		zap.String("deal_id", dealID),
		zap.Int("line_items", len(products)))

	result, err := s.group(ctx, products, opts)
	if err != nil {
		return nil, err
	}

	result.Groups = FilterGroups(result.Groups, query)
	result.GroupCount = len(result.Groups)
	return result, nil
}

func (s *GroupingService) group(ctx context.Context, products []domain.Product, opts domain.GroupOptions) (*domain.GroupResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cacheKey, keyErr := s.generateCacheKey(products, opts)
	if keyErr == nil {
		if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
			return &domain.GroupResult{
				Groups:       cached,
				ProductCount: len(products),
				GroupCount:   len(cached),
				Options:      opts,
				Source:       "Cache",
			}, nil
		}
	}

	clusters := s.grouper.Group(products, opts)
	groups := make([]domain.ProductGroup, len(clusters))
	for i, members := range clusters {
		groups[i] = domain.ProductGroup{
			Index:    i,
			Label:    domain.GroupLabel(i, members),
			Products: members,
		}
	}

	if keyErr == nil {
		if err := s.setInCache(ctx, cacheKey, groups); err != nil {
			s.logger.Warn("failed to cache product groups", zap.Error(err))
		}
	}

	return &domain.GroupResult{
		Groups:       groups,
		ProductCount: len(products),
		GroupCount:   len(groups),
		Options:      opts,
		Source:       "Computed",
	}, nil
}

// Compare explains how two product names score against each other
func (s *GroupingService) Compare(a, b string, threshold *float64) (*domain.Comparison, error) {
	opts, err := s.ResolveOptions(threshold, "", "")
	if err != nil {
		return nil, err
	}

	normalizedA := s.comparator.Normalize(a)
	normalizedB := s.comparator.Normalize(b)
	similarity := s.comparator.NormalizedSimilarity(normalizedA, normalizedB)

	return &domain.Comparison{
		A:           a,
		B:           b,
		NormalizedA: normalizedA,
		NormalizedB: normalizedB,
		Similarity:  similarity,
		Threshold:   opts.Threshold,
		WouldGroup:  similarity >= opts.Threshold,
	}, nil
}

// Normalize returns name as the grouper compares it
func (s *GroupingService) Normalize(name string) string {
	return s.comparator.Normalize(name)
}

// FilterGroups keeps the products matching query (case-insensitive) and drops groups
// left empty. Indices and labels of surviving groups are unchanged.
func FilterGroups(groups []domain.ProductGroup, query string) []domain.ProductGroup {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return groups
	}

	filtered := make([]domain.ProductGroup, 0, len(groups))
	for _, group := range groups {
		var kept []domain.Product
		for _, p := range group.Products {
			if productMatchesQuery(p, query) {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			continue
		}
		group.Products = kept
		filtered = append(filtered, group)
	}
	return filtered
}

// productMatchesQuery checks the searchable fields of a product against a lowercase query
func productMatchesQuery(p domain.Product, query string) bool {
	candidates := []string{p.ProductName.CRMValue, p.ProductName.ExtractedValue}
	if p.YourProduct != nil {
		candidates = append(candidates, p.YourProduct.Value)
	}
	if p.Description != nil {
		candidates = append(candidates, p.Description.CRMValue, p.Description.ExtractedValue)
	}

	for _, c := range candidates {
		if c != "" && strings.Contains(strings.ToLower(c), query) {
			return true
		}
	}
	return false
}

// ConfirmSelection checks that every group has a chosen member and returns the
// chosen products in group order
func ConfirmSelection(groups []domain.ProductGroup, selection domain.Selection) (*domain.ConfirmedSelection, error) {
	if len(groups) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	chosen := make([]domain.Product, 0, len(groups))
	for _, group := range groups {
		lineItemID, ok := selection[group.Index]
		if !ok || lineItemID == "" {
			return nil, fmt.Errorf("%w: group %d (%s)", domain.ErrIncompleteSelection, group.Index, group.Label)
		}

		found := false
		for _, p := range group.Products {
			if p.LineItemID == lineItemID {
				chosen = append(chosen, p)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q in group %d", domain.ErrUnknownLineItem, lineItemID, group.Index)
		}
	}

	return &domain.ConfirmedSelection{Products: chosen}, nil
}

// generateCacheKey digests the products and options.
// Format: "groups:{sha256}"
func (s *GroupingService) generateCacheKey(products []domain.Product, opts domain.GroupOptions) (string, error) {
	payload, err := json.Marshal(struct {
		Products []domain.Product    `json:"p"`
		Options  domain.GroupOptions `json:"o"`
	}{products, opts})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return "groups:" + hex.EncodeToString(sum[:]), nil
}

// getFromCache retrieves product groups from cache
func (s *GroupingService) getFromCache(ctx context.Context, key string) ([]domain.ProductGroup, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if groups, ok := value.([]domain.ProductGroup); ok {
		return groups, nil
	}

	// The memory cache stores JSON-decoded values
	var groups []domain.ProductGroup
	raw, err := json.Marshal(value)
	if err == nil {
		err = json.Unmarshal(raw, &groups)
	}
	if err != nil {
		s.logger.Warn("evicting undecodable cache entry", zap.String("key", key), zap.Error(err))
		if delErr := s.cache.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to evict cache entry", zap.String("key", key), zap.Error(delErr))
		}
		return nil, domain.ErrCacheMiss
	}
	return groups, nil
}

// setInCache stores product groups in cache
func (s *GroupingService) setInCache(ctx context.Context, key string, groups []domain.ProductGroup) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, key, groups, s.cacheTTL)
}
