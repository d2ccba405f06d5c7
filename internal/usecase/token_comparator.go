package usecase

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Token comparison scores
const (
	identicalSimilarity = 1.0
	subsetSimilarity    = 0.95 // One name's tokens are all contained in the other's
	maxTokenCountDiff   = 2
)

// DefaultDescriptorGroups lists mutually exclusive product descriptors. Two names that
// each use a term from the same group, but share none, describe different variants.
var DefaultDescriptorGroups = [][]string{
	{"regional", "social", "global", "local", "national", "international"},
	{"content", "subscription", "creation", "management", "analytics", "reporting"},
	{"basic", "premium", "enterprise", "standard", "professional", "starter"},
	{"monthly", "yearly", "annual", "quarterly", "weekly"},
	{"small", "medium", "large", "xl", "enterprise"},
}

// TokenComparator scores how likely two product names refer to the same product
type TokenComparator struct {
	normalizer       *NameNormalizer
	descriptorGroups []map[string]bool
	logger           *zap.Logger
}

// NewTokenComparator creates a comparator. A nil descriptor list selects DefaultDescriptorGroups.
func NewTokenComparator(normalizer *NameNormalizer, descriptorGroups [][]string, logger *zap.Logger) *TokenComparator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if normalizer == nil {
		normalizer = NewNameNormalizer(nil, logger)
	}
	if descriptorGroups == nil {
		descriptorGroups = DefaultDescriptorGroups
	}

	groups := make([]map[string]bool, 0, len(descriptorGroups))
	for _, group := range descriptorGroups {
		set := make(map[string]bool, len(group))
		for _, term := range group {
			set[strings.ToLower(term)] = true
		}
		groups = append(groups, set)
	}

	return &TokenComparator{
		normalizer:       normalizer,
		descriptorGroups: groups,
		logger:           logger,
	}
}

// Normalize exposes the comparator's name normalization
func (c *TokenComparator) Normalize(name string) string {
	return c.normalizer.Normalize(name)
}

// Similarity normalizes both names and scores them in [0,1]
func (c *TokenComparator) Similarity(nameA, nameB string) float64 {
	return c.NormalizedSimilarity(c.normalizer.Normalize(nameA), c.normalizer.Normalize(nameB))
}

// NormalizedSimilarity scores two names that were already normalized
func (c *TokenComparator) NormalizedSimilarity(normalizedA, normalizedB string) float64 {
	if normalizedA == normalizedB {
		c.trace("exact match after normalization", normalizedA, normalizedB, identicalSimilarity)
		return identicalSimilarity
	}

	tokensA := sortedTokens(normalizedA)
	tokensB := sortedTokens(normalizedB)

	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0.0
	}

	if isSubset(tokensA, tokensB) || isSubset(tokensB, tokensA) {
		c.trace("token subset", normalizedA, normalizedB, subsetSimilarity)
		return subsetSimilarity
	}

	diff := len(tokensA) - len(tokensB)
	if diff < 0 {
		diff = -diff
	}
	if diff > maxTokenCountDiff {
		c.trace("token count difference too large", normalizedA, normalizedB, 0)
		return 0.0
	}

	total := 0.0
	for _, tokenA := range tokensA {
		best := 0.0
		for _, tokenB := range tokensB {
			best = max(best, JaroWinkler(tokenA, tokenB))
		}
		total += best
	}
	average := total / float64(len(tokensA))

	if c.hasConflictingDescriptors(tokensA, tokensB) {
		c.trace("conflicting descriptors", normalizedA, normalizedB, 0)
		return 0.0
	}

	c.trace("average token similarity", normalizedA, normalizedB, average)
	return average
}

// hasConflictingDescriptors reports whether both token lists use a descriptor from
// the same group without sharing any of them
func (c *TokenComparator) hasConflictingDescriptors(tokensA, tokensB []string) bool {
	for _, group := range c.descriptorGroups {
		foundA := make(map[string]bool)
		for _, token := range tokensA {
			if group[token] {
				foundA[token] = true
			}
		}
		if len(foundA) == 0 {
			continue
		}

		foundB := false
		shared := false
		for _, token := range tokensB {
			if !group[token] {
				continue
			}
			foundB = true
			if foundA[token] {
				shared = true
				break
			}
		}

		if foundB && !shared {
			return true
		}
	}
	return false
}

func (c *TokenComparator) trace(msg, a, b string, score float64) {
	if ce := c.logger.Check(zap.DebugLevel, msg); ce != nil {
		ce.Write(zap.String("a", a), zap.String("b", b), zap.Float64("similarity", score))
	}
}

// sortedTokens splits a normalized name on whitespace and sorts the tokens
func sortedTokens(s string) []string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return tokens
}

// isSubset reports whether every token of smaller appears in larger
func isSubset(smaller, larger []string) bool {
	set := make(map[string]bool, len(larger))
	for _, t := range larger {
		set[t] = true
	}
	for _, t := range smaller {
		if !set[t] {
			return false
		}
	}
	return true
}
