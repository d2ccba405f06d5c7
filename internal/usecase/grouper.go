package usecase

import (
	"strings"

	"go.uber.org/zap"

	"github.com/dealdesk/backend/internal/domain"
)

// Grouper partitions product line items into groups of the same underlying product
type Grouper struct {
	comparator *TokenComparator
	logger     *zap.Logger
}

// NewGrouper creates a grouper around a token comparator
func NewGrouper(comparator *TokenComparator, logger *zap.Logger) *Grouper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if comparator == nil {
		comparator = NewTokenComparator(nil, nil, logger)
	}

	return &Grouper{
		comparator: comparator,
		logger:     logger,
	}
}

// Group clusters products greedily in input order. Each unassigned product opens a
// group and pulls in every later unassigned product scoring at least opts.Threshold.
// Every product lands in exactly one group; groups keep the order they were opened
// and members keep the order they were added. The threshold is not validated.
func (g *Grouper) Group(products []domain.Product, opts domain.GroupOptions) [][]domain.Product {
	groups := make([][]domain.Product, 0)
	if len(products) == 0 {
		return groups
	}

	names := make([]string, len(products))
	normalized := make([]string, len(products))
	unnamed := make([]bool, len(products))
	for i, p := range products {
		names[i] = p.Name()
		normalized[i] = g.comparator.Normalize(names[i])
		// A name the prefix rules consume entirely ("Microsoft") counts as unnamed too
		unnamed[i] = opts.EmptyNames != domain.EmptyNamesMerge &&
			(strings.TrimSpace(names[i]) == "" || normalized[i] == "")
	}

	used := make([]bool, len(products))
	for i := range products {
		if used[i] {
			continue
		}
		used[i] = true
		members := []int{i}

		if !unnamed[i] {
			for {
				added := false
				for j := range products {
					if used[j] || unnamed[j] {
						continue
					}
					if g.joins(members, j, normalized, opts) {
						used[j] = true
						members = append(members, j)
						added = true
					}
				}
				// A seed-only scan never changes its outcome on a second pass
				if opts.Mode != domain.ModeTransitive || !added {
					break
				}
			}
		}

		group := make([]domain.Product, len(members))
		for k, idx := range members {
			group[k] = products[idx]
		}
		groups = append(groups, group)

		if ce := g.logger.Check(zap.DebugLevel, "group completed"); ce != nil {
			ce.Write(zap.String("seed", names[i]), zap.Int("size", len(group)))
		}
	}

	g.logger.Debug("grouping finished",
		zap.Int("products", len(products)),
		zap.Int("groups", len(groups)),
		zap.Float64("threshold", opts.Threshold),
		zap.String("mode", string(opts.Mode)))

	return groups
}

// joins reports whether candidate belongs with the current members. Seed mode only
// looks at the first member.
func (g *Grouper) joins(members []int, candidate int, normalized []string, opts domain.GroupOptions) bool {
	compareWith := members[:1]
	if opts.Mode == domain.ModeTransitive {
		compareWith = members
	}

	for _, m := range compareWith {
		similarity := g.comparator.NormalizedSimilarity(normalized[m], normalized[candidate])
		if similarity >= opts.Threshold {
			return true
		}
	}
	return false
}
