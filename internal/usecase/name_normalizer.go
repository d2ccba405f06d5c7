package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// DefaultPrefixPatterns are the vendor/source prefixes stripped from product names,
// in priority order. At most one of them is removed per name.
var DefaultPrefixPatterns = []string{
	`(?i)^G2\s+Content:\s*`,
	`(?i)^Microsoft:?\s*`,
	`(?i)^Adobe:?\s*`,
	`(?i)^Salesforce:?\s*`,
	`(?i)^Oracle:?\s*`,
	`(?i)^SAP:?\s*`,
	`(?i)^IBM:?\s*`,
	`(?i)^Amazon:?\s*`,
	`(?i)^Google:?\s*`,
	`(?i)^Apple:?\s*`,
	// "Company Name: "
	`^[A-Z][a-z]+\s+[A-Z][a-z]+:\s*`,
	// Single company name at start
	`^[A-Z][a-z]+\s*`,
}

// Compiled regex patterns for name cleanup
var (
	nonWordRegex    = regexp.MustCompile(`[^\w\s]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// CompilePrefixPatterns compiles prefix expressions, keeping their order
func CompilePrefixPatterns(exprs []string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid prefix pattern %q: %w", expr, err)
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}

// NameNormalizer strips source prefixes and punctuation noise from product names
type NameNormalizer struct {
	prefixPatterns []*regexp.Regexp
	logger         *zap.Logger
}

// NewNameNormalizer creates a normalizer. A nil pattern list selects DefaultPrefixPatterns.
func NewNameNormalizer(prefixPatterns []*regexp.Regexp, logger *zap.Logger) *NameNormalizer {
	if prefixPatterns == nil {
		prefixPatterns = mustCompileDefaults()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &NameNormalizer{
		prefixPatterns: prefixPatterns,
		logger:         logger,
	}
}

func mustCompileDefaults() []*regexp.Regexp {
	patterns, err := CompilePrefixPatterns(DefaultPrefixPatterns)
	if err != nil {
		panic(err)
	}
	return patterns
}

// Normalize returns the comparable form of a product name: one leading prefix
// removed, lowercased, punctuation replaced by spaces and whitespace collapsed.
func (n *NameNormalizer) Normalize(name string) string {
	normalized := strings.TrimSpace(norm.NFC.String(name))

	// Only a match at the start of the name counts as a prefix, anchored or not
	for _, prefix := range n.prefixPatterns {
		loc := prefix.FindStringIndex(normalized)
		if loc != nil && loc[0] == 0 && loc[1] > 0 {
			normalized = strings.TrimSpace(normalized[loc[1]:])
			break
		}
	}

	normalized = strings.ToLower(normalized)
	normalized = nonWordRegex.ReplaceAllString(normalized, " ")
	normalized = whitespaceRegex.ReplaceAllString(normalized, " ")
	normalized = strings.TrimSpace(normalized)

	if ce := n.logger.Check(zap.DebugLevel, "normalized product name"); ce != nil {
		ce.Write(zap.String("original", name), zap.String("normalized", normalized))
	}

	return normalized
}
