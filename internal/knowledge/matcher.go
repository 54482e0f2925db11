package knowledge

import (
	"fmt"
	"strings"
)

// Matcher strategy names accepted by NewMatcher.
const (
	StrategyExact = "exact"
	StrategyBM25  = "bm25"
)

// Matcher ranks stored records against a query tag.
//
// Implementations must be deterministic for a fixed input and keep the input
// (insertion) order between records of equal relevance. Records the matcher
// considers irrelevant are omitted. The returned slice holds at most topN
// records and is never nil.
type Matcher interface {
	// Name identifies the strategy in logs, spans and metrics.
	Name() string

	// Match returns the relevant records, most relevant first.
	Match(query string, records []Record, topN int) []Record
}

// MatcherConfig selects and parameterizes a Matcher.
type MatcherConfig struct {
	// Strategy is "exact" or "bm25" (default: bm25)
	Strategy string

	// BM25 parameters, used when Strategy is bm25.
	BM25 BM25Config
}

// NewMatcher builds the Matcher named by cfg.Strategy.
func NewMatcher(cfg MatcherConfig) (Matcher, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Strategy)) {
	case StrategyExact:
		return ExactMatcher{}, nil
	case "", StrategyBM25:
		if err := cfg.BM25.Validate(); err != nil {
			return nil, err
		}
		return NewRankedLexicalMatcher(cfg.BM25), nil
	default:
		return nil, fmt.Errorf("%w: unknown matcher strategy %q", ErrInvalidConfig, cfg.Strategy)
	}
}

// ExactMatcher matches records whose tag equals the query byte for byte.
type ExactMatcher struct{}

// Name implements Matcher.
func (ExactMatcher) Name() string { return StrategyExact }

// Match implements Matcher.
func (ExactMatcher) Match(query string, records []Record, topN int) []Record {
	out := make([]Record, 0)
	if topN < 1 {
		return out
	}
	for _, r := range records {
		if r.Tag != query {
			continue
		}
		out = append(out, r)
		if len(out) == topN {
			break
		}
	}
	return out
}
