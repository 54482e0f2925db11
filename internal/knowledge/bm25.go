package knowledge

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BM25Config holds ranking parameters for RankedLexicalMatcher.
type BM25Config struct {
	// K1 controls term frequency saturation (default: 1.2)
	K1 float64

	// B controls document length normalization, 0..1 (default: 0.75)
	B float64

	// TagBoost weights tag tokens relative to contents tokens (default: 1)
	TagBoost float64

	// IncludeContents adds contents tokens to each record's document.
	IncludeContents bool
}

// DefaultBM25Config returns the standard BM25 parameters.
func DefaultBM25Config() BM25Config {
	return BM25Config{
		K1:              1.2,
		B:               0.75,
		TagBoost:        1,
		IncludeContents: true,
	}
}

// Validate checks parameter ranges.
func (c BM25Config) Validate() error {
	if c.K1 < 0 {
		return fmt.Errorf("%w: bm25 k1 must be >= 0, got %v", ErrInvalidConfig, c.K1)
	}
	if c.B < 0 || c.B > 1 {
		return fmt.Errorf("%w: bm25 b must be between 0 and 1, got %v", ErrInvalidConfig, c.B)
	}
	if c.TagBoost < 0 {
		return fmt.Errorf("%w: bm25 tag boost must be >= 0, got %v", ErrInvalidConfig, c.TagBoost)
	}
	return nil
}

// RankedLexicalMatcher scores records with BM25 over lowercase word tokens.
// Records sharing no token with the query are excluded.
type RankedLexicalMatcher struct {
	cfg BM25Config
}

// NewRankedLexicalMatcher creates a BM25 matcher. A zero TagBoost is treated as 1.
func NewRankedLexicalMatcher(cfg BM25Config) *RankedLexicalMatcher {
	if cfg.TagBoost == 0 {
		cfg.TagBoost = 1
	}
	return &RankedLexicalMatcher{cfg: cfg}
}

// Name implements Matcher.
func (m *RankedLexicalMatcher) Name() string { return StrategyBM25 }

// bm25Doc is the per-record view needed for scoring: weighted frequencies of
// the query terms only, plus the weighted length of the whole document.
type bm25Doc struct {
	tf     map[string]float64
	length float64
}

type scoredRecord struct {
	record Record
	score  float64
}

// Match implements Matcher.
func (m *RankedLexicalMatcher) Match(query string, records []Record, topN int) []Record {
	out := make([]Record, 0)
	if topN < 1 || len(records) == 0 {
		return out
	}

	terms := uniqueTokens(tokenize(query))
	if len(terms) == 0 {
		return out
	}
	termSet := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		termSet[t] = struct{}{}
	}

	docs := make([]bm25Doc, len(records))
	docFreq := make(map[string]int, len(terms))
	var totalLen float64
	for i, r := range records {
		docs[i] = m.document(r, termSet)
		totalLen += docs[i].length
		for t := range docs[i].tf {
			docFreq[t]++
		}
	}

	n := float64(len(records))
	avgLen := totalLen / n
	if avgLen == 0 {
		avgLen = 1
	}

	idf := make(map[string]float64, len(docFreq))
	for t, df := range docFreq {
		idf[t] = math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))
	}

	k1, b := m.cfg.K1, m.cfg.B
	scored := make([]scoredRecord, 0, len(records))
	for i, doc := range docs {
		var score float64
		for _, t := range terms {
			tf := doc.tf[t]
			if tf == 0 {
				continue
			}
			norm := tf + k1*(1-b+b*doc.length/avgLen)
			score += idf[t] * tf * (k1 + 1) / norm
		}
		if score > 0 {
			scored = append(scored, scoredRecord{record: records[i], score: score})
		}
	}

	// Stable sort keeps insertion order among equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	limit := topN
	if len(scored) < limit {
		limit = len(scored)
	}
	for i := 0; i < limit; i++ {
		out = append(out, scored[i].record)
	}
	return out
}

func (m *RankedLexicalMatcher) document(r Record, terms map[string]struct{}) bm25Doc {
	doc := bm25Doc{tf: make(map[string]float64)}

	tagTokens := tokenize(r.Tag)
	doc.length += m.cfg.TagBoost * float64(len(tagTokens))
	for _, tok := range tagTokens {
		if _, ok := terms[tok]; ok {
			doc.tf[tok] += m.cfg.TagBoost
		}
	}

	if m.cfg.IncludeContents {
		contentTokens := tokenize(r.Contents)
		doc.length += float64(len(contentTokens))
		for _, tok := range contentTokens {
			if _, ok := terms[tok]; ok {
				doc.tf[tok]++
			}
		}
	}
	return doc
}

// tokenize lower-cases s and splits it on anything that is not a letter or digit.
func tokenize(s string) []string {
	if s == "" {
		return nil
	}
	// cases.Caser is stateful, so one is created per call.
	lower := cases.Lower(language.Und).String(s)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// uniqueTokens drops repeats while keeping first-seen order.
func uniqueTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
