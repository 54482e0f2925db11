package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "Rust Memory-Safety", want: []string{"rust", "memory", "safety"}},
		{in: "  go,  concurrency!! ", want: []string{"go", "concurrency"}},
		{in: "HTTP/2 über", want: []string{"http", "2", "über"}},
		{in: "---", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := tokenize(tt.in)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUniqueTokens(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, uniqueTokens([]string{"a", "b", "a", "c", "b"}))
}

func TestRankedLexicalMatcher_RanksOverlappingRecords(t *testing.T) {
	m := NewRankedLexicalMatcher(DefaultBM25Config())
	in := []Record{
		{ID: 1, Tag: "rust memory safety", Contents: "first"},
		{ID: 2, Tag: "go concurrency", Contents: "second"},
		{ID: 3, Tag: "rust ownership", Contents: "third"},
	}

	got := m.Match("rust", in, 2)
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []string{"first", "third"}, contentsOf(got))

	// The shorter document scores higher for the same term frequency.
	assert.Equal(t, "third", got[0].Contents)

	// Zero-overlap records are excluded even when topN leaves room.
	all := m.Match("rust", in, 10)
	assert.Len(t, all, 2)
	assert.NotContains(t, contentsOf(all), "second")
}

func TestRankedLexicalMatcher_TieBreakKeepsInsertionOrder(t *testing.T) {
	m := NewRankedLexicalMatcher(DefaultBM25Config())
	in := []Record{
		{ID: 1, Tag: "alpha", Contents: "a"},
		{ID: 2, Tag: "alpha", Contents: "b"},
		{ID: 3, Tag: "alpha", Contents: "c"},
	}

	got := m.Match("alpha", in, 3)
	assert.Equal(t, []string{"a", "b", "c"}, contentsOf(got))
}

func TestRankedLexicalMatcher_CaseInsensitive(t *testing.T) {
	m := NewRankedLexicalMatcher(DefaultBM25Config())
	in := []Record{{ID: 1, Tag: "Kubernetes Helm", Contents: "charts"}}

	got := m.Match("KUBERNETES", in, 1)
	assert.Equal(t, []string{"charts"}, contentsOf(got))
}

func TestRankedLexicalMatcher_Contents(t *testing.T) {
	in := []Record{
		{ID: 1, Tag: "db", Contents: "postgres vacuum tuning"},
		{ID: 2, Tag: "cache", Contents: "redis eviction"},
	}

	withContents := NewRankedLexicalMatcher(DefaultBM25Config())
	assert.Equal(t, []string{"postgres vacuum tuning"}, contentsOf(withContents.Match("vacuum", in, 5)))

	cfg := DefaultBM25Config()
	cfg.IncludeContents = false
	tagOnly := NewRankedLexicalMatcher(cfg)
	assert.Empty(t, tagOnly.Match("vacuum", in, 5))
	assert.Equal(t, []string{"redis eviction"}, contentsOf(tagOnly.Match("cache", in, 5)))
}

func TestRankedLexicalMatcher_TagBoostPrefersTagHits(t *testing.T) {
	in := []Record{
		{ID: 1, Tag: "notes", Contents: "deploy"},
		{ID: 2, Tag: "deploy", Contents: "notes"},
	}

	cfg := DefaultBM25Config()
	cfg.TagBoost = 3
	got := NewRankedLexicalMatcher(cfg).Match("deploy", in, 2)
	require.Len(t, got, 2)
	assert.Equal(t, RecordID(2), got[0].ID)
}

func TestRankedLexicalMatcher_RarerTermsWeighMore(t *testing.T) {
	m := NewRankedLexicalMatcher(DefaultBM25Config())
	in := []Record{
		{ID: 1, Tag: "common", Contents: ""},
		{ID: 2, Tag: "common", Contents: ""},
		{ID: 3, Tag: "common", Contents: ""},
		{ID: 4, Tag: "rare", Contents: ""},
	}

	got := m.Match("common rare", in, 4)
	require.Len(t, got, 4)
	assert.Equal(t, RecordID(4), got[0].ID)
}

func TestRankedLexicalMatcher_EmptyInputs(t *testing.T) {
	m := NewRankedLexicalMatcher(DefaultBM25Config())

	assert.NotNil(t, m.Match("x", nil, 5))
	assert.Empty(t, m.Match("", records("a", "b"), 5))
	assert.Empty(t, m.Match("!!", records("a", "b"), 5))
	assert.Empty(t, m.Match("a", records("a"), 0))
}

func TestRankedLexicalMatcher_Deterministic(t *testing.T) {
	m := NewRankedLexicalMatcher(DefaultBM25Config())
	in := []Record{
		{ID: 1, Tag: "go testing table", Contents: "t.Run"},
		{ID: 2, Tag: "go testing", Contents: "testify"},
		{ID: 3, Tag: "testing fuzz", Contents: "go fuzz"},
	}

	first := m.Match("go testing", in, 3)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, m.Match("go testing", in, 3))
	}
}

func TestBM25Config_Validate(t *testing.T) {
	assert.NoError(t, DefaultBM25Config().Validate())
	assert.ErrorIs(t, BM25Config{K1: -1, B: 0.5}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, BM25Config{K1: 1, B: -0.1}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, BM25Config{K1: 1, B: 0.5, TagBoost: -1}.Validate(), ErrInvalidConfig)
}
