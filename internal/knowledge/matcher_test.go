package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(tags ...string) []Record {
	out := make([]Record, len(tags))
	for i, tag := range tags {
		out[i] = Record{ID: RecordID(i + 1), Tag: tag, Contents: "c" + string(rune('1'+i))}
	}
	return out
}

func contentsOf(rs []Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Contents
	}
	return out
}

func TestExactMatcher_Match(t *testing.T) {
	tests := []struct {
		name  string
		query string
		tags  []string
		topN  int
		want  []string
	}{
		{
			name:  "insertion order among matches",
			query: "x",
			tags:  []string{"x", "y", "x"},
			topN:  5,
			want:  []string{"c1", "c3"},
		},
		{
			name:  "limited to topN",
			query: "x",
			tags:  []string{"x", "x", "x"},
			topN:  2,
			want:  []string{"c1", "c2"},
		},
		{
			name:  "case sensitive",
			query: "X",
			tags:  []string{"x", "X"},
			topN:  5,
			want:  []string{"c2"},
		},
		{
			name:  "no substring matching",
			query: "go",
			tags:  []string{"golang", "go "},
			topN:  5,
			want:  []string{},
		},
		{
			name:  "empty tag matches empty query",
			query: "",
			tags:  []string{"", "a"},
			topN:  5,
			want:  []string{"c1"},
		},
		{
			name:  "no records",
			query: "x",
			tags:  nil,
			topN:  5,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExactMatcher{}.Match(tt.query, records(tt.tags...), tt.topN)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, contentsOf(got))
		})
	}
}

func TestExactMatcher_DoesNotMutateInput(t *testing.T) {
	in := records("x", "y", "x")
	before := copyRecords(in)

	_ = ExactMatcher{}.Match("x", in, 1)

	assert.Equal(t, before, in)
}

func TestNewMatcher(t *testing.T) {
	tests := []struct {
		name     string
		cfg      MatcherConfig
		wantName string
		wantErr  bool
	}{
		{name: "exact", cfg: MatcherConfig{Strategy: "exact"}, wantName: StrategyExact},
		{name: "bm25", cfg: MatcherConfig{Strategy: "bm25", BM25: DefaultBM25Config()}, wantName: StrategyBM25},
		{name: "default is bm25", cfg: MatcherConfig{BM25: DefaultBM25Config()}, wantName: StrategyBM25},
		{name: "case insensitive name", cfg: MatcherConfig{Strategy: " EXACT "}, wantName: StrategyExact},
		{name: "unknown", cfg: MatcherConfig{Strategy: "vector"}, wantErr: true},
		{name: "invalid bm25 b", cfg: MatcherConfig{Strategy: "bm25", BM25: BM25Config{K1: 1.2, B: 2}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, m.Name())
		})
	}
}
