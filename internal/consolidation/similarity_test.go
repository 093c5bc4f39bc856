// internal/consolidation/similarity_test.go
package consolidation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases",
			input: "Pricing Pressure",
			want:  "pricing pressure",
		},
		{
			name:  "collapses whitespace",
			input: "  pricing \t pressure  ",
			want:  "pricing pressure",
		},
		{
			name:  "empty",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.input))
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{
			name: "identical after normalization",
			a:    "Pricing  Pressure",
			b:    "pricing pressure",
			want: 1.0,
		},
		{
			name: "token order irrelevant",
			a:    "customer churn risk",
			b:    "churn risk customer",
			want: 1.0,
		},
		{
			name: "partial token overlap",
			a:    "pricing pressure from competitors",
			b:    "pricing pressure",
			want: 0.5,
		},
		{
			name: "no overlap",
			a:    "pricing pressure",
			b:    "training needs",
			want: 0.0,
		},
		{
			name: "single tokens use edit distance",
			a:    "burnout",
			b:    "burn-out",
			want: 0.875,
		},
		{
			name: "empty name",
			a:    "",
			b:    "pricing pressure",
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"pricing pressure", "pricing pressure from competitors"},
		{"burnout", "burn-out"},
		{"efficiency gains", "gains in efficiency"},
	}

	for _, pair := range pairs {
		assert.InDelta(t, Similarity(pair[0], pair[1]), Similarity(pair[1], pair[0]), 1e-9)
	}
}

func TestLevenshteinRatio(t *testing.T) {
	assert.InDelta(t, 1.0, LevenshteinRatio("same", "same"), 1e-9)
	assert.InDelta(t, 1.0-3.0/7.0, LevenshteinRatio("kitten", "sitting"), 1e-9)
	assert.InDelta(t, 0.0, LevenshteinRatio("", "abcd"), 1e-9)
}

func TestTokenSetJaccard(t *testing.T) {
	assert.InDelta(t, 1.0, TokenSetJaccard("a b", "b a"), 1e-9)
	assert.InDelta(t, 1.0/3.0, TokenSetJaccard("a b", "b c"), 1e-9)
	assert.InDelta(t, 0.0, TokenSetJaccard("a b", "c d"), 1e-9)
}

// Similarity runs once per accepted candidate for every incoming one, so
// consolidation cost is dominated by this function.
func BenchmarkSimilarity(b *testing.B) {
	pairs := [][2]string{
		{"remote work flexibility", "flexibility of remote work"},
		{"burnout", "burn-out"},
		{"asynchronous communication habits", "communication habits"},
		{"pricing pressure from competitors", "onboarding friction"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pair := pairs[i%len(pairs)]
		Similarity(pair[0], pair[1])
	}
}
