package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	assert.Equal(t, 100, Ratio("SUKSES MAKMUR", "SUKSES MAKMUR"))
	assert.Equal(t, 0, Ratio("", ""))
	assert.Equal(t, 0, Ratio("ABC", ""))
	// one dropped rune out of 25 total
	assert.Equal(t, 96, Ratio("SUKSES MAKMUR", "SUKSES MAKMR"))
	assert.Less(t, Ratio("SUKSES MAKMUR", "KANTOR PUSAT"), 70)
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("januari", "januari"), 1e-9)
	assert.Greater(t, Similarity("nopember", "november"), 0.8)
	assert.Less(t, Similarity("maret", "oktober"), 0.6)
}
