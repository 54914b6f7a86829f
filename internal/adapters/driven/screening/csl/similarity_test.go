package csl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("Viktor Petrov", "Viktor Petrov"))
	assert.Equal(t, 1.0, Similarity("Petrov Viktor", "viktor  PETROV"))
	assert.Less(t, Similarity("John Smith", "Maria Garcia"), 0.5)
	assert.Greater(t, Similarity("John Smith", "Jon Smith"), 0.9)
	assert.Equal(t, 0.0, Similarity("", "John"))
	assert.Equal(t, 1.0, Similarity(" ", ""))
}

func TestSimilarity_Bounds(t *testing.T) {
	pairs := [][2]string{
		{"Acme Holdings Ltd", "ACME Holding Limited"},
		{"a", "bbbbbbbbbb"},
		{"Ōsaka Trading", "Osaka Trading"},
	}
	for _, p := range pairs {
		s := Similarity(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
		assert.InDelta(t, s, Similarity(p[1], p[0]), 1e-9)
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ClassPotentialMatch, Classify(0.95, 0.85))
	assert.Equal(t, ClassPotentialMatch, Classify(1, 0.99))
	assert.Equal(t, ClassInvestigate, Classify(0.9, 0.85))
	assert.Equal(t, ClassInvestigate, Classify(0.85, 0.85))
	assert.Equal(t, ClassLowRelevance, Classify(0.84, 0.85))
}
