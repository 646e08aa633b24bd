package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "wages tips other comp", NormalizeLabel("Wages, tips, other comp."))
	assert.Equal(t, "federal income tax withheld", NormalizeLabel("  Federal income-tax   withheld: "))
	assert.Equal(t, "", NormalizeLabel("$ | :"))
}

func TestLabelSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, LabelSimilarity("Wages, tips", "wages tips"))
	assert.Equal(t, 1.0, LabelSimilarity("", "  "))
	assert.Equal(t, 0.0, LabelSimilarity("wages", ""))
	assert.GreaterOrEqual(t, LabelSimilarity("Nonemployee compensation", "Nonemployee compensatlon"), 0.9)
	assert.Less(t, LabelSimilarity("Social security wages", "Medicare wages and tips"), 0.9)
}

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, levenshteinDistance("box", "box"))
	assert.Equal(t, 3, levenshteinDistance("kitten", "sitting"))
	assert.Equal(t, 4, levenshteinDistance("", "wage"))
	assert.Equal(t, 1, levenshteinDistance("wage", "wages"))
}
