package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampScores(t *testing.T) {
	p := &ProductAnalysis{
		ProductScore: ProductScore{
			Overall: 150, Health: -10, Quality: 55, Sustainability: 100.5, Value: 0,
		},
		QualityInsights: QualityInsights{SustainabilityScore: 120},
		SmartVerdict:    SmartVerdict{ConfidenceScore: -5},
	}
	p.ClampScores()

	assert.Equal(t, float64(100), p.ProductScore.Overall)
	assert.Equal(t, float64(0), p.ProductScore.Health)
	assert.Equal(t, float64(55), p.ProductScore.Quality)
	assert.Equal(t, float64(100), p.ProductScore.Sustainability)
	assert.Equal(t, float64(100), p.QualityInsights.SustainabilityScore)
	assert.Equal(t, float64(0), p.SmartVerdict.ConfidenceScore)
}

func TestAllergenHits(t *testing.T) {
	p := &ProductAnalysis{Ingredients: []Ingredient{
		{Name: "Oats"},
		{Name: "Peanuts", IsAllergen: true},
		{Name: "Milk Powder", IsAllergen: true},
	}}

	hits := p.AllergenHits()
	assert.Len(t, hits, 2)
	assert.Equal(t, "Peanuts", hits[0].Name)

	assert.Empty(t, (&ProductAnalysis{}).AllergenHits())
}

func TestAppStateLookups(t *testing.T) {
	state := DefaultAppState()
	state.History = []*ProductAnalysis{{ID: "a1"}, {ID: "a2"}}
	state.Favorites = []string{"a2"}

	assert.True(t, state.IsFavorite("a2"))
	assert.False(t, state.IsFavorite("a1"))
	assert.Equal(t, "a1", state.FindAnalysis("a1").ID)
	assert.Nil(t, state.FindAnalysis("zzz"))
}
