package models

import (
	"time"
)

// Severity levels used by considerations and caution indicators.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"

	SeverityWarning = "warning"
	SeverityAlert   = "alert"
)

// Ingredient source classifications.
const (
	SourceNatural   = "natural"
	SourceSynthetic = "synthetic"
)

// Snapshot summarizes the product at a glance.
type Snapshot struct {
	NutritionalSummary string   `json:"nutritionalSummary"`
	Certifications     []string `json:"certifications"`
}

// Benefit is one positive aspect of the product.
type Benefit struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Consideration is one point of concern, graded low/medium/high.
type Consideration struct {
	Title       string `json:"title"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// Ingredient describes a single listed ingredient.
type Ingredient struct {
	Name           string `json:"name"`
	ScientificName string `json:"scientificName,omitempty"`
	Role           string `json:"role"`
	IsAllergen     bool   `json:"isAllergen"`
	Source         string `json:"source"` // "natural" or "synthetic"
	SafetyProfile  string `json:"safetyProfile"`
}

// QualityInsights covers sourcing and sustainability.
type QualityInsights struct {
	Sourcing            string  `json:"sourcing"`
	SustainabilityScore float64 `json:"sustainabilityScore"` // 0-100
	Notes               string  `json:"notes"`
}

// CautionIndicator is an urgent flag surfaced prominently to the user.
type CautionIndicator struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // "warning" or "alert"
}

// SmartVerdict is the model's overall recommendation.
type SmartVerdict struct {
	Recommendation  string  `json:"recommendation"`
	ConfidenceScore float64 `json:"confidenceScore"` // 0-100
	Reasoning       string  `json:"reasoning"`
}

// ProductScore holds the five scoring dimensions, each 0-100.
type ProductScore struct {
	Overall        float64 `json:"overall"`
	Health         float64 `json:"health"`
	Quality        float64 `json:"quality"`
	Sustainability float64 `json:"sustainability"`
	Value          float64 `json:"value"`
}

// ProductAnalysis is the normalized result of one analysis call. It is created
// exactly once by the gateway and immutable afterwards.
type ProductAnalysis struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand"`
	Category  string    `json:"category"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Barcode   string    `json:"barcode,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	Snapshot          Snapshot           `json:"snapshot"`
	Benefits          []Benefit          `json:"benefits"`
	Considerations    []Consideration    `json:"considerations"`
	Ingredients       []Ingredient       `json:"ingredients"`
	QualityInsights   QualityInsights    `json:"qualityInsights"`
	CautionIndicators []CautionIndicator `json:"cautionIndicators"`
	SmartVerdict      SmartVerdict       `json:"smartVerdict"`
	ProductScore      ProductScore       `json:"productScore"`
}

// ClampScores forces all score fields into [0,100].
func (p *ProductAnalysis) ClampScores() {
	p.ProductScore.Overall = clamp01(p.ProductScore.Overall)
	p.ProductScore.Health = clamp01(p.ProductScore.Health)
	p.ProductScore.Quality = clamp01(p.ProductScore.Quality)
	p.ProductScore.Sustainability = clamp01(p.ProductScore.Sustainability)
	p.ProductScore.Value = clamp01(p.ProductScore.Value)
	p.QualityInsights.SustainabilityScore = clamp01(p.QualityInsights.SustainabilityScore)
	p.SmartVerdict.ConfidenceScore = clamp01(p.SmartVerdict.ConfidenceScore)
}

// AllergenHits returns the ingredients flagged as allergens.
func (p *ProductAnalysis) AllergenHits() []Ingredient {
	var hits []Ingredient
	for _, ing := range p.Ingredients {
		if ing.IsAllergen {
			hits = append(hits, ing)
		}
	}
	return hits
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
