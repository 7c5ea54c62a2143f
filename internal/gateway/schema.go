package gateway

import (
	"fmt"
	"strings"

	"github.com/aurascan/aurascan/internal/models"
)

func str() map[string]any   { return map[string]any{"type": "STRING"} }
func num() map[string]any   { return map[string]any{"type": "NUMBER"} }
func boolT() map[string]any { return map[string]any{"type": "BOOLEAN"} }

func obj(props map[string]any, required ...string) map[string]any {
	return map[string]any{"type": "OBJECT", "properties": props, "required": required}
}

func arr(items map[string]any) map[string]any {
	return map[string]any{"type": "ARRAY", "items": items}
}

// analysisSchema is the structured-output schema for product analysis,
// matching the ProductAnalysis shape field for field.
func analysisSchema() map[string]any {
	return obj(map[string]any{
		"name":     str(),
		"brand":    str(),
		"category": str(),
		"snapshot": obj(map[string]any{
			"nutritionalSummary": str(),
			"certifications":     arr(str()),
		}, "nutritionalSummary", "certifications"),
		"benefits": arr(obj(map[string]any{
			"title":       str(),
			"description": str(),
			"icon":        str(),
		}, "title", "description", "icon")),
		"considerations": arr(obj(map[string]any{
			"title":       str(),
			"severity":    str(),
			"description": str(),
		}, "title", "severity", "description")),
		"ingredients": arr(obj(map[string]any{
			"name":           str(),
			"scientificName": str(),
			"role":           str(),
			"isAllergen":     boolT(),
			"source":         str(),
			"safetyProfile":  str(),
		}, "name", "role", "isAllergen", "source")),
		"qualityInsights": obj(map[string]any{
			"sourcing":            str(),
			"sustainabilityScore": num(),
			"notes":               str(),
		}, "sourcing", "sustainabilityScore"),
		"cautionIndicators": arr(obj(map[string]any{
			"type":     str(),
			"message":  str(),
			"severity": str(),
		}, "type", "message", "severity")),
		"smartVerdict": obj(map[string]any{
			"recommendation":  str(),
			"confidenceScore": num(),
			"reasoning":       str(),
		}, "recommendation", "confidenceScore", "reasoning"),
		"productScore": obj(map[string]any{
			"overall":        num(),
			"health":         num(),
			"quality":        num(),
			"sustainability": num(),
			"value":          num(),
		}, "overall", "health", "quality", "sustainability", "value"),
	},
		"name", "brand", "category", "snapshot", "benefits", "considerations",
		"ingredients", "qualityInsights", "cautionIndicators", "smartVerdict",
		"productScore")
}

// comparisonSchema describes the verdict shape for Compare.
func comparisonSchema() map[string]any {
	return obj(map[string]any{
		"summary": str(),
		"winner":  str(),
		"dimensions": arr(obj(map[string]any{
			"dimension": str(),
			"verdict":   str(),
		}, "dimension", "verdict")),
		"recommendation": str(),
	}, "summary", "winner", "dimensions", "recommendation")
}

func allergenList(profile *models.UserProfile) string {
	if profile == nil || len(profile.Allergens) == 0 {
		return "none"
	}
	return strings.Join(profile.Allergens, ", ")
}

func dietaryList(profile *models.UserProfile) string {
	if profile == nil || len(profile.DietaryRestrictions) == 0 {
		return "none"
	}
	return strings.Join(profile.DietaryRestrictions, ", ")
}

func analysisPrompt(profile *models.UserProfile) string {
	return fmt.Sprintf(
		"Analyze this product packaging/label. The user has these allergens: %s. "+
			"Dietary restrictions: %s. "+
			"Provide a deep technical and health-focused analysis.",
		allergenList(profile), dietaryList(profile))
}

func searchPrompt(productName string, profile *models.UserProfile) string {
	return fmt.Sprintf(
		"Analyze the consumer product named %q based on its typical formulation. "+
			"The user has these allergens: %s. Dietary restrictions: %s. "+
			"Provide a deep technical and health-focused analysis.",
		productName, allergenList(profile), dietaryList(profile))
}

// comparisonPrompt summarizes both analyses down to their scores and
// ingredient counts; the full analyses are too large to resend.
func comparisonPrompt(a, b *models.ProductAnalysis) string {
	return fmt.Sprintf(
		"Compare two products and decide a winner.\n"+
			"Product A: %s by %s. Scores: overall %.0f, health %.0f, quality %.0f, "+
			"sustainability %.0f, value %.0f. %d ingredients, %d flagged allergens.\n"+
			"Product B: %s by %s. Scores: overall %.0f, health %.0f, quality %.0f, "+
			"sustainability %.0f, value %.0f. %d ingredients, %d flagged allergens.\n"+
			"Set winner to \"a\", \"b\" or \"tie\" and give a per-dimension verdict "+
			"for health, quality, sustainability and value.",
		a.Name, a.Brand, a.ProductScore.Overall, a.ProductScore.Health,
		a.ProductScore.Quality, a.ProductScore.Sustainability, a.ProductScore.Value,
		len(a.Ingredients), len(a.AllergenHits()),
		b.Name, b.Brand, b.ProductScore.Overall, b.ProductScore.Health,
		b.ProductScore.Quality, b.ProductScore.Sustainability, b.ProductScore.Value,
		len(b.Ingredients), len(b.AllergenHits()))
}
