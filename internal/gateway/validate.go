package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/aurascan/aurascan/internal/ai"
	"github.com/aurascan/aurascan/internal/apierr"
	"github.com/aurascan/aurascan/internal/models"
)

var requiredAnalysisFields = []string{
	"name", "brand", "category", "snapshot", "benefits", "considerations",
	"ingredients", "qualityInsights", "cautionIndicators", "smartVerdict",
	"productScore",
}

var listAnalysisFields = []string{
	"benefits", "considerations", "ingredients", "cautionIndicators",
}

var scoreFields = []string{
	"overall", "health", "quality", "sustainability", "value",
}

// parseAnalysis parses the raw model reply and enforces the response shape:
// all required top-level fields present, the four list fields actually lists,
// and productScore subfields numeric. The response is never trusted to match
// the requested schema.
func parseAnalysis(text string) (*models.ProductAnalysis, error) {
	text = ai.StripFences(text)
	if text == "" {
		return nil, apierr.Validation("empty response from model")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, apierr.Validation(fmt.Sprintf("unparseable model response: %v", err))
	}

	for _, field := range requiredAnalysisFields {
		if _, ok := raw[field]; !ok {
			return nil, apierr.Validation(fmt.Sprintf("missing required field %q in response", field))
		}
	}
	for _, field := range listAnalysisFields {
		if _, ok := raw[field].([]any); !ok {
			return nil, apierr.Validation(fmt.Sprintf("field %q is not a list", field))
		}
	}

	scores, ok := raw["productScore"].(map[string]any)
	if !ok {
		return nil, apierr.Validation("productScore is not an object")
	}
	for _, field := range scoreFields {
		if _, ok := scores[field].(float64); !ok {
			return nil, apierr.Validation(fmt.Sprintf("productScore.%s is not numeric", field))
		}
	}

	var analysis models.ProductAnalysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, apierr.Validation(fmt.Sprintf("malformed analysis payload: %v", err))
	}
	return &analysis, nil
}

// parseComparison parses and validates a comparison verdict.
func parseComparison(text string) (*models.ComparisonResult, error) {
	text = ai.StripFences(text)
	if text == "" {
		return nil, apierr.Validation("empty response from model")
	}

	var result models.ComparisonResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, apierr.Validation(fmt.Sprintf("unparseable comparison response: %v", err))
	}

	switch result.Winner {
	case models.WinnerA, models.WinnerB, models.WinnerTie:
	default:
		return nil, apierr.Validation(fmt.Sprintf("invalid comparison winner %q", result.Winner))
	}
	if result.Summary == "" {
		return nil, apierr.Validation("comparison has no summary")
	}
	return &result, nil
}
