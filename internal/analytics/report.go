package analytics

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aurascan/aurascan/internal/models"
)

// BatchReport aggregates a batch-analysis run.
type BatchReport struct {
	ID                string                    `json:"id"`
	Products          []*models.ProductAnalysis `json:"products"`
	CommonIngredients []string                  `json:"commonIngredients"`
	AverageScores     ScoreTotals               `json:"averageScores"`
	GeneratedAt       time.Time                 `json:"generatedAt"`
}

// BuildBatchReport synthesizes a report from the successful results of a
// batch run: ingredients shared by every product plus average scores.
func BuildBatchReport(products []*models.ProductAnalysis, now time.Time) BatchReport {
	report := BatchReport{
		ID:          uuid.New().String(),
		Products:    products,
		GeneratedAt: now,
	}
	for _, p := range products {
		add(&report.AverageScores, p)
	}
	finish(&report.AverageScores)
	report.CommonIngredients = commonIngredients(products)
	return report
}

func commonIngredients(products []*models.ProductAnalysis) []string {
	if len(products) == 0 {
		return nil
	}
	counts := map[string]int{}
	display := map[string]string{}
	for _, p := range products {
		seen := map[string]bool{}
		for _, ing := range p.Ingredients {
			key := strings.ToLower(ing.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			counts[key]++
			display[key] = ing.Name
		}
	}
	var common []string
	for key, count := range counts {
		if count == len(products) {
			common = append(common, display[key])
		}
	}
	sort.Strings(common)
	return common
}

// ExportCSV writes history as CSV, one row per analysis.
func ExportCSV(w io.Writer, history []*models.ProductAnalysis) error {
	cw := csv.NewWriter(w)
	header := []string{"id", "timestamp", "name", "brand", "category",
		"overall", "health", "quality", "sustainability", "value", "ingredients"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, a := range history {
		row := []string{
			a.ID,
			a.Timestamp.Format(time.RFC3339),
			a.Name,
			a.Brand,
			a.Category,
			fmt.Sprintf("%.0f", a.ProductScore.Overall),
			fmt.Sprintf("%.0f", a.ProductScore.Health),
			fmt.Sprintf("%.0f", a.ProductScore.Quality),
			fmt.Sprintf("%.0f", a.ProductScore.Sustainability),
			fmt.Sprintf("%.0f", a.ProductScore.Value),
			fmt.Sprintf("%d", len(a.Ingredients)),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
