// Package analytics derives trends, insights and reports from scan history.
// Everything here is a pure function of the state snapshot.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/aurascan/aurascan/internal/models"
)

// NameCount pairs a label with how often it occurred.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DateCount is the number of scans on one calendar day.
type DateCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// Trend summarizes scanning behavior over the whole retained history.
type Trend struct {
	Categories    []NameCount `json:"categories"`
	Brands        []NameCount `json:"brands"`
	ScanFrequency []DateCount `json:"scanFrequency"`
}

// ScoreTotals aggregates average scores for one time window.
type ScoreTotals struct {
	Scans          int     `json:"scans"`
	Health         float64 `json:"health"`
	Quality        float64 `json:"quality"`
	Sustainability float64 `json:"sustainability"`
	Overall        float64 `json:"overall"`
}

// Summary holds today's and this week's average scores.
type Summary struct {
	Day  ScoreTotals `json:"day"`
	Week ScoreTotals `json:"week"`
}

// Insight types.
const (
	InsightRecommendation = "recommendation"
	InsightWarning        = "warning"
	InsightAchievement    = "achievement"
	InsightInfo           = "info"
)

// HealthInsight is one derived observation about the user's scanning habits.
type HealthInsight struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// Trends computes category, brand and frequency breakdowns, each sorted by
// descending count.
func Trends(history []*models.ProductAnalysis) Trend {
	categories := map[string]int{}
	brands := map[string]int{}
	days := map[string]int{}
	for _, a := range history {
		if a.Category != "" {
			categories[a.Category]++
		}
		if a.Brand != "" {
			brands[a.Brand]++
		}
		days[a.Timestamp.Format("2006-01-02")]++
	}
	return Trend{
		Categories:    sortedCounts(categories),
		Brands:        sortedCounts(brands),
		ScanFrequency: sortedDates(days),
	}
}

func sortedCounts(m map[string]int) []NameCount {
	out := make([]NameCount, 0, len(m))
	for name, count := range m {
		out = append(out, NameCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func sortedDates(m map[string]int) []DateCount {
	out := make([]DateCount, 0, len(m))
	for date, count := range m {
		out = append(out, DateCount{Date: date, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Summarize computes today's and this week's average scores from history,
// with the week starting on Sunday.
func Summarize(history []*models.ProductAnalysis, now time.Time) Summary {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfWeek := now.AddDate(0, 0, -int(now.Weekday()))
	startOfWeek = time.Date(startOfWeek.Year(), startOfWeek.Month(), startOfWeek.Day(), 0, 0, 0, 0, startOfWeek.Location())

	var day, week ScoreTotals
	for _, a := range history {
		if !a.Timestamp.After(startOfWeek) {
			continue
		}
		add(&week, a)
		if a.Timestamp.After(startOfDay) {
			add(&day, a)
		}
	}
	finish(&day)
	finish(&week)
	return Summary{Day: day, Week: week}
}

func add(t *ScoreTotals, a *models.ProductAnalysis) {
	t.Scans++
	t.Health += a.ProductScore.Health
	t.Quality += a.ProductScore.Quality
	t.Sustainability += a.ProductScore.Sustainability
	t.Overall += a.ProductScore.Overall
}

func finish(t *ScoreTotals) {
	if t.Scans == 0 {
		return
	}
	n := float64(t.Scans)
	t.Health /= n
	t.Quality /= n
	t.Sustainability /= n
	t.Overall /= n
}

// Insights derives health observations from history and the user's profile.
func Insights(history []*models.ProductAnalysis, profile models.UserProfile) []HealthInsight {
	if len(history) == 0 {
		return []HealthInsight{{
			Type:        InsightInfo,
			Title:       "No scans yet",
			Description: "Scan a product to start building your analytics.",
			Severity:    models.SeverityLow,
		}}
	}

	var insights []HealthInsight

	var healthSum float64
	allergenScans := 0
	for _, a := range history {
		healthSum += a.ProductScore.Health
		if containsUserAllergen(a, profile) {
			allergenScans++
		}
	}
	avgHealth := healthSum / float64(len(history))

	switch {
	case avgHealth >= 80:
		insights = append(insights, HealthInsight{
			Type:        InsightAchievement,
			Title:       "Strong health choices",
			Description: "Your scanned products average a high health score.",
			Severity:    models.SeverityLow,
		})
	case avgHealth < 50:
		insights = append(insights, HealthInsight{
			Type:        InsightWarning,
			Title:       "Low average health score",
			Description: "Most of your recent scans score poorly on health. Consider alternatives with fewer additives.",
			Severity:    models.SeverityHigh,
		})
	default:
		insights = append(insights, HealthInsight{
			Type:        InsightRecommendation,
			Title:       "Room to improve",
			Description: "Your scans are mid-range on health. Look for products with shorter ingredient lists.",
			Severity:    models.SeverityMedium,
		})
	}

	if allergenScans > 0 {
		insights = append(insights, HealthInsight{
			Type:        InsightWarning,
			Title:       "Allergen exposure",
			Description: "Some scanned products contain ingredients matching your allergen profile.",
			Severity:    models.SeverityHigh,
		})
	}
	return insights
}

func containsUserAllergen(a *models.ProductAnalysis, profile models.UserProfile) bool {
	for _, ing := range a.Ingredients {
		if !ing.IsAllergen {
			continue
		}
		for _, allergen := range profile.Allergens {
			if strings.EqualFold(ing.Name, allergen) || strings.Contains(strings.ToLower(ing.Name), strings.ToLower(allergen)) {
				return true
			}
		}
	}
	return false
}
