package models

// Comparison winners.
const (
	WinnerA   = "a"
	WinnerB   = "b"
	WinnerTie = "tie"
)

// DimensionComparison is the verdict for one scoring dimension.
type DimensionComparison struct {
	Dimension string `json:"dimension"`
	Verdict   string `json:"verdict"`
}

// ComparisonResult is the outcome of comparing two analyses.
type ComparisonResult struct {
	Summary        string                `json:"summary"`
	Winner         string                `json:"winner"` // "a", "b" or "tie"
	Dimensions     []DimensionComparison `json:"dimensions"`
	Recommendation string                `json:"recommendation"`
}
