package models

import (
	"time"
)

// SavedComparison is a named set of products the user compared and kept.
type SavedComparison struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ProductIDs []string  `json:"productIds"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TrackedAlerts configures which changes to a tracked product notify the user.
type TrackedAlerts struct {
	PriceThreshold     float64 `json:"priceThreshold,omitempty"`
	ReformulationAlert bool    `json:"reformulationAlert"`
	AvailabilityAlert  bool    `json:"availabilityAlert"`
}

// TrackedProduct is a product the user watches over time.
type TrackedProduct struct {
	ProductID   string        `json:"productId"`
	ProductName string        `json:"productName"`
	Brand       string        `json:"brand"`
	Alerts      TrackedAlerts `json:"alerts"`
	AddedAt     time.Time     `json:"addedAt"`
}

// WatchlistIngredient is an ingredient the user wants flagged whenever it
// appears in a scan.
type WatchlistIngredient struct {
	Name            string    `json:"name"`
	Frequency       int       `json:"frequency"`
	LastEncountered time.Time `json:"lastEncountered,omitempty"`
	AlertEnabled    bool      `json:"alertEnabled"`
}

// AppState is the aggregate root for all user-visible application data. It is
// owned exclusively by the store and serialized as a whole on every mutation.
type AppState struct {
	User                 UserProfile           `json:"user"`
	History              []*ProductAnalysis    `json:"history"` // most-recent-first
	Favorites            []string              `json:"favorites"`
	CurrentAnalysis      *ProductAnalysis      `json:"currentAnalysis,omitempty"`
	Onboarded            bool                  `json:"onboarded"`
	SavedComparisons     []SavedComparison     `json:"savedComparisons,omitempty"`
	TrackedProducts      []TrackedProduct      `json:"trackedProducts,omitempty"`
	WatchlistIngredients []WatchlistIngredient `json:"watchlistIngredients,omitempty"`
}

// DefaultAppState is the state constructed at first launch or when the
// persisted copy is unreadable.
func DefaultAppState() *AppState {
	return &AppState{
		User:      DefaultUserProfile(),
		History:   []*ProductAnalysis{},
		Favorites: []string{},
		Onboarded: false,
	}
}

// IsFavorite reports whether id is in the favorites set.
func (s *AppState) IsFavorite(id string) bool {
	for _, f := range s.Favorites {
		if f == id {
			return true
		}
	}
	return false
}

// FindAnalysis returns the history entry with the given id, or nil.
func (s *AppState) FindAnalysis(id string) *ProductAnalysis {
	for _, a := range s.History {
		if a.ID == id {
			return a
		}
	}
	return nil
}
