// Package store is the single source of truth for user-visible application
// data. Every mutation is synchronous and immediately followed by a full
// persist of the serialized state; no operation returns before its write has
// been handed to storage.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aurascan/aurascan/internal/database"
	"github.com/aurascan/aurascan/internal/models"
)

// StateKey is the single storage key holding the whole serialized state.
const StateKey = "aurascan_state"

// HistoryCap bounds how many analyses history retains. The oldest entry
// beyond the cap is dropped.
const HistoryCap = 50

// Store owns the AppState aggregate. All mutation goes through named
// operations; views never write fields directly.
type Store struct {
	mu    sync.Mutex
	kv    database.KV
	log   *zap.Logger
	state *models.AppState
	now   func() time.Time
}

// Load reads the persisted state on startup. A missing or unparseable copy
// yields the default state: default profile, empty history and favorites,
// onboarding not completed. Favorites whose analysis no longer exists in
// history are pruned here.
func Load(ctx context.Context, kv database.KV, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{kv: kv, log: log, now: time.Now}

	raw, ok, err := kv.Get(ctx, StateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read persisted state: %w", err)
	}
	if !ok {
		s.state = models.DefaultAppState()
		return s, nil
	}

	var state models.AppState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		log.Warn("persisted state unreadable, starting fresh", zap.Error(err))
		s.state = models.DefaultAppState()
		return s, nil
	}
	normalize(&state)
	pruned := pruneFavorites(&state)
	if pruned > 0 {
		log.Info("pruned dangling favorites", zap.Int("count", pruned))
	}
	s.state = &state
	return s, nil
}

func normalize(state *models.AppState) {
	if state.History == nil {
		state.History = []*models.ProductAnalysis{}
	}
	if state.Favorites == nil {
		state.Favorites = []string{}
	}
	if len(state.History) > HistoryCap {
		state.History = state.History[:HistoryCap]
	}
}

// pruneFavorites drops favorite ids that no longer reference a history entry.
func pruneFavorites(state *models.AppState) int {
	kept := state.Favorites[:0]
	pruned := 0
	for _, id := range state.Favorites {
		if state.FindAnalysis(id) != nil {
			kept = append(kept, id)
		} else {
			pruned++
		}
	}
	state.Favorites = kept
	return pruned
}

// State returns a snapshot of the current state. History entries are
// immutable, so sharing their pointers is safe; the slices and the aggregate
// itself are copied so concurrent readers never observe a half-applied
// mutation.
func (s *Store) State() models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := *s.state
	snap.History = append([]*models.ProductAnalysis(nil), s.state.History...)
	snap.Favorites = append([]string(nil), s.state.Favorites...)
	snap.SavedComparisons = append([]models.SavedComparison(nil), s.state.SavedComparisons...)
	snap.TrackedProducts = append([]models.TrackedProduct(nil), s.state.TrackedProducts...)
	snap.WatchlistIngredients = append([]models.WatchlistIngredient(nil), s.state.WatchlistIngredients...)
	return snap
}

// UpdateProfile replaces the user profile wholesale.
func (s *Store) UpdateProfile(ctx context.Context, profile models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = profile
	return s.persistLocked(ctx)
}

// RecordAnalysis prepends the analysis to history, truncates to the cap, sets
// it as the current analysis, and bumps any watchlist ingredient it contains.
func (s *Store) RecordAnalysis(ctx context.Context, analysis *models.ProductAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append([]*models.ProductAnalysis{analysis}, s.state.History...)
	if len(history) > HistoryCap {
		history = history[:HistoryCap]
	}
	s.state.History = history
	s.state.CurrentAnalysis = analysis
	s.bumpWatchlistLocked(analysis)
	return s.persistLocked(ctx)
}

func (s *Store) bumpWatchlistLocked(analysis *models.ProductAnalysis) {
	for i := range s.state.WatchlistIngredients {
		w := &s.state.WatchlistIngredients[i]
		for _, ing := range analysis.Ingredients {
			if strings.EqualFold(ing.Name, w.Name) {
				w.Frequency++
				w.LastEncountered = s.now()
				break
			}
		}
	}
}

// ToggleFavorite adds id to the favorites set if absent, else removes it.
func (s *Store) ToggleFavorite(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, f := range s.state.Favorites {
		if f == id {
			s.state.Favorites = append(s.state.Favorites[:i], s.state.Favorites[i+1:]...)
			return s.persistLocked(ctx)
		}
	}
	s.state.Favorites = append(s.state.Favorites, id)
	return s.persistLocked(ctx)
}

// SelectAnalysis sets the current analysis without touching history, used
// when opening a history entry.
func (s *Store) SelectAnalysis(ctx context.Context, analysis *models.ProductAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CurrentAnalysis = analysis
	return s.persistLocked(ctx)
}

// CompleteOnboarding sets the onboarding flag. One-way; nothing un-sets it.
func (s *Store) CompleteOnboarding(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Onboarded = true
	return s.persistLocked(ctx)
}

// SaveComparison records a named comparison of products.
func (s *Store) SaveComparison(ctx context.Context, name string, productIDs []string) (models.SavedComparison, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cmp := models.SavedComparison{
		ID:         uuid.New().String(),
		Name:       name,
		ProductIDs: append([]string(nil), productIDs...),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.state.SavedComparisons = append(s.state.SavedComparisons, cmp)
	if err := s.persistLocked(ctx); err != nil {
		return models.SavedComparison{}, err
	}
	return cmp, nil
}

// TrackProduct adds a product to the tracked set, or updates its alerts when
// already tracked.
func (s *Store) TrackProduct(ctx context.Context, analysis *models.ProductAnalysis, alerts models.TrackedAlerts) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.TrackedProducts {
		if s.state.TrackedProducts[i].ProductID == analysis.ID {
			s.state.TrackedProducts[i].Alerts = alerts
			return s.persistLocked(ctx)
		}
	}
	s.state.TrackedProducts = append(s.state.TrackedProducts, models.TrackedProduct{
		ProductID:   analysis.ID,
		ProductName: analysis.Name,
		Brand:       analysis.Brand,
		Alerts:      alerts,
		AddedAt:     s.now(),
	})
	return s.persistLocked(ctx)
}

// UpdateWatchlist replaces the watched ingredient set, preserving frequency
// counters for names that remain.
func (s *Store) UpdateWatchlist(ctx context.Context, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]models.WatchlistIngredient, len(s.state.WatchlistIngredients))
	for _, w := range s.state.WatchlistIngredients {
		existing[strings.ToLower(w.Name)] = w
	}

	next := make([]models.WatchlistIngredient, 0, len(names))
	for _, name := range names {
		if prev, ok := existing[strings.ToLower(name)]; ok {
			next = append(next, prev)
			continue
		}
		next = append(next, models.WatchlistIngredient{Name: name, AlertEnabled: true})
	}
	s.state.WatchlistIngredients = next
	return s.persistLocked(ctx)
}

// persistLocked serializes the whole state and writes it under the single
// storage key. Called with the mutex held, after every mutation.
func (s *Store) persistLocked(ctx context.Context) error {
	raw, err := json.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}
	if err := s.kv.Set(ctx, StateKey, string(raw)); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}
	return nil
}
