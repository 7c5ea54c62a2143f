package store

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurascan/aurascan/internal/database"
	"github.com/aurascan/aurascan/internal/models"
)

func analysis(id, name string) *models.ProductAnalysis {
	return &models.ProductAnalysis{
		ID:        id,
		Name:      name,
		Timestamp: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		ProductScore: models.ProductScore{
			Overall: 70, Health: 87, Quality: 60, Sustainability: 50, Value: 65,
		},
	}
}

func newTestStore(t *testing.T) (*Store, *database.MemoryKV) {
	t.Helper()
	kv := database.NewMemoryKV()
	s, err := Load(context.Background(), kv, nil)
	require.NoError(t, err)
	return s, kv
}

func TestLoadEmptyYieldsDefaults(t *testing.T) {
	s, _ := newTestStore(t)
	state := s.State()
	assert.False(t, state.Onboarded)
	assert.Empty(t, state.History)
	assert.Empty(t, state.Favorites)
	assert.Nil(t, state.CurrentAnalysis)
	assert.Equal(t, "dark", state.User.Theme.Mode)
}

func TestLoadCorruptStateStartsFresh(t *testing.T) {
	kv := database.NewMemoryKV()
	require.NoError(t, kv.Set(context.Background(), StateKey, "{not json"))

	s, err := Load(context.Background(), kv, nil)
	require.NoError(t, err)
	assert.Empty(t, s.State().History)
	assert.False(t, s.State().Onboarded)
}

func TestLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := database.NewMemoryKV()

	s1, err := Load(ctx, kv, nil)
	require.NoError(t, err)
	require.NoError(t, s1.RecordAnalysis(ctx, analysis("a1", "Granola")))
	require.NoError(t, s1.ToggleFavorite(ctx, "a1"))
	require.NoError(t, s1.CompleteOnboarding(ctx))

	s2, err := Load(ctx, kv, nil)
	require.NoError(t, err)
	state := s2.State()
	assert.True(t, state.Onboarded)
	require.Len(t, state.History, 1)
	assert.Equal(t, "Granola", state.History[0].Name)
	assert.Equal(t, float64(87), state.History[0].ProductScore.Health)
	assert.True(t, state.IsFavorite("a1"))
	require.NotNil(t, state.CurrentAnalysis)
	assert.Equal(t, "a1", state.CurrentAnalysis.ID)
}

func TestLoadPrunesDanglingFavorites(t *testing.T) {
	ctx := context.Background()
	kv := database.NewMemoryKV()

	state := models.DefaultAppState()
	state.History = []*models.ProductAnalysis{analysis("kept", "Kept")}
	state.Favorites = []string{"kept", "ghost"}
	raw, err := json.Marshal(state)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, StateKey, string(raw)))

	s, err := Load(ctx, kv, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, s.State().Favorites)
}

func TestRecordAnalysisPrependsAndSetsCurrent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.RecordAnalysis(ctx, analysis("first", "First")))
	require.NoError(t, s.RecordAnalysis(ctx, analysis("second", "Second")))

	state := s.State()
	require.Len(t, state.History, 2)
	assert.Equal(t, "second", state.History[0].ID, "newest entry leads")
	assert.Equal(t, "first", state.History[1].ID)
	assert.Equal(t, "second", state.CurrentAnalysis.ID)
}

func TestHistoryCapDropsOldest(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	for i := 0; i < HistoryCap+1; i++ {
		id := fmt.Sprintf("a%02d", i)
		require.NoError(t, s.RecordAnalysis(ctx, analysis(id, id)))
	}

	state := s.State()
	assert.Len(t, state.History, HistoryCap)
	assert.Equal(t, fmt.Sprintf("a%02d", HistoryCap), state.History[0].ID)
	assert.Nil(t, state.FindAnalysis("a00"), "oldest entry is gone")
}

func TestToggleFavoritePairRestoresOriginal(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	require.NoError(t, s.RecordAnalysis(ctx, analysis("a1", "One")))

	require.NoError(t, s.ToggleFavorite(ctx, "a1"))
	afterAdd := s.State()
	assert.True(t, afterAdd.IsFavorite("a1"))

	require.NoError(t, s.ToggleFavorite(ctx, "a1"))
	afterRemove := s.State()
	assert.False(t, afterRemove.IsFavorite("a1"))
	assert.Empty(t, afterRemove.Favorites)
}

func TestSelectAnalysisDoesNotTouchHistory(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	a := analysis("a1", "One")
	require.NoError(t, s.RecordAnalysis(ctx, a))
	require.NoError(t, s.RecordAnalysis(ctx, analysis("a2", "Two")))

	require.NoError(t, s.SelectAnalysis(ctx, a))
	state := s.State()
	assert.Equal(t, "a1", state.CurrentAnalysis.ID)
	assert.Len(t, state.History, 2)
	assert.Equal(t, "a2", state.History[0].ID, "history order unchanged")
}

func TestEveryMutationPersists(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)
	a := analysis("a1", "One")

	require.NoError(t, s.RecordAnalysis(ctx, a))
	require.NoError(t, s.ToggleFavorite(ctx, "a1"))
	require.NoError(t, s.SelectAnalysis(ctx, a))
	require.NoError(t, s.CompleteOnboarding(ctx))
	require.NoError(t, s.UpdateProfile(ctx, models.DefaultUserProfile()))
	require.NoError(t, s.UpdateWatchlist(ctx, []string{"Sugar"}))
	require.NoError(t, s.TrackProduct(ctx, a, models.TrackedAlerts{ReformulationAlert: true}))
	_, err := s.SaveComparison(ctx, "snacks", []string{"a1"})
	require.NoError(t, err)

	assert.Equal(t, 8, kv.Writes, "one write per mutation, no deferred flushing")
}

func TestCompleteOnboardingIsOneWay(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.CompleteOnboarding(ctx))
	require.NoError(t, s.CompleteOnboarding(ctx))
	assert.True(t, s.State().Onboarded)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	profile := models.DefaultUserProfile()
	profile.Allergens = []string{"Peanuts", "Soy"}
	profile.ExpertMode = true
	require.NoError(t, s.UpdateProfile(ctx, profile))

	got := s.State().User
	assert.Equal(t, []string{"Peanuts", "Soy"}, got.Allergens)
	assert.True(t, got.ExpertMode)
}

func TestWatchlistBumpedByRecordedScan(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	s.now = func() time.Time { return time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) }

	require.NoError(t, s.UpdateWatchlist(ctx, []string{"Sugar", "Palm Oil"}))

	a := analysis("a1", "Cookies")
	a.Ingredients = []models.Ingredient{
		{Name: "sugar", Role: "sweetener"},
		{Name: "Flour", Role: "base"},
	}
	require.NoError(t, s.RecordAnalysis(ctx, a))

	watch := s.State().WatchlistIngredients
	require.Len(t, watch, 2)
	assert.Equal(t, 1, watch[0].Frequency, "case-insensitive ingredient match")
	assert.False(t, watch[0].LastEncountered.IsZero())
	assert.Equal(t, 0, watch[1].Frequency)
}

func TestUpdateWatchlistPreservesFrequencies(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.UpdateWatchlist(ctx, []string{"Sugar"}))
	a := analysis("a1", "Cookies")
	a.Ingredients = []models.Ingredient{{Name: "Sugar"}}
	require.NoError(t, s.RecordAnalysis(ctx, a))

	require.NoError(t, s.UpdateWatchlist(ctx, []string{"sugar", "Aspartame"}))
	watch := s.State().WatchlistIngredients
	require.Len(t, watch, 2)
	assert.Equal(t, 1, watch[0].Frequency, "frequency survives a watchlist rewrite")
	assert.Equal(t, 0, watch[1].Frequency)
}

func TestSaveComparison(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	cmp, err := s.SaveComparison(ctx, "cereals", []string{"a1", "a2"})
	require.NoError(t, err)
	assert.NotEmpty(t, cmp.ID)
	assert.Equal(t, "cereals", cmp.Name)

	saved := s.State().SavedComparisons
	require.Len(t, saved, 1)
	assert.Equal(t, cmp.ID, saved[0].ID)
}

func TestTrackProductUpdatesExistingAlerts(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	a := analysis("a1", "Yogurt")

	require.NoError(t, s.TrackProduct(ctx, a, models.TrackedAlerts{AvailabilityAlert: true}))
	require.NoError(t, s.TrackProduct(ctx, a, models.TrackedAlerts{ReformulationAlert: true}))

	tracked := s.State().TrackedProducts
	require.Len(t, tracked, 1, "re-tracking updates in place")
	assert.True(t, tracked[0].Alerts.ReformulationAlert)
	assert.False(t, tracked[0].Alerts.AvailabilityAlert)
}

func TestStateSnapshotIsIsolated(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	require.NoError(t, s.RecordAnalysis(ctx, analysis("a1", "One")))

	snap := s.State()
	snap.Favorites = append(snap.Favorites, "a1")
	snap.History[0] = analysis("mutated", "Mutated")

	assert.Empty(t, s.State().Favorites, "snapshot edits must not leak back")
	assert.Equal(t, "a1", s.State().History[0].ID)
}
