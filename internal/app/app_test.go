package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurascan/aurascan/internal/ai"
	"github.com/aurascan/aurascan/internal/apierr"
	"github.com/aurascan/aurascan/internal/database"
	"github.com/aurascan/aurascan/internal/gateway"
	"github.com/aurascan/aurascan/internal/nav"
	"github.com/aurascan/aurascan/internal/store"
)

type scriptedClient struct {
	calls   int
	respond func(call int, req ai.Request) (string, error)
}

func (c *scriptedClient) Ready() error { return nil }

func (c *scriptedClient) Generate(ctx context.Context, req ai.Request) (string, error) {
	c.calls++
	return c.respond(c.calls, req)
}

func analysisReply(name string, health float64) string {
	return fmt.Sprintf(`{
		"name": %q, "brand": "Acme", "category": "Snacks",
		"snapshot": {"nutritionalSummary": "ok", "certifications": []},
		"benefits": [], "considerations": [],
		"ingredients": [{"name": "Oats", "role": "base", "isAllergen": false, "source": "natural", "safetyProfile": "safe"}],
		"qualityInsights": {"sourcing": "known", "sustainabilityScore": 50, "notes": ""},
		"cautionIndicators": [],
		"smartVerdict": {"recommendation": "fine", "confidenceScore": 75, "reasoning": ""},
		"productScore": {"overall": 70, "health": %g, "quality": 60, "sustainability": 50, "value": 65}
	}`, name, health)
}

func imageURL(content string) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte(content))
}

func newTestApp(t *testing.T, client ai.Client) (*App, *database.MemoryKV) {
	t.Helper()
	kv := database.NewMemoryKV()
	st, err := store.Load(context.Background(), kv, nil)
	require.NoError(t, err)
	gw := gateway.New(client, gateway.Options{MaxAttempts: 1}, nil)
	return New(gw, st, nil), kv
}

func TestScanImageSuccessFlow(t *testing.T) {
	ctx := context.Background()
	client := &scriptedClient{respond: func(_ int, _ ai.Request) (string, error) {
		return analysisReply("Granola", 87), nil
	}}
	a, _ := newTestApp(t, client)
	a.Router.Navigate(nav.ScreenScan)

	analysis, err := a.ScanImage(ctx, imageURL("label"))
	require.NoError(t, err)
	require.NotNil(t, analysis)

	assert.Equal(t, nav.ScreenResults, a.Router.Current())
	state := a.Store.State()
	require.Len(t, state.History, 1)
	assert.Equal(t, analysis.ID, state.History[0].ID)
	assert.Equal(t, float64(87), state.History[0].ProductScore.Health)
	require.NotNil(t, state.CurrentAnalysis)
	assert.Equal(t, analysis.ID, state.CurrentAnalysis.ID)
}

func TestScanImageFailureReturnsToScan(t *testing.T) {
	ctx := context.Background()
	client := &scriptedClient{respond: func(_ int, _ ai.Request) (string, error) {
		return "", apierr.Network(errors.New("offline"))
	}}
	a, _ := newTestApp(t, client)
	a.Router.Navigate(nav.ScreenScan)

	_, err := a.ScanImage(ctx, imageURL("label"))
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.CodeNetwork))
	assert.Equal(t, nav.ScreenScan, a.Router.Current())
	assert.Empty(t, a.Store.State().History, "failed scans never enter history")
}

func TestScanImageCancelledIsNotAnError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &scriptedClient{respond: func(_ int, _ ai.Request) (string, error) {
		cancel()
		return "", apierr.Network(errors.New("cut"))
	}}
	a, _ := newTestApp(t, client)

	analysis, err := a.ScanImage(ctx, imageURL("label"))
	assert.NoError(t, err)
	assert.Nil(t, analysis)
	assert.Equal(t, nav.ScreenScan, a.Router.Current())
	assert.Empty(t, a.Store.State().History)
}

func TestSearchByNameFlow(t *testing.T) {
	ctx := context.Background()
	client := &scriptedClient{respond: func(_ int, req ai.Request) (string, error) {
		assert.Contains(t, req.Instruction, "Oat Milk")
		return analysisReply("Oat Milk", 78), nil
	}}
	a, _ := newTestApp(t, client)

	analysis, err := a.SearchByName(ctx, "Oat Milk")
	require.NoError(t, err)
	assert.Equal(t, "Oat Milk", analysis.Name)
	assert.Equal(t, nav.ScreenResults, a.Router.Current())
}

func TestRetryReplaysLastRequest(t *testing.T) {
	ctx := context.Background()
	client := &scriptedClient{respond: func(call int, _ ai.Request) (string, error) {
		if call == 1 {
			return "", apierr.Network(errors.New("offline"))
		}
		return analysisReply("Second Try", 55), nil
	}}
	a, _ := newTestApp(t, client)

	_, err := a.ScanImage(ctx, imageURL("label"))
	require.Error(t, err)

	analysis, err := a.Retry(ctx)
	require.NoError(t, err)
	require.NotNil(t, analysis)
	assert.Equal(t, "Second Try", analysis.Name)
	assert.Equal(t, 2, client.calls)
	assert.Equal(t, nav.ScreenResults, a.Router.Current())
}

func TestRetryWithNothingToRetry(t *testing.T) {
	client := &scriptedClient{respond: func(_ int, _ ai.Request) (string, error) { return "", nil }}
	a, _ := newTestApp(t, client)

	analysis, err := a.Retry(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, analysis)
	assert.Equal(t, 0, client.calls)
}

func TestOpenHistoryEntry(t *testing.T) {
	ctx := context.Background()
	client := &scriptedClient{respond: func(call int, _ ai.Request) (string, error) {
		return analysisReply(fmt.Sprintf("P%d", call), 50), nil
	}}
	a, _ := newTestApp(t, client)

	first, err := a.ScanImage(ctx, imageURL("one"))
	require.NoError(t, err)
	_, err = a.ScanImage(ctx, imageURL("two"))
	require.NoError(t, err)

	require.NoError(t, a.OpenHistoryEntry(ctx, first.ID))
	state := a.Store.State()
	assert.Equal(t, first.ID, state.CurrentAnalysis.ID)
	assert.Equal(t, nav.ScreenResults, a.Router.Current())

	assert.Error(t, a.OpenHistoryEntry(ctx, "no-such-id"))
}

func TestOnboardingFlow(t *testing.T) {
	client := &scriptedClient{respond: func(_ int, _ ai.Request) (string, error) { return "", nil }}
	a, kv := newTestApp(t, client)

	assert.Equal(t, nav.ScreenOnboarding, a.Router.Current())
	require.NoError(t, a.CompleteOnboarding(context.Background()))
	assert.Equal(t, nav.ScreenHome, a.Router.Current())

	// a fresh launch against the same storage starts at home
	st, err := store.Load(context.Background(), kv, nil)
	require.NoError(t, err)
	again := New(a.Gateway, st, nil)
	assert.Equal(t, nav.ScreenHome, again.Router.Current())
}

func TestCompareByID(t *testing.T) {
	ctx := context.Background()
	client := &scriptedClient{respond: func(call int, req ai.Request) (string, error) {
		if call <= 2 {
			return analysisReply(fmt.Sprintf("P%d", call), 50), nil
		}
		return `{"summary": "close call", "winner": "tie", "dimensions": [], "recommendation": "either"}`, nil
	}}
	a, _ := newTestApp(t, client)

	pa, err := a.ScanImage(ctx, imageURL("one"))
	require.NoError(t, err)
	pb, err := a.ScanImage(ctx, imageURL("two"))
	require.NoError(t, err)

	result, err := a.CompareByID(ctx, pa.ID, pb.ID)
	require.NoError(t, err)
	assert.Equal(t, "tie", result.Winner)
	assert.Equal(t, nav.ScreenComparison, a.Router.Current())

	_, err = a.CompareByID(ctx, pa.ID, "missing")
	assert.Error(t, err)
}
