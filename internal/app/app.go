// Package app wires the gateway, the state store and the navigation router
// into user-level flows: scan, search, batch, compare, history and
// onboarding. Screens call these flows instead of touching the subsystems
// directly.
package app

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/aurascan/aurascan/internal/gateway"
	"github.com/aurascan/aurascan/internal/models"
	"github.com/aurascan/aurascan/internal/nav"
	"github.com/aurascan/aurascan/internal/store"
)

// lastRequest remembers the parameters of the most recent analyze/search so
// a manual retry can replay the exact same request.
type lastRequest struct {
	kind        string // "image" or "name"
	imageData   string
	productName string
}

// App coordinates the core subsystems on behalf of the screens.
type App struct {
	Gateway *gateway.Gateway
	Store   *store.Store
	Router  *nav.Router
	log     *zap.Logger

	mu   sync.Mutex
	last *lastRequest
}

// New assembles the application around an already-loaded store.
func New(gw *gateway.Gateway, st *store.Store, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		Gateway: gw,
		Store:   st,
		Router:  nav.NewRouter(st.State().Onboarded),
		log:     log,
	}
}

// ScanImage is the scan screen's success path: navigate to processing, run
// the analysis, record it, and land on results. On failure the cursor goes
// back to the scan screen and the typed error is returned for the screen to
// surface. A cancelled context resolves to (nil, nil): the user navigated
// away, which is not an error.
func (a *App) ScanImage(ctx context.Context, imageData string) (*models.ProductAnalysis, error) {
	a.remember(&lastRequest{kind: "image", imageData: imageData})
	a.Router.Navigate(nav.ScreenProcessing)

	profile := a.Store.State().User
	analysis, err := a.Gateway.AnalyzeImage(ctx, imageData, &profile)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			a.log.Debug("scan cancelled")
			a.Router.Navigate(nav.ScreenScan)
			return nil, nil
		}
		a.Router.Navigate(nav.ScreenScan)
		return nil, err
	}
	return analysis, a.finishAnalysis(ctx, analysis)
}

// SearchByName is the text-only variant of the scan flow.
func (a *App) SearchByName(ctx context.Context, productName string) (*models.ProductAnalysis, error) {
	a.remember(&lastRequest{kind: "name", productName: productName})
	a.Router.Navigate(nav.ScreenProcessing)

	profile := a.Store.State().User
	analysis, err := a.Gateway.AnalyzeByName(ctx, productName, &profile)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			a.Router.Navigate(nav.ScreenScan)
			return nil, nil
		}
		a.Router.Navigate(nav.ScreenScan)
		return nil, err
	}
	return analysis, a.finishAnalysis(ctx, analysis)
}

func (a *App) finishAnalysis(ctx context.Context, analysis *models.ProductAnalysis) error {
	if err := a.Store.RecordAnalysis(ctx, analysis); err != nil {
		return err
	}
	a.Router.Navigate(nav.ScreenResults)
	return nil
}

// Retry replays the last analyze or search request with the same parameters.
// Returns (nil, nil) when there is nothing to retry.
func (a *App) Retry(ctx context.Context) (*models.ProductAnalysis, error) {
	a.mu.Lock()
	last := a.last
	a.mu.Unlock()
	if last == nil {
		return nil, nil
	}
	switch last.kind {
	case "image":
		return a.ScanImage(ctx, last.imageData)
	case "name":
		return a.SearchByName(ctx, last.productName)
	}
	return nil, nil
}

func (a *App) remember(req *lastRequest) {
	a.mu.Lock()
	a.last = req
	a.mu.Unlock()
}

// OpenHistoryEntry selects a past analysis as current and shows results.
func (a *App) OpenHistoryEntry(ctx context.Context, id string) error {
	state := a.Store.State()
	analysis := state.FindAnalysis(id)
	if analysis == nil {
		return errors.New("analysis not found in history")
	}
	if err := a.Store.SelectAnalysis(ctx, analysis); err != nil {
		return err
	}
	a.Router.Navigate(nav.ScreenResults)
	return nil
}

// CompleteOnboarding finishes the first-run flow and lands on home.
func (a *App) CompleteOnboarding(ctx context.Context) error {
	if err := a.Store.CompleteOnboarding(ctx); err != nil {
		return err
	}
	a.Router.Navigate(nav.ScreenHome)
	return nil
}

// CompareByID compares two history entries and shows the comparison screen.
func (a *App) CompareByID(ctx context.Context, idA, idB string) (*models.ComparisonResult, error) {
	state := a.Store.State()
	pa := state.FindAnalysis(idA)
	pb := state.FindAnalysis(idB)
	if pa == nil || pb == nil {
		return nil, errors.New("both products must be in history")
	}
	result, err := a.Gateway.Compare(ctx, pa, pb)
	if err != nil {
		return nil, err
	}
	a.Router.Navigate(nav.ScreenComparison)
	return result, nil
}
