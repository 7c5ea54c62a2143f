// Package nav is a single-cursor screen router with one level of
// previous-screen memory. Transitions are unconditional; screens own the
// decision of where to go next.
package nav

import "sync"

// Screen identifies one application screen.
type Screen string

const (
	ScreenOnboarding Screen = "onboarding"
	ScreenHome       Screen = "home"
	ScreenScan       Screen = "scan"
	ScreenProcessing Screen = "processing"
	ScreenResults    Screen = "results"
	ScreenTools      Screen = "tools"
	ScreenSettings   Screen = "settings"
	ScreenHistory    Screen = "history"
	ScreenDeepDive   Screen = "deep-dive"
	ScreenComparison Screen = "comparison"
	ScreenAnalytics  Screen = "analytics"
)

// Router tracks the current screen and the one before it.
type Router struct {
	mu       sync.Mutex
	current  Screen
	previous Screen
	hasPrev  bool
}

// NewRouter creates a router whose initial screen depends on whether
// onboarding has been completed.
func NewRouter(onboarded bool) *Router {
	initial := ScreenOnboarding
	if onboarded {
		initial = ScreenHome
	}
	return &Router{current: initial}
}

// Navigate moves to next unconditionally, remembering the screen left behind.
func (r *Router) Navigate(next Screen) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.previous = r.current
	r.hasPrev = true
	r.current = next
}

// Back navigates to the previous screen, if there is one. Back is itself a
// navigation: after it, the previous screen is the one just left.
func (r *Router) Back() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.hasPrev {
		return false
	}
	r.previous, r.current = r.current, r.previous
	return true
}

// Current returns the screen being shown.
func (r *Router) Current() Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Previous returns the last screen and whether one exists.
func (r *Router) Previous() (Screen, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.previous, r.hasPrev
}
