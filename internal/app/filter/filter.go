// Package filter provides the filter chain that screens excerpts before they are posted.
package filter

import (
	"context"

	"github.com/osa030/lyricpost/internal/domain/track"
)

// Candidate is an excerpt about to be posted.
type Candidate struct {
	Track track.Identity
	Lines []string
	Text  string // Lines joined with newlines
}

// Result represents the result of a filter check.
type Result struct {
	Accepted bool
	Code     string // e.g., "profane_lyrics", "excerpt_too_short"
}

// Accept returns an accepted result.
func Accept() Result {
	return Result{Accepted: true}
}

// Reject returns a rejected result with the given code.
func Reject(code string) Result {
	return Result{Accepted: false, Code: code}
}

// Filter is the interface for excerpt filters.
type Filter interface {
	// Name returns the filter name (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// ReturnCodes returns the codes this filter can return.
	ReturnCodes() []string
	// ValidateConfig validates the filter configuration.
	ValidateConfig(settings map[string]any) error
	// Check performs the filter check.
	Check(ctx context.Context, c Candidate) Result
}

// registry holds registered filter factories.
var registry = make(map[string]func() Filter)

// Register registers a filter factory.
func Register(name string, factory func() Filter) {
	registry[name] = factory
}

// GetRegistered returns all registered filter factories.
func GetRegistered() map[string]func() Filter {
	return registry
}
