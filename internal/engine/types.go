package engine

import (
	"github.com/danieljhkim/stratum/internal/compositor"
	"github.com/danieljhkim/stratum/internal/graph"
	"github.com/danieljhkim/stratum/internal/hash"
)

// InitRequest represents a request to initialize the store.
type InitRequest struct{}

// InitResult represents the result of initializing the store.
type InitResult struct {
	// Location is the path of the new store
	Location string `json:"location"`
}

// ResolveRequest represents a request to resolve a profile's layering order.
type ResolveRequest struct {
	// Profile is the profile to resolve
	Profile string
}

// ResolveResult represents a resolved profile.
type ResolveResult struct {
	// Profile is the requested profile
	Profile string `json:"profile"`

	// Order is the resolver output: most specific profile first, root ancestors last
	Order []string `json:"order"`

	// Layers is the application sequence: main trees root-most first,
	// then end trees most specific first
	Layers []compositor.Layer `json:"layers"`
}

// CraftRequest represents a request to craft a profile into the store.
type CraftRequest struct {
	// Profile is the profile to craft
	Profile string

	// DryRun composes the staging tree and reports it without committing
	DryRun bool
}

// CraftResult represents the result of crafting a profile.
type CraftResult struct {
	ResolveResult

	// Message is the commit message used (empty on dry run)
	Message string `json:"message,omitempty"`

	// Committed is true when the staging tree was committed to the store
	Committed bool `json:"committed"`

	// Files lists every staged file with its digest (dry run only)
	Files []hash.Entry `json:"files,omitempty"`
}

// ApplyRequest represents a request to check the store out into the destination.
type ApplyRequest struct{}

// GitRequest represents a passthrough git command.
type GitRequest struct {
	// Args are passed to git after the store and destination scoping flags
	Args []string
}

// GraphRequest represents a request for the profile graph.
type GraphRequest struct{}

// GraphResult represents every profile and its declared parents.
type GraphResult struct {
	Nodes []graph.Node `json:"nodes"`
}
