package transport

import (
	"net/url"
	"strings"
)

// DefaultMaxCandidates caps the candidate list to bound worst-case latency.
const DefaultMaxCandidates = 4

// ResolverConfig describes how logical paths map to concrete targets.
// Relays are URL prefixes the primary target is appended to, URL-encoded
// (the "relay?url=<encoded target>" convention).
type ResolverConfig struct {
	BaseURL       string
	Relays        []string
	MaxCandidates int
}

// Resolver turns a logical endpoint path into an ordered list of candidate
// URLs. The order is a pure function of the configuration, so two calls with
// the same config always produce the same sequence.
type Resolver struct {
	cfg ResolverConfig
}

// NewResolver creates a Resolver for the given configuration.
func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.MaxCandidates < 1 {
		cfg.MaxCandidates = DefaultMaxCandidates
	}
	return &Resolver{cfg: cfg}
}

// Candidates resolves a logical path like "ratings" into concrete URLs:
// the primary target first, then each configured relay wrapping it.
func (r *Resolver) Candidates(logicalPath string) []string {
	target := joinURL(r.cfg.BaseURL, logicalPath)

	candidates := make([]string, 0, 1+len(r.cfg.Relays))
	candidates = append(candidates, target)
	for _, relay := range r.cfg.Relays {
		candidates = append(candidates, relay+url.QueryEscape(target))
	}

	if len(candidates) > r.cfg.MaxCandidates {
		candidates = candidates[:r.cfg.MaxCandidates]
	}
	return candidates
}

func joinURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
