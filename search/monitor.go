package search

import (
	"github.com/poiesic/boox/result"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterExpansion(query string)
	CacheHit(query string, results int)
	AfterEncoding(codes []string)
	AfterScoring(candidates int)
	Finish(results []*result.SearchResult, err error)
}

// NoopMonitor returns a SearchMonitor that ignores every event.
func NoopMonitor() SearchMonitor {
	return &noopMonitor{}
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                           {}
func (n *noopMonitor) AfterExpansion(_ string)                  {}
func (n *noopMonitor) CacheHit(_ string, _ int)                 {}
func (n *noopMonitor) AfterEncoding(_ []string)                 {}
func (n *noopMonitor) AfterScoring(_ int)                       {}
func (n *noopMonitor) Finish(_ []*result.SearchResult, _ error) {}
