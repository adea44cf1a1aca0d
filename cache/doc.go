// Package cache memoizes ranked search results per normalized query.
//
// Entries hold the complete ranking so any limit can be served from one
// computation. The cache never expires entries on its own; owners call Reset
// whenever the underlying index changes.
package cache
