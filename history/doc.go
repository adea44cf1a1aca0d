// Package history records the queries an engine has answered.
//
// A Tracker keeps a bounded, newest-first list of recent queries and an
// unbounded count per distinct query. The counts drive popularity rankings and
// prefix suggestions, and are the only part persisted in engine snapshots.
package history
