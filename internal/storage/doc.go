// Package storage persists tickd's run journal.
//
// The journal records one row per executed job (outcome, duration). It is
// observability data only: scheduling state itself is never persisted, and
// tasks are re-registered from config on every start.
//
// Drivers:
//   - "sqlite": single-file SQLite database (WAL, one writer connection)
//   - "file":   dependency-free JSON Lines append log
//
// An empty driver (or "none") disables storage; Open then returns (nil, nil)
// and callers treat the nil Store as "journal off".
package storage
