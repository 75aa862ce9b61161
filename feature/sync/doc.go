// Package sync orchestrates one reconciliation cycle end to end:
// concurrent downloads from the Hub and every Tracker destination,
// a synchronous resolve over the complete snapshots, and independent
// uploads in both directions. Cycles are stateless; only the audit trail
// persists.
package sync
