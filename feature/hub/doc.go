// Package hub models the gear registry platform and its API: gear sets,
// traps, and the search/upload endpoints. The Hub is authoritative for
// physical deploy and retrieve events.
package hub
