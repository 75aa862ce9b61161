// Package status is the operator surface of the sync engine: current
// driver state, recent cycle history, and a manual trigger endpoint.
package status
