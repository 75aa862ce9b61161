// Package server holds configuration for the operator HTTP surface.
//
// The server exposes sync status and manual trigger endpoints; every request
// is protected by the configured API key (see core/middleware/auth).
package server
