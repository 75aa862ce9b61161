// Package middleware groups the HTTP middlewares used by the operator API:
// request ray-id assignment (rayid) and API key authentication (auth).
package middleware
