// Package database handles the connection to the cycle audit database.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly configure
// MySQL connections based on the application's configuration. The audit store is an
// optional dependency: callers are expected to handle a failed connection gracefully
// and run without cycle history.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Warn("Audit database unavailable", err)
//	}
package database
