// Package config provides configuration management for the gear sync service.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: MySQL connection details for the cycle audit store
//   - Storage: S3/MinIO credentials for the payload archive
//   - Log: Logging level and format
//   - Hub: gear registry API credentials and limits
//   - Tracker: tracking platform API credentials and paging
//   - Sync: window, interval and recency grace settings
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
