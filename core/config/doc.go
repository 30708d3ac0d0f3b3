// Package config provides configuration management for the Archive Manager.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Archive: digital archive API connection (domain, port, token)
//   - LabDB: lab database API connection (host, port, credentials)
//   - Server: emulator HTTP server settings (port, API key, content store)
//   - Database: MySQL/SQLite connection details for the emulator
//   - Storage: S3/MinIO credentials and bucket settings
//   - Log: Logging level and format
//
// Environment variables map to nested keys with underscores, e.g.
// ARCHIVE_TOKEN sets archive.token and SERVER_PORT sets server.port.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Archive.Domain)
package config
