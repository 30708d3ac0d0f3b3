// Package server holds the HTTP server configuration and constants.
//
// While the serve command handles the server startup, this package defines
// the configuration structures and valid values for server settings, such
// as supported content store backends.
//
// # Configuration
//
// The Config struct defines the HTTP port, API key, and the content store
// backend (memory, storage) used for uploaded file content.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server settings
// and by the emulator feature to validate the content store selection.
package server
