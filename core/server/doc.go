// Package server holds the HTTP server configuration.
//
// While the main application entry point handles the server startup, this package
// defines the configuration structure and the derived values Fiber needs.
//
// # Configuration
//
// The Config struct defines the HTTP port, the API key checked by the auth middleware,
// the read timeout and the request body limit.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server settings
// and by cmd/start.go to build the Fiber app.
package server
