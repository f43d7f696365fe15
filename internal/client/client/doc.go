// Package client contains client-side building blocks for mediavault.
//
// # Overview
//
// The package provides:
//  1. The API contract used by the CLI (see the Client interface).
//  2. HTTPClient, which talks to the server's JSON API, keeps the access
//     token in memory and maps HTTP answers to sentinel errors.
//  3. Local cache bootstrap (InitDatabase, RunMigrations): an SQLite database
//     with embedded goose migrations.
//
// # Error Handling
//
// Transport failures are reported as ErrUnavailable. Non-2xx answers are
// returned as *APIError, which unwraps to ErrUnauthorized or ErrNotFound
// where it applies.
package client
