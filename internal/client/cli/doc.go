// Package cli provides the interactive mediavault command-line client.
//
// It wires configuration, the local cache, the API services and a REPL.
// A background watcher pings the server and switches between online and
// offline mode; while offline, list and show are answered from the cache.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
