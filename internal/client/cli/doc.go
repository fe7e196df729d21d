// Package cli provides the interactive credkeeper command-line client.
//
// It wires configuration, the local session store and the gRPC client into a
// REPL. A session saved by an earlier run is restored on start, so a user
// stays signed in until logout or until the refresh bearer lapses.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
