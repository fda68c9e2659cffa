// Package cli provides the interactive authkeeper command-line client.
//
// It wires configuration, the local state database, the selected transport
// (HTTP or gRPC) and the session state machine behind a small REPL:
// register, login, logout, whoami and status. A token saved by an earlier
// run is restored on start, so a signed-in user stays signed in until the
// token expires or they log out.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
