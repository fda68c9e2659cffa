// Package client contains the transports the authkeeper CLI uses to reach
// the server, and the bootstrap of its local state database.
//
// # Overview
//
//  1. Client is the transport-agnostic contract: Register, Login and Me,
//     each returning an envelope.Result.
//  2. HTTPClient speaks the JSON API; GRPCClient speaks the
//     authkeeper.v1.AuthService and injects the access token with a unary
//     interceptor.
//  3. InitDatabase and RunMigrations open the SQLite state database and
//     apply the embedded goose migrations.
//
// # Error Handling
//
// Server failures are decoded from the structured {error, code, fields}
// document. Older servers that serialized that document into the message
// are still understood: the message is unpacked and its code kept when it
// is a declared one. Transport faults become ServerError results.
package client
