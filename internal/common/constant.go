// Package common contains shared constants and sentinel errors used across
// authkeeper components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultRole is assigned to newly registered users and substituted into
// issued tokens whenever a user carries no role. Every layer reads it from
// here.
const DefaultRole = "User"
