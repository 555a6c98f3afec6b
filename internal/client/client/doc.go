// Package client is the repoboard gRPC client used by the client core.
//
// # Overview
//
// GRPCClient manages one connection to the server, speaks the JSON codec,
// injects the access token into every call via an interceptor and
// transparently refreshes an expired access token once per call. Refreshes
// triggered by concurrent calls are coalesced. Tokens can be kept in a
// TokenStore so a later process resumes the session without signing in.
//
// # Error Handling
//
// gRPC status codes are mapped back to the sentinels of package common so
// callers use errors.Is the same way on both sides of the wire. Validation
// failures come back as *common.ValidationError with the per-field messages
// the server reported. ErrUnavailable reports an unreachable server.
//
// GRPCClient implements widgetstate.Persister, so widget providers write
// through it directly.
package client
