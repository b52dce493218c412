// Package common contains shared constants and sentinel errors used across
// samplekeeper components.
package common

// AuthorizationHeaderName is the HTTP header carrying the session token on
// outbound requests.
const AuthorizationHeaderName = "Authorization"

// DefaultTokenScheme is the scheme prefix placed before the session token
// ("Token <value>"), as expected by the sample tracking backend.
const DefaultTokenScheme = "Token"

// RequestIDHeaderName tags every outbound request so backend logs can be
// correlated with client diagnostics.
const RequestIDHeaderName = "X-Request-ID"

// Persisted session keys.
const (
	SessionTokenKey = "token"
	SessionUserKey  = "user"
)
