// Package client contains the client-side building blocks for talking to
// the samplekeeper REST backend.
//
// # Overview
//
// The package provides:
//  1. A transport contract (see the Client interface) covering the generic
//     authenticated call (Do) and one wrapper per auth endpoint.
//  2. A concrete net/http implementation (see HTTPClient) that encodes JSON
//     bodies, attaches the session token, tags every request with an
//     X-Request-ID and maps failures to typed errors.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations)
//     wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// A request that never reached the server fails with a *TransportError,
// which matches ErrUnavailable. A non-2xx response fails with an *APIError
// whose Message follows the backend's error shapes: the first
// non_field_errors entry, else detail, else message, else the raw JSON body,
// and "Error {status}: {text}" when the body is not JSON. A 401 APIError
// matches ErrUnauthorized.
//
// HTTPClient is safe for concurrent use. All operations accept a
// context.Context and honor cancellation.
package client
