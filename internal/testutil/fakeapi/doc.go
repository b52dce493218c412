// Package fakeapi is an in-memory implementation of the sample tracking REST
// backend. It serves the auth and entity endpoints under /api with the same
// JSON shapes and error bodies as the real service, which makes it usable
// from tests (through httptest) and as a local demo server (cmd/devapi).
//
// State lives in memory only and is lost when the server stops.
package fakeapi
