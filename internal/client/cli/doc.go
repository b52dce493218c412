// Package cli provides the interactive samplekeeper console.
//
// App wires configuration, the local session database, the REST client,
// the session manager and the entity console, then runs a line-oriented
// REPL. While signed out the auth commands are available (login, register,
// verify-email, forgot-password, ...); once signed in the tab commands work
// on the active entity kind: list, search, show, new, edit and delete.
//
// The REPL is started via App.Run, which blocks until the user exits or the
// input ends.
package cli
