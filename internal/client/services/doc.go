// Package services contains the application services of the samplekeeper
// client.
//
// SessionManager owns the authentication lifecycle: it restores a persisted
// session at startup, performs the auth flows and is the only component that
// issues authenticated requests. Its public operations never return errors;
// they report a models.AuthResult instead. IssueRequest is the exception and
// its single caller, the Console, converts failures into transient notices.
//
// Console is the generic CRUD orchestrator driven by an entities.Registry.
// It keeps one collection per entity kind, the active kind, the search term,
// the edit form and the current notice.
package services
