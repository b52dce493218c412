// Package credentials persists the client session (token and user profile)
// as opaque key/value pairs in the local SQLite database.
//
// Get returns (nil, nil) for an absent key. All methods accept a dbx.DBTX so
// they can run on *sql.DB or inside dbx.WithTx.
package credentials
