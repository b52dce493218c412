package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteSessionStore_RoundTrip(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "tok", alice))
	token, user := persisted(t, store)
	assert.Equal(t, "tok", token)
	assert.Equal(t, *alice, *user)

	require.NoError(t, store.Clear(ctx))
	token, user = persisted(t, store)
	assert.Empty(t, token)
	assert.Nil(t, user)
}

func TestSQLiteSessionStore_IncompleteSessionIsAbsent(t *testing.T) {
	store, db := setupStore(t)
	_, err := db.Exec(`INSERT INTO credentials(key, value) VALUES ('token', 'tok')`)
	require.NoError(t, err)

	token, user := persisted(t, store)
	assert.Empty(t, token)
	assert.Nil(t, user)
}
