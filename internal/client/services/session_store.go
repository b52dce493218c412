package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/samplekeeper/internal/client/models"
	"github.com/dmitrijs2005/samplekeeper/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/samplekeeper/internal/common"
	"github.com/dmitrijs2005/samplekeeper/internal/dbx"
)

// SessionStore is the durable side of the session: the token and the
// serialized user profile.
type SessionStore interface {
	// Load returns ("", nil, nil) when no complete session is persisted.
	Load(ctx context.Context) (string, *models.User, error)
	Save(ctx context.Context, token string, user *models.User) error
	Clear(ctx context.Context) error
}

// SQLiteSessionStore keeps the session in the credentials table.
type SQLiteSessionStore struct {
	db *sql.DB
}

func NewSQLiteSessionStore(db *sql.DB) *SQLiteSessionStore {
	return &SQLiteSessionStore{db: db}
}

func (s *SQLiteSessionStore) Load(ctx context.Context) (string, *models.User, error) {
	repo := credentials.NewSQLiteRepository(s.db)

	token, err := repo.Get(ctx, common.SessionTokenKey)
	if err != nil {
		return "", nil, err
	}
	rawUser, err := repo.Get(ctx, common.SessionUserKey)
	if err != nil {
		return "", nil, err
	}
	if len(token) == 0 || len(rawUser) == 0 {
		return "", nil, nil
	}

	var user models.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		return "", nil, fmt.Errorf("decode persisted user: %w", err)
	}
	return string(token), &user, nil
}

func (s *SQLiteSessionStore) Save(ctx context.Context, token string, user *models.User) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := credentials.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.SessionTokenKey, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, common.SessionUserKey, rawUser)
	})
}

func (s *SQLiteSessionStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := credentials.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, common.SessionTokenKey); err != nil {
			return err
		}
		return repo.Delete(ctx, common.SessionUserKey)
	})
}
