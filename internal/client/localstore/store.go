// Package localstore keeps the client's persistent browser-like state in the
// local database: the cached identity snapshot and the API's cookies.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophsocial/internal/dbx"
)

const (
	identityKey = "user"
	cookiesKey  = "cookies"
)

// storedCookie is the persisted form of an http.Cookie. Only the fields a
// jar needs to send the cookie back are kept.
type storedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path,omitempty"`
	Expires time.Time `json:"expires,omitempty"`
}

type Store struct {
	db   *sql.DB
	repo metadata.Repository
}

func New(db *sql.DB) *Store {
	return &Store{db: db, repo: metadata.NewSQLiteRepository(db)}
}

// LoadIdentity returns the cached identity snapshot, or nil when none is stored.
func (s *Store) LoadIdentity(ctx context.Context) (*models.Identity, error) {
	var id models.Identity
	err := metadata.GetJSON(ctx, s.repo, identityKey, &id)
	if errors.Is(err, metadata.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (s *Store) SaveIdentity(ctx context.Context, id *models.Identity) error {
	if id == nil {
		return s.ClearIdentity(ctx)
	}
	return metadata.SetJSON(ctx, s.repo, identityKey, id)
}

func (s *Store) ClearIdentity(ctx context.Context) error {
	return s.repo.Delete(ctx, identityKey)
}

func (s *Store) LoadCookies(ctx context.Context) ([]*http.Cookie, error) {
	var stored []storedCookie
	err := metadata.GetJSON(ctx, s.repo, cookiesKey, &stored)
	if errors.Is(err, metadata.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value, Path: c.Path, Expires: c.Expires})
	}
	return out, nil
}

// SaveCookies replaces the persisted cookie set. An empty set removes the key.
func (s *Store) SaveCookies(ctx context.Context, cookies []*http.Cookie) error {
	if len(cookies) == 0 {
		return s.repo.Delete(ctx, cookiesKey)
	}
	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value, Path: c.Path, Expires: c.Expires})
	}
	return metadata.SetJSON(ctx, s.repo, cookiesKey, stored)
}

// ClearSession removes the identity snapshot and the cookies together.
func (s *Store) ClearSession(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, identityKey); err != nil {
			return err
		}
		return repo.Delete(ctx, cookiesKey)
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// SessionCookie returns the value of the persisted cookie called name.
func (s *Store) SessionCookie(ctx context.Context, name string) (string, bool, error) {
	cookies, err := s.LoadCookies(ctx)
	if err != nil {
		return "", false, err
	}
	for _, c := range cookies {
		if c.Name == name && c.Value != "" {
			return c.Value, true, nil
		}
	}
	return "", false, nil
}
