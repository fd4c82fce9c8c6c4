package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestFactories_ReturnRepos(t *testing.T) {
	db := newDB(t)

	for name, m := range map[string]RepositoryManager{
		"postgres": NewPostgresRepositoryManager(),
		"memory":   NewMemoryRepositoryManager(),
	} {
		t.Run(name, func(t *testing.T) {
			assert.NotNil(t, m.Users(db))
			assert.NotNil(t, m.RefreshTokens(db))
			assert.NotNil(t, m.Dreams(db))
			assert.NotNil(t, m.Notifications(db))
		})
	}
}

func TestMemoryManager_SharesState(t *testing.T) {
	m := NewMemoryRepositoryManager()
	assert.Same(t, m.Dreams(nil), m.Dreams(newDB(t)))
	assert.NoError(t, m.RunMigrations(context.Background(), nil))
}

func TestRunMigrations(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db))
	assert.Equal(t, ".", gotDir)

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	assert.EqualError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db), "boom")
}
