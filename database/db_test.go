package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(filepath.Join(t.TempDir(), "store.sqlite"))
	t.Cleanup(func() { m.Close() })
	return m
}

func TestManagerOpenIsCached(t *testing.T) {
	m := newFileManager(t)

	first, err := m.Open()
	require.NoError(t, err)
	second, err := m.Open()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestManagerForceReopenKeepsData(t *testing.T) {
	m := newFileManager(t)

	db, err := m.Open()
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE t (n INTEGER)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO t (n) VALUES (1), (2)")
	require.NoError(t, err)

	reopened, err := m.ForceReopen()
	require.NoError(t, err)
	assert.NotSame(t, db, reopened)

	var count int
	require.NoError(t, reopened.QueryRow("SELECT COUNT(*) FROM t").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestManagerCheckpointAndVacuum(t *testing.T) {
	m := newFileManager(t)

	db, err := m.Open()
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE t (n INTEGER)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO t (n) VALUES (1)")
	require.NoError(t, err)

	require.NoError(t, m.Checkpoint())
	require.NoError(t, m.Vacuum())

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM t").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSetDefaultPointsGlobalHandle(t *testing.T) {
	prev := defaultManager
	prevDB := DB
	t.Cleanup(func() {
		defaultManager = prev
		DB = prevDB
	})

	m := newFileManager(t)
	require.NoError(t, SetDefault(m))
	assert.Same(t, m, Default())
	require.NotNil(t, DB)
	require.NoError(t, DB.Ping())

	require.NoError(t, ForceReopen())
	require.NoError(t, DB.Ping())
}
