package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parley/internal/core/record"
	"github.com/hay-kot/parley/internal/core/record/recordtest"
)

func open(t *testing.T, path string) *Store {
	t.Helper()

	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore(t *testing.T) {
	recordtest.Run(t, func(t *testing.T, now func() time.Time) record.Database {
		return open(t, filepath.Join(t.TempDir(), "records.db")).WithClock(now)
	})
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "records.db")

	s, err := Open(path)
	require.NoError(t, err)

	r := record.New("Message", "m1")
	r.Fields["text"] = `quoted "text"`
	r.References["board"] = record.Reference{RecordName: "b1", Action: record.ActionDeleteSelf}
	saved, err := s.Save(ctx, r)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	got, err := open(t, path).Fetch(ctx, "Message", "m1")
	require.NoError(t, err)
	assert.Equal(t, `quoted "text"`, got.Fields["text"])
	assert.Equal(t, r.References, got.References)
	assert.True(t, saved.CreationDate.Equal(*got.CreationDate))
}

func TestJSONPath(t *testing.T) {
	assert.Equal(t, `$."user"`, jsonPath("user"))
	assert.Equal(t, `$."a\"b"`, jsonPath(`a"b`))
}
