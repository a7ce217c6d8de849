package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opendaw/opendaw-mcp/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "objects.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Put(ctx, "projects/p1", []byte(`{"id":"p1"}`), store.ContentTypeJSON))

	data, err := s.Get(ctx, "projects/p1")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"id":"p1"}`), data)
}

func TestPutOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Put(ctx, "k", []byte("v1"), ""))
	require.NoError(t, s.Put(ctx, "k", []byte("v2"), ""))

	data, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), data)
}

func TestGetMissingKey(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "projects/nope")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestListByPrefix(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Put(ctx, "projects/a", []byte("1"), store.ContentTypeJSON))
	require.NoError(t, s.Put(ctx, "projects/b", []byte("22"), store.ContentTypeJSON))
	require.NoError(t, s.Put(ctx, "audio/p1/x", []byte("333"), store.ContentTypeWAV))

	infos, err := s.List(ctx, "projects/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	require.Equal(t, "projects/a", infos[0].Key)
	require.Equal(t, int64(1), infos[0].Size)
	require.Equal(t, "projects/b", infos[1].Key)
	require.False(t, infos[0].LastModified.IsZero())
}

func TestListEmptyPrefix(t *testing.T) {
	s := newTestStore(t)
	infos, err := s.List(context.Background(), "exports/")
	require.NoError(t, err)
	require.Empty(t, infos)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Put(ctx, "k", []byte("v"), ""))
	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))

	_, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "objects.db")

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "projects/p1", []byte("doc"), store.ContentTypeJSON))
	require.NoError(t, s.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	data, err := reopened.Get(ctx, "projects/p1")
	require.NoError(t, err)
	require.Equal(t, []byte("doc"), data)
}
