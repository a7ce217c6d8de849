package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opendaw/opendaw-mcp/internal/store"
)

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Put(ctx, "projects/p1", []byte("doc"), store.ContentTypeJSON))

	data, err := s.Get(ctx, "projects/p1")
	require.NoError(t, err)
	require.Equal(t, []byte("doc"), data)
}

func TestGetMissingKey(t *testing.T) {
	s := New()
	_, err := s.Get(context.Background(), "projects/nope")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestListFiltersByPrefixAndSorts(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Put(ctx, "projects/b", []byte("2"), store.ContentTypeJSON))
	require.NoError(t, s.Put(ctx, "projects/a", []byte("1"), store.ContentTypeJSON))
	require.NoError(t, s.Put(ctx, "audio/p1/x", []byte("3"), store.ContentTypeWAV))

	infos, err := s.List(ctx, "projects/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	require.Equal(t, "projects/a", infos[0].Key)
	require.Equal(t, "projects/b", infos[1].Key)
	require.Equal(t, int64(1), infos[0].Size)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Put(ctx, "projects/p1", []byte("doc"), store.ContentTypeJSON))
	require.NoError(t, s.Delete(ctx, "projects/p1"))
	require.NoError(t, s.Delete(ctx, "projects/p1"))

	_, err := s.Get(ctx, "projects/p1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestFailingMode(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.SetFailing(true)

	require.ErrorIs(t, s.Put(ctx, "k", nil, ""), store.ErrUnavailable)
	_, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, store.ErrUnavailable)
	_, err = s.List(ctx, "")
	require.ErrorIs(t, err, store.ErrUnavailable)
	require.ErrorIs(t, s.Delete(ctx, "k"), store.ErrUnavailable)

	s.SetFailing(false)
	require.NoError(t, s.Put(ctx, "k", []byte("v"), ""))
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Put(ctx, "k", []byte("abc"), ""))
	data, err := s.Get(ctx, "k")
	require.NoError(t, err)
	data[0] = 'z'

	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), again)
}
