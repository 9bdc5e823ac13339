package kvstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/kvstore"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*kvstore.Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return kvstore.NewRedis(rdb, "test"), mr
}

// exerciseStore runs the behaviour every Store implementation shares
func exerciseStore(t *testing.T, s kvstore.Store) {
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "access_token")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "access_token", "a1"))
	require.NoError(t, s.Set(ctx, "refresh_token", "r1"))
	v, ok, err := s.Get(ctx, "access_token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a1", v)

	require.NoError(t, s.Set(ctx, "access_token", "a2"))
	v, _, err = s.Get(ctx, "access_token")
	require.NoError(t, err)
	require.Equal(t, "a2", v)

	require.NoError(t, s.Delete(ctx, "access_token", "refresh_token", "missing"))
	_, ok, err = s.Get(ctx, "refresh_token")
	require.NoError(t, err)
	require.False(t, ok)

	require.Error(t, s.Set(ctx, "", "x"))
	_, _, err = s.Get(ctx, "")
	require.Error(t, err)
}

func TestStores(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		exerciseStore(t, kvstore.NewMemory())
	})

	t.Run("file", func(t *testing.T) {
		exerciseStore(t, kvstore.NewFile(filepath.Join(t.TempDir(), "nested", "session.json")))
	})

	t.Run("sealed file", func(t *testing.T) {
		exerciseStore(t, kvstore.NewFile(filepath.Join(t.TempDir(), "session.json"), kvstore.WithPassphrase("hunter2")))
	})

	t.Run("redis", func(t *testing.T) {
		s, _ := newRedisStore(t)
		exerciseStore(t, s)
	})
}

func TestFile_SharedBetweenInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	require.NoError(t, kvstore.NewFile(path).Set(ctx, "user_data", `{"username":"a"}`))

	v, ok, err := kvstore.NewFile(path).Get(ctx, "user_data")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"username":"a"}`, v)
}

func TestFile_SealedContentIsNotPlaintext(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	s := kvstore.NewFile(path, kvstore.WithPassphrase("correct horse"))
	require.NoError(t, s.Set(ctx, "access_token", "very-secret-token"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "very-secret-token")

	_, _, err = kvstore.NewFile(path, kvstore.WithPassphrase("wrong")).Get(ctx, "access_token")
	require.ErrorIs(t, err, autherrors.ErrStoreCorrupt)

	_, _, err = kvstore.NewFile(path).Get(ctx, "access_token")
	require.ErrorIs(t, err, autherrors.ErrStoreCorrupt)
}

func TestFile_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := kvstore.NewFile(path).Get(context.Background(), "access_token")
	require.ErrorIs(t, err, autherrors.ErrStoreCorrupt)
}

func TestFile_UnreadableDocumentCanBeCleared(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	plain := kvstore.NewFile(path)
	require.NoError(t, plain.Set(ctx, "access_token", "a"))
	require.NoError(t, plain.Set(ctx, "refresh_token", "r"))

	sealed := kvstore.NewFile(path, kvstore.WithPassphrase("pw"))
	_, _, err := sealed.Get(ctx, "access_token")
	require.ErrorIs(t, err, autherrors.ErrStoreCorrupt)

	require.NoError(t, sealed.Delete(ctx, "access_token", "refresh_token"))
	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)

	_, ok, err := sealed.Get(ctx, "access_token")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFile_SetReplacesUnreadableDocument(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := kvstore.NewFile(path)
	require.NoError(t, s.Set(ctx, "access_token", "a1"))
	v, ok, err := s.Get(ctx, "access_token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a1", v)
}

func TestRedis_UsesPrefix(t *testing.T) {
	s, mr := newRedisStore(t)
	require.NoError(t, s.Set(context.Background(), "access_token", "abc"))

	v, err := mr.Get("test:access_token")
	require.NoError(t, err)
	require.Equal(t, "abc", v)
}

func TestRedis_Unavailable(t *testing.T) {
	s, mr := newRedisStore(t)
	mr.Close()

	_, _, err := s.Get(context.Background(), "access_token")
	require.ErrorIs(t, err, autherrors.ErrStoreUnavailable)
}
