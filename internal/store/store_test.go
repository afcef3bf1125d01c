package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, KeyPosts, []byte(`[]`)))
	got, err := s.Get(ctx, KeyPosts)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, s.Set(ctx, KeyPosts, []byte(`[{"id":"p1"}]`)))
	got, err = s.Get(ctx, KeyPosts)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"p1"}]`, string(got))

	require.NoError(t, s.Delete(ctx, KeyPosts))
	_, err = s.Get(ctx, KeyPosts)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.Delete(ctx, KeyPosts), "deleting a missing key")
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf))
	buf[0] = 'z'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestSQLite(t *testing.T) {
	url := "sqlite://" + filepath.Join(t.TempDir(), "kv.db")
	s, err := Open(context.Background(), url, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.IsType(t, &SQL{}, s)
	exerciseStore(t, s)
}

func TestRedis(t *testing.T) {
	url := os.Getenv("WHISPHAVEN_TEST_REDIS_URL")
	if url == "" {
		t.Skip("WHISPHAVEN_TEST_REDIS_URL not set")
	}
	s, err := Open(context.Background(), url, nil)
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestMongo(t *testing.T) {
	url := os.Getenv("WHISPHAVEN_TEST_MONGO_URL")
	if url == "" {
		t.Skip("WHISPHAVEN_TEST_MONGO_URL not set")
	}
	s, err := Open(context.Background(), url, nil)
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, "", nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(ctx, "memory://", nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	_, err = Open(ctx, "ftp://example.com", nil)
	assert.Error(t, err)
}

func TestUserKey(t *testing.T) {
	assert.Equal(t, "whispHavenUser:user_1", UserKey("user_1"))
}
