package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"mentionlab/internal/platform"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSeedAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Seed(ctx))

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, len(platform.SupportedPlatforms))
	for _, rec := range records {
		require.False(t, rec.IsLoggedIn)
		require.Empty(t, rec.SessionData)
	}

	// Seeding again must not duplicate or reset anything.
	require.NoError(t, s.SetLoggedIn(ctx, "doubao", true))
	require.NoError(t, s.Seed(ctx))

	rec, err := s.Get(ctx, "doubao")
	require.NoError(t, err)
	require.True(t, rec.IsLoggedIn)
}

func TestGetUnknownPlatform(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx))

	_, err := s.Get(ctx, "chatgpt")
	require.ErrorIs(t, err, platform.ErrNotFound)
}

func TestSaveSession(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx))

	blob := `{"cookies":[],"origins":[]}`
	require.NoError(t, s.SaveSession(ctx, "kimi", blob))

	rec, err := s.Get(ctx, "kimi")
	require.NoError(t, err)
	require.Equal(t, blob, rec.SessionData)

	require.ErrorIs(t, s.SaveSession(ctx, "chatgpt", blob), ErrNotFound)
}

func TestLogoutClearsSession(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx))

	require.NoError(t, s.SaveSession(ctx, "zhipu", `{"cookies":[],"origins":[]}`))
	require.NoError(t, s.SetLoggedIn(ctx, "zhipu", true))

	rec, err := s.Get(ctx, "zhipu")
	require.NoError(t, err)
	require.True(t, rec.IsLoggedIn)
	require.NotEmpty(t, rec.SessionData)

	require.NoError(t, s.SetLoggedIn(ctx, "zhipu", false))

	rec, err = s.Get(ctx, "zhipu")
	require.NoError(t, err)
	require.False(t, rec.IsLoggedIn)
	require.Empty(t, rec.SessionData)
}

func TestRecordAndListQueries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx))

	id1, err := s.RecordQuery(ctx, "doubao", "问题一", "回答一", `["https://a.com"]`)
	require.NoError(t, err)
	require.NotEmpty(t, id1)

	id2, err := s.RecordQuery(ctx, "doubao", "问题二", "回答二", "")
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)

	queries, err := s.QueriesForPlatform(ctx, "doubao")
	require.NoError(t, err)
	require.Len(t, queries, 2)
	for _, q := range queries {
		require.Equal(t, "doubao", q.PlatformID)
		require.False(t, q.CreatedAt.IsZero())
	}

	queries, err = s.QueriesForPlatform(ctx, "kimi")
	require.NoError(t, err)
	require.Empty(t, queries)
}
