//go:build integration

package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"mentionlab/internal/config"
	"mentionlab/internal/platform"
)

func newFixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<!DOCTYPE html><html><body><p>页面</p></body></html>`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	cfg := config.Default()
	cfg.Headless = true
	mgr := NewManager(cfg, nil)
	t.Cleanup(func() { _ = mgr.CloseAll() })
	return mgr
}

func TestContextReusedWhilePageOpen(t *testing.T) {
	srv := newFixtureServer(t)
	mgr := newTestManager(t)
	ctx := context.Background()
	rec := &platform.Record{ID: "doubao", Name: "豆包", URL: srv.URL}

	c1, err := mgr.Context(ctx, rec)
	require.NoError(t, err)

	page, err := mgr.NewPage(ctx, c1, srv.URL)
	require.NoError(t, err)

	// Same instance while the context still owns an open page.
	c2, err := mgr.Context(ctx, rec)
	require.NoError(t, err)
	require.Same(t, c1, c2)

	// A pageless context is stale and must be replaced, even though the
	// default context's initial tab is still open browser-wide.
	require.NoError(t, page.Close())
	c3, err := mgr.Context(ctx, rec)
	require.NoError(t, err)
	require.NotSame(t, c1, c3)
}

func TestCloseContextLeavesOtherPlatformsAlone(t *testing.T) {
	srv := newFixtureServer(t)
	mgr := newTestManager(t)
	ctx := context.Background()

	recA := &platform.Record{ID: "doubao", Name: "豆包", URL: srv.URL}
	recB := &platform.Record{ID: "kimi", Name: "Kimi", URL: srv.URL}

	cA, err := mgr.Context(ctx, recA)
	require.NoError(t, err)
	_, err = mgr.NewPage(ctx, cA, srv.URL)
	require.NoError(t, err)

	cB, err := mgr.Context(ctx, recB)
	require.NoError(t, err)
	pageB, err := mgr.NewPage(ctx, cB, srv.URL)
	require.NoError(t, err)

	mgr.CloseContext(recA.ID)

	// B's page must survive A's teardown.
	html, err := pageB.HTML()
	require.NoError(t, err)
	require.Contains(t, html, "页面")

	n, err := cB.pageCount()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
