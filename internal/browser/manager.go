// Package browser owns the shared Chrome process and the long-lived,
// cookie-isolated browsing context each platform gets.
package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mentionlab/internal/config"
	"mentionlab/internal/platform"
	"mentionlab/internal/session"
)

// Context is one isolated browsing context bound 1:1 to a platform id.
// It is owned exclusively by the Manager and must not outlive it.
type Context struct {
	PlatformID string

	browser *rod.Browser // incognito context handle
	parent  *rod.Browser
	state   *session.State // last restored/captured storage state
}

// Manager lazily launches a single shared browser and hands out one
// context per platform. Concurrent asks against the same platform must
// serialize via Lock; distinct platforms are fully isolated.
type Manager struct {
	cfg config.Config
	log *zap.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	lc       *launcher.Launcher
	contexts map[string]*Context
	locks    map[string]*sync.Mutex
}

// NewManager creates a manager; the browser launches on first use.
func NewManager(cfg config.Config, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		cfg:      cfg,
		log:      log,
		contexts: make(map[string]*Context),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Lock returns the serialization lock for one platform id. Callers hold
// it for the whole ask so page-level DOM heuristics never cross-talk.
func (m *Manager) Lock(platformID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[platformID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[platformID] = l
	}
	return l
}

// Browser returns the shared browser, launching it if needed.
func (m *Manager) Browser(ctx context.Context) (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.browserLocked(ctx)
}

func (m *Manager) browserLocked(ctx context.Context) (*rod.Browser, error) {
	if m.browser != nil {
		if _, err := m.browser.Version(); err == nil {
			return m.browser, nil
		}
		m.log.Warn("stale browser connection, relaunching")
		_ = m.browser.Close()
		if m.lc != nil {
			m.lc.Kill()
			m.lc.Cleanup()
			m.lc = nil
		}
		m.browser = nil
		m.contexts = make(map[string]*Context)
	}

	lc := launcher.New().
		Headless(m.cfg.Headless).
		Set(flags.Flag("disable-blink-features"), "AutomationControlled").
		Set(flags.Flag("no-first-run")).
		Set(flags.Flag("no-default-browser-check"))

	controlURL, err := lc.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	_ = proto.SecuritySetIgnoreCertificateErrors{Ignore: true}.Call(b)

	m.browser = b
	m.lc = lc
	m.log.Info("browser launched", zap.Bool("headless", m.cfg.Headless))
	return b, nil
}

// Context returns the platform's browsing context, reusing the cached one
// while it still owns at least one open page. A pageless context is stale
// (its renderer state is gone), so it is disposed and recreated with the
// platform's persisted session applied.
func (m *Manager) Context(ctx context.Context, rec *platform.Record) (*Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.contexts[rec.ID]; ok {
		n, err := existing.pageCount()
		if err == nil && n > 0 {
			return existing, nil
		}
		m.log.Debug("disposing pageless context", zap.String("platform", rec.ID))
		existing.dispose()
		delete(m.contexts, rec.ID)
	}

	b, err := m.browserLocked(ctx)
	if err != nil {
		return nil, err
	}

	incognito, err := b.Incognito()
	if err != nil {
		return nil, fmt.Errorf("create browsing context: %w", err)
	}

	// Pre-grant the prompts a chat UI may raise mid-ask; a permission
	// dialog would stall the selector loops.
	_ = proto.BrowserGrantPermissions{
		Permissions: []proto.BrowserPermissionType{
			proto.BrowserPermissionTypeGeolocation,
			proto.BrowserPermissionTypeNotifications,
			proto.BrowserPermissionTypeClipboardReadWrite,
		},
		BrowserContextID: incognito.BrowserContextID,
	}.Call(b)

	c := &Context{PlatformID: rec.ID, browser: incognito, parent: b}

	if rec.SessionData != "" {
		st, err := session.Parse(rec.SessionData)
		if err != nil {
			// Fail open: an unreadable session only forces a re-login.
			m.log.Warn("unreadable session data, starting fresh",
				zap.String("platform", rec.ID), zap.Error(err))
		} else if st != nil {
			if err := session.ApplyCookies(incognito, st); err != nil {
				m.log.Warn("restore cookies failed",
					zap.String("platform", rec.ID), zap.Error(err))
			}
			c.state = st
		}
	}

	m.contexts[rec.ID] = c
	return c, nil
}

// State returns the storage state restored into (or last captured from)
// this context, possibly nil.
func (c *Context) State() *session.State { return c.state }

// SetState remembers the most recent capture so later saves keep origin
// snapshots the current page cannot see.
func (c *Context) SetState(st *session.State) { c.state = st }

// Browser exposes the underlying incognito context handle.
func (c *Context) Browser() *rod.Browser { return c.browser }

// CloseContext disposes one platform's context, if cached.
func (m *Manager) CloseContext(platformID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.contexts[platformID]; ok {
		c.dispose()
		delete(m.contexts, platformID)
	}
}

// dispose tears down the browsing context. Disposing also closes every
// page the context owns; pages in other contexts are untouched.
func (c *Context) dispose() {
	_ = proto.TargetDisposeBrowserContext{
		BrowserContextID: c.browser.BrowserContextID,
	}.Call(c.parent)
}

// pageCount counts the open pages belonging to this context. Target
// enumeration is browser-wide, so the list must be filtered by context
// id; the default context always holds at least the initial tab.
func (c *Context) pageCount() (int, error) {
	res, err := proto.TargetGetTargets{}.Call(c.parent)
	if err != nil {
		return 0, err
	}
	return countContextPages(res.TargetInfos, c.browser.BrowserContextID), nil
}

func countContextPages(targets []*proto.TargetTargetInfo, id proto.BrowserBrowserContextID) int {
	n := 0
	for _, t := range targets {
		if t.Type == proto.TargetTargetInfoTypePage && t.BrowserContextID == id {
			n++
		}
	}
	return n
}

// CloseAll tears down every context and the shared browser. Used at
// process shutdown; not expected mid-session.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var g errgroup.Group
	for id, c := range m.contexts {
		c := c
		g.Go(func() error {
			c.dispose()
			return nil
		})
		delete(m.contexts, id)
	}
	_ = g.Wait()

	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	if m.lc != nil {
		m.lc.Cleanup()
		m.lc = nil
	}
	m.log.Info("browser shutdown complete")
	return err
}
