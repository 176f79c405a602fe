package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"mentionlab/internal/session"
)

// Scripts evaluated before any page script runs. Chat platforms probe
// navigator.webdriver and friends to reject automated visitors.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => false });
Object.defineProperty(navigator, 'languages', { get: () => ['zh-CN', 'zh', 'en'] });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3] });
window.chrome = window.chrome || { runtime: {} };
`

// NewPage opens a fresh page in the context, applies the realistic
// device profile and stealth patches, navigates to url, and restores any
// origin-scoped storage for that url. Pages are per-question; contexts
// are long-lived.
func (m *Manager) NewPage(ctx context.Context, c *Context, url string) (*rod.Page, error) {
	page, err := c.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	page = page.Context(ctx)

	if err := m.preparePage(page); err != nil {
		_ = page.Close()
		return nil, err
	}

	if err := page.Timeout(m.cfg.NavigationTimeout()).Navigate(url); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	// Best effort: heavy SPAs may never settle.
	_ = page.Timeout(m.cfg.NavigationTimeout()).WaitLoad()

	if st := c.State(); st != nil {
		if err := session.ApplyLocalStorage(page, url, st); err != nil {
			m.log.Warn("restore localStorage failed", zap.Error(err))
		}
	}
	return page, nil
}

// preparePage applies the device profile and anti-detection patches that
// every page in every context gets.
func (m *Manager) preparePage(page *rod.Page) error {
	if _, err := (proto.PageAddScriptToEvaluateOnNewDocument{
		Source: stealthScript,
	}).Call(page); err != nil {
		return fmt.Errorf("install stealth script: %w", err)
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             m.cfg.ViewportWidth,
		Height:            m.cfg.ViewportHeight,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		m.log.Warn("set viewport failed", zap.Error(err))
	}

	if err := (proto.NetworkSetUserAgentOverride{
		UserAgent:      m.cfg.UserAgent,
		AcceptLanguage: m.cfg.Locale,
		Platform:       "Win32",
	}).Call(page); err != nil {
		m.log.Warn("set user agent failed", zap.Error(err))
	}

	if m.cfg.Timezone != "" {
		if err := (proto.EmulationSetTimezoneOverride{TimezoneID: m.cfg.Timezone}).Call(page); err != nil {
			m.log.Warn("set timezone failed", zap.Error(err))
		}
	}
	if m.cfg.Locale != "" {
		if err := (proto.EmulationSetLocaleOverride{Locale: m.cfg.Locale}).Call(page); err != nil {
			m.log.Warn("set locale failed", zap.Error(err))
		}
	}

	// Some platforms ship CSPs that break injected evaluation.
	if err := (proto.PageSetBypassCSP{Enabled: true}).Call(page); err != nil {
		m.log.Warn("bypass CSP failed", zap.Error(err))
	}
	return nil
}
