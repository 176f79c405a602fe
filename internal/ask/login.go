package ask

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
	"go.uber.org/zap"

	"mentionlab/internal/browser"
	"mentionlab/internal/platform"
	"mentionlab/internal/session"
)

// Login is two-step: BeginLogin opens the platform so a human completes
// authentication, and only ConfirmLogin captures the session and flips
// isLoggedIn. The flag is never set optimistically on tab open.

// LoginSession tracks an in-progress interactive login.
type LoginSession struct {
	rec  *platform.Record
	bctx *browser.Context
	page *rod.Page
}

// URL returns the page the operator should be looking at.
func (ls *LoginSession) URL() string { return ls.rec.URL }

// BeginLogin opens the platform's entry page in its browsing context and
// leaves it for the operator to authenticate in.
func (o *Orchestrator) BeginLogin(ctx context.Context, platformID string) (*LoginSession, error) {
	rec, err := o.store.Get(ctx, platformID)
	if err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			return nil, ErrPlatformNotFound
		}
		return nil, fmt.Errorf("查询平台失败: %w", err)
	}

	bctx, err := o.browser.Context(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("获取浏览器上下文失败: %w", err)
	}
	page, err := o.browser.NewPage(ctx, bctx, rec.URL)
	if err != nil {
		return nil, fmt.Errorf("打开登录页面失败: %w", err)
	}

	o.log.Info("login page opened; waiting for operator confirmation",
		zap.String("platform", platformID), zap.String("url", rec.URL))
	return &LoginSession{rec: rec, bctx: bctx, page: page}, nil
}

// ConfirmLogin captures the authenticated storage state, persists it,
// and marks the platform logged in. The login page is closed either way.
func (o *Orchestrator) ConfirmLogin(ctx context.Context, ls *LoginSession) error {
	defer func() { _ = ls.page.Close() }()

	st, err := session.Capture(ls.bctx.Browser(), ls.page, ls.bctx.State())
	if err != nil {
		return fmt.Errorf("保存会话失败: %w", err)
	}
	ls.bctx.SetState(st)

	blob, err := session.Encode(st)
	if err != nil {
		return fmt.Errorf("保存会话失败: %w", err)
	}
	if err := o.store.SaveSession(ctx, ls.rec.ID, blob); err != nil {
		return fmt.Errorf("保存会话失败: %w", err)
	}
	if err := o.store.SetLoggedIn(ctx, ls.rec.ID, true); err != nil {
		return fmt.Errorf("更新登录状态失败: %w", err)
	}
	o.log.Info("login confirmed", zap.String("platform", ls.rec.ID))
	return nil
}

// AbortLogin closes the login page without persisting anything.
func (o *Orchestrator) AbortLogin(ls *LoginSession) {
	_ = ls.page.Close()
}

// Logout tears down the platform's context and clears its session.
func (o *Orchestrator) Logout(ctx context.Context, platformID string) error {
	o.browser.CloseContext(platformID)
	if err := o.store.SetLoggedIn(ctx, platformID, false); err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			return ErrPlatformNotFound
		}
		return fmt.Errorf("登出失败: %w", err)
	}
	o.log.Info("logged out", zap.String("platform", platformID))
	return nil
}

// loggedInProbeSelectors are the indicators a session is still valid.
var loggedInProbeSelectors = `.user-avatar, .logout-button, .user-menu`

// CheckSession opens the platform in its restored context and probes
// for logged-in indicators; a missing indicator flips isLoggedIn off.
func (o *Orchestrator) CheckSession(ctx context.Context, platformID string) (bool, error) {
	rec, err := o.store.Get(ctx, platformID)
	if err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			return false, ErrPlatformNotFound
		}
		return false, err
	}
	if !rec.IsLoggedIn || rec.SessionData == "" {
		return false, nil
	}

	bctx, err := o.browser.Context(ctx, rec)
	if err != nil {
		return false, fmt.Errorf("获取浏览器上下文失败: %w", err)
	}
	page, err := o.browser.NewPage(ctx, bctx, rec.URL)
	if err != nil {
		return false, fmt.Errorf("打开页面失败: %w", err)
	}
	defer func() { _ = page.Close() }()

	els, err := page.Elements(loggedInProbeSelectors)
	valid := err == nil && len(els) > 0
	if !valid {
		if err := o.store.SetLoggedIn(ctx, platformID, false); err != nil {
			o.log.Warn("flip login flag failed", zap.Error(err))
		}
	}
	return valid, nil
}
