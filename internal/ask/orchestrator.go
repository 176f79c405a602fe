package ask

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mentionlab/internal/adapter"
	"mentionlab/internal/browser"
	"mentionlab/internal/extract"
	"mentionlab/internal/platform"
	"mentionlab/internal/session"
)

// Orchestrator owns the ask flow. It holds the browser manager by
// reference so the process controls exactly one browser and shuts it
// down explicitly.
type Orchestrator struct {
	store    platform.Store
	browser  *browser.Manager
	registry *adapter.Registry
	log      *zap.Logger
}

// New wires the orchestrator.
func New(st platform.Store, mgr *browser.Manager, reg *adapter.Registry, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{store: st, browser: mgr, registry: reg, log: log}
}

// Ask submits one question to one platform and returns a normalized
// result. It never raises: every failure, including unexpected panics
// from the automation layer, converts to a failed Result, and the page
// opened for the question is always closed.
func (o *Orchestrator) Ask(ctx context.Context, platformID, question string) (result Result) {
	askID := uuid.NewString()[:8]
	log := o.log.With(zap.String("ask", askID), zap.String("platform", platformID))

	defer func() {
		if r := recover(); r != nil {
			log.Error("ask panicked", zap.Any("panic", r))
			result = failure(fmt.Errorf("提问失败: %v", r))
		}
	}()

	rec, err := o.store.Get(ctx, platformID)
	if err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			return failure(ErrPlatformNotFound)
		}
		return failure(fmt.Errorf("查询平台失败: %w", err))
	}

	if !rec.IsLoggedIn {
		return failure(ErrNotLoggedIn)
	}

	ad, ok := o.registry.ByID(rec.ID)
	if !ok {
		ad, ok = o.registry.ByName(rec.Name)
	}
	if !ok {
		log.Warn("no adapter for platform", zap.String("name", rec.Name))
		return failure(ErrUnsupportedPlatform)
	}

	// One context per platform; concurrent asks against it serialize.
	lock := o.browser.Lock(rec.ID)
	lock.Lock()
	defer lock.Unlock()

	bctx, err := o.browser.Context(ctx, rec)
	if err != nil {
		return failure(fmt.Errorf("获取浏览器上下文失败: %w", err))
	}

	page, err := o.browser.NewPage(ctx, bctx, rec.URL)
	if err != nil {
		return failure(fmt.Errorf("打开页面失败: %w", err))
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Warn("page close failed", zap.Error(err))
		}
	}()

	// Snapshot before submitting so extraction never re-reads a stale
	// answer from an earlier turn.
	snap := extract.TakeSnapshot(page)

	if err := ad.AskQuestion(page, question); err != nil {
		log.Warn("submission failed", zap.Error(err))
		return failure(err)
	}
	log.Info("question submitted")

	ad.WaitForResponse(page)

	response := ""
	if re, ok := ad.(adapter.ResponseExtractor); ok {
		response = re.ExtractResponse(page)
	}
	if response == "" {
		response = extract.Response(page, snap)
	}
	if response == "" {
		// Degraded success: the question was almost certainly asked
		// even though the answer could not be read back.
		log.Warn("extraction yielded no response text")
	}

	var sources []string
	if se, ok := ad.(adapter.SourceExtractor); ok {
		sources = se.ExtractSources(page)
	}
	if len(sources) == 0 {
		sources = extract.Sources(page)
	}
	sources = dedupeSources(sources)

	// Always persist on the success path: the interaction may have
	// refreshed auth cookies. Best effort; a lost session only forces
	// a re-login.
	o.persistSession(ctx, rec.ID, bctx, page, log)

	return Result{Success: true, Response: response, Sources: sources}
}

// persistSession captures and saves the context's storage state,
// swallowing every error.
func (o *Orchestrator) persistSession(ctx context.Context, platformID string, bctx *browser.Context, page *rod.Page, log *zap.Logger) {
	st, err := session.Capture(bctx.Browser(), page, bctx.State())
	if err != nil {
		log.Warn("session capture failed", zap.Error(err))
		return
	}
	bctx.SetState(st)

	blob, err := session.Encode(st)
	if err != nil {
		log.Warn("session encode failed", zap.Error(err))
		return
	}
	if err := o.store.SaveSession(ctx, platformID, blob); err != nil {
		log.Warn("session save failed", zap.Error(err))
	}
}

const maxSources = 10

func dedupeSources(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if len(out) == maxSources {
			break
		}
	}
	return out
}
