package adapter

import (
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry maps platform ids and human-readable aliases to adapters.
// Name resolution is case-insensitive and many-to-one: a platform may
// carry a localized display name, a canonical slug, and a vendor name
// all pointing at the same adapter.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	aliases  map[string]string // lowercased name -> adapter id
}

// NewRegistry returns a registry preloaded with every built-in adapter
// and its known aliases.
func NewRegistry(log *zap.Logger) *Registry {
	r := &Registry{
		adapters: make(map[string]Adapter),
		aliases:  make(map[string]string),
	}
	r.Register("doubao", NewDoubao(log), "豆包", "doubao")
	r.Register("qianwen", NewQianwen(log), "千问", "qianwen", "通义千问")
	r.Register("yiyan", NewYiyan(log), "文心一言", "yiyan", "百度")
	r.Register("deepseek", NewDeepSeek(log), "deepseek", "DeepSeek")
	r.Register("zhipu", NewZhipu(log), "智谱", "zhipu", "chatglm")
	r.Register("kimi", NewKimi(log), "kimi", "Kimi", "moonshot")
	return r
}

// Register binds an adapter to its id and any aliases.
func (r *Registry) Register(id string, a Adapter, names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[id] = a
	for _, name := range names {
		r.aliases[strings.ToLower(name)] = id
	}
}

// ByID resolves an adapter by its stable platform id.
func (r *Registry) ByID(id string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[id]
	return a, ok
}

// ByName resolves an adapter by any of its aliases, case-insensitively.
func (r *Registry) ByName(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.aliases[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	a, ok := r.adapters[id]
	return a, ok
}

// IsSupported reports whether any alias matches the name.
func (r *Registry) IsSupported(name string) bool {
	_, ok := r.ByName(name)
	return ok
}

// SupportedIDs returns every registered adapter id, sorted.
func (r *Registry) SupportedIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// timingTarget is implemented by adapters whose waits can be tuned.
type timingTarget interface {
	SetResponseWaits(wait, settle time.Duration)
}

// ApplyTimings pushes the configured response wait and settle delay
// into every adapter that accepts them.
func (r *Registry) ApplyTimings(responseWait, settle time.Duration) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.adapters {
		if t, ok := a.(timingTarget); ok {
			t.SetResponseWaits(responseWait, settle)
		}
	}
}

// selectorTarget is implemented by adapters that accept selector
// overrides (all built-ins do, via the embedded chat).
type selectorTarget interface {
	SetSelectors(SelectorSet)
}

// ApplyOverrides pushes replacement selector lists into the matching
// adapters. Unknown ids are skipped.
func (r *Registry) ApplyOverrides(sets map[string]SelectorSet) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	applied := 0
	for id, set := range sets {
		a, ok := r.adapters[id]
		if !ok {
			continue
		}
		if t, ok := a.(selectorTarget); ok {
			t.SetSelectors(set)
			applied++
		}
	}
	return applied
}
