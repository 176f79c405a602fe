package adapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegistryResolvesAllBuiltins(t *testing.T) {
	r := NewRegistry(nil)

	require.Equal(t,
		[]string{"deepseek", "doubao", "kimi", "qianwen", "yiyan", "zhipu"},
		r.SupportedIDs())

	for _, id := range r.SupportedIDs() {
		a, ok := r.ByID(id)
		require.True(t, ok, "id %s", id)
		require.NotNil(t, a, "id %s", id)
	}
}

func TestRegistryAliases(t *testing.T) {
	r := NewRegistry(nil)

	cases := map[string]string{
		"豆包":       "doubao",
		"通义千问":     "qianwen",
		"文心一言":     "yiyan",
		"百度":       "yiyan",
		"DeepSeek": "deepseek",
		"DEEPSEEK": "deepseek",
		"chatglm":  "zhipu",
		"Kimi":     "kimi",
		"moonshot": "kimi",
	}
	for name, wantID := range cases {
		got, ok := r.ByName(name)
		require.True(t, ok, "alias %q", name)
		want, _ := r.ByID(wantID)
		require.Same(t, want, got, "alias %q", name)
	}
}

func TestRegistryUnknownName(t *testing.T) {
	r := NewRegistry(nil)
	_, ok := r.ByName("chatgpt")
	require.False(t, ok)
	require.False(t, r.IsSupported("chatgpt"))
	_, ok = r.ByID("chatgpt")
	require.False(t, ok)
}

func TestApplyOverridesReplacesSelectors(t *testing.T) {
	r := NewRegistry(nil)

	n := r.ApplyOverrides(map[string]SelectorSet{
		"doubao":  {Input: []string{"#new-input"}, Send: []string{"text:发送", ".send"}},
		"unknown": {Input: []string{"#ignored"}},
	})
	require.Equal(t, 1, n)

	a, _ := r.ByID("doubao")
	d, ok := a.(*Doubao)
	require.True(t, ok)

	inputs, _, sends := d.selectors()
	require.Equal(t, []string{"#new-input"}, inputs)
	require.Equal(t, []SubmitCandidate{{Text: "发送"}, {CSS: ".send"}}, sends)
}

func TestSetSelectorsKeepsUnsetLists(t *testing.T) {
	r := NewRegistry(nil)
	a, _ := r.ByID("kimi")
	k := a.(*Kimi)

	_, responsesBefore, _ := k.selectors()
	require.NotEmpty(t, responsesBefore)

	k.SetSelectors(SelectorSet{Input: []string{"#only-input"}})

	inputs, responsesAfter, _ := k.selectors()
	require.Equal(t, []string{"#only-input"}, inputs)
	require.Equal(t, responsesBefore, responsesAfter)
}

func TestApplyTimingsTunesWaits(t *testing.T) {
	r := NewRegistry(nil)
	r.ApplyTimings(45*time.Second, 3*time.Second)

	for _, id := range r.SupportedIDs() {
		a, _ := r.ByID(id)
		got := a.(interface{ waits() Timings }).waits()
		require.Equal(t, 45*time.Second, got.ResponseWait, "id %s", id)
		require.Equal(t, 3*time.Second, got.Settle, "id %s", id)
	}

	// Per-platform probe quirks survive a blanket tuning.
	a, _ := r.ByID("doubao")
	require.Equal(t, 1*time.Second, a.(*Doubao).waits().SendProbe)

	// Zero values leave the current waits untouched.
	r.ApplyTimings(0, 0)
	require.Equal(t, 45*time.Second, a.(*Doubao).waits().ResponseWait)
}

func TestParseSendCandidates(t *testing.T) {
	got := parseSendCandidates([]string{"button[type=submit]", "text:发送", "text:Send"})
	require.Equal(t, []SubmitCandidate{
		{CSS: "button[type=submit]"},
		{Text: "发送"},
		{Text: "Send"},
	}, got)
}
