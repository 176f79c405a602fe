package adapter

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"mentionlab/internal/extract"
)

// chat carries the shared ordered-trial driving logic. Each platform
// adapter embeds it with its own tuned selector lists.
type chat struct {
	id    string
	label string

	mu                sync.RWMutex
	inputSelectors    []string
	sendCandidates    []SubmitCandidate
	responseSelectors []string
	timings           Timings

	log *zap.Logger
}

func newChat(id, label string, log *zap.Logger) chat {
	if log == nil {
		log = zap.NewNop()
	}
	return chat{id: id, label: label, timings: DefaultTimings(), log: log}
}

// SetSelectors replaces the built-in selector lists. Empty fields in
// the set keep the existing list.
func (c *chat) SetSelectors(set SelectorSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(set.Input) > 0 {
		c.inputSelectors = set.Input
	}
	if len(set.Send) > 0 {
		c.sendCandidates = parseSendCandidates(set.Send)
	}
	if len(set.Response) > 0 {
		c.responseSelectors = set.Response
	}
}

// parseSendCandidates turns override entries into candidates; entries
// prefixed "text:" match button text, everything else is CSS.
func parseSendCandidates(entries []string) []SubmitCandidate {
	out := make([]SubmitCandidate, 0, len(entries))
	for _, e := range entries {
		if txt, ok := strings.CutPrefix(e, "text:"); ok {
			out = append(out, SubmitCandidate{Text: txt})
		} else {
			out = append(out, SubmitCandidate{CSS: e})
		}
	}
	return out
}

// SetResponseWaits tunes the response-attach wait and the settle delay,
// leaving each platform's probe quirks alone. Zero keeps the current
// value.
func (c *chat) SetResponseWaits(wait, settle time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if wait > 0 {
		c.timings.ResponseWait = wait
	}
	if settle > 0 {
		c.timings.Settle = settle
	}
}

func (c *chat) selectors() (input, response []string, send []SubmitCandidate) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inputSelectors, c.responseSelectors, c.sendCandidates
}

func (c *chat) waits() Timings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timings
}

// AskQuestion implements the ordered-trial submission flow.
func (c *chat) AskQuestion(page *rod.Page, question string) error {
	inputs, _, sends := c.selectors()
	t := c.waits()

	el, selector := firstVisible(page, inputs, t.InputProbe)
	if el == nil {
		return fmt.Errorf("%s：%w，请确认页面已加载完成", c.label, ErrInputNotFound)
	}
	c.log.Debug("input field located",
		zap.String("platform", c.id), zap.String("selector", selector))

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("%s：点击输入框失败: %w", c.label, err)
	}
	if err := el.Input(question); err != nil {
		return fmt.Errorf("%s：输入问题失败: %w", c.label, err)
	}
	sleep(page, t.PostFillPause)

	if c.clickSend(page, sends, t.SendProbe) {
		return nil
	}

	// No send control found: Enter on the focused input. Degraded, not
	// fatal.
	c.log.Info("no send button found, falling back to Enter",
		zap.String("platform", c.id))
	if err := el.Focus(); err == nil {
		_ = page.Keyboard.Type(input.Enter)
	}
	return nil
}

func (c *chat) clickSend(page *rod.Page, candidates []SubmitCandidate, probe time.Duration) bool {
	for _, cand := range candidates {
		var el *rod.Element
		var err error
		if cand.Text != "" {
			el, err = page.Timeout(probe).ElementR("button", cand.Text)
		} else {
			el, err = page.Timeout(probe).Element(cand.CSS)
		}
		if err != nil || el == nil {
			continue
		}
		if visible, _ := el.Visible(); !visible {
			continue
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			continue
		}
		c.log.Debug("send control clicked", zap.String("platform", c.id),
			zap.String("css", cand.CSS), zap.String("text", cand.Text))
		return true
	}
	return false
}

// WaitForResponse polls the response-container selectors for the first
// attached match, then settles. Exhausting all selectors falls back to
// a fixed wait.
func (c *chat) WaitForResponse(page *rod.Page) {
	_, responses, _ := c.selectors()
	t := c.waits()
	for _, sel := range responses {
		if _, err := page.Timeout(t.ResponseWait).Element(sel); err == nil {
			sleep(page, t.Settle)
			return
		}
	}
	c.log.Debug("no response container attached, fixed wait",
		zap.String("platform", c.id))
	sleep(page, t.FallbackWait)
}

// ExtractResponse returns the newest matching container's text.
func (c *chat) ExtractResponse(page *rod.Page) string {
	_, responses, _ := c.selectors()
	probe := c.waits().SendProbe
	for _, sel := range responses {
		els, err := page.Timeout(probe).Elements(sel)
		if err != nil || len(els) == 0 {
			continue
		}
		// Newest container wins when the thread holds several turns.
		for i := len(els) - 1; i >= 0; i-- {
			if visible, _ := els[i].Visible(); !visible {
				continue
			}
			text, err := els[i].Text()
			if err != nil {
				continue
			}
			if t := strings.TrimSpace(text); len(t) > 1 {
				return t
			}
		}
	}
	return ""
}

// ExtractSources collects absolute HTTP(S) anchors from the page.
func (c *chat) ExtractSources(page *rod.Page) []string {
	return extract.Sources(page)
}

// firstVisible runs the ordered trial loop over input selectors; the
// first visible match wins, no scoring across candidates.
func firstVisible(page *rod.Page, selectors []string, probe time.Duration) (*rod.Element, string) {
	for _, sel := range selectors {
		el, err := page.Timeout(probe).Element(sel)
		if err != nil || el == nil {
			continue
		}
		if visible, _ := el.Visible(); visible {
			return el, sel
		}
	}
	return nil, ""
}

// sleep pauses without outliving the page's context.
func sleep(page *rod.Page, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-page.GetContext().Done():
	}
}
