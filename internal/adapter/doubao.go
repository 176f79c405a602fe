package adapter

import (
	"time"

	"github.com/go-rod/rod"
	"go.uber.org/zap"
)

// Doubao drives www.doubao.com. Its SPA renders late, so submission
// waits for the page to go idle before probing, and the input list is
// the longest of all platforms.
type Doubao struct {
	chat
}

// NewDoubao builds the doubao adapter.
func NewDoubao(log *zap.Logger) *Doubao {
	a := &Doubao{chat: newChat("doubao", "豆包", log)}
	a.inputSelectors = []string{
		`div[contenteditable="true"]`,
		`textarea[placeholder*="问"]`,
		`textarea[placeholder*="输入"]`,
		`textarea[placeholder*="message"]`,
		`textarea[placeholder*="Message"]`,
		`textarea`,
		`.chat-input textarea`,
		`.input-box textarea`,
		`[data-testid="chat-input"]`,
		`#chat-input`,
		`[class*="chatInput"]`,
		`[class*="ChatInput"]`,
	}
	a.sendCandidates = []SubmitCandidate{
		{Text: "发送"},
		{Text: "Send"},
		{CSS: `button[class*="send"]`},
		{CSS: `button[class*="Send"]`},
		{CSS: `button[type="submit"]`},
		{CSS: `.send-btn`},
		{CSS: `[data-testid="send-button"]`},
	}
	a.responseSelectors = []string{
		`.ai-message-content`,
		`.assistant-message`,
		`[class*="assistant"]`,
		`[class*="ai-response"]`,
	}
	a.timings.SendProbe = 1 * time.Second
	a.timings.PostFillPause = 1 * time.Second
	return a
}

// AskQuestion waits out the initial render burst first; doubao's input
// field mounts well after the document load event.
func (a *Doubao) AskQuestion(page *rod.Page, question string) error {
	_ = page.WaitIdle(10 * time.Second)
	return a.chat.AskQuestion(page, question)
}
