package adapter

import "go.uber.org/zap"

// Kimi drives kimi.moonshot.cn.
type Kimi struct {
	chat
}

// NewKimi builds the kimi adapter.
func NewKimi(log *zap.Logger) *Kimi {
	a := &Kimi{chat: newChat("kimi", "Kimi", log)}
	a.inputSelectors = []string{
		`div[contenteditable="true"]`,
		`textarea[placeholder*="输入"]`,
		`.chat-input textarea`,
		`#input`,
	}
	a.sendCandidates = []SubmitCandidate{
		{Text: "发送"},
		{CSS: `button[type="submit"]`},
		{CSS: `.send-button`},
		{CSS: `button[class*="send"]`},
	}
	a.responseSelectors = []string{
		`[class*="assistant"]`,
		`[class*="ai-message"]`,
		`[class*="bot-message"]`,
		`[class*="message-content"]`,
	}
	return a
}
