package adapter

import "go.uber.org/zap"

// DeepSeek drives chat.deepseek.com; its UI is English-first, so the
// submit text heuristics lead with "Send".
type DeepSeek struct {
	chat
}

// NewDeepSeek builds the deepseek adapter.
func NewDeepSeek(log *zap.Logger) *DeepSeek {
	a := &DeepSeek{chat: newChat("deepseek", "DeepSeek", log)}
	a.inputSelectors = []string{
		`div[contenteditable="true"]`,
		`textarea[placeholder*="Message"]`,
		`textarea[placeholder*="输入"]`,
	}
	a.sendCandidates = []SubmitCandidate{
		{CSS: `button[type="submit"]`},
		{Text: "Send"},
		{Text: "发送"},
	}
	a.responseSelectors = []string{
		`[class*="assistant"]`,
		`[class*="ai-message"]`,
		`.message.assistant`,
		`[class*="response"]`,
	}
	return a
}
