package adapter

import "go.uber.org/zap"

// Qianwen drives 通义千问 (www.qianwen.com).
type Qianwen struct {
	chat
}

// NewQianwen builds the qianwen adapter.
func NewQianwen(log *zap.Logger) *Qianwen {
	a := &Qianwen{chat: newChat("qianwen", "千问", log)}
	a.inputSelectors = []string{
		`div[contenteditable="true"]`,
		`textarea[placeholder*="输入"]`,
		`.chat-input textarea`,
		`#prompt-input`,
	}
	a.sendCandidates = []SubmitCandidate{
		{Text: "发送"},
		{CSS: `.send-btn`},
		{CSS: `button[class*="send"]`},
		{CSS: `button[type="submit"]`},
	}
	a.responseSelectors = []string{
		`.message-content.assistant`,
		`[class*="assistant"]`,
		`[class*="bot-message"]`,
		`.ai-response`,
	}
	return a
}
