package adapter

import "go.uber.org/zap"

// Yiyan drives 文心一言 (yiyan.baidu.com).
type Yiyan struct {
	chat
}

// NewYiyan builds the yiyan adapter.
func NewYiyan(log *zap.Logger) *Yiyan {
	a := &Yiyan{chat: newChat("yiyan", "文心一言", log)}
	a.inputSelectors = []string{
		`div[contenteditable="true"]`,
		`textarea[placeholder*="请输入"]`,
		`.chat-input textarea`,
		`.input-area textarea`,
	}
	a.sendCandidates = []SubmitCandidate{
		{Text: "发送"},
		{CSS: `.send-btn`},
		{CSS: `button[class*="send"]`},
	}
	a.responseSelectors = []string{
		`.yc-chat-content`,
		`[class*="assistant"]`,
		`.bot-message`,
		`.ai-response`,
	}
	return a
}
