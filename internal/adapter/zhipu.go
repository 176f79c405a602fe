package adapter

import "go.uber.org/zap"

// Zhipu drives 智谱清言 (chatglm.cn).
type Zhipu struct {
	chat
}

// NewZhipu builds the zhipu adapter.
func NewZhipu(log *zap.Logger) *Zhipu {
	a := &Zhipu{chat: newChat("zhipu", "智谱", log)}
	a.inputSelectors = []string{
		`div[contenteditable="true"]`,
		`textarea[placeholder*="请输入"]`,
		`.chat-input textarea`,
	}
	a.sendCandidates = []SubmitCandidate{
		{Text: "发送"},
		{CSS: `.send-btn`},
		{CSS: `button[type="submit"]`},
	}
	a.responseSelectors = []string{
		`[class*="assistant"]`,
		`[class*="ai-message"]`,
		`.message-content.bot`,
		`[class*="chat-response"]`,
	}
	return a
}
