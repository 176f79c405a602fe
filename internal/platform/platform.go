// Package platform defines the external chat platforms mentionlab drives.
package platform

import (
	"context"
	"errors"
)

// ErrNotFound reports an unknown platform id.
var ErrNotFound = errors.New("platform: not found")

// Record describes one external AI chat platform as persisted by the store.
// SessionData is an opaque JSON blob; internal/session owns its format.
type Record struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	IsLoggedIn  bool   `json:"is_logged_in"`
	SessionData string `json:"session_data,omitempty"`
}

// Store is the persistence contract the automation core depends on.
type Store interface {
	// Get returns the platform record, or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// SaveSession writes the serialized storage state back to the record.
	SaveSession(ctx context.Context, id, sessionData string) error

	// SetLoggedIn flips the login flag. Logging out also clears the session.
	SetLoggedIn(ctx context.Context, id string, loggedIn bool) error
}

// Seed holds the platforms known at install time.
type Seed struct {
	ID   string
	Name string
	URL  string
}

// SupportedPlatforms lists the chat platforms with dedicated adapters.
var SupportedPlatforms = []Seed{
	{ID: "doubao", Name: "豆包", URL: "https://www.doubao.com"},
	{ID: "qianwen", Name: "千问", URL: "https://www.qianwen.com"},
	{ID: "yiyan", Name: "文心一言", URL: "https://yiyan.baidu.com"},
	{ID: "deepseek", Name: "DeepSeek", URL: "https://www.deepseek.com"},
	{ID: "zhipu", Name: "智谱", URL: "https://chatglm.cn"},
	{ID: "kimi", Name: "Kimi", URL: "https://kimi.moonshot.cn"},
}
