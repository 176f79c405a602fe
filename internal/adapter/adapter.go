// Package adapter drives question submission and answer extraction
// against each supported chat platform's uncontrolled, unversioned DOM.
//
// Every adapter encodes a prioritized guess list of selectors rather
// than a single brittle one: the first visible match wins, each
// candidate gets a short probe timeout, and a missing send button
// degrades to a keyboard Enter instead of failing.
package adapter

import (
	"errors"
	"time"

	"github.com/go-rod/rod"
)

// ErrInputNotFound reports that no input-field heuristic matched. The
// message stays in Chinese; the target platforms and their operators
// are Chinese-first.
var ErrInputNotFound = errors.New("未找到输入框")

// Adapter is the core capability every platform adapter implements.
type Adapter interface {
	// AskQuestion locates the input field, fills the question, and
	// submits it. A missing send button is not fatal (Enter fallback);
	// only a missing input field returns an error.
	AskQuestion(page *rod.Page, question string) error

	// WaitForResponse blocks until a response container attaches plus a
	// settle delay, or until the bounded fallback wait expires. It is a
	// heuristic, never a guarantee that generation finished.
	WaitForResponse(page *rod.Page)
}

// ResponseExtractor is the optional targeted-extraction capability.
type ResponseExtractor interface {
	// ExtractResponse returns the newest response container's text, or
	// "" when nothing matched or the text was trivially short.
	ExtractResponse(page *rod.Page) string
}

// SourceExtractor is the optional citation-link capability.
type SourceExtractor interface {
	// ExtractSources returns hrefs of absolute HTTP(S) anchors.
	ExtractSources(page *rod.Page) []string
}

// SubmitCandidate is one send-control heuristic: either a CSS selector
// or a button-text match (Chinese or English).
type SubmitCandidate struct {
	CSS  string
	Text string
}

// Timings bounds every wait an adapter performs. Third-party pages may
// never reach an expected state, so no wait is unbounded.
type Timings struct {
	InputProbe    time.Duration // per input-selector visibility probe
	SendProbe     time.Duration // per send-candidate probe
	PostFillPause time.Duration // pause between fill and submit
	ResponseWait  time.Duration // per response-selector attach wait
	Settle        time.Duration // streaming-text settle delay
	FallbackWait  time.Duration // fixed wait when no selector attaches
}

// DefaultTimings mirrors the waits the platforms tolerate in practice.
func DefaultTimings() Timings {
	return Timings{
		InputProbe:    3 * time.Second,
		SendProbe:     2 * time.Second,
		PostFillPause: 500 * time.Millisecond,
		ResponseWait:  30 * time.Second,
		Settle:        2 * time.Second,
		FallbackWait:  5 * time.Second,
	}
}

// SelectorSet is an externally supplied replacement for an adapter's
// built-in selector lists, used when a platform redesigns its DOM.
type SelectorSet struct {
	Input    []string `yaml:"input_selectors"`
	Send     []string `yaml:"send_selectors"`
	Response []string `yaml:"response_selectors"`
}
