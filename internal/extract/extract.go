// Package extract holds the platform-agnostic answer and source-link
// heuristics used when an adapter's targeted extraction yields nothing.
package extract

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/go-rod/rod"
	"golang.org/x/net/html"
)

// genericMessageSelectors covers the class-name substrings chat UIs tend
// to use for assistant turns. Ordered; first-match families win.
var genericMessageSelectors = []string{
	`[class*="assistant"]`,
	`[class*="bot-message"]`,
	`[class*="ai-message"]`,
	`[class*="ai-response"]`,
	`[class*="answer"]`,
	`[class*="message-content"]`,
	`[class*="message"]`,
}

// maxSources caps the deduplicated source list.
const maxSources = 10

// tailLimit bounds the last-resort page-text tail.
const tailLimit = 2000

// Snapshot freezes what the page showed before a question was submitted,
// so extraction never re-reads a stale prior answer in multi-turn UIs.
type Snapshot struct {
	MessageCount int
	BodyTextLen  int
}

const collectMessagesJS = `(raw) => {
	const selectors = JSON.parse(raw);
	const set = new Set();
	for (const sel of selectors) {
		try {
			for (const el of document.querySelectorAll(sel)) set.add(el);
		} catch (e) {}
	}
	const nodes = [...set];
	nodes.sort((a, b) =>
		(a.compareDocumentPosition(b) & Node.DOCUMENT_POSITION_FOLLOWING) ? -1 : 1);
	return JSON.stringify(nodes.map(el => (el.innerText || '').trim()));
}`

// messageTexts returns the visible text of every generic message node in
// document order.
func messageTexts(page *rod.Page) ([]string, error) {
	selectors, err := json.Marshal(genericMessageSelectors)
	if err != nil {
		return nil, err
	}
	res, err := page.Evaluate(&rod.EvalOptions{
		JS:           collectMessagesJS,
		JSArgs:       []interface{}{string(selectors)},
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil || res == nil {
		return nil, err
	}
	var texts []string
	if err := json.Unmarshal([]byte(res.Value.Str()), &texts); err != nil {
		return nil, err
	}
	return texts, nil
}

func bodyText(page *rod.Page) string {
	res, err := page.Evaluate(&rod.EvalOptions{
		JS:           `() => (document.body && document.body.innerText) || ''`,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil || res == nil {
		return ""
	}
	return res.Value.Str()
}

// TakeSnapshot records the message count and page-text length immediately
// before submission.
func TakeSnapshot(page *rod.Page) Snapshot {
	snap := Snapshot{}
	if texts, err := messageTexts(page); err == nil {
		snap.MessageCount = len(texts)
	}
	snap.BodyTextLen = len(bodyText(page))
	return snap
}

// Response returns the newest answer text that appeared after the
// snapshot. When no message node matched at all, it falls back to the
// tail of the page's visible text past the snapshot offset. Returns ""
// when nothing new and non-trivial is found.
func Response(page *rod.Page, snap Snapshot) string {
	texts, err := messageTexts(page)
	if err == nil && len(texts) > 0 {
		if len(texts) <= snap.MessageCount {
			return ""
		}
		fresh := texts[snap.MessageCount:]
		// Newest node wins.
		for i := len(fresh) - 1; i >= 0; i-- {
			if t := strings.TrimSpace(fresh[i]); len(t) > 1 {
				return t
			}
		}
		return ""
	}

	// Last resort: whatever text got appended to the page since submit.
	return tailAfter(bodyText(page), snap.BodyTextLen)
}

// tailAfter returns the text appended past offset, trimmed and bounded.
// The snapshot offset is a byte count over UTF-8 text, so both cuts
// must land on rune boundaries or the tail starts with garbage bytes.
func tailAfter(body string, offset int) string {
	if offset < 0 {
		offset = 0
	}
	if len(body) <= offset {
		return ""
	}
	tail := strings.TrimSpace(body[runeAlign(body, offset):])
	if len(tail) > tailLimit {
		tail = tail[runeAlign(tail, len(tail)-tailLimit):]
	}
	if len(tail) <= 1 {
		return ""
	}
	return tail
}

// runeAlign moves i forward to the nearest rune start.
func runeAlign(s string, i int) int {
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}

// Sources scans the whole page for absolute HTTP(S) anchors.
func Sources(page *rod.Page) []string {
	raw, err := page.HTML()
	if err != nil {
		return nil
	}
	return SourceLinks(raw)
}

// SourceLinks extracts absolute HTTP(S) hrefs from an HTML document,
// deduplicated in first-seen order and capped at 10.
func SourceLinks(raw string) []string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(links) >= maxSources {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				href := strings.TrimSpace(attr.Val)
				if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
					continue
				}
				if _, dup := seen[href]; dup {
					continue
				}
				seen[href] = struct{}{}
				links = append(links, href)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return links
}
