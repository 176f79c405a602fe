package browser

import (
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/require"
)

func TestCountContextPagesFiltersByContext(t *testing.T) {
	ours := proto.BrowserBrowserContextID("ctx-doubao")
	theirs := proto.BrowserBrowserContextID("ctx-kimi")

	// Target enumeration always includes the default context's initial
	// tab and every other platform's pages; none of those may count.
	targets := []*proto.TargetTargetInfo{
		{Type: proto.TargetTargetInfoTypePage, BrowserContextID: ""},
		{Type: proto.TargetTargetInfoTypePage, BrowserContextID: theirs},
		{Type: proto.TargetTargetInfoTypePage, BrowserContextID: theirs},
		{Type: proto.TargetTargetInfoTypeServiceWorker, BrowserContextID: ours},
		{Type: proto.TargetTargetInfoTypePage, BrowserContextID: ours},
	}

	require.Equal(t, 1, countContextPages(targets, ours))
	require.Equal(t, 2, countContextPages(targets, theirs))
	require.Equal(t, 0, countContextPages(targets, proto.BrowserBrowserContextID("ctx-fresh")))
	require.Equal(t, 0, countContextPages(nil, ours))
}
