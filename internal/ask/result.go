// Package ask orchestrates a single question against one platform:
// platform lookup, login check, context acquisition, submission, wait,
// extraction, and session persistence.
package ask

import "errors"

// Request-fatal conditions. Operator-facing messages stay in Chinese to
// match the platforms' audience.
var (
	// ErrPlatformNotFound reports an unknown platform id.
	ErrPlatformNotFound = errors.New("平台不存在")

	// ErrNotLoggedIn reports a platform without a valid session; the
	// user must log in first. Automation is never attempted
	// unauthenticated.
	ErrNotLoggedIn = errors.New("平台未登录")

	// ErrUnsupportedPlatform reports that no adapter resolves for the
	// platform. Blind automation without platform knowledge is not
	// attempted.
	ErrUnsupportedPlatform = errors.New("该平台暂不支持自动化提问")
)

// Result is the core's output contract. Success with an empty Response
// is a degraded state, not a failure: the question was submitted but
// the answer could not be read back.
type Result struct {
	Success  bool     `json:"success"`
	Response string   `json:"response,omitempty"`
	Sources  []string `json:"sources,omitempty"`
	Error    string   `json:"error,omitempty"`
}

func failure(err error) Result {
	return Result{Success: false, Error: err.Error()}
}
