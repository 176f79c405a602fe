package session

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// FromProto converts browser cookies to the serialized form.
func FromProto(cookies []*proto.NetworkCookie) []Cookie {
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		expires := float64(c.Expires)
		if c.Session {
			expires = -1
		}
		out = append(out, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}
	return out
}

// ToProto converts serialized cookies into set-cookie params.
func ToProto(cookies []Cookie) []*proto.NetworkCookieParam {
	out := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		p := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.SameSite != "" {
			p.SameSite = proto.NetworkCookieSameSite(c.SameSite)
		}
		if c.Expires > 0 {
			p.Expires = proto.TimeSinceEpoch(c.Expires)
		}
		out = append(out, p)
	}
	return out
}

const readLocalStorageJS = `() => JSON.stringify({
	origin: location.origin,
	items: Object.entries(localStorage).map(([name, value]) => ({name, value})),
})`

const writeLocalStorageJS = `(raw) => {
	for (const {name, value} of JSON.parse(raw)) {
		try { localStorage.setItem(name, value); } catch (e) {}
	}
}`

// Capture reads the context's cookies and the page's localStorage into a
// new State. Origin snapshots from prev that the page cannot see are
// carried forward unchanged.
func Capture(browserCtx *rod.Browser, page *rod.Page, prev *State) (*State, error) {
	cookies, err := browserCtx.GetCookies()
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}

	st := &State{Cookies: FromProto(cookies)}
	if prev != nil {
		st.Origins = append(st.Origins, prev.Origins...)
	}

	res, err := page.Evaluate(&rod.EvalOptions{
		JS:           readLocalStorageJS,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil || res == nil {
		// Cookies alone still make a restorable session.
		return st, nil
	}

	var snap struct {
		Origin string        `json:"origin"`
		Items  []StorageItem `json:"items"`
	}
	if err := json.Unmarshal([]byte(res.Value.Str()), &snap); err != nil || snap.Origin == "" {
		return st, nil
	}
	st.MergeOrigin(snap.Origin, snap.Items)
	return st, nil
}

// ApplyCookies restores the state's cookies into a browsing context.
func ApplyCookies(browserCtx *rod.Browser, st *State) error {
	if st == nil || len(st.Cookies) == 0 {
		return nil
	}
	if err := browserCtx.SetCookies(ToProto(st.Cookies)); err != nil {
		return fmt.Errorf("restore cookies: %w", err)
	}
	return nil
}

// ApplyLocalStorage writes the state's items for the page's origin, if
// any were captured. Must run after navigation so the origin matches.
func ApplyLocalStorage(page *rod.Page, pageURL string, st *State) error {
	if st == nil || len(st.Origins) == 0 {
		return nil
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return fmt.Errorf("parse page url: %w", err)
	}
	origin := u.Scheme + "://" + u.Host

	for _, o := range st.Origins {
		if o.Origin != origin || len(o.LocalStorage) == 0 {
			continue
		}
		raw, err := json.Marshal(o.LocalStorage)
		if err != nil {
			return err
		}
		if _, err := page.Evaluate(&rod.EvalOptions{
			JS:           writeLocalStorageJS,
			JSArgs:       []interface{}{string(raw)},
			ByValue:      true,
			AwaitPromise: true,
		}); err != nil {
			return fmt.Errorf("restore localStorage: %w", err)
		}
	}
	return nil
}
