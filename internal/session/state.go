// Package session owns the serialized storage-state blob saved per
// platform: cookies plus per-origin localStorage. Two on-disk shapes
// exist; both parse, only the structured one is ever written back.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat reports a session blob in neither known shape.
// Callers treat it as "no session" rather than failing the platform.
var ErrUnknownFormat = errors.New("session: unknown blob format")

// Cookie mirrors the fields browsers round-trip for a cookie. Expires
// is seconds since epoch; -1 marks a session cookie.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// StorageItem is one localStorage key/value pair.
type StorageItem struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Origin groups the localStorage captured for one origin
// (scheme://host).
type Origin struct {
	Origin       string        `json:"origin"`
	LocalStorage []StorageItem `json:"localStorage"`
}

// State is the full storage state for one platform.
type State struct {
	Cookies []Cookie `json:"cookies"`
	Origins []Origin `json:"origins"`
}

// Parse decodes a stored session blob. Earlier versions stored a bare
// cookie array; current ones store the full state. An empty blob means
// no session. Anything else is ErrUnknownFormat.
func Parse(blob string) (*State, error) {
	trimmed := strings.TrimSpace(blob)
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var cookies []Cookie
		if err := json.Unmarshal([]byte(trimmed), &cookies); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, err)
		}
		return &State{Cookies: cookies}, nil
	case '{':
		var probe map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &probe); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, err)
		}
		if _, ok := probe["cookies"]; !ok {
			return nil, ErrUnknownFormat
		}
		var st State
		if err := json.Unmarshal([]byte(trimmed), &st); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, err)
		}
		return &st, nil
	}
	return nil, ErrUnknownFormat
}

// Encode serializes the state in the structured form. A nil state
// encodes as the empty blob.
func Encode(st *State) (string, error) {
	if st == nil {
		return "", nil
	}
	if st.Cookies == nil {
		st.Cookies = []Cookie{}
	}
	if st.Origins == nil {
		st.Origins = []Origin{}
	}
	data, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	return string(data), nil
}

// MergeOrigin replaces (or appends) the localStorage entry for origin.
func (s *State) MergeOrigin(origin string, items []StorageItem) {
	for i := range s.Origins {
		if s.Origins[i].Origin == origin {
			s.Origins[i].LocalStorage = items
			return
		}
	}
	s.Origins = append(s.Origins, Origin{Origin: origin, LocalStorage: items})
}
