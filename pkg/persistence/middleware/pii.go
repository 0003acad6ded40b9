package middleware

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type piiMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware masks values whose keys match any pattern before saving.
// It covers the session context, history entry state and the query
// parameters of history URLs. Loads return what was stored.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pii pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.StateStore) ports.StateStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	// The session keeps using the original; only the stored copy is masked.
	cloned := state.Clone()
	cloned.Context = deepCopyMap(state.Context)
	m.maskMap(cloned.Context)

	for i := range cloned.History {
		e := &cloned.History[i]
		e.URL = m.maskURL(e.URL)
		if e.State != nil {
			e.State = deepCopyMap(e.State)
			m.maskMap(e.State)
		}
	}

	return m.next.Save(ctx, sessionID, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

func (m *piiMiddleware) maskMap(values map[string]any) {
	for k, v := range values {
		if m.matches(k) {
			values[k] = Mask
			continue
		}
		if sub, ok := v.(map[string]any); ok {
			m.maskMap(sub)
		}
	}
}

// maskURL rewrites matching query values of a router URL, keeping the
// path and fragment as they were.
func (m *piiMiddleware) maskURL(raw string) string {
	path, query, ok := strings.Cut(raw, "?")
	if !ok {
		return raw
	}
	query, fragment, hasFragment := strings.Cut(query, "#")

	values, err := url.ParseQuery(query)
	if err != nil {
		return raw
	}
	changed := false
	for k, vs := range values {
		if !m.matches(k) {
			continue
		}
		for i := range vs {
			vs[i] = Mask
		}
		changed = true
	}
	if !changed {
		return raw
	}

	out := path + "?" + values.Encode()
	if hasFragment {
		out += "#" + fragment
	}
	return out
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(sub)
		} else {
			out[k] = v
		}
	}
	return out
}
