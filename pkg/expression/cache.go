package expression

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Parser parses route strings and memoizes the results. Two caches are kept, one
// for paths and one for fragments parsed as routes. The same input always yields
// the identical *RouteExpression, which callers may rely on for cheap identity
// comparison. Parse errors are not cached.
//
// The caches are unbounded.
type Parser struct {
	mu        sync.RWMutex
	paths     map[string]*RouteExpression
	fragments map[string]*RouteExpression
	group     singleflight.Group
}

// NewParser creates a Parser with empty caches.
func NewParser() *Parser {
	return &Parser{
		paths:     make(map[string]*RouteExpression),
		fragments: make(map[string]*RouteExpression),
	}
}

// Parse returns the cached expression for input, parsing it on first use.
// Concurrent first parses of the same input share one parse.
func (p *Parser) Parse(input string, fragmentIsRoute bool) (*RouteExpression, error) {
	if expr, ok := p.lookup(input, fragmentIsRoute); ok {
		return expr, nil
	}

	key := "p:" + input
	if fragmentIsRoute {
		key = "f:" + input
	}
	v, err, _ := p.group.Do(key, func() (any, error) {
		if expr, ok := p.lookup(input, fragmentIsRoute); ok {
			return expr, nil
		}
		expr, err := parse(input, fragmentIsRoute)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.cache(fragmentIsRoute)[input] = expr
		p.mu.Unlock()
		return expr, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*RouteExpression), nil
}

// Reset drops every cached expression.
func (p *Parser) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paths = make(map[string]*RouteExpression)
	p.fragments = make(map[string]*RouteExpression)
}

// Len returns the number of cached entries across both caches.
func (p *Parser) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.paths) + len(p.fragments)
}

func (p *Parser) lookup(input string, fragmentIsRoute bool) (*RouteExpression, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	expr, ok := p.cache(fragmentIsRoute)[input]
	return expr, ok
}

func (p *Parser) cache(fragmentIsRoute bool) map[string]*RouteExpression {
	if fragmentIsRoute {
		return p.fragments
	}
	return p.paths
}
