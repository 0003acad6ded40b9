package expression

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrParse is wrapped by every *ParseError.
var ErrParse = errors.New("route expression parse error")

// ParseError reports where a route expression stopped matching the grammar.
type ParseError struct {
	Input    string
	Index    int
	Rest     string
	Expected string
}

func (e *ParseError) Error() string {
	if e.Rest == "" {
		return fmt.Sprintf("parse %q: unexpected end of input at index %d, expected %s", e.Input, e.Index, e.Expected)
	}
	return fmt.Sprintf("parse %q: unexpected %q at index %d, expected %s", e.Input, e.Rest, e.Index, e.Expected)
}

func (e *ParseError) Unwrap() error { return ErrParse }

var terminals = []string{"?", "#", "/", "+", "(", ")", ".", "@", "!", "=", ",", "&", "'", "~", ";"}

// state is a single-pass scanner. Each open recording buffer accumulates every
// consumed character until it is played back or discarded.
type state struct {
	input   string
	rest    string
	index   int
	buffers []string
}

func newState(input string) *state {
	return &state{input: input, rest: input}
}

func (s *state) done() bool { return len(s.rest) == 0 }

func (s *state) startsWith(vals ...string) bool {
	for _, v := range vals {
		if strings.HasPrefix(s.rest, v) {
			return true
		}
	}
	return false
}

func (s *state) atTerminal() bool { return s.startsWith(terminals...) }

func (s *state) consumeOptional(str string) bool {
	if !strings.HasPrefix(s.rest, str) {
		return false
	}
	s.rest = s.rest[len(str):]
	s.index += len(str)
	s.append(str)
	return true
}

func (s *state) consume(str string) {
	if !s.consumeOptional(str) {
		s.expect(strconv.Quote(str))
	}
}

// expect aborts the parse; parse recovers it into an error.
func (s *state) expect(msg string) {
	panic(&ParseError{Input: s.input, Index: s.index, Rest: s.rest, Expected: msg})
}

func (s *state) ensureDone() {
	if !s.done() {
		s.expect("end of input")
	}
}

func (s *state) advance() {
	ch := s.rest[:1]
	s.rest = s.rest[1:]
	s.index++
	s.append(ch)
}

func (s *state) record() { s.buffers = append(s.buffers, "") }

func (s *state) playback() string {
	n := len(s.buffers) - 1
	buf := s.buffers[n]
	s.buffers = s.buffers[:n]
	return buf
}

func (s *state) discard() { s.buffers = s.buffers[:len(s.buffers)-1] }

func (s *state) append(str string) {
	for i := range s.buffers {
		s.buffers[i] += str
	}
}

// scanName consumes characters up to the next terminal and returns them decoded.
func (s *state) scanName() string {
	s.record()
	for !s.done() && !s.atTerminal() {
		s.advance()
	}
	return decode(s.playback())
}

func decode(v string) string {
	if d, err := url.PathUnescape(v); err == nil {
		return d
	}
	return v
}

// Parse parses a route string without caching.
func Parse(input string, fragmentIsRoute bool) (*RouteExpression, error) {
	return parse(input, fragmentIsRoute)
}

func parse(input string, fragmentIsRoute bool) (expr *RouteExpression, err error) {
	path := input
	fragment, rawFragment := "", ""
	if i := strings.IndexByte(path, '#'); i >= 0 {
		rawFragment = path[i+1:]
		fragment = decode(rawFragment)
		if fragmentIsRoute {
			path = fragment
		} else {
			path = path[:i]
		}
	}

	query, rawQuery := url.Values{}, ""
	if i := strings.IndexByte(path, '?'); i >= 0 {
		rawQuery = path[i+1:]
		// Malformed pairs are dropped; the rest is kept.
		query, _ = url.ParseQuery(rawQuery)
		if query == nil {
			query = url.Values{}
		}
		path = path[:i]
	}

	result := &RouteExpression{
		QueryParams:     query,
		RawQuery:        rawQuery,
		Fragment:        fragment,
		RawFragment:     rawFragment,
		FragmentIsRoute: fragmentIsRoute,
	}
	if fragmentIsRoute {
		result.Fragment, result.RawFragment = "", ""
	}
	if path == "" {
		result.Root = emptySegment()
		return result, nil
	}

	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*ParseError)
			if !ok {
				panic(r)
			}
			expr, err = nil, pe
		}
	}()

	s := newState(path)
	s.record()
	result.IsAbsolute = s.consumeOptional("/")
	if s.done() {
		result.Root = emptySegment()
	} else {
		result.Root = parseComposite(s)
	}
	s.ensureDone()
	result.Raw = s.playback()
	return result, nil
}

func parseComposite(s *state) Expression {
	s.record()
	appendMode := s.consumeOptional("+")
	var siblings []Expression
	for {
		siblings = append(siblings, parseScoped(s))
		if !s.consumeOptional("+") {
			break
		}
	}
	if !appendMode && len(siblings) == 1 {
		s.discard()
		return siblings[0]
	}
	return &CompositeSegmentExpression{Raw: s.playback(), Siblings: siblings, Append: appendMode}
}

func parseScoped(s *state) Expression {
	s.record()
	left := parseSegmentGroup(s)
	if s.consumeOptional("/") {
		right := parseScoped(s)
		return &ScopedSegmentExpression{Raw: s.playback(), Left: left, Right: right}
	}
	s.discard()
	return left
}

func parseSegmentGroup(s *state) Expression {
	s.record()
	if s.consumeOptional("(") {
		inner := parseComposite(s)
		s.consume(")")
		viewport := parseViewport(s)
		return &SegmentGroupExpression{Raw: s.playback(), Expression: inner, Viewport: viewport}
	}
	s.discard()
	return parseSegment(s)
}

func parseSegment(s *state) *SegmentExpression {
	s.record()
	component := parseComponent(s)
	action := parseAction(s)
	viewport := parseViewport(s)
	scoped := !s.consumeOptional("!")
	return &SegmentExpression{
		Raw:       s.playback(),
		Component: component,
		Action:    action,
		Viewport:  viewport,
		Scoped:    scoped,
	}
}

func parseComponent(s *state) *ComponentExpression {
	s.record()
	name := s.scanName()
	if name == "" {
		s.expect("component name")
	}
	params := parseParameterList(s)
	c := &ComponentExpression{Raw: s.playback(), Name: name, ParameterName: name, ParameterList: params}
	switch name[0] {
	case ':':
		c.IsParameter, c.IsDynamic, c.ParameterName = true, true, name[1:]
	case '*':
		c.IsStar, c.IsDynamic, c.ParameterName = true, true, name[1:]
	}
	return c
}

func parseAction(s *state) *ActionExpression {
	s.record()
	name := ""
	if s.consumeOptional(".") {
		name = s.scanName()
		if name == "" {
			s.expect("method name")
		}
	}
	params := parseParameterList(s)
	return &ActionExpression{Raw: s.playback(), Name: name, ParameterList: params}
}

func parseViewport(s *state) *ViewportExpression {
	s.record()
	name := ""
	if s.consumeOptional("@") {
		name = s.scanName()
		if name == "" {
			s.expect("viewport name")
		}
	}
	return &ViewportExpression{Raw: s.playback(), Name: name}
}

func parseParameterList(s *state) *ParameterListExpression {
	s.record()
	var exprs []*ParameterExpression
	if s.consumeOptional("(") {
		for {
			exprs = append(exprs, parseParameter(s, len(exprs)))
			if !s.consumeOptional(",") {
				break
			}
		}
		s.consume(")")
	}
	return &ParameterListExpression{Raw: s.playback(), Expressions: exprs}
}

func parseParameter(s *state, index int) *ParameterExpression {
	s.record()
	key := s.scanName()
	if key == "" {
		s.expect("parameter key")
	}
	var value string
	if s.consumeOptional("=") {
		value = s.scanName()
		if value == "" {
			s.expect("parameter value")
		}
	} else {
		value = key
		key = strconv.Itoa(index)
	}
	return &ParameterExpression{Raw: s.playback(), Key: key, Value: value}
}
