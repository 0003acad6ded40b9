package instruction

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Params are component parameters. Positional values use "0", "1", ... as keys.
type Params map[string]string

// Equal compares keys and values; nil and empty are equal.
func (p Params) Equal(o Params) bool {
	return maps.Equal(p, o)
}

// Clone returns an independent copy, or nil for an empty map.
func (p Params) Clone() Params {
	if len(p) == 0 {
		return nil
	}
	return maps.Clone(p)
}

// Merge returns a new map with o's entries layered over p's.
func (p Params) Merge(o Params) Params {
	if len(p) == 0 && len(o) == 0 {
		return nil
	}
	out := make(Params, len(p)+len(o))
	maps.Copy(out, p)
	maps.Copy(out, o)
	return out
}

// String renders "(v0,v1,k=v)" with contiguous positional values first and
// named keys sorted. It returns "" for an empty map.
func (p Params) String() string {
	if len(p) == 0 {
		return ""
	}
	var parts []string
	seen := make(map[string]bool, len(p))
	for i := 0; ; i++ {
		k := strconv.Itoa(i)
		v, ok := p[k]
		if !ok {
			break
		}
		seen[k] = true
		parts = append(parts, escape(v))
	}
	keys := slices.Sorted(maps.Keys(p))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		parts = append(parts, escape(k)+"="+escape(p[k]))
	}
	return "(" + strings.Join(parts, ",") + ")"
}

const reserved = "?#/+().@!=,&'~;%"

// escape percent-encodes characters the route grammar reserves.
func escape(s string) string {
	if !strings.ContainsAny(s, reserved+" ") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || strings.IndexByte(reserved, c) >= 0 {
			sb.WriteByte('%')
			sb.WriteString(strings.ToUpper(strconv.FormatInt(int64(c), 16)))
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
