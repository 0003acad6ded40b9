package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxRouteSize bounds a single route or command line.
	DefaultMaxRouteSize = 4096
	// EnvMaxRouteSize overrides DefaultMaxRouteSize.
	EnvMaxRouteSize = "WAYPOINT_MAX_ROUTE_SIZE"
)

var (
	ErrRouteTooLarge    = errors.New("route exceeds maximum allowed size")
	ErrInvalidUTF8      = errors.New("route contains invalid UTF-8 sequences")
	ErrControlCharacter = errors.New("route contains a control character")
)

// SanitizeRoute validates a route expression or command line received from
// outside the process and trims surrounding spaces. Routes are single-line, so
// every control character is rejected, including newlines and tabs, as are
// bidirectional formatting marks that would make the echoed URL misleading.
func SanitizeRoute(route string) (string, error) {
	if limit := maxRouteSize(); len(route) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrRouteTooLarge, len(route), limit)
	}
	if !utf8.ValidString(route) {
		return "", ErrInvalidUTF8
	}
	for i, r := range route {
		if unicode.IsControl(r) || unicode.Is(unicode.Bidi_Control, r) {
			return "", fmt.Errorf("%w: %U at offset %d", ErrControlCharacter, r, i)
		}
	}
	return strings.TrimSpace(route), nil
}

func maxRouteSize() int {
	if val := os.Getenv(EnvMaxRouteSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxRouteSize
}
