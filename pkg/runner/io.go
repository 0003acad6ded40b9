package runner

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// CommandKind names what a Command does.
type CommandKind string

const (
	CommandNavigate CommandKind = "navigate"
	CommandBack     CommandKind = "back"
	CommandForward  CommandKind = "forward"
	CommandState    CommandKind = "state"
	CommandDelete   CommandKind = "delete"
	CommandHelp     CommandKind = "help"
	CommandQuit     CommandKind = "quit"
)

// Command is one unit of input.
type Command struct {
	Kind    CommandKind    `json:"command"`
	Route   string         `json:"route,omitempty"`
	Options map[string]any `json:"options,omitempty"`

	// Raw is the line the command was parsed from.
	Raw string `json:"-"`
}

var aliases = map[string]CommandKind{
	"back":    CommandBack,
	"b":       CommandBack,
	"forward": CommandForward,
	"fwd":     CommandForward,
	"f":       CommandForward,
	"state":   CommandState,
	"tree":    CommandState,
	"delete":  CommandDelete,
	"rm":      CommandDelete,
	"help":    CommandHelp,
	"quit":    CommandQuit,
	"q":       CommandQuit,
	"exit":    CommandQuit,
}

// HelpText lists the commands ParseCommand understands.
const HelpText = `Type a route expression to navigate, e.g. "products/42" or "inbox@main+message(3)@side".
Commands:
  :back, :b             go one entry back
  :forward, :f          go one entry forward
  :replace <route>      navigate without adding a history entry
  :tree, :state         show the current route tree
  :delete               delete the session and leave
  :help                 show this text
  :quit, q              leave`

// ParseCommand turns a text line into a Command. Lines starting with ':' are
// shell commands and everything else is a route expression.
func ParseCommand(line string) (Command, error) {
	raw := line
	line = strings.TrimSpace(line)
	switch line {
	case "q", "quit", "exit":
		return Command{Kind: CommandQuit, Raw: raw}, nil
	case "?":
		return Command{Kind: CommandHelp, Raw: raw}, nil
	}
	if !strings.HasPrefix(line, ":") {
		return Command{Kind: CommandNavigate, Route: line, Raw: raw}, nil
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)
	if name == "replace" {
		return Command{
			Kind:    CommandNavigate,
			Route:   arg,
			Options: map[string]any{"history_strategy": string(domain.HistoryReplace)},
			Raw:     raw,
		}, nil
	}
	kind, ok := aliases[name]
	if !ok {
		return Command{Raw: raw}, fmt.Errorf("unknown command %q", ":"+name)
	}
	return Command{Kind: kind, Raw: raw}, nil
}

// DecodeNavigationOptions turns a loosely typed option map into navigation
// options. Unknown keys are rejected.
func DecodeNavigationOptions(raw map[string]any) ([]domain.NavigationOption, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var o domain.NavigationOptions
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &o,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}
	return []domain.NavigationOption{func(dst *domain.NavigationOptions) { *dst = o }}, nil
}
