package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/waypoint/pkg/session"
)

// Event is one NDJSON output line.
type Event struct {
	Type    string            `json:"type"`
	Session *session.Snapshot `json:"session,omitempty"`
	Error   string            `json:"error,omitempty"`
	Message string            `json:"message,omitempty"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
//
// Each input line is either a Command object such as
// {"command":"navigate","route":"products/1"} or a JSON string, which is
// parsed like a text line.
type JSONHandler struct {
	Reader *bufio.Reader
	Writer io.Writer

	mu      sync.Mutex
	encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) emit(e Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.encoder.Encode(e)
}

func (h *JSONHandler) Output(ctx context.Context, snap *session.Snapshot) error {
	return h.emit(Event{Type: "session", Session: snap})
}

func (h *JSONHandler) Input(ctx context.Context) (Command, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Command{}, err
		}
		text, err := h.Reader.ReadString('\n')
		text = strings.TrimSpace(text)
		if text == "" {
			if err != nil {
				return Command{}, err
			}
			continue
		}

		cmd, perr := h.decode(text)
		if perr != nil {
			if eerr := h.Error(ctx, perr); eerr != nil {
				return Command{}, eerr
			}
			if err != nil {
				return Command{}, err
			}
			continue
		}
		return cmd, nil
	}
}

func (h *JSONHandler) decode(text string) (Command, error) {
	clean, err := SanitizeRoute(text)
	if err != nil {
		return Command{}, err
	}

	var line string
	if err := json.Unmarshal([]byte(clean), &line); err == nil {
		return ParseCommand(line)
	}

	var cmd Command
	if err := json.Unmarshal([]byte(clean), &cmd); err != nil {
		// Plain text is accepted too.
		return ParseCommand(clean)
	}
	cmd.Raw = clean
	if cmd.Kind == "" {
		cmd.Kind = CommandNavigate
	}
	return cmd, nil
}

func (h *JSONHandler) Error(ctx context.Context, err error) error {
	return h.emit(Event{Type: "error", Error: err.Error()})
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.emit(Event{Type: "system", Message: msg})
}
