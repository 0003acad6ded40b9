package cli

import (
	"io"
	"os"

	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/aretw0/waypoint/pkg/runner"
	"golang.org/x/term"
)

// newIOHandler picks the handler for the run mode:
//   - json: NDJSON in and out, no decoration
//   - headless: plain text, no markdown rendering
//   - interactive: text rendered through glamour
func newIOHandler(opts RunOptions, in io.Reader, out io.Writer) runner.IOHandler {
	if opts.JSON {
		return runner.NewJSONHandler(in, out)
	}
	if opts.Headless {
		return runner.NewTextHandler(in, out)
	}
	return runner.NewTextHandler(in, out, runner.WithTextHandlerRenderer(tui.NewRenderer(terminalWidth(out))))
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
