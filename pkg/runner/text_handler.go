package runner

import (
	"bufio"
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/tgquest/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// TextHandler implements the interactive terminal interface.
// Buttons are listed with numbers; typing a number presses the matching button.
type TextHandler struct {
	Reader *bufio.Reader
	Writer io.Writer

	out         *termenv.Output
	interactive bool
	labels      []string

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// NewTextHandler creates a handler for terminal IO.
func NewTextHandler(r io.Reader, w io.Writer) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &TextHandler{
		Reader:      bufio.NewReader(r),
		Writer:      w,
		out:         termenv.NewOutput(w),
		interactive: isTerminal(r),
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

func (h *TextHandler) pump() {
	defer close(h.inputChan)
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			return
		}
	}
}

// Output prints the screen text and its numbered buttons.
func (h *TextHandler) Output(ctx context.Context, reply *domain.Reply) error {
	fmt.Fprintln(h.Writer)
	fmt.Fprintln(h.Writer, PlainText(reply.Text))

	h.labels = h.labels[:0]
	for _, row := range reply.Keyboard {
		var cells []string
		for _, label := range row {
			h.labels = append(h.labels, label)
			num := h.out.String(fmt.Sprintf("[%d]", len(h.labels))).Bold().String()
			cells = append(cells, num+" "+label)
		}
		if len(cells) > 0 {
			fmt.Fprintln(h.Writer, "  "+strings.Join(cells, "   "))
		}
	}
	return nil
}

// Input reads one line. A bare number selects the button with that index
// unless it is itself the label of a button.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
		if h.interactive {
			fmt.Fprint(h.Writer, h.out.String("> ").Faint().String())
		}
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-h.inputChan:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return h.resolveChoice(strings.TrimRight(res.text, "\r\n")), nil
	}
}

func (h *TextHandler) resolveChoice(text string) string {
	trimmed := strings.TrimSpace(text)
	for _, label := range h.labels {
		if label == text || label == trimmed {
			return label
		}
	}
	if n, err := strconv.Atoi(trimmed); err == nil && n >= 1 && n <= len(h.labels) {
		return h.labels[n-1]
	}
	return trimmed
}

// SystemOutput prints a highlighted notice.
func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	line := h.out.String("[System] " + msg).Foreground(h.out.Color("3")).String()
	fmt.Fprintln(h.Writer, line)
	return nil
}

// PlainText strips the HTML markup of a reply for terminals.
func PlainText(s string) string {
	return html.UnescapeString(htmlTag.ReplaceAllString(s, ""))
}
