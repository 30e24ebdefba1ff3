package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	apierrors "github.com/diogo/monachat/internal/errors"
	"github.com/diogo/monachat/internal/render"
)

var (
	colorText     = lipgloss.Color("#5a4a6b")
	colorTextDim  = lipgloss.Color("#9a8aab")
	colorTextMute = lipgloss.Color("#c7b8d6")
	colorSuccess  = lipgloss.Color("#7ccf9a")
	colorPrimary  = lipgloss.Color("#ff7eb6")
	colorError    = lipgloss.Color("#f7768e")
)

// Pastel frames for the loading animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff7eb6"),
	lipgloss.Color("#ffb3d1"),
	lipgloss.Color("#c9a7ff"),
	lipgloss.Color("#a7c7ff"),
	lipgloss.Color("#9fe8d4"),
}

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginBottom(1)

	metaStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)
)

// spinner handles the animated loading indicator
type spinner struct {
	message string
	out     io.Writer
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a new animated spinner writing to stderr
func newSpinner(message string) *spinner {
	return &spinner{
		message: message,
		out:     os.Stderr,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	hearts := []string{"♡", "♥"}

	heart := lipgloss.NewStyle().
		Foreground(gradientColors[s.frame%len(gradientColors)]).
		Bold(true).
		Render(hearts[(s.frame/2)%len(hearts)])

	var dots strings.Builder
	numDots := (s.frame / 2) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)
	fmt.Fprintf(s.out, "\r\033[K%s %s %s", heart, msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(s.out, "%s %s\n", checkmark, msg)
}

// stopWithError stops the spinner and shows error
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// renderReply prints a contact's reply as a labeled bubble
func renderReply(w io.Writer, name, text string, opts render.Options) {
	bubbleWidth := getTerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 100 {
		bubbleWidth = 100
	}
	contentWidth := bubbleWidth - 4

	fmt.Fprintln(w, assistantLabelStyle.Render("♥ "+name))

	rendered := render.MessageBody(text, opts.WithWidth(contentWidth))
	fmt.Fprintln(w, assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	switch {
	case apierrors.IsUnknownContact(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Run 'monachat contacts list' to see available contacts"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check your connection and the backend_url setting"))
	case apierrors.IsAPIError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The reply service returned an error. Try again later"))
	case apierrors.IsReplyError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The reply service sent something unexpected"))
	}

	return sb.String()
}

// truncate shortens s to at most n runes, adding an ellipsis
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// writeFile writes data to path, creating or truncating it
func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
