package commands

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	apierrors "github.com/diogo/monachat/internal/errors"
	"github.com/diogo/monachat/internal/render"
)

func TestSpinnerLifecycle_StopWithSuccess(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner("Alex is typing...")
	s.out = &buf
	s.start()
	time.Sleep(150 * time.Millisecond)
	s.stopWithSuccess("done")

	if !strings.Contains(buf.String(), "done") {
		t.Errorf("expected success message, got %q", buf.String())
	}
}

func TestSpinnerLifecycle_StopWithError(t *testing.T) {
	s := newSpinner("Connecting")
	s.out = io.Discard
	s.start()
	time.Sleep(30 * time.Millisecond)
	s.stopWithError()
	// Stopping twice must not panic
	s.stopOnce()
}

func TestRenderReply(t *testing.T) {
	var buf bytes.Buffer
	renderReply(&buf, "Alex", "you *always* make me smile", render.Options{Style: "notty"})

	out := buf.String()
	for _, want := range []string{"♥ Alex", "always", "smile"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestFormatErrorMessage_Nil(t *testing.T) {
	if got := formatErrorMessage(nil, "ctx"); got != "" {
		t.Fatalf("expected empty for nil error, got %s", got)
	}
}

func TestFormatErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{"api error", apierrors.NewAPIError(503, "/api/reply", "unavailable"), []string{"HTTP Status: 503", "Hint"}},
		{"network", apierrors.NewNetworkError("fetch reply", "/api/reply", errors.New("refused")), []string{"backend_url"}},
		{"unknown contact", apierrors.NewUnknownContactError("bob"), []string{"contacts list"}},
		{"parse", apierrors.NewParseError("bad json", "replyText"), []string{"unexpected"}},
		{"plain", errors.New("boom"), []string{"Failed", "boom"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := formatErrorMessage(tt.err, "Failed")
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q: %s", want, out)
				}
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected unchanged, got %s", got)
	}

	if got := truncate("abcdefghijklmnopqrstuvwxyz", 5); got != "abcde..." {
		t.Fatalf("expected truncated with ellipsis, got %s", got)
	}

	if got := truncate("héllo wörld", 4); got != "héll..." {
		t.Fatalf("expected rune-safe truncation, got %s", got)
	}
}

func TestGetTerminalWidth_Default(t *testing.T) {
	// stdout is not a terminal under go test
	if !isStdoutTTY() && getTerminalWidth() != 80 {
		t.Errorf("expected default width 80, got %d", getTerminalWidth())
	}
}
