package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diogo/monachat/internal/api"
)

func TestRunExport(t *testing.T) {
	setupTestEnv(t, &api.MockReplyClient{Reply: "hello back"})

	if err := runSend(context.Background(), &bytes.Buffer{}, "hello"); err != nil {
		t.Fatal(err)
	}

	t.Run("markdown to stdout", func(t *testing.T) {
		var buf bytes.Buffer
		if err := runExport(&buf, "alex", "markdown", ""); err != nil {
			t.Fatalf("runExport failed: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "# Chat with Alex") || !strings.Contains(out, "hello back") {
			t.Errorf("unexpected markdown: %s", out)
		}
	})

	t.Run("json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "alex.json")
		var buf bytes.Buffer
		if err := runExport(&buf, "alex", "json", path); err != nil {
			t.Fatalf("runExport failed: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		var parsed map[string]any
		if err := json.Unmarshal(data, &parsed); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if parsed["contact_id"] != "alex" {
			t.Errorf("contact_id = %v", parsed["contact_id"])
		}
		if !strings.Contains(buf.String(), path) {
			t.Errorf("expected confirmation, got %q", buf.String())
		}
	})

	t.Run("bad format", func(t *testing.T) {
		if err := runExport(&bytes.Buffer{}, "alex", "pdf", ""); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}
