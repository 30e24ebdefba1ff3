package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/diogo/monachat/internal/api"
	"github.com/diogo/monachat/internal/config"
)

func TestConfigCommand(t *testing.T) {
	if configCmd.Use != "config" {
		t.Errorf("Expected use 'config', got %s", configCmd.Use)
	}
	for _, name := range []string{"path", "set"} {
		found := false
		for _, cmd := range configCmd.Commands() {
			if cmd.Name() == name {
				found = true
			}
		}
		if !found {
			t.Errorf("Subcommand %s not found", name)
		}
	}
}

func TestSetConfigValue(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
		check   func(config.Config) bool
	}{
		{"backend_url", "http://localhost:9000", false, func(c config.Config) bool { return c.BackendURL == "http://localhost:9000" }},
		{"backend_url", "", true, nil},
		{"storage", "sqlite", false, func(c config.Config) bool { return c.Storage == config.StorageSQLite }},
		{"storage", "redis", true, nil},
		{"think_time_min_ms", "100", false, func(c config.Config) bool { return c.ThinkTimeMinMS == 100 }},
		{"think_time_max_ms", "-5", true, nil},
		{"request_timeout_seconds", "abc", true, nil},
		{"serialize_sends", "false", false, func(c config.Config) bool { return !c.SerializeSends }},
		{"copy_to_clipboard", "yes", true, nil},
		{"verbose", "true", false, func(c config.Config) bool { return c.Verbose }},
		{"markdown.style", "dracula", false, func(c config.Config) bool { return c.Markdown.Style == "dracula" }},
		{"markdown.enable_emoji", "false", false, func(c config.Config) bool { return !c.Markdown.EnableEmoji }},
		{"colour", "pink", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := config.DefaultConfig()
			err := setConfigValue(&cfg, tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("value not applied: %+v", cfg)
			}
		})
	}
}

func TestRunConfigSetAndShow(t *testing.T) {
	setupTestEnv(t, &api.MockReplyClient{})
	t.Setenv(config.EnvBackendURL, "http://env.test")

	var buf bytes.Buffer
	if err := runConfigSet(&buf, "copy_to_clipboard", "true"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	cfg, err := config.ReadConfigFile()
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.CopyToClipboard {
		t.Error("setting was not saved")
	}
	if cfg.BackendURL == "http://env.test" {
		t.Error("environment override must not be saved")
	}
	if cfg.ThinkTimeMaxMS != 0 {
		t.Error("existing settings must be kept")
	}

	buf.Reset()
	if err := runConfigShow(&buf); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	var shown config.Config
	if err := json.Unmarshal(buf.Bytes(), &shown); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if shown.BackendURL != "http://env.test" || !shown.CopyToClipboard {
		t.Errorf("shown = %+v", shown)
	}
}

func TestConfigSetHelpListsKeys(t *testing.T) {
	if !strings.Contains(configSetCmd.Long, "backend_url") {
		t.Error("expected keys in help")
	}
}
