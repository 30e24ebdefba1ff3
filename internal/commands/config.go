package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/monachat/internal/config"
)

// configCmd shows the effective configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
	Long: `Show the effective configuration, including environment overrides.

Settings are stored in ~/.monachat/config.json. MONACHAT_BACKEND_URL,
MONACHAT_DATA_DIR and MONACHAT_STORAGE (also read from a .env file in the
current directory) take precedence over the file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigShow(cmd.OutOrStdout())
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long:  "Change a setting. Keys: " + strings.Join(configKeys, ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
}

var configKeys = []string{
	"backend_url",
	"data_dir",
	"storage",
	"think_time_min_ms",
	"think_time_max_ms",
	"request_timeout_seconds",
	"serialize_sends",
	"copy_to_clipboard",
	"verbose",
	"markdown.style",
	"markdown.enable_emoji",
	"markdown.preserve_newlines",
}

func runConfigShow(w io.Writer) error {
	if err := config.LoadDotEnv(""); err != nil {
		return err
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(applyFlags(cfg), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func runConfigSet(w io.Writer, key, value string) error {
	// Environment overrides are not persisted
	cfg, err := config.ReadConfigFile()
	if err != nil {
		return err
	}

	if err := setConfigValue(&cfg, key, value); err != nil {
		return err
	}
	if err := config.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s = %s\n", key, value)
	return nil
}

// setConfigValue assigns value to the setting named key
func setConfigValue(cfg *config.Config, key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case "backend_url":
		if value == "" {
			return fmt.Errorf("backend_url cannot be empty")
		}
		cfg.BackendURL = value
	case "data_dir":
		cfg.DataDir = value
	case "storage":
		if !slices.Contains(config.AvailableStorages(), value) {
			return fmt.Errorf("unknown storage %q (available: %s)", value, strings.Join(config.AvailableStorages(), ", "))
		}
		cfg.Storage = value
	case "think_time_min_ms", "think_time_max_ms", "request_timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be a non-negative integer", key)
		}
		switch key {
		case "think_time_min_ms":
			cfg.ThinkTimeMinMS = n
		case "think_time_max_ms":
			cfg.ThinkTimeMaxMS = n
		default:
			cfg.RequestTimeoutSeconds = n
		}
	case "serialize_sends", "copy_to_clipboard", "verbose", "markdown.enable_emoji", "markdown.preserve_newlines":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false", key)
		}
		switch key {
		case "serialize_sends":
			cfg.SerializeSends = b
		case "copy_to_clipboard":
			cfg.CopyToClipboard = b
		case "verbose":
			cfg.Verbose = b
		case "markdown.enable_emoji":
			cfg.Markdown.EnableEmoji = b
		default:
			cfg.Markdown.PreserveNewLines = b
		}
	case "markdown.style":
		if value == "" {
			return fmt.Errorf("markdown.style cannot be empty")
		}
		cfg.Markdown.Style = value
	default:
		return fmt.Errorf("unknown setting %q (keys: %s)", key, strings.Join(configKeys, ", "))
	}

	return nil
}
