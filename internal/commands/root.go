// Package commands provides CLI commands for monachat.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/monachat/internal/history"
	"github.com/diogo/monachat/internal/models"
)

var (
	// Global flags
	contactFlag string
	storageFlag string
	backendFlag string
	dataDirFlag string
	verboseFlag bool

	// Send flags
	outputFlag string
	fileFlag   string
	imageFlag  string

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "monachat [message]",
	Short: "Chat with your contacts from the terminal",
	Long: `monachat is a terminal chat client for a small fixed set of contacts.
Every message moves through sent, delivered and read while the contact's
reply is fetched from the reply service. Chats are kept on disk between runs.

Examples:
  monachat chat                         Start interactive chat
  monachat "miss you"                   Send a message to Alex
  monachat -c elly "guess what"         Send a message to Elly
  monachat -i photo.jpg "look!"         Send a photo with a caption
  monachat show elly                    Print a chat
  monachat contacts list                List contacts
  monachat export alex -o alex.md       Export a chat
  cat note.txt | monachat -c notes      Read the message from stdin`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Check for version flag
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Fprintf(cmd.OutOrStdout(), "monachat %s (built %s)\n", Version, BuildTime)
			return nil
		}

		text, ok, err := readMessage(cmd, args)
		if err != nil {
			return err
		}
		if ok {
			return runSend(cmd.Context(), cmd.OutOrStdout(), text)
		}

		// No input - show help
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&contactFlag, "contact", "c", "", "Contact to talk to (id, name, position or @last)")
	rootCmd.PersistentFlags().StringVar(&storageFlag, "storage", "", "Storage backend (file, sqlite)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Reply service base URL")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Directory for saved chats")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Enable debug logging")
	addSendFlags(rootCmd)
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(contactsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(configCmd)
}

func addSendFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save reply to file")
	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read message from file")
	cmd.Flags().StringVarP(&imageFlag, "image", "i", "", "Path to image file to send")
}

// readMessage collects the message text from --file, the positional
// argument or piped stdin. ok is false when no input was given.
func readMessage(cmd *cobra.Command, args []string) (string, bool, error) {
	if fileFlag != "" {
		data, err := os.ReadFile(fileFlag)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}

	if hasStdin() {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), true, nil
	}

	// An image alone is a valid message
	if imageFlag != "" {
		return "", true, nil
	}

	return "", false, nil
}

// hasStdin reports whether stdin is piped rather than a terminal
func hasStdin() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// resolveContact picks the contact from ref, falling back to the --contact
// flag and then to the pipeline default
func resolveContact(app *App, ref string) (models.ContactID, error) {
	if ref == "" {
		ref = contactFlag
	}
	if ref == "" {
		return app.Pipeline.ActiveContact(), nil
	}
	return history.NewResolver(app.Timeline).Resolve(ref)
}
