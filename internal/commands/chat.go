package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/monachat/internal/render"
	"github.com/diogo/monachat/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start the interactive chat with your contacts.

Tab switches between contacts, Enter sends and /help lists the commands
available in the input box. Type /quit or press Ctrl+C to leave.
Replies that are still on their way are kept when you switch contacts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(deps)
	},
}

func runChat(d *Dependencies) error {
	app, err := openApp(d, true)
	if err != nil {
		return err
	}
	defer app.Close()

	if contactFlag != "" {
		id, err := resolveContact(app, contactFlag)
		if err != nil {
			return err
		}
		if err := app.Pipeline.SetActiveContact(id); err != nil {
			return err
		}
	}

	// Theme was restored by openApp
	tui.UpdateTheme()

	opts := tui.Options{
		Markdown:        true,
		MarkdownOpts:    render.OptionsFromConfig(app.Config),
		CopyToClipboard: app.Config.CopyToClipboard,
	}
	if err := d.TUI.RunChat(app.Pipeline, app.Presence, app.History, opts); err != nil {
		return fmt.Errorf("chat session failed: %w", err)
	}
	return nil
}
