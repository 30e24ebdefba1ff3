package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/diogo/monachat/internal/render"
	"github.com/diogo/monachat/internal/tui"
)

var showCmd = &cobra.Command{
	Use:   "show [contact]",
	Short: "Print a chat",
	Long: `Print a contact's chat with date separators and delivery status.

The contact can be an id, a name, a position in the contact list or @last.
Without an argument the --contact flag or Alex is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := ""
		if len(args) > 0 {
			ref = args[0]
		}
		return runShow(cmd.OutOrStdout(), ref)
	},
}

func runShow(w io.Writer, ref string) error {
	app, err := openApp(deps, false)
	if err != nil {
		return err
	}
	defer app.Close()

	id, err := resolveContact(app, ref)
	if err != nil {
		return err
	}
	contact, err := app.Timeline.Contact(id)
	if err != nil {
		return err
	}
	msgs, err := app.Timeline.Messages(id)
	if err != nil {
		return err
	}

	tui.UpdateTheme()
	fmt.Fprintln(w, assistantLabelStyle.Render("♥ "+contact.Name))
	if len(msgs) == 0 {
		fmt.Fprintln(w, metaStyle.Render(app.Timeline.Preview(id)))
		return nil
	}

	items := render.Project(msgs, time.Now())
	fmt.Fprintln(w, tui.RenderTimeline(items, tui.ViewOptions{
		Width:        getTerminalWidth(),
		ContactName:  contact.Name,
		Markdown:     isStdoutTTY(),
		MarkdownOpts: render.OptionsFromConfig(app.Config),
	}))
	return nil
}
