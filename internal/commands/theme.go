package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/diogo/monachat/internal/render"
)

var themeCmd = &cobra.Command{
	Use:   "theme [name]",
	Short: "Show or change the chat theme",
	Long: `Without an argument, list the available themes and mark the current one.
With a name, switch to that theme. The choice is saved with your chats.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		return runTheme(cmd.OutOrStdout(), name)
	},
}

func runTheme(w io.Writer, name string) error {
	app, err := openApp(deps, false)
	if err != nil {
		return err
	}
	defer app.Close()

	if name == "" {
		current := app.History.LoadTheme()
		for _, t := range render.AvailableTUIThemes() {
			marker := "  "
			if t.Name == current {
				marker = "* "
			}
			fmt.Fprintf(w, "%s%-6s %s\n", marker, t.Name, t.Description)
		}
		return nil
	}

	theme, ok := render.GetTUIThemeByName(name)
	if !ok {
		return fmt.Errorf("unknown theme %q (available: %v)", name, render.TUIThemeNames())
	}
	if err := app.History.SaveTheme(theme.Name); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	render.SetTUITheme(theme.Name)

	fmt.Fprintf(w, "Theme set to %s\n", theme.Name)
	return nil
}
