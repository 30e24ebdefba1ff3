package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/monachat/internal/media"
	"github.com/diogo/monachat/internal/models"
)

var contactsCmd = &cobra.Command{
	Use:     "contacts",
	Aliases: []string{"contact"},
	Short:   "Manage contacts",
	Long:    `List contacts and change their names and avatars.`,
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all contacts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runContactsList(cmd.OutOrStdout())
	},
}

var contactsRenameCmd = &cobra.Command{
	Use:   "rename <contact> <name>",
	Short: "Rename a contact",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runContactsRename(cmd.OutOrStdout(), args[0], args[1])
	},
}

var contactsAvatarCmd = &cobra.Command{
	Use:   "avatar <contact> <path-or-url>",
	Short: "Set a contact's avatar",
	Long: `Set a contact's avatar from a URL or a local image file.
Local files are stored inline as data URLs.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runContactsAvatar(cmd.OutOrStdout(), args[0], args[1])
	},
}

var contactsAboutCmd = &cobra.Command{
	Use:   "about [contact]",
	Short: "Show a contact's profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := ""
		if len(args) > 0 {
			ref = args[0]
		}
		return runContactsAbout(cmd.OutOrStdout(), ref)
	},
}

func init() {
	contactsCmd.AddCommand(contactsListCmd)
	contactsCmd.AddCommand(contactsRenameCmd)
	contactsCmd.AddCommand(contactsAvatarCmd)
	contactsCmd.AddCommand(contactsAboutCmd)
}

func runContactsList(out io.Writer) error {
	app, err := openApp(deps, false)
	if err != nil {
		return err
	}
	defer app.Close()

	contacts := app.Timeline.Contacts()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tID\tNAME\tMESSAGES\tLAST")
	_, _ = fmt.Fprintln(w, "-\t--\t----\t--------\t----")

	for i, id := range models.ContactIDs() {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			i+1, id, contacts.DisplayName(id), app.Timeline.Len(id), truncate(app.Timeline.Preview(id), 40))
	}

	return w.Flush()
}

func runContactsRename(out io.Writer, ref, name string) error {
	app, err := openApp(deps, false)
	if err != nil {
		return err
	}
	defer app.Close()

	id, err := resolveContact(app, ref)
	if err != nil {
		return err
	}
	if err := app.Timeline.Rename(id, name); err != nil {
		return fmt.Errorf("failed to rename: %w", err)
	}

	c, _ := app.Timeline.Contact(id)
	fmt.Fprintf(out, "Renamed %s to %s\n", id, c.Name)
	return nil
}

func runContactsAvatar(out io.Writer, ref, image string) error {
	app, err := openApp(deps, false)
	if err != nil {
		return err
	}
	defer app.Close()

	id, err := resolveContact(app, ref)
	if err != nil {
		return err
	}
	avatar, err := media.ResolveImageRef(image)
	if err != nil {
		return fmt.Errorf("failed to load avatar: %w", err)
	}
	if err := app.Timeline.SetAvatar(id, avatar); err != nil {
		return fmt.Errorf("failed to set avatar: %w", err)
	}

	fmt.Fprintf(out, "Avatar of %s set (%s)\n", id, media.Describe(avatar))
	return nil
}

func runContactsAbout(out io.Writer, ref string) error {
	app, err := openApp(deps, false)
	if err != nil {
		return err
	}
	defer app.Close()

	id, err := resolveContact(app, ref)
	if err != nil {
		return err
	}
	c, err := app.Timeline.Contact(id)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, assistantLabelStyle.Render(c.Name))
	fmt.Fprintf(out, "ID:       %s\n", id)
	fmt.Fprintf(out, "Avatar:   %s\n", media.Describe(c.Avatar))
	fmt.Fprintf(out, "Messages: %d\n", app.Timeline.Len(id))
	fmt.Fprintln(out)
	fmt.Fprintln(out, models.ContactAbout(id))
	return nil
}
