package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/monachat/internal/chat"
	"github.com/diogo/monachat/internal/media"
	"github.com/diogo/monachat/internal/render"
)

var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send one message and print the reply",
	Long: `Send a single message to a contact and wait for the reply.

The message is taken from the argument, --file or stdin. Use --image to
attach a picture; the text becomes its caption. When stdout is not a
terminal only the reply text is printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, ok, err := readMessage(cmd, args)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("message cannot be empty")
		}
		return runSend(cmd.Context(), cmd.OutOrStdout(), text)
	},
}

func init() {
	addSendFlags(sendCmd)
}

// runSend delivers one message and writes the reply to w.
// Reply failures are not returned: the contact's fallback reply is shown
// instead, with a warning on stderr.
func runSend(ctx context.Context, w io.Writer, text string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	draft := chat.Draft{Text: strings.TrimSpace(text)}
	if imageFlag != "" {
		data, err := media.LoadDataURL(imageFlag)
		if err != nil {
			return fmt.Errorf("failed to load image: %w", err)
		}
		draft.ImageData = data
	}
	if draft.Empty() {
		return fmt.Errorf("message cannot be empty")
	}

	app, err := openApp(deps, false)
	if err != nil {
		return err
	}
	defer app.Close()

	id, err := resolveContact(app, "")
	if err != nil {
		return err
	}
	contact, err := app.Timeline.Contact(id)
	if err != nil {
		return err
	}

	rawOutput := !isStdoutTTY()

	ticket, err := app.Pipeline.Submit(id, draft)
	if err != nil {
		return err
	}

	var spin *spinner
	if !rawOutput {
		spin = newSpinner(chat.TypingText(contact.Name))
		spin.start()
	}

	reply, replyErr := ticket.Await(ctx)
	if replyErr != nil && !rawOutput {
		spin.stopWithError()
		fmt.Fprintln(os.Stderr, formatErrorMessage(replyErr, "Reply failed"))
	}

	// Output to file if specified
	if outputFlag != "" {
		return saveReply(outputFlag, reply.Content, spin)
	}
	if spin != nil {
		spin.stopWithError()
	}

	// Raw output mode: output only the reply text
	if rawOutput {
		fmt.Fprintln(w, reply.Content)
		return nil
	}

	if app.Config.CopyToClipboard {
		if err := clipboard.WriteAll(reply.Content); err != nil {
			warnMsg := lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			fmt.Fprintln(os.Stderr, warnMsg)
		} else {
			fmt.Fprintln(os.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
		}
	}

	if sent, ok := app.Timeline.Message(id, ticket.MessageID); ok {
		fmt.Fprintln(w, metaStyle.Render(fmt.Sprintf("You · %s · %s", sent.Time, render.StatusLabel(sent.Status))))
	}
	renderReply(w, contact.Name, reply.Content, render.OptionsFromConfig(app.Config))
	return nil
}

// saveReply writes the reply text to path. A running spinner is stopped
// with a confirmation once the file is written.
func saveReply(path, content string, spin *spinner) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		if spin != nil {
			spin.stopWithError()
		}
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if spin != nil {
		spin.stopWithSuccess(fmt.Sprintf("Reply saved to %s", path))
	}
	return nil
}
