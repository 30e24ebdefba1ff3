package commands

import (
	"github.com/diogo/monachat/internal/api"
	"github.com/diogo/monachat/internal/chat"
	"github.com/diogo/monachat/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(pipeline *chat.Pipeline, presence *chat.Tracker, themes tui.ThemeSaver, opts tui.Options) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// Client is the reply service client. When nil an HTTP client is built
	// from the configuration.
	Client api.ReplyClient

	// TUI is the terminal user interface.
	TUI TUIInterface
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(pipeline *chat.Pipeline, presence *chat.Tracker, themes tui.ThemeSaver, opts tui.Options) error {
	return tui.RunChat(pipeline, presence, themes, opts)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		TUI: &DefaultTUI{},
	}
}

// deps is used by the registered commands
var deps = NewDependencies()
