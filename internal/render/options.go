// Package render turns timelines into display instructions and renders
// reply bodies for terminal output.
package render

// Options configures how reply bodies are rendered through glamour.
// Options is comparable and keys the renderer pools.
type Options struct {
	// Width is the wrap width of the bubble content
	Width int

	// Style is a glamour standard style: "dark", "light", "dracula", "notty"
	Style string

	// EnableEmoji converts :emoji: codes to unicode characters
	EnableEmoji bool

	// PreserveNewLines keeps the line breaks a contact typed
	PreserveNewLines bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
	}
}

// WithWidth returns Options with the specified width.
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}
