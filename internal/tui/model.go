package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/monachat/internal/chat"
	"github.com/diogo/monachat/internal/history"
	"github.com/diogo/monachat/internal/logging"
	"github.com/diogo/monachat/internal/media"
	"github.com/diogo/monachat/internal/models"
	"github.com/diogo/monachat/internal/render"
	"github.com/diogo/monachat/internal/timeline"
)

const contactsPanelWidth = 28

// Message types for the TUI
type (
	replyMsg struct {
		contact models.ContactID
		reply   models.Message
		err     error
	}
)

// ThemeSaver persists the selected theme
type ThemeSaver interface {
	SaveTheme(theme string) error
}

// Options configures the chat model
type Options struct {
	Markdown        bool
	MarkdownOpts    render.Options
	CopyToClipboard bool
}

// Model represents the TUI state
type Model struct {
	pipeline *chat.Pipeline
	store    *timeline.Store
	presence *chat.Tracker
	themes   ThemeSaver
	resolver *history.Resolver
	opts     Options
	now      func() time.Time

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	contacts []models.ContactID
	cursor   int
	unread   map[models.ContactID]int
	statuses map[models.ContactID]string
	pending  int
	notice   string
	err      error
	ready    bool

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a new chat TUI model. presence must be the Tracker
// the pipeline reports to.
func NewChatModel(pipeline *chat.Pipeline, presence *chat.Tracker, themes ThemeSaver, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()
	styleTextarea(&ta)

	s := spinner.New()
	s.Spinner = spinner.Ellipsis
	s.Style = typingStyle

	if presence == nil {
		presence = chat.NewTracker(nil)
	}

	store := pipeline.Store()
	contacts := models.ContactIDs()
	active := pipeline.ActiveContact()

	m := Model{
		pipeline: pipeline,
		store:    store,
		presence: presence,
		themes:   themes,
		resolver: history.NewResolver(store),
		opts:     opts,
		now:      time.Now,
		textarea: ta,
		spinner:  s,
		contacts: contacts,
		unread:   make(map[models.ContactID]int),
		statuses: make(map[models.ContactID]string),
	}
	for i, id := range contacts {
		if id == active {
			m.cursor = i
		}
		m.statuses[id] = chat.IdleStatus(id, m.now(), nil)
	}
	return m
}

func styleTextarea(ta *textarea.Model) {
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) active() models.ContactID {
	return m.contacts[m.cursor]
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3 // Header with border
		inputHeight := 5  // Typing line, textarea and border
		statusHeight := 2 // Notice and shortcuts
		vpHeight := m.height - headerHeight - inputHeight - statusHeight - 2
		if vpHeight < 5 {
			vpHeight = 5
		}

		if !m.ready {
			m.viewport = viewport.New(m.chatWidth(), vpHeight)
			m.viewport.KeyMap = viewport.KeyMap{
				PageDown: key.NewBinding(key.WithKeys("pgdown")),
				PageUp:   key.NewBinding(key.WithKeys("pgup")),
			}
			m.ready = true
		} else {
			m.viewport.Width = m.chatWidth()
			m.viewport.Height = vpHeight
		}
		inputWidth := m.width - 6
		if inputWidth < 20 {
			inputWidth = 20
		}
		m.textarea.SetWidth(inputWidth)
		m.updateViewport()
		m.viewport.GotoBottom()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab", "ctrl+n":
			return m.switchTo((m.cursor + 1) % len(m.contacts)), nil

		case "shift+tab", "ctrl+p":
			return m.switchTo((m.cursor - 1 + len(m.contacts)) % len(m.contacts)), nil

		case "ctrl+y":
			m.copyLastReply()
			return m, nil

		case "enter":
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			if strings.HasPrefix(input, "/") {
				return m.runCommand(input)
			}
			return m.send(chat.Draft{Text: input})
		}

	case replyMsg:
		m.pending--
		if msg.err != nil {
			m.err = msg.err
		}
		if !m.presence.IsComposing(msg.contact) {
			m.statuses[msg.contact] = chat.IdleStatus(msg.contact, m.now(), nil)
		}
		if msg.contact != m.active() {
			m.unread[msg.contact]++
		} else if m.opts.CopyToClipboard && msg.err == nil {
			if err := clipboard.WriteAll(msg.reply.Content); err != nil {
				m.notice = "Could not copy reply: " + err.Error()
			}
		}
		m.updateViewport()
		m.viewport.GotoBottom()

	case spinner.TickMsg:
		if m.pending > 0 {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if _, ok := msg.(tea.KeyMsg); ok {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// send submits a draft to the active contact and schedules the reply
func (m Model) send(draft chat.Draft) (Model, tea.Cmd) {
	ticket, err := m.pipeline.Submit(m.active(), draft)
	if err != nil {
		m.err = err
		return m, nil
	}
	if ticket == nil {
		return m, nil
	}

	m.err = nil
	m.notice = ""
	m.pending++
	m.updateViewport()
	m.viewport.GotoBottom()

	cmds := []tea.Cmd{awaitReply(ticket)}
	if m.pending == 1 {
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

// awaitReply resolves a ticket off the UI goroutine
func awaitReply(ticket *chat.Ticket) tea.Cmd {
	return func() tea.Msg {
		reply, err := ticket.Await(context.Background())
		return replyMsg{contact: ticket.ContactID, reply: reply, err: err}
	}
}

func (m Model) switchTo(index int) Model {
	id := m.contacts[index]
	if err := m.pipeline.SetActiveContact(id); err != nil {
		m.err = err
		return m
	}
	m.cursor = index
	m.unread[id] = 0
	m.notice = ""
	m.err = nil
	if !m.presence.IsComposing(id) {
		m.statuses[id] = chat.IdleStatus(id, m.now(), nil)
	}
	m.updateViewport()
	m.viewport.GotoBottom()
	return m
}

func (m *Model) copyLastReply() {
	msgs, _ := m.store.Messages(m.active())
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == models.RoleAssistant {
			if err := clipboard.WriteAll(msgs[i].Content); err != nil {
				m.notice = "Could not copy: " + err.Error()
				return
			}
			m.notice = "Copied last reply to clipboard"
			return
		}
	}
	m.notice = "Nothing to copy yet"
}

// runCommand executes a slash command typed in the input box
func (m Model) runCommand(input string) (tea.Model, tea.Cmd) {
	name, args, _ := strings.Cut(strings.TrimPrefix(input, "/"), " ")
	args = strings.TrimSpace(args)
	id := m.active()
	m.err = nil

	switch strings.ToLower(name) {
	case "quit", "exit", "q":
		return m, tea.Quit

	case "help", "h", "?":
		m.notice = commandHelp

	case "contact", "c":
		target, err := m.resolver.Resolve(args)
		if err != nil {
			m.err = err
			return m, nil
		}
		for i, cid := range m.contacts {
			if cid == target {
				return m.switchTo(i), nil
			}
		}

	case "rename":
		if args == "" {
			m.notice = "Usage: /rename <name>"
			return m, nil
		}
		if err := m.store.Rename(id, args); err != nil {
			m.err = err
			return m, nil
		}
		m.notice = "Renamed to " + args
		m.updateViewport()

	case "avatar":
		ref, err := media.ResolveImageRef(args)
		if err != nil {
			m.err = err
			return m, nil
		}
		if err := m.store.SetAvatar(id, ref); err != nil {
			m.err = err
			return m, nil
		}
		m.notice = "Avatar updated (" + media.Describe(ref) + ")"

	case "about":
		c, _ := m.store.Contact(id)
		m.notice = c.Name + ": " + models.ContactAbout(id)

	case "image", "img":
		path, caption, _ := strings.Cut(args, " ")
		data, err := media.LoadDataURL(path)
		if err != nil {
			m.err = err
			return m, nil
		}
		return m.send(chat.Draft{Text: strings.TrimSpace(caption), ImageData: data})

	case "theme":
		if !render.SetTUITheme(args) {
			m.notice = "Themes: " + strings.Join(render.TUIThemeNames(), ", ")
			return m, nil
		}
		UpdateTheme()
		styleTextarea(&m.textarea)
		m.spinner.Style = typingStyle
		if m.themes != nil {
			if err := m.themes.SaveTheme(render.GetTUITheme().Name); err != nil {
				logging.Logger().Warn("failed to save theme", "error", err)
			}
		}
		m.notice = "Theme: " + render.GetTUITheme().Name
		m.updateViewport()

	case "copy":
		m.copyLastReply()

	default:
		m.notice = fmt.Sprintf("Unknown command /%s. Type /help for commands", name)
	}

	return m, nil
}

const commandHelp = "/contact <name|#>  /rename <name>  /avatar <path|url>  /about  /image <path> [caption]  /theme <cute|light|dark>  /copy  /quit"

func (m Model) chatWidth() int {
	w := m.width - contactsPanelWidth - 4
	if w < 20 {
		w = 20
	}
	return w
}

// updateViewport refreshes the viewport content from the active timeline
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}
	id := m.active()
	msgs, err := m.store.Messages(id)
	if err != nil {
		m.err = err
		return
	}
	if len(msgs) == 0 {
		m.viewport.SetContent(m.renderWelcome())
		return
	}

	c, _ := m.store.Contact(id)
	items := render.Project(msgs, m.now())
	m.viewport.SetContent(RenderTimeline(items, ViewOptions{
		Width:        m.viewport.Width - 2,
		ContactName:  c.Name,
		Markdown:     m.opts.Markdown,
		MarkdownOpts: m.opts.MarkdownOpts,
	}))
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return typingStyle.Render("  Initializing...")
	}

	id := m.active()
	c, _ := m.store.Contact(id)
	chatWidth := m.chatWidth()

	status := m.statuses[id]
	if m.presence.IsComposing(id) {
		status = chat.StatusTyping
	}
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("♥ monachat"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(c.Name),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(status),
	)
	header := headerStyle.Width(m.width - 2).Render(headerContent)

	messagesPanel := messagesAreaStyle.
		Width(chatWidth).
		Height(m.viewport.Height).
		Render(m.viewport.View())

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderContacts(m.viewport.Height),
		messagesPanel,
	)

	typing := " "
	if m.presence.IsComposing(id) {
		typing = typingStyle.Render(chat.TypingText(c.Name) + " " + m.spinner.View())
	}
	inputPanel := inputPanelStyle.Width(m.width - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, typing, m.textarea.View()),
	)

	var footer string
	switch {
	case m.err != nil:
		footer = FormatError(m.err)
	case m.notice != "":
		footer = noticeStyle.Render(m.notice)
	default:
		footer = " "
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		inputPanel,
		footer,
		m.renderStatusBar(m.width-2),
	)
}

// renderContacts renders the contact switcher with previews
func (m Model) renderContacts(height int) string {
	contacts := m.store.Contacts()
	inner := contactsPanelWidth - 4

	var sb strings.Builder
	for i, id := range m.contacts {
		name := contacts.DisplayName(id)
		if n := m.unread[id]; n > 0 {
			name += contactBadgeStyle.Render(fmt.Sprintf(" (%d)", n))
		}
		if i == m.cursor {
			sb.WriteString(contactSelectedStyle.Render("▸ " + name))
		} else {
			sb.WriteString(contactItemStyle.Render(name))
		}
		sb.WriteString("\n")

		preview := m.store.Preview(id)
		if m.presence.IsComposing(id) {
			preview = "typing..."
		}
		sb.WriteString(contactPreviewStyle.Render(truncate(preview, inner-2)))
		sb.WriteString("\n\n")
	}

	return contactsPanelStyle.
		Width(contactsPanelWidth - 2).
		Height(height).
		Render(strings.TrimRight(sb.String(), "\n"))
}

// renderWelcome renders the empty-timeline screen
func (m Model) renderWelcome() string {
	id := m.active()
	c, _ := m.store.Contact(id)
	width := m.viewport.Width - 4

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		welcomeTitleStyle.Width(width).Render("Say hi to "+c.Name),
		"",
		welcomeStyle.Width(width).Render(models.ContactAbout(id)),
	)

	topPadding := (m.viewport.Height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Tab", "Next chat"},
		{"Ctrl+Y", "Copy"},
		{"PgUp/PgDn", "Scroll"},
		{"/help", "Commands"},
		{"Esc", "Quit"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// RunChat starts the chat TUI
func RunChat(pipeline *chat.Pipeline, presence *chat.Tracker, themes ThemeSaver, opts Options) error {
	m := NewChatModel(pipeline, presence, themes, opts)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
