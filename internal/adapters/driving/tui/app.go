package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/gioia-labs/gioia-archive/internal/adapters/driving/tui/styles"
	"github.com/gioia-labs/gioia-archive/internal/core/ports/driving"
)

// role identifies who produced a transcript entry.
type role int

const (
	roleUser role = iota
	roleAssistant
	roleError
)

// entry is one completed turn in the transcript.
type entry struct {
	role role
	text string
}

// Internal messages for the streaming chat lifecycle.
type (
	// chatStartedMsg carries the event channel for a newly started answer.
	chatStartedMsg struct {
		events <-chan driving.ChatEvent
	}

	// chatEventMsg carries one event from the answer stream.
	chatEventMsg struct {
		event driving.ChatEvent
	}

	// chatDoneMsg signals that the answer stream has closed.
	chatDoneMsg struct{}

	// chatFailedMsg signals that the chat could not be started.
	chatFailedMsg struct {
		err error
	}

	// documentCountMsg carries the archive size for the header.
	documentCountMsg struct {
		count int
	}
)

// App is the chat TUI following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// sessionID identifies the persisted chat session.
	sessionID string

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// transcript holds the completed turns, oldest first.
	transcript []entry

	// streaming accumulates the in-flight assistant answer.
	streaming strings.Builder

	// events is the active answer stream, nil when idle.
	events <-chan driving.ChatEvent

	// docCount is the number of documents in the archive.
	docCount int

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has received its initial window size.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new chat TUI with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()

	input := textinput.New()
	input.Placeholder = "Ask about your documents..."
	input.Prompt = "> "
	input.CharLimit = 0
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Muted

	return &App{
		ports:     ports,
		ctx:       context.Background(),
		styles:    s,
		sessionID: uuid.NewString(),
		input:     input,
		spinner:   sp,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// WithSession resumes an existing chat session instead of starting fresh.
func (a *App) WithSession(sessionID string) *App {
	if sessionID != "" {
		a.sessionID = sessionID
	}
	return a
}

// SessionID returns the session the app persists into.
func (a *App) SessionID() string {
	return a.sessionID
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("gioia - Document Archive"),
		textinput.Blink,
		a.loadDocumentCount(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case chatStartedMsg:
		a.events = msg.events
		return a, tea.Batch(a.spinner.Tick, a.waitForEvent())

	case chatEventMsg:
		if msg.event.Err != nil {
			a.finishStreaming()
			a.transcript = append(a.transcript, entry{role: roleError, text: msg.event.Err.Error()})
			a.events = nil
			a.refreshViewport()
			return a, nil
		}
		a.streaming.WriteString(msg.event.Text)
		a.refreshViewport()
		return a, a.waitForEvent()

	case chatDoneMsg:
		a.finishStreaming()
		a.events = nil
		a.refreshViewport()
		return a, nil

	case chatFailedMsg:
		a.transcript = append(a.transcript, entry{role: roleError, text: msg.err.Error()})
		a.events = nil
		a.refreshViewport()
		return a, nil

	case documentCountMsg:
		a.docCount = msg.count
		return a, nil

	case spinner.TickMsg:
		if a.events == nil {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmds []tea.Cmd

	var inputCmd tea.Cmd
	a.input, inputCmd = a.input.Update(msg)
	if inputCmd != nil {
		cmds = append(cmds, inputCmd)
	}

	var vpCmd tea.Cmd
	a.viewport, vpCmd = a.viewport.Update(msg)
	if vpCmd != nil {
		cmds = append(cmds, vpCmd)
	}

	return a, tea.Batch(cmds...)
}

// handleKeyMsg processes keyboard input.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return a, tea.Quit

	case tea.KeyEnter:
		if a.events != nil {
			// An answer is still streaming.
			return a, nil
		}
		text := strings.TrimSpace(a.input.Value())
		if text == "" {
			return a, nil
		}
		a.input.Reset()
		a.transcript = append(a.transcript, entry{role: roleUser, text: text})
		a.refreshViewport()
		return a, a.sendMessage(text)

	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	header := a.styles.Title.Render("GIOIA") + a.styles.Muted.Render(
		fmt.Sprintf("  %d documents · session %s", a.docCount, shortID(a.sessionID)))

	status := ""
	if a.events != nil {
		status = a.spinner.View() + a.styles.Muted.Render(" thinking...")
	}

	help := a.styles.Help.Render("enter send · ↑/↓ scroll · esc quit")

	return strings.Join([]string{
		header,
		a.viewport.View(),
		status,
		a.styles.InputField.Width(a.width - 4).Render(a.input.View()),
		help,
	}, "\n")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// sendMessage starts a streaming answer for the given user message.
func (a *App) sendMessage(text string) tea.Cmd {
	return func() tea.Msg {
		events, err := a.ports.Chat.StreamChat(a.ctx, a.sessionID, text)
		if err != nil {
			return chatFailedMsg{err: err}
		}
		return chatStartedMsg{events: events}
	}
}

// waitForEvent blocks on the active answer stream for the next event.
func (a *App) waitForEvent() tea.Cmd {
	events := a.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return chatDoneMsg{}
		}
		return chatEventMsg{event: ev}
	}
}

// loadDocumentCount fetches the archive size for the header.
func (a *App) loadDocumentCount() tea.Cmd {
	return func() tea.Msg {
		docs, err := a.ports.Archive.List(a.ctx)
		if err != nil {
			return documentCountMsg{count: 0}
		}
		return documentCountMsg{count: len(docs)}
	}
}

// finishStreaming moves the in-flight answer into the transcript.
func (a *App) finishStreaming() {
	text := strings.TrimSpace(a.streaming.String())
	a.streaming.Reset()
	if text != "" {
		a.transcript = append(a.transcript, entry{role: roleAssistant, text: text})
	}
}

// resize fits the viewport and input to the terminal dimensions.
func (a *App) resize() {
	// Header, status, bordered input and help line take up the rest.
	contentHeight := a.height - 6
	if contentHeight < 3 {
		contentHeight = 3
	}
	a.viewport = viewport.New(a.width, contentHeight)
	a.input.Width = a.width - 8
	a.refreshViewport()
}

// refreshViewport re-renders the transcript and scrolls to the bottom.
func (a *App) refreshViewport() {
	a.viewport.SetContent(a.renderTranscript())
	a.viewport.GotoBottom()
}

// renderTranscript renders completed turns plus any in-flight answer.
func (a *App) renderTranscript() string {
	width := a.width
	if width <= 0 {
		width = 80
	}
	body := a.styles.Normal.Width(width)

	var b strings.Builder
	for _, e := range a.transcript {
		switch e.role {
		case roleUser:
			b.WriteString(a.styles.User.Render("You"))
		case roleAssistant:
			b.WriteString(a.styles.Assistant.Render("GIOIA"))
		case roleError:
			b.WriteString(a.styles.Error.Render("Error"))
		}
		b.WriteString("\n")
		b.WriteString(body.Render(e.text))
		b.WriteString("\n\n")
	}

	if partial := a.streaming.String(); partial != "" {
		b.WriteString(a.styles.Assistant.Render("GIOIA"))
		b.WriteString("\n")
		b.WriteString(body.Render(partial))
		b.WriteString("\n")
	}

	return b.String()
}

// Ready returns whether the app has received its initial window size.
func (a *App) Ready() bool {
	return a.ready
}

// Streaming reports whether an answer is currently in flight.
func (a *App) Streaming() bool {
	return a.events != nil
}

// Transcript returns the rendered turns so far (for testing).
func (a *App) Transcript() []string {
	out := make([]string, len(a.transcript))
	for i, e := range a.transcript {
		out[i] = e.text
	}
	return out
}

// shortID abbreviates a session id for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
