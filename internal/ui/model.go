package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"parley/internal/ui/services"
)

// message is one rendered chat entry.
type message struct {
	role    string // "user" or "assistant"
	content string
}

// chatModel implements tea.Model.
type chatModel struct {
	renderer services.MarkdownRenderer

	input     textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	width     int
	height    int
	modelName string

	messages  []message
	streaming string // accumulated in-progress assistant text
	canSubmit bool

	statusPhase   string
	statusMessage string

	// Channels (controller side in ui.go)
	inputReq      <-chan inputRequest
	inputResp     chan<- string
	statusChan    <-chan statusMsg
	messageChan   <-chan string
	deltaChan     <-chan string
	streamEndChan <-chan string
	readyChan     chan<- struct{}
}

func newChatModel(channels *UIChannels, renderer services.MarkdownRenderer, spinnerFactory SpinnerFactory, modelName string) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Focus()

	vp := viewport.New(80, 20)

	return chatModel{
		renderer:      renderer,
		input:         ti,
		viewport:      vp,
		spinner:       spinnerFactory(),
		modelName:     modelName,
		width:         80,
		height:        24,
		statusPhase:   "ready",
		statusMessage: "Ready",
		inputReq:      channels.InputReq,
		inputResp:     channels.InputResp,
		statusChan:    channels.StatusChan,
		messageChan:   channels.MessageChan,
		deltaChan:     channels.DeltaChan,
		streamEndChan: channels.StreamEndChan,
		readyChan:     channels.ReadyChan,
	}
}

// Internal messages
type inputRequestMsg inputRequest
type statusUpdateMsg statusMsg
type messageReceivedMsg string
type deltaReceivedMsg string
type streamEndedMsg string

// Init implements tea.Model.
func (m chatModel) Init() tea.Cmd {
	if m.readyChan != nil {
		close(m.readyChan)
	}

	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		listenForInputRequests(m.inputReq),
		listenForStatus(m.statusChan),
		listenForMessages(m.messageChan),
		listenForDeltas(m.deltaChan),
		listenForStreamEnd(m.streamEndChan),
	)
}

// Update implements tea.Model.
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 5 // Reserve space for input and status
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case inputRequestMsg:
		m.canSubmit = true
		return m, listenForInputRequests(m.inputReq)

	case statusUpdateMsg:
		m.statusPhase = msg.phase
		m.statusMessage = msg.message
		return m, listenForStatus(m.statusChan)

	case messageReceivedMsg:
		m.messages = append(m.messages, message{role: "assistant", content: string(msg)})
		m.refreshViewport()
		return m, listenForMessages(m.messageChan)

	case deltaReceivedMsg:
		m.streaming += string(msg)
		m.refreshViewport()
		return m, listenForDeltas(m.deltaChan)

	case streamEndedMsg:
		// The definitive text replaces the accumulated deltas; after
		// tool turns they can differ.
		m.streaming = ""
		m.messages = append(m.messages, message{role: "assistant", content: string(msg)})
		m.refreshViewport()
		return m, listenForStreamEnd(m.streamEndChan)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "enter":
		if m.canSubmit && m.input.Value() != "" {
			input := m.input.Value()
			m.messages = append(m.messages, message{role: "user", content: input})
			m.refreshViewport()

			m.inputResp <- input
			m.input.SetValue("")
			m.canSubmit = false
		}
		return m, nil

	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refreshViewport re-renders the transcript into the viewport.
func (m *chatModel) refreshViewport() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m *chatModel) renderTranscript() string {
	width := m.width - 4
	var lines []string

	for _, msg := range m.messages {
		lines = append(lines, m.renderMessage(msg, width), "")
	}
	if m.streaming != "" {
		lines = append(lines, assistantStyle.Render(m.streaming), "")
	}

	if len(lines) == 0 {
		return "No messages yet. Type a message to start."
	}
	return strings.Join(lines, "\n")
}

func (m *chatModel) renderMessage(msg message, width int) string {
	if msg.role == "user" {
		return userStyle.Render("You: " + msg.content)
	}

	rendered, err := m.renderer.Render(msg.content, width)
	if err != nil {
		return assistantStyle.Render(msg.content)
	}
	return assistantStyle.Render(strings.TrimRight(rendered, "\n"))
}

// Channel listeners as commands
func listenForInputRequests(ch <-chan inputRequest) tea.Cmd {
	return func() tea.Msg { return inputRequestMsg(<-ch) }
}

func listenForStatus(ch <-chan statusMsg) tea.Cmd {
	return func() tea.Msg { return statusUpdateMsg(<-ch) }
}

func listenForMessages(ch <-chan string) tea.Cmd {
	return func() tea.Msg { return messageReceivedMsg(<-ch) }
}

func listenForDeltas(ch <-chan string) tea.Cmd {
	return func() tea.Msg { return deltaReceivedMsg(<-ch) }
}

func listenForStreamEnd(ch <-chan string) tea.Cmd {
	return func() tea.Msg { return streamEndedMsg(<-ch) }
}
