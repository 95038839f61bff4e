// Package ui is the Bubble Tea chat interface. The controller talks to
// it over channels; the tea.Program owns the terminal on the main
// goroutine.
package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"parley/internal/ui/services"
)

// UI bridges the chat controller and the Bubble Tea program.
type UI struct {
	program *tea.Program

	// Controller -> UI
	inputReq      chan inputRequest
	inputResp     chan string
	statusChan    chan statusMsg
	messageChan   chan string
	deltaChan     chan string
	streamEndChan chan string

	// Ready signal
	readyChan chan struct{}

	// Closed when the program exits; blocking writes abandon on it.
	done chan struct{}
}

type inputRequest struct {
	prompt string
}

type statusMsg struct {
	phase   string
	message string
}

// UIChannels holds the channels for UI communication.
type UIChannels struct {
	InputReq      chan inputRequest
	InputResp     chan string
	StatusChan    chan statusMsg
	MessageChan   chan string
	DeltaChan     chan string
	StreamEndChan chan string
	ReadyChan     chan struct{}
}

// NewUIChannels creates a UIChannels struct with default buffers.
// Delta events are buffered generously because they arrive at network
// pace while the render loop may lag a frame behind.
func NewUIChannels() *UIChannels {
	return &UIChannels{
		InputReq:      make(chan inputRequest),
		InputResp:     make(chan string),
		StatusChan:    make(chan statusMsg, 10),
		MessageChan:   make(chan string, 10),
		DeltaChan:     make(chan string, 256),
		StreamEndChan: make(chan string, 1),
		ReadyChan:     make(chan struct{}),
	}
}

// SpinnerFactory creates a new spinner.
type SpinnerFactory func() spinner.Model

// NewUI creates a new Bubble Tea UI.
func NewUI(channels *UIChannels, renderer services.MarkdownRenderer, spinnerFactory SpinnerFactory, modelName string) *UI {
	ui := &UI{
		inputReq:      channels.InputReq,
		inputResp:     channels.InputResp,
		statusChan:    channels.StatusChan,
		messageChan:   channels.MessageChan,
		deltaChan:     channels.DeltaChan,
		streamEndChan: channels.StreamEndChan,
		readyChan:     channels.ReadyChan,
		done:          make(chan struct{}),
	}

	model := newChatModel(channels, renderer, spinnerFactory, modelName)
	ui.program = tea.NewProgram(model, tea.WithAltScreen())

	return ui
}

// Start runs the UI program. It blocks until the user exits.
func (u *UI) Start() error {
	defer close(u.done)
	_, err := u.program.Run()
	return err
}

// ReadInput prompts the user for the next message.
func (u *UI) ReadInput(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case u.inputReq <- inputRequest{prompt: prompt}:
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case response := <-u.inputResp:
			return response, nil
		}
	}
}

// WriteStatus updates the status bar.
func (u *UI) WriteStatus(phase string, message string) {
	select {
	case u.statusChan <- statusMsg{phase: phase, message: message}:
	default:
		// Drop if channel is full
	}
}

// WriteMessage appends a completed assistant message.
func (u *UI) WriteMessage(content string) {
	select {
	case u.messageChan <- content:
	default:
		// Drop if channel is full
	}
}

// WriteDelta appends streamed text to the in-progress message.
// Deltas must be applied in arrival order, so this blocks rather than
// drops when the buffer is full. Writes are abandoned once the program
// has exited so a mid-stream quit cannot wedge the controller.
func (u *UI) WriteDelta(delta string) {
	select {
	case u.deltaChan <- delta:
	case <-u.done:
	}
}

// FinishStream finalizes the in-progress message with the definitive
// text.
func (u *UI) FinishStream(final string) {
	select {
	case u.streamEndChan <- final:
	case <-u.done:
	}
}

// Ready returns a channel closed when the UI accepts requests.
func (u *UI) Ready() <-chan struct{} {
	return u.readyChan
}
