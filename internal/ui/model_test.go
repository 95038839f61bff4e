package ui

import (
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainRenderer skips glamour so assertions see raw text.
type plainRenderer struct{}

func (plainRenderer) Render(content string, width int) (string, error) {
	return content, nil
}

func testModel(t *testing.T) (chatModel, *UIChannels) {
	t.Helper()
	channels := NewUIChannels()
	m := newChatModel(channels, plainRenderer{}, func() spinner.Model {
		return spinner.New()
	}, "gpt-4o-mini")
	return m, channels
}

func TestUpdateAccumulatesDeltas(t *testing.T) {
	m, _ := testModel(t)

	next, _ := m.Update(deltaReceivedMsg("Hel"))
	m = next.(chatModel)
	next, _ = m.Update(deltaReceivedMsg("lo"))
	m = next.(chatModel)

	assert.Equal(t, "Hello", m.streaming)
	assert.Contains(t, m.renderTranscript(), "Hello")
}

func TestUpdateStreamEndReplacesAccumulatedText(t *testing.T) {
	m, _ := testModel(t)

	next, _ := m.Update(deltaReceivedMsg("partial del"))
	m = next.(chatModel)
	next, _ = m.Update(streamEndedMsg("definitive text"))
	m = next.(chatModel)

	assert.Empty(t, m.streaming)
	require.Len(t, m.messages, 1)
	assert.Equal(t, "assistant", m.messages[0].role)
	assert.Equal(t, "definitive text", m.messages[0].content)

	transcript := m.renderTranscript()
	assert.Contains(t, transcript, "definitive text")
	assert.NotContains(t, transcript, "partial del")
}

func TestUpdateCompletedMessage(t *testing.T) {
	m, _ := testModel(t)

	next, _ := m.Update(messageReceivedMsg("full answer"))
	m = next.(chatModel)

	require.Len(t, m.messages, 1)
	assert.Equal(t, "full answer", m.messages[0].content)
}

func TestUpdateStatus(t *testing.T) {
	m, _ := testModel(t)

	next, _ := m.Update(statusUpdateMsg{phase: "thinking", message: "Waiting for response..."})
	m = next.(chatModel)

	assert.Equal(t, "thinking", m.statusPhase)
	assert.Equal(t, "Waiting for response...", m.statusMessage)
}

func TestUpdateEnterSubmitsOnlyWhenInputRequested(t *testing.T) {
	m, channels := testModel(t)
	m.input.SetValue("hello there")

	// No pending input request: enter is a no-op.
	next, _ := m.handleKeyPress(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(chatModel)
	assert.Empty(t, m.messages)

	// Pending request: enter submits and echoes the user message.
	next, _ = m.Update(inputRequestMsg{prompt: "Type a message"})
	m = next.(chatModel)

	done := make(chan string, 1)
	go func() { done <- <-channels.InputResp }()

	next, _ = m.handleKeyPress(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(chatModel)

	assert.Equal(t, "hello there", <-done)
	require.Len(t, m.messages, 1)
	assert.Equal(t, "user", m.messages[0].role)
	assert.Empty(t, m.input.Value())
	assert.False(t, m.canSubmit)
}

func TestWindowResizeAdjustsViewport(t *testing.T) {
	m, _ := testModel(t)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(chatModel)

	assert.Equal(t, 120, m.width)
	assert.Equal(t, 120, m.viewport.Width)
	assert.Equal(t, 35, m.viewport.Height)
}
