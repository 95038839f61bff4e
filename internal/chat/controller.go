// Package chat runs the interactive conversation session: it reads
// user input, drives the conversation loop with the configured send
// strategy, and renders results. The streaming-to-plain fallback
// policy lives here, at the call site, not inside the response client.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"parley/internal/config"
	"parley/internal/conversation"
	"parley/internal/responses"
)

// UserInterface is the surface the controller needs from the UI.
type UserInterface interface {
	// ReadInput prompts the user for the next message
	ReadInput(ctx context.Context, prompt string) (string, error)

	// WriteMessage displays a completed assistant message
	WriteMessage(content string)

	// WriteDelta appends streamed text to the in-progress message
	WriteDelta(delta string)

	// FinishStream finalizes the in-progress message with the
	// definitive text (which may differ from the accumulated deltas
	// after tool turns)
	FinishStream(final string)

	// WriteStatus displays ephemeral status updates
	WriteStatus(phase string, message string)
}

// Credentials supplies the API key for outgoing requests and stores
// updates from the /key command.
type Credentials interface {
	APIKey() string
	SetAPIKey(key string) error
}

// Controller owns one interactive session.
type Controller struct {
	client *responses.Client
	tools  conversation.ToolExecutor
	ui     UserInterface
	creds  Credentials
	logger *slog.Logger
	cfg    config.ChatConfig
}

// New creates a Controller.
func New(client *responses.Client, tools conversation.ToolExecutor, ui UserInterface, creds Credentials, cfg config.ChatConfig, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		client: client,
		tools:  tools,
		ui:     ui,
		creds:  creds,
		logger: logger,
		cfg:    cfg,
	}
}

// Run is the REPL: read input, converse, render, repeat until the
// context is cancelled or the UI closes.
func (c *Controller) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		input, err := c.ui.ReadInput(ctx, "Type a message")
		if err != nil {
			return err
		}
		if input == "" {
			continue
		}

		if handled := c.handleCommand(input); handled {
			continue
		}

		apiKey := c.creds.APIKey()
		if apiKey == "" {
			c.ui.WriteMessage("No API key configured. Set one with /key or the OPENAI_API_KEY environment variable.")
			continue
		}

		c.ui.WriteStatus("thinking", "Waiting for response...")
		result, err := c.converse(ctx, apiKey, input)
		if err != nil {
			// Transport and HTTP failures surface as a generic
			// message; tool failures never reach this path.
			c.logger.Error("conversation failed", "error", err)
			c.ui.WriteMessage(fmt.Sprintf("Something went wrong talking to the model: %v", err))
			c.ui.WriteStatus("ready", "Ready")
			continue
		}

		c.ui.WriteStatus("ready", "Ready")
		c.logger.Debug("conversation result", "response_id", result.ResponseID)
	}
}

// handleCommand intercepts slash commands. It reports whether the
// input was consumed.
func (c *Controller) handleCommand(input string) bool {
	if !strings.HasPrefix(input, "/") {
		return false
	}

	cmd, rest, _ := strings.Cut(strings.TrimSpace(input), " ")
	switch cmd {
	case "/key":
		key := strings.TrimSpace(rest)
		if key == "" {
			c.ui.WriteMessage("Usage: /key <api-key>")
			return true
		}
		if err := c.creds.SetAPIKey(key); err != nil {
			c.ui.WriteMessage(fmt.Sprintf("Failed to store API key: %v", err))
			return true
		}
		c.ui.WriteMessage("API key stored.")
	default:
		c.ui.WriteMessage(fmt.Sprintf("Unknown command %q", cmd))
	}
	return true
}

// converse runs one conversation. With streaming enabled, a stream
// transport failure falls back to the non-streaming path once.
func (c *Controller) converse(ctx context.Context, apiKey, input string) (conversation.Result, error) {
	prompt := conversation.Prompt{
		Model:        c.cfg.Model,
		Input:        input,
		Instructions: c.cfg.Instructions,
	}

	if c.cfg.Streaming {
		result, err := c.runStreaming(ctx, apiKey, prompt)
		var streamErr *responses.StreamError
		if err == nil || !errors.As(err, &streamErr) {
			return result, err
		}
		c.logger.Warn("stream failed, falling back to non-streaming", "error", streamErr)
		c.ui.WriteStatus("thinking", "Stream interrupted, retrying...")
	}

	return c.runPlain(ctx, apiKey, prompt)
}

func (c *Controller) runStreaming(ctx context.Context, apiKey string, prompt conversation.Prompt) (conversation.Result, error) {
	sender := conversation.SenderFunc(func(ctx context.Context, apiKey string, req *responses.Request) (*responses.Response, error) {
		return c.client.SendStreaming(ctx, apiKey, req, c.ui.WriteDelta)
	})

	runner := conversation.NewRunner(sender, c.tools,
		conversation.WithMaxTurns(c.cfg.MaxTurns),
		conversation.WithLogger(c.logger),
	)
	result, err := runner.Run(ctx, apiKey, prompt)
	if err != nil {
		return conversation.Result{}, err
	}

	c.ui.FinishStream(result.Text)
	return result, nil
}

func (c *Controller) runPlain(ctx context.Context, apiKey string, prompt conversation.Prompt) (conversation.Result, error) {
	runner := conversation.NewRunner(c.client, c.tools,
		conversation.WithMaxTurns(c.cfg.MaxTurns),
		conversation.WithLogger(c.logger),
	)
	result, err := runner.Run(ctx, apiKey, prompt)
	if err != nil {
		return conversation.Result{}, err
	}

	c.ui.WriteMessage(result.Text)
	return result, nil
}
