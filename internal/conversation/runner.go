// Package conversation drives the multi-turn tool-calling protocol
// against the completion endpoint: send a prompt, dispatch any tool
// call the model requests, feed the result back as a
// previous_response_id-chained turn, and repeat until the model
// produces a final text answer or the turn limit is reached.
package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"parley/internal/responses"
)

// DefaultMaxTurns bounds the loop so a tool-call cycle cannot run away.
const DefaultMaxTurns = 8

// exhaustedMarker is returned when the turn limit is hit and the last
// response carried no extractable text.
const exhaustedMarker = "conversation loop terminated: turn limit reached"

// Prompt is the caller's input for a conversation.
type Prompt struct {
	Model        string
	Input        string
	Instructions string
}

// Result is the terminal value of a conversation, on success and on
// turn-limit exhaustion alike.
type Result struct {
	Text       string
	ResponseID string
}

// Runner owns one conversation's request/response chain. Each Run call
// builds its own chain; Runners share no mutable state across runs.
type Runner struct {
	sender   Sender
	tools    ToolExecutor
	logger   *slog.Logger
	maxTurns int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithMaxTurns overrides the turn limit.
func WithMaxTurns(n int) RunnerOption {
	return func(r *Runner) { r.maxTurns = n }
}

// WithLogger sets the logger for per-turn observability.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// NewRunner creates a Runner with the given send strategy and tools.
func NewRunner(sender Sender, tools ToolExecutor, opts ...RunnerOption) *Runner {
	r := &Runner{
		sender:   sender,
		tools:    tools,
		logger:   slog.Default(),
		maxTurns: DefaultMaxTurns,
	}
	for _, opt := range opts {
		opt(r)
	}
	// The loop must issue at least one request so exhaustion always has
	// a response to report.
	if r.maxTurns < 1 {
		r.maxTurns = 1
	}
	return r
}

// Run executes the loop until a terminal answer. Network and HTTP
// failures from the sender propagate unretried; tool failures never do,
// they are fed back to the model as the tool's output.
func (r *Runner) Run(ctx context.Context, apiKey string, prompt Prompt) (Result, error) {
	req := r.firstRequest(prompt)

	var resp *responses.Response
	for turn := 1; turn <= r.maxTurns; turn++ {
		var err error
		resp, err = r.sender.Send(ctx, apiKey, req)
		if err != nil {
			return Result{}, err
		}

		call := responses.ExtractFirstToolCall(resp)
		if call == nil {
			r.logger.Debug("conversation finished", "turn", turn, "response_id", resp.ID)
			return Result{Text: responses.ExtractText(resp), ResponseID: resp.ID}, nil
		}

		var args map[string]any
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			// Malformed arguments end the conversation with an
			// explanatory result rather than an error; the tool is
			// never invoked.
			r.logger.Warn("tool call arguments unparseable",
				"tool", call.Name,
				"arguments", call.Arguments,
			)
			return Result{
				Text:       fmt.Sprintf("The model requested tool %q with arguments that could not be parsed: %v", call.Name, err),
				ResponseID: resp.ID,
			}, nil
		}

		output := r.tools.Execute(ctx, call.Name, args)
		r.logger.Debug("tool call resolved",
			"turn", turn,
			"tool", call.Name,
			"call_id", call.ID,
			"output_len", len(output),
		)

		req = r.toolResultRequest(prompt.Model, resp.ID, call.ID, output)
	}

	// Safety valve, not an error: return the last response's text.
	text := responses.ExtractText(resp)
	if text == "" {
		text = exhaustedMarker
	}
	r.logger.Warn("conversation turn limit reached", "max_turns", r.maxTurns, "response_id", resp.ID)
	return Result{Text: text, ResponseID: resp.ID}, nil
}

// firstRequest carries the full input, instructions and tool schemas.
func (r *Runner) firstRequest(prompt Prompt) *responses.Request {
	req := &responses.Request{
		Model:        prompt.Model,
		Input:        prompt.Input,
		Instructions: prompt.Instructions,
	}
	if defs := r.tools.Definitions(); len(defs) > 0 {
		req.Tools = defs
		req.ToolChoice = "auto"
	}
	return req
}

// toolResultRequest carries only the tool result block; the server
// retains prior context (including tool schemas) via the chained
// response id.
func (r *Runner) toolResultRequest(model, previousID, callID, output string) *responses.Request {
	return &responses.Request{
		Model:              model,
		Input:              responses.FunctionCallOutput(callID, output),
		PreviousResponseID: previousID,
	}
}
