package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
)

// DefaultWebsocketURL is the production realtime websocket endpoint.
const DefaultWebsocketURL = "wss://api.openai.com/v1/realtime"

// Event is one realtime protocol event. Payload retains the full raw
// event for callers that need fields beyond the type.
type Event struct {
	Type    string
	Payload json.RawMessage
}

// Conn is an established realtime connection. It is not safe for
// concurrent writers; the realtime protocol is a single-session
// dialogue.
type Conn struct {
	ws *websocket.Conn
}

// Dial opens the websocket for an established session using its
// ephemeral client secret.
func Dial(ctx context.Context, wsURL, clientSecret, model string) (*Conn, error) {
	if wsURL == "" {
		wsURL = DefaultWebsocketURL
	}

	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("model", model)
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+clientSecret)
	header.Set("OpenAI-Beta", "realtime=v1")

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, err
	}
	return &Conn{ws: ws}, nil
}

// Connect dials the websocket for a provisioned session and completes
// the opening exchange: the server's session.created event is awaited
// and, when voice is non-empty, a session.update selecting it is sent.
func Connect(ctx context.Context, wsURL string, session *Session, model, voice string) (*Conn, error) {
	conn, err := Dial(ctx, wsURL, session.ClientSecret.Value, model)
	if err != nil {
		return nil, err
	}

	event, err := conn.ReadEvent()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if event.Type != "session.created" {
		conn.Close()
		return nil, fmt.Errorf("expected session.created, got %q", event.Type)
	}

	if voice != "" {
		if err := conn.SendEvent("session.update", map[string]any{
			"session": map[string]any{"voice": voice},
		}); err != nil {
			conn.Close()
			return nil, err
		}
	}

	return conn, nil
}

// SendEvent writes one typed event.
func (c *Conn) SendEvent(eventType string, fields map[string]any) error {
	event := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		event[k] = v
	}
	event["type"] = eventType
	return c.ws.WriteJSON(event)
}

// ReadEvent blocks until the next event arrives.
func (c *Conn) ReadEvent() (*Event, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	return &Event{Type: envelope.Type, Payload: json.RawMessage(data)}, nil
}

// Close closes the websocket.
func (c *Conn) Close() error {
	return c.ws.Close()
}
