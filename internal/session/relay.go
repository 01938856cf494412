package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coder/websocket"

	"griddle/internal/protocol"
)

// Relay is the session's view of the room coordinator: fire-and-forget
// sends and a stream of server events. Absent (nil) in solo mode.
type Relay interface {
	Send(ctx context.Context, msg protocol.ClientMessage) error
	Events() <-chan protocol.ServerMessage
	Close() error
}

// wsRelay is the production Relay over a single websocket connection.
type wsRelay struct {
	conn   *websocket.Conn
	events chan protocol.ServerMessage
	cancel context.CancelFunc
}

// Dial connects to a relay server's /ws endpoint. The returned relay's
// event channel closes when the connection drops.
func Dial(ctx context.Context, serverURL string) (Relay, error) {
	conn, _, err := websocket.Dial(ctx, serverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing relay: %w", err)
	}

	readCtx, cancel := context.WithCancel(context.Background())
	r := &wsRelay{
		conn:   conn,
		events: make(chan protocol.ServerMessage, 16),
		cancel: cancel,
	}
	go r.readLoop(readCtx)
	return r, nil
}

func (r *wsRelay) readLoop(ctx context.Context) {
	defer close(r.events)
	for {
		_, data, err := r.conn.Read(ctx)
		if err != nil {
			return
		}
		var msg protocol.ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		select {
		case r.events <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (r *wsRelay) Send(ctx context.Context, msg protocol.ClientMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return r.conn.Write(ctx, websocket.MessageText, data)
}

func (r *wsRelay) Events() <-chan protocol.ServerMessage { return r.events }

func (r *wsRelay) Close() error {
	r.cancel()
	return r.conn.Close(websocket.StatusNormalClosure, "")
}
