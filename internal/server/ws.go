package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"griddle/internal/game"
	"griddle/internal/protocol"
	"griddle/internal/rooms"
	"griddle/internal/wshub"
)

// handleWS upgrades the connection and runs the relay read loop for one
// player. Each connection gets a fresh connection ID; all room events it
// emits are attributed to that ID. Closing the connection, however it
// happens, is treated as leaving every room the player was in.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // join links are shared cross-origin
	})
	if err != nil {
		log.Warn().Err(err).Msg("websocket accept")
		return
	}

	connID := uuid.New().String()
	client := wshub.NewClient(connID, "", conn)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go client.WritePump(ctx)

	defer func() {
		s.Coordinator.Disconnect(connID)
		client.Close()
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var msg protocol.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug().Err(err).Str("conn", connID).Msg("invalid client message")
			continue
		}
		s.dispatch(client, msg)
	}
}

// dispatch routes one client event to the coordinator. Request failures are
// surfaced to the requesting client only; room state is never touched by a
// failed request.
func (s *Server) dispatch(client *wshub.Client, msg protocol.ClientMessage) {
	var err error
	switch msg.Type {
	case protocol.EventCreateRoom:
		client.Name = msg.DisplayName
		_, err = s.Coordinator.CreateRoom(client, msg.DisplayName)

	case protocol.EventJoinRoom:
		client.Name = msg.DisplayName
		err = s.Coordinator.JoinRoom(client, normalizeKey(msg.RoomKey), msg.DisplayName)

	case protocol.EventStartGame:
		err = s.Coordinator.StartGame(normalizeKey(msg.RoomKey), client.ConnID,
			strings.ToUpper(msg.Word), msg.TimerSeconds)

	case protocol.EventUpdateProgress:
		snap := game.Snapshot{}
		if msg.Progress != nil {
			snap = *msg.Progress
		}
		err = s.Coordinator.ReportProgress(normalizeKey(msg.RoomKey), client.ConnID, snap)

	case protocol.EventHintTaken:
		err = s.Coordinator.ReportHintTaken(normalizeKey(msg.RoomKey), client.ConnID)

	case protocol.EventGameOver:
		if msg.Outcome == nil {
			err = errors.New("gameOver without outcome")
		} else {
			err = s.Coordinator.ReportGameOver(normalizeKey(msg.RoomKey), client.ConnID, *msg.Outcome)
		}

	case protocol.EventRematch:
		err = s.Coordinator.RequestRematch(normalizeKey(msg.RoomKey), client.ConnID)

	case protocol.EventLeaveRoom:
		err = s.Coordinator.Leave(normalizeKey(msg.RoomKey), client.ConnID)

	default:
		err = errors.New("unknown event " + string(msg.Type))
	}

	if err != nil {
		sendDirect(client, errorReply(err))
	}
}

// errorReply maps coordinator errors onto the reply events the protocol
// promises: a full room gets roomFull, everything else a generic error.
func errorReply(err error) protocol.ServerMessage {
	if errors.Is(err, rooms.ErrRoomFull) {
		return protocol.ServerMessage{Type: protocol.EventRoomFull}
	}
	return protocol.ServerMessage{Type: protocol.EventError, Message: err.Error()}
}

// sendDirect queues a reply on the client's own connection, which works
// whether or not the client ever made it into a room hub.
func sendDirect(client *wshub.Client, msg protocol.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("marshal reply")
		return
	}
	select {
	case client.Send <- data:
	default:
	}
}

func normalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}
