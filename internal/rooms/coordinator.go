package rooms

import (
	"errors"

	"github.com/rs/zerolog/log"

	"griddle/internal/game"
	"griddle/internal/protocol"
	"griddle/internal/wshub"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrNotInRoom    = errors.New("connection is not a participant")
	ErrInvalidWord  = errors.New("secret word is not playable")
)

// RecordStore persists room records in the optional durable variant.
// All calls are best-effort; the coordinator logs and carries on when one
// fails. A nil RecordStore disables persistence entirely.
type RecordStore interface {
	CreateRecord(roomKey, creatorName string) error
	SetJoiner(roomKey, joinerName string) error
	SetStatus(roomKey, status string) error
	DeleteRecord(roomKey string) error
}

// Coordinator is the server-side authority for room lifecycle: creation,
// join admission, relaying of session-start, progress, hint and game-over
// events, and cleanup on leave or disconnect.
type Coordinator struct {
	store   *Store
	records RecordStore
}

// NewCoordinator wires the coordinator to its room store. records may be nil.
func NewCoordinator(store *Store, records RecordStore) *Coordinator {
	return &Coordinator{store: store, records: records}
}

// Store exposes the live room collection (handlers and tests).
func (c *Coordinator) Store() *Store { return c.store }

// CreateRoom allocates a room with the caller as host and replies with the
// generated key.
func (c *Coordinator) CreateRoom(client *wshub.Client, displayName string) (*Room, error) {
	room, err := c.store.Create()
	if err != nil {
		return nil, err
	}

	room.mu.Lock()
	room.participants = append(room.participants, Participant{ConnID: client.ConnID, DisplayName: displayName})
	room.Hub.Register(client)
	room.Hub.SendTo(client.ConnID, protocol.ServerMessage{
		Type:    protocol.EventRoomCreated,
		RoomKey: room.Key,
	})
	room.mu.Unlock()

	if c.records != nil {
		if err := c.records.CreateRecord(room.Key, displayName); err != nil {
			log.Warn().Err(err).Str("room", room.Key).Msg("persisting room record")
		}
	}
	log.Info().Str("room", room.Key).Str("host", displayName).Msg("room created")
	return room, nil
}

// JoinRoom admits a second participant. The host learns the joiner's name,
// the joiner learns the host's. A third join attempt fails with ErrRoomFull
// and mutates nothing.
func (c *Coordinator) JoinRoom(client *wshub.Client, roomKey, displayName string) error {
	room := c.store.Get(roomKey)
	if room == nil {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	if len(room.participants) >= MaxParticipants {
		room.mu.Unlock()
		return ErrRoomFull
	}
	host := room.participants[0]
	room.participants = append(room.participants, Participant{ConnID: client.ConnID, DisplayName: displayName})
	room.Hub.Register(client)
	room.Hub.SendTo(host.ConnID, protocol.ServerMessage{
		Type:       protocol.EventPlayerJoined,
		RoomKey:    roomKey,
		PlayerName: displayName,
	})
	room.Hub.SendTo(client.ConnID, protocol.ServerMessage{
		Type:       protocol.EventRoomJoined,
		RoomKey:    roomKey,
		PlayerName: host.DisplayName,
	})
	room.mu.Unlock()

	if c.records != nil {
		if err := c.records.SetJoiner(roomKey, displayName); err != nil {
			log.Warn().Err(err).Str("room", roomKey).Msg("persisting joiner")
		}
	}
	log.Info().Str("room", roomKey).Str("player", displayName).Msg("player joined")
	return nil
}

// StartGame stores the secret word and timer budget and broadcasts
// gameStarted. Both participants' gameStarted messages are enqueued before
// the room turns active, so no progress event can overtake the start on
// either connection.
func (c *Coordinator) StartGame(roomKey, connID, secretWord string, timerSeconds int) error {
	// The word comes off the wire; a malformed one must never reach a
	// client's evaluator.
	if !game.IsPlayableWord(secretWord) {
		return ErrInvalidWord
	}
	room := c.store.Get(roomKey)
	if room == nil {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if !room.hasParticipantLocked(connID) {
		return ErrNotInRoom
	}
	if room.status == StatusActive {
		log.Warn().Str("room", roomKey).Msg("startGame on active room ignored")
		return nil
	}
	room.secretWord = secretWord
	room.timerSeconds = timerSeconds
	room.outcome = nil
	room.Hub.Broadcast(protocol.ServerMessage{
		Type:         protocol.EventGameStarted,
		RoomKey:      roomKey,
		Word:         secretWord,
		TimerSeconds: timerSeconds,
	})
	room.status = StatusActive

	if c.records != nil {
		if err := c.records.SetStatus(roomKey, string(StatusActive)); err != nil {
			log.Warn().Err(err).Str("room", roomKey).Msg("persisting status")
		}
	}
	log.Info().Str("room", roomKey).Int("timer", timerSeconds).Msg("game started")
	return nil
}

// ReportProgress relays the sender's progress snapshot to the peer only.
// Snapshots are advisory: they are never persisted and one arriving before
// the round starts is dropped.
func (c *Coordinator) ReportProgress(roomKey, connID string, snapshot game.Snapshot) error {
	room := c.store.Get(roomKey)
	if room == nil {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if !room.hasParticipantLocked(connID) {
		return ErrNotInRoom
	}
	if room.status != StatusActive {
		log.Debug().Str("room", roomKey).Str("status", string(room.status)).Msg("progress before start dropped")
		return nil
	}
	if peer, ok := room.peerLocked(connID); ok {
		room.Hub.SendTo(peer.ConnID, protocol.ServerMessage{
			Type:     protocol.EventOpponentProgress,
			RoomKey:  roomKey,
			Progress: &snapshot,
		})
	}
	return nil
}

// ReportHintTaken relays a notice-only hint event to the peer.
func (c *Coordinator) ReportHintTaken(roomKey, connID string) error {
	room := c.store.Get(roomKey)
	if room == nil {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if !room.hasParticipantLocked(connID) {
		return ErrNotInRoom
	}
	if peer, ok := room.peerLocked(connID); ok {
		room.Hub.SendTo(peer.ConnID, protocol.ServerMessage{
			Type:    protocol.EventOpponentHintTaken,
			RoomKey: roomKey,
		})
	}
	return nil
}

// ReportGameOver records the authoritative outcome for the room. The first
// report wins; duplicate or conflicting reports from the other participant
// are logged and ignored, never overwritten.
func (c *Coordinator) ReportGameOver(roomKey, connID string, outcome protocol.OutcomeDescriptor) error {
	room := c.store.Get(roomKey)
	if room == nil {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if !room.hasParticipantLocked(connID) {
		return ErrNotInRoom
	}
	if room.outcome != nil {
		log.Info().Str("room", roomKey).
			Str("winner", outcome.WinnerName).
			Str("kept", room.outcome.WinnerName).
			Msg("duplicate game-over report ignored")
		return nil
	}
	o := outcome
	room.outcome = &o
	room.status = StatusFinished
	room.Hub.Broadcast(protocol.ServerMessage{
		Type:    protocol.EventGameOver,
		RoomKey: roomKey,
		Outcome: &o,
	})

	if c.records != nil {
		if err := c.records.SetStatus(roomKey, string(StatusFinished)); err != nil {
			log.Warn().Err(err).Str("room", roomKey).Msg("persisting status")
		}
	}
	log.Info().Str("room", roomKey).Str("winner", o.WinnerName).Str("reason", string(o.Reason)).Msg("game over")
	return nil
}

// RequestRematch broadcasts the reset signal and rearms the room: the old
// secret word and outcome are discarded, and the next StartGame distributes
// a fresh word.
func (c *Coordinator) RequestRematch(roomKey, connID string) error {
	room := c.store.Get(roomKey)
	if room == nil {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if !room.hasParticipantLocked(connID) {
		return ErrNotInRoom
	}
	room.secretWord = ""
	room.timerSeconds = 0
	room.outcome = nil
	room.status = StatusWaiting
	room.Hub.Broadcast(protocol.ServerMessage{
		Type:    protocol.EventRematch,
		RoomKey: roomKey,
	})
	log.Info().Str("room", roomKey).Msg("rematch requested")
	return nil
}

// Leave removes the connection from the room. The last participant leaving
// destroys the room; otherwise the remaining player is notified.
func (c *Coordinator) Leave(roomKey, connID string) error {
	room := c.store.Get(roomKey)
	if room == nil {
		return ErrRoomNotFound
	}
	c.removeFromRoom(room, connID)
	return nil
}

// Disconnect handles a dropped connection: the participant is removed from
// every room it belongs to, as if it had sent leaveRoom.
func (c *Coordinator) Disconnect(connID string) {
	for _, room := range c.store.FindByConnID(connID) {
		c.removeFromRoom(room, connID)
	}
}

func (c *Coordinator) removeFromRoom(room *Room, connID string) {
	room.mu.Lock()
	var left Participant
	found := false
	kept := room.participants[:0]
	for _, p := range room.participants {
		if p.ConnID == connID {
			left = p
			found = true
			continue
		}
		kept = append(kept, p)
	}
	room.participants = kept
	if found {
		room.Hub.Unregister(connID)
	}
	empty := len(room.participants) == 0
	if found && !empty {
		for _, p := range room.participants {
			room.Hub.SendTo(p.ConnID, protocol.ServerMessage{
				Type:       protocol.EventPlayerLeft,
				RoomKey:    room.Key,
				PlayerName: left.DisplayName,
			})
		}
	}
	room.mu.Unlock()

	if !found {
		return
	}
	if empty {
		c.store.Delete(room.Key)
		if c.records != nil {
			if err := c.records.DeleteRecord(room.Key); err != nil {
				log.Warn().Err(err).Str("room", room.Key).Msg("deleting room record")
			}
		}
		log.Info().Str("room", room.Key).Msg("room destroyed")
	} else {
		log.Info().Str("room", room.Key).Str("player", left.DisplayName).Msg("player left")
	}
}
