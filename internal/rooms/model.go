package rooms

import (
	"sync"
	"time"

	"griddle/internal/protocol"
	"griddle/internal/wshub"
)

// Status is the room lifecycle: waiting until two participants are present
// and a word is distributed, active during the round, finished once an
// outcome is recorded. A rematch returns the room to waiting.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// MaxParticipants is the hard room capacity. A third join attempt is
// rejected, never silently dropped.
const MaxParticipants = 2

// Participant is one player bound to a room. The first entry is the host.
type Participant struct {
	ConnID      string
	DisplayName string
}

// Room pairs two participants for one match. All reads and writes of the
// mutable fields go through the room mutex so coordinator handlers for the
// same key never interleave their read-modify-write.
type Room struct {
	Key       string
	CreatedAt time.Time
	Hub       *wshub.Hub

	mu           sync.Mutex
	participants []Participant
	secretWord   string
	timerSeconds int
	status       Status
	outcome      *protocol.OutcomeDescriptor
}

func newRoom(key string) *Room {
	return &Room{
		Key:       key,
		CreatedAt: time.Now(),
		Hub:       wshub.NewHub(),
		status:    StatusWaiting,
	}
}

func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Room) SecretWord() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.secretWord
}

func (r *Room) Outcome() *protocol.OutcomeDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome
}

// Participants returns a copy of the participant list, host first.
func (r *Room) Participants() []Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Participant, len(r.participants))
	copy(out, r.participants)
	return out
}

func (r *Room) hasParticipantLocked(connID string) bool {
	for _, p := range r.participants {
		if p.ConnID == connID {
			return true
		}
	}
	return false
}

// HasParticipant reports whether the connection belongs to this room.
func (r *Room) HasParticipant(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasParticipantLocked(connID)
}

func (r *Room) peerLocked(connID string) (Participant, bool) {
	for _, p := range r.participants {
		if p.ConnID != connID {
			return p, true
		}
	}
	return Participant{}, false
}
