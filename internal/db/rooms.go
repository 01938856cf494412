package db

import (
	"database/sql"
	"fmt"
	"time"
)

// roomTTL is how long an unclaimed room record stays resolvable.
const roomTTL = 5 * time.Minute

// RoomRecord is the durable form of a room, enough to resolve a shared
// join link: who created it, who joined, and when it stops being valid.
type RoomRecord struct {
	RoomKey     string
	CreatorName string
	JoinerName  *string
	Status      string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

func (d *DB) CreateRecord(roomKey, creatorName string) error {
	now := time.Now().UTC()
	_, err := d.conn.Exec(`
		INSERT INTO rooms (room_key, creator_name, status, created_at, expires_at)
		VALUES ($1, $2, 'waiting', $3, $4)
	`, roomKey, creatorName, now, now.Add(roomTTL))
	if err != nil {
		return fmt.Errorf("creating room record: %w", err)
	}
	return nil
}

func (d *DB) SetJoiner(roomKey, joinerName string) error {
	_, err := d.conn.Exec(`
		UPDATE rooms SET joiner_name = $2 WHERE room_key = $1
	`, roomKey, joinerName)
	if err != nil {
		return fmt.Errorf("setting joiner: %w", err)
	}
	return nil
}

func (d *DB) SetStatus(roomKey, status string) error {
	_, err := d.conn.Exec(`
		UPDATE rooms SET status = $2 WHERE room_key = $1
	`, roomKey, status)
	if err != nil {
		return fmt.Errorf("setting room status: %w", err)
	}
	return nil
}

func (d *DB) DeleteRecord(roomKey string) error {
	_, err := d.conn.Exec(`DELETE FROM rooms WHERE room_key = $1`, roomKey)
	if err != nil {
		return fmt.Errorf("deleting room record: %w", err)
	}
	return nil
}

// GetRecord resolves a room record by key. Expired records count as absent.
func (d *DB) GetRecord(roomKey string) (*RoomRecord, error) {
	var rec RoomRecord
	err := d.conn.QueryRow(`
		SELECT room_key, creator_name, joiner_name, status, created_at, expires_at
		FROM rooms
		WHERE room_key = $1 AND expires_at > now()
	`, roomKey).Scan(&rec.RoomKey, &rec.CreatorName, &rec.JoinerName, &rec.Status, &rec.CreatedAt, &rec.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting room record: %w", err)
	}
	return &rec, nil
}

// PruneExpired deletes records past their TTL. Called periodically by the
// server so abandoned rooms do not accumulate.
func (d *DB) PruneExpired() (int64, error) {
	res, err := d.conn.Exec(`DELETE FROM rooms WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("pruning expired rooms: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
