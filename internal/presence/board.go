// Package presence keeps a live view of who is currently tapped in, per
// classroom, in a Redis hash. The worker writes it from the tap event stream;
// the api only reads it, so a stale board never blocks a scan.
package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "taptrack:presence:"

// Session is one open attendance session as shown on the board.
type Session struct {
	TeacherID string    `json:"teacher_id"`
	Teacher   string    `json:"teacher"`
	Subject   string    `json:"subject"`
	Since     time.Time `json:"since"`
}

// Board stores open sessions keyed by classroom.
type Board struct {
	client *redis.Client
}

// NewBoard wraps a redis client.
func NewBoard(client *redis.Client) *Board {
	return &Board{client: client}
}

func key(classroomID string) string { return keyPrefix + classroomID }

// Set records an open session on the classroom's board.
func (b *Board) Set(ctx context.Context, classroomID string, s Session) error {
	body, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := b.client.HSet(ctx, key(classroomID), s.TeacherID, body).Err(); err != nil {
		return fmt.Errorf("presence set: %w", err)
	}
	return nil
}

// Clear removes a teacher from the classroom's board.
func (b *Board) Clear(ctx context.Context, classroomID, teacherID string) error {
	if err := b.client.HDel(ctx, key(classroomID), teacherID).Err(); err != nil {
		return fmt.Errorf("presence clear: %w", err)
	}
	return nil
}

// List returns the classroom's open sessions. Entries that fail to decode are
// skipped rather than failing the whole board.
func (b *Board) List(ctx context.Context, classroomID string) ([]Session, error) {
	vals, err := b.client.HGetAll(ctx, key(classroomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("presence list: %w", err)
	}
	sessions := make([]Session, 0, len(vals))
	for _, raw := range vals {
		var s Session
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}
