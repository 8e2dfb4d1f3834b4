package chat

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// MessageType represents message type
type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeSystem MessageType = "system"
)

// Room represents a conversation between a guest and a host or agent,
// optionally tied to a listing
type Room struct {
	ID                 uuid.UUID      `db:"id" json:"id"`
	GuestID            uuid.UUID      `db:"guest_id" json:"guest_id"`
	HostID             uuid.UUID      `db:"host_id" json:"host_id"`
	PropertyID         uuid.NullUUID  `db:"property_id" json:"property_id,omitempty"`
	LastMessageAt      sql.NullTime   `db:"last_message_at" json:"last_message_at,omitempty"`
	LastMessagePreview sql.NullString `db:"last_message_preview" json:"last_message_preview,omitempty"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
}

// HasParticipant checks if user is in this room
func (r *Room) HasParticipant(userID uuid.UUID) bool {
	return r.GuestID == userID || r.HostID == userID
}

// OtherParticipant returns the other user in the room
func (r *Room) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if r.GuestID == userID {
		return r.HostID
	}
	return r.GuestID
}

// Message represents a chat message
type Message struct {
	ID          uuid.UUID    `db:"id" json:"id"`
	RoomID      uuid.UUID    `db:"room_id" json:"room_id"`
	SenderID    uuid.UUID    `db:"sender_id" json:"sender_id"`
	Content     string       `db:"content" json:"content"`
	MessageType MessageType  `db:"message_type" json:"message_type"`
	IsRead      bool         `db:"is_read" json:"is_read"`
	ReadAt      sql.NullTime `db:"read_at" json:"read_at,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}
