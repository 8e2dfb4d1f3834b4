package chat

import (
	"time"

	"github.com/google/uuid"
)

// CreateRoomRequest for POST /chat/rooms
type CreateRoomRequest struct {
	HostID     string `json:"host_id" validate:"required,uuid"`
	PropertyID string `json:"property_id" validate:"omitempty,uuid"`
}

// SendMessageRequest for POST /chat/rooms/{id}/messages
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=5000"`
}

// RoomResponse represents a room in API responses
type RoomResponse struct {
	ID                 uuid.UUID  `json:"id"`
	GuestID            uuid.UUID  `json:"guest_id"`
	HostID             uuid.UUID  `json:"host_id"`
	PropertyID         *uuid.UUID `json:"property_id,omitempty"`
	LastMessageAt      *time.Time `json:"last_message_at,omitempty"`
	LastMessagePreview string     `json:"last_message_preview,omitempty"`
	OtherOnline        bool       `json:"other_online"`
	CreatedAt          time.Time  `json:"created_at"`
}

// RoomResponseFromEntity converts a Room to its API representation
func RoomResponseFromEntity(room *Room, otherOnline bool) *RoomResponse {
	resp := &RoomResponse{
		ID:          room.ID,
		GuestID:     room.GuestID,
		HostID:      room.HostID,
		OtherOnline: otherOnline,
		CreatedAt:   room.CreatedAt,
	}
	if room.PropertyID.Valid {
		resp.PropertyID = &room.PropertyID.UUID
	}
	if room.LastMessageAt.Valid {
		resp.LastMessageAt = &room.LastMessageAt.Time
	}
	if room.LastMessagePreview.Valid {
		resp.LastMessagePreview = room.LastMessagePreview.String
	}
	return resp
}
