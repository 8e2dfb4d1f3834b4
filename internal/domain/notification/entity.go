package notification

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type represents notification type
type Type string

const (
	TypeBookingCreated   Type = "booking_created"   // Host: new booking request
	TypeBookingConfirmed Type = "booking_confirmed" // Guest: host confirmed
	TypeBookingCancelled Type = "booking_cancelled" // Both: booking cancelled
	TypePaymentDue       Type = "payment_due"       // Guest: payment deadline approaching
	TypeNewMessage       Type = "new_message"       // Both: new chat message
	TypeLeaseUpdate      Type = "lease_update"      // Both: lease application status changed
)

// Notification represents a user notification
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Type      Type            `db:"type" json:"type"`
	Title     string          `db:"title" json:"title"`
	Body      sql.NullString  `db:"body" json:"body,omitempty"`
	Data      json.RawMessage `db:"data" json:"data,omitempty"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	ReadAt    sql.NullTime    `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// NotificationData for linking to entities
type NotificationData struct {
	BookingID  *uuid.UUID `json:"booking_id,omitempty"`
	PropertyID *uuid.UUID `json:"property_id,omitempty"`
	PaymentID  *uuid.UUID `json:"payment_id,omitempty"`
	LeaseID    *uuid.UUID `json:"lease_id,omitempty"`
	RoomID     *uuid.UUID `json:"room_id,omitempty"`
	MessageID  *uuid.UUID `json:"message_id,omitempty"`
}

// SetData encodes data to JSON
func (n *Notification) SetData(data *NotificationData) {
	if data != nil {
		n.Data, _ = json.Marshal(data)
	}
}

// GetData decodes data from JSON
func (n *Notification) GetData() *NotificationData {
	if n.Data == nil {
		return &NotificationData{}
	}
	var data NotificationData
	_ = json.Unmarshal(n.Data, &data)
	return &data
}
