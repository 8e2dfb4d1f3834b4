package chat

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines chat data access interface
type Repository interface {
	CreateRoom(ctx context.Context, room *Room) error
	GetRoom(ctx context.Context, id uuid.UUID) (*Room, error)
	FindRoom(ctx context.Context, guestID, hostID uuid.UUID, propertyID uuid.NullUUID) (*Room, error)
	ListRooms(ctx context.Context, userID uuid.UUID) ([]*Room, error)

	CreateMessage(ctx context.Context, msg *Message) error
	ListMessages(ctx context.Context, roomID uuid.UUID, limit, offset int) ([]*Message, error)
	MarkRead(ctx context.Context, roomID, readerID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates chat repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateRoom(ctx context.Context, room *Room) error {
	query := `
		INSERT INTO chat_rooms (id, guest_id, host_id, property_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		room.ID, room.GuestID, room.HostID, room.PropertyID, room.CreatedAt,
	)
	return err
}

func (r *repository) GetRoom(ctx context.Context, id uuid.UUID) (*Room, error) {
	query := `SELECT * FROM chat_rooms WHERE id = $1`
	var room Room
	err := r.db.GetContext(ctx, &room, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

func (r *repository) FindRoom(ctx context.Context, guestID, hostID uuid.UUID, propertyID uuid.NullUUID) (*Room, error) {
	query := `
		SELECT * FROM chat_rooms
		WHERE guest_id = $1 AND host_id = $2
		  AND property_id IS NOT DISTINCT FROM $3
	`
	var room Room
	err := r.db.GetContext(ctx, &room, query, guestID, hostID, propertyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

func (r *repository) ListRooms(ctx context.Context, userID uuid.UUID) ([]*Room, error) {
	query := `
		SELECT * FROM chat_rooms
		WHERE guest_id = $1 OR host_id = $1
		ORDER BY last_message_at DESC NULLS LAST, created_at DESC
	`
	var rooms []*Room
	err := r.db.SelectContext(ctx, &rooms, query, userID)
	return rooms, err
}

func (r *repository) CreateMessage(ctx context.Context, msg *Message) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO chat_messages (id, room_id, sender_id, content, message_type, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, false, $6)
	`, msg.ID, msg.RoomID, msg.SenderID, msg.Content, msg.MessageType, msg.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE chat_rooms
		SET last_message_at = $2, last_message_preview = LEFT($3, 120)
		WHERE id = $1
	`, msg.RoomID, msg.CreatedAt, msg.Content)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) ListMessages(ctx context.Context, roomID uuid.UUID, limit, offset int) ([]*Message, error) {
	query := `
		SELECT * FROM chat_messages
		WHERE room_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	var messages []*Message
	err := r.db.SelectContext(ctx, &messages, query, roomID, limit, offset)
	return messages, err
}

func (r *repository) MarkRead(ctx context.Context, roomID, readerID uuid.UUID) (int64, error) {
	query := `
		UPDATE chat_messages
		SET is_read = true, read_at = NOW()
		WHERE room_id = $1 AND sender_id <> $2 AND is_read = false
	`
	res, err := r.db.ExecContext(ctx, query, roomID, readerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM chat_messages m
		JOIN chat_rooms r ON r.id = m.room_id
		WHERE (r.guest_id = $1 OR r.host_id = $1)
		  AND m.sender_id <> $1
		  AND m.is_read = false
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, userID)
	return count, err
}
