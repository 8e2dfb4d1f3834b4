package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Notifier announces new messages to the recipient outside the room
type Notifier interface {
	NotifyNewMessage(ctx context.Context, recipientID, senderID uuid.UUID, preview string, roomID, messageID uuid.UUID)
}

// Service handles chat business logic
type Service struct {
	repo     Repository
	hub      *Hub
	notifier Notifier
}

// NewService creates chat service
func NewService(repo Repository, hub *Hub) *Service {
	return &Service{repo: repo, hub: hub}
}

// SetNotifier attaches the notification sink
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// OpenRoom returns the room between the caller and a host, creating it on
// first contact.
func (s *Service) OpenRoom(ctx context.Context, guestID, hostID uuid.UUID, propertyID *uuid.UUID) (*Room, error) {
	if guestID == hostID {
		return nil, ErrSelfChat
	}

	propRef := uuid.NullUUID{}
	if propertyID != nil {
		propRef = uuid.NullUUID{UUID: *propertyID, Valid: true}
	}

	existing, err := s.repo.FindRoom(ctx, guestID, hostID, propRef)
	if err != nil {
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	room := &Room{
		ID:         uuid.New(),
		GuestID:    guestID,
		HostID:     hostID,
		PropertyID: propRef,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.CreateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	log.Info().
		Str("room_id", room.ID.String()).
		Str("guest_id", guestID.String()).
		Str("host_id", hostID.String()).
		Msg("chat room created")
	return room, nil
}

// ListRooms returns the caller's rooms
func (s *Service) ListRooms(ctx context.Context, userID uuid.UUID) ([]*Room, error) {
	return s.repo.ListRooms(ctx, userID)
}

// SendMessage persists a message and fans it out to the room
func (s *Service) SendMessage(ctx context.Context, senderID, roomID uuid.UUID, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	room, err := s.getRoomFor(ctx, senderID, roomID)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		ID:          uuid.New(),
		RoomID:      roomID,
		SenderID:    senderID,
		Content:     content,
		MessageType: MessageTypeText,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	if s.hub != nil {
		s.hub.SubscribeToRoom(roomID, room.OtherParticipant(senderID))
		s.hub.BroadcastToRoom(roomID, &WSEvent{
			Type:     EventNewMessage,
			RoomID:   roomID,
			SenderID: senderID,
			Message:  msg,
		})
	}

	if s.notifier != nil {
		preview := content
		if len(preview) > 120 {
			preview = preview[:120]
		}
		s.notifier.NotifyNewMessage(ctx, room.OtherParticipant(senderID), senderID, preview, roomID, msg.ID)
	}

	return msg, nil
}

// ListMessages returns room history for a participant
func (s *Service) ListMessages(ctx context.Context, userID, roomID uuid.UUID, limit, offset int) ([]*Message, error) {
	if _, err := s.getRoomFor(ctx, userID, roomID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, roomID, limit, offset)
}

// MarkAsRead marks the other side's messages read and notifies the room
func (s *Service) MarkAsRead(ctx context.Context, userID, roomID uuid.UUID) error {
	if _, err := s.getRoomFor(ctx, userID, roomID); err != nil {
		return err
	}

	n, err := s.repo.MarkRead(ctx, roomID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark read: %w", err)
	}

	if n > 0 && s.hub != nil {
		s.hub.BroadcastToRoom(roomID, &WSEvent{
			Type:     EventRead,
			RoomID:   roomID,
			SenderID: userID,
		})
	}
	return nil
}

// UnreadCount returns the caller's total unread messages
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *Service) getRoomFor(ctx context.Context, userID, roomID uuid.UUID) (*Room, error) {
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	if !room.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return room, nil
}
