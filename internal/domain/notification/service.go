package notification

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Service handles notification logic
type Service struct {
	repo Repository
}

// NewService creates notification service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a notification
func (s *Service) Create(ctx context.Context, userID uuid.UUID, notifType Type, title, body string, data *NotificationData) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	if body != "" {
		n.Body = sql.NullString{String: body, Valid: true}
	}
	n.SetData(data)

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	return n, nil
}

// List returns notifications for user
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// GetUnreadCount returns unread count
func (s *Service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnreadByUser(ctx, userID)
}

// MarkAsRead marks single notification as read
func (s *Service) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

// MarkAllAsRead marks all notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// --- Helper methods for creating specific notifications ---

// NotifyBookingCreated notifies host about a new booking request
func (s *Service) NotifyBookingCreated(ctx context.Context, hostID uuid.UUID, propertyTitle string, bookingID, propertyID uuid.UUID) {
	s.Create(ctx, hostID, TypeBookingCreated,
		"New booking request",
		"You have a new booking request for \""+propertyTitle+"\"",
		&NotificationData{BookingID: &bookingID, PropertyID: &propertyID},
	)
}

// NotifyBookingConfirmed notifies guest that the host confirmed
func (s *Service) NotifyBookingConfirmed(ctx context.Context, guestID uuid.UUID, propertyTitle string, bookingID, propertyID uuid.UUID) {
	s.Create(ctx, guestID, TypeBookingConfirmed,
		"Booking confirmed",
		"Your stay at \""+propertyTitle+"\" is confirmed",
		&NotificationData{BookingID: &bookingID, PropertyID: &propertyID},
	)
}

// NotifyBookingCancelled notifies the other party about a cancellation
func (s *Service) NotifyBookingCancelled(ctx context.Context, userID uuid.UUID, propertyTitle string, bookingID, propertyID uuid.UUID) {
	s.Create(ctx, userID, TypeBookingCancelled,
		"Booking cancelled",
		"The booking for \""+propertyTitle+"\" was cancelled",
		&NotificationData{BookingID: &bookingID, PropertyID: &propertyID},
	)
}

// NotifyPaymentDue reminds guest about an unpaid booking payment
func (s *Service) NotifyPaymentDue(ctx context.Context, guestID uuid.UUID, propertyTitle string, bookingID, paymentID uuid.UUID) {
	s.Create(ctx, guestID, TypePaymentDue,
		"Payment due",
		"Your payment for \""+propertyTitle+"\" is due soon",
		&NotificationData{BookingID: &bookingID, PaymentID: &paymentID},
	)
}

// NotifyNewMessage notifies user about new message
func (s *Service) NotifyNewMessage(ctx context.Context, userID uuid.UUID, senderName, preview string, roomID, messageID uuid.UUID) {
	s.Create(ctx, userID, TypeNewMessage,
		"New message from "+senderName,
		preview,
		&NotificationData{RoomID: &roomID, MessageID: &messageID},
	)
}

// NotifyLeaseUpdate notifies about a lease application status change
func (s *Service) NotifyLeaseUpdate(ctx context.Context, userID uuid.UUID, propertyTitle, status string, leaseID, propertyID uuid.UUID) {
	s.Create(ctx, userID, TypeLeaseUpdate,
		"Lease application "+status,
		"Your lease application for \""+propertyTitle+"\" is now "+status,
		&NotificationData{LeaseID: &leaseID, PropertyID: &propertyID},
	)
}
