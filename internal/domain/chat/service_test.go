package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/krib/krib-api/internal/domain/chat"
)

/* =========================
   Fakes
   ========================= */

type fakeChatRepo struct {
	rooms    map[uuid.UUID]*chat.Room
	messages map[uuid.UUID][]*chat.Message
	read     map[uuid.UUID]int64
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		rooms:    make(map[uuid.UUID]*chat.Room),
		messages: make(map[uuid.UUID][]*chat.Message),
		read:     make(map[uuid.UUID]int64),
	}
}

func (f *fakeChatRepo) CreateRoom(ctx context.Context, room *chat.Room) error {
	cp := *room
	f.rooms[room.ID] = &cp
	return nil
}

func (f *fakeChatRepo) GetRoom(ctx context.Context, id uuid.UUID) (*chat.Room, error) {
	r, ok := f.rooms[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeChatRepo) FindRoom(ctx context.Context, guestID, hostID uuid.UUID, propertyID uuid.NullUUID) (*chat.Room, error) {
	for _, r := range f.rooms {
		if r.GuestID == guestID && r.HostID == hostID && r.PropertyID == propertyID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeChatRepo) ListRooms(ctx context.Context, userID uuid.UUID) ([]*chat.Room, error) {
	var out []*chat.Room
	for _, r := range f.rooms {
		if r.HasParticipant(userID) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeChatRepo) CreateMessage(ctx context.Context, msg *chat.Message) error {
	cp := *msg
	f.messages[msg.RoomID] = append(f.messages[msg.RoomID], &cp)
	return nil
}

func (f *fakeChatRepo) ListMessages(ctx context.Context, roomID uuid.UUID, limit, offset int) ([]*chat.Message, error) {
	return f.messages[roomID], nil
}

func (f *fakeChatRepo) MarkRead(ctx context.Context, roomID, readerID uuid.UUID) (int64, error) {
	return f.read[roomID], nil
}

func (f *fakeChatRepo) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return 0, nil
}

type recordedNotification struct {
	recipientID uuid.UUID
	senderID    uuid.UUID
	preview     string
}

type fakeChatNotifier struct {
	sent []recordedNotification
}

func (f *fakeChatNotifier) NotifyNewMessage(ctx context.Context, recipientID, senderID uuid.UUID, preview string, roomID, messageID uuid.UUID) {
	f.sent = append(f.sent, recordedNotification{recipientID: recipientID, senderID: senderID, preview: preview})
}

/* =========================
   Helpers
   ========================= */

func newChatTestService() (*chat.Service, *fakeChatRepo) {
	repo := newFakeChatRepo()
	return chat.NewService(repo, nil), repo
}

func seedRoom(repo *fakeChatRepo, guestID, hostID uuid.UUID) *chat.Room {
	room := &chat.Room{
		ID:        uuid.New(),
		GuestID:   guestID,
		HostID:    hostID,
		CreatedAt: time.Now(),
	}
	repo.rooms[room.ID] = room
	return room
}

/* =========================
   OpenRoom
   ========================= */

func TestOpenRoom_RejectsSelfChat(t *testing.T) {
	svc, _ := newChatTestService()
	userID := uuid.New()

	_, err := svc.OpenRoom(context.Background(), userID, userID, nil)
	if !errors.Is(err, chat.ErrSelfChat) {
		t.Fatalf("expected ErrSelfChat, got %v", err)
	}
}

func TestOpenRoom_ReusesExistingRoom(t *testing.T) {
	svc, _ := newChatTestService()
	guestID := uuid.New()
	hostID := uuid.New()

	first, err := svc.OpenRoom(context.Background(), guestID, hostID, nil)
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	second, err := svc.OpenRoom(context.Background(), guestID, hostID, nil)
	if err != nil {
		t.Fatalf("second open failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same room, got %s and %s", first.ID, second.ID)
	}
}

func TestOpenRoom_SeparateRoomPerProperty(t *testing.T) {
	svc, _ := newChatTestService()
	guestID := uuid.New()
	hostID := uuid.New()
	propertyID := uuid.New()

	general, err := svc.OpenRoom(context.Background(), guestID, hostID, nil)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	scoped, err := svc.OpenRoom(context.Background(), guestID, hostID, &propertyID)
	if err != nil {
		t.Fatalf("open with property failed: %v", err)
	}
	if general.ID == scoped.ID {
		t.Fatalf("expected distinct rooms for distinct property scopes")
	}
}

/* =========================
   SendMessage
   ========================= */

func TestSendMessage_RejectsNonParticipant(t *testing.T) {
	svc, repo := newChatTestService()
	room := seedRoom(repo, uuid.New(), uuid.New())

	_, err := svc.SendMessage(context.Background(), uuid.New(), room.ID, "hello")
	if !errors.Is(err, chat.ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
	if len(repo.messages[room.ID]) != 0 {
		t.Fatalf("expected no message stored, got %d", len(repo.messages[room.ID]))
	}
}

func TestSendMessage_RejectsBlankContent(t *testing.T) {
	svc, repo := newChatTestService()
	room := seedRoom(repo, uuid.New(), uuid.New())

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := svc.SendMessage(context.Background(), room.GuestID, room.ID, content)
		if !errors.Is(err, chat.ErrEmptyMessage) {
			t.Fatalf("content %q: expected ErrEmptyMessage, got %v", content, err)
		}
	}
}

func TestSendMessage_UnknownRoom(t *testing.T) {
	svc, _ := newChatTestService()

	_, err := svc.SendMessage(context.Background(), uuid.New(), uuid.New(), "hello")
	if !errors.Is(err, chat.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestSendMessage_TrimsAndStores(t *testing.T) {
	svc, repo := newChatTestService()
	room := seedRoom(repo, uuid.New(), uuid.New())

	msg, err := svc.SendMessage(context.Background(), room.GuestID, room.ID, "  is it still available?  ")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if msg.Content != "is it still available?" {
		t.Fatalf("expected trimmed content, got %q", msg.Content)
	}
	if msg.MessageType != chat.MessageTypeText {
		t.Fatalf("expected message type %s, got %s", chat.MessageTypeText, msg.MessageType)
	}
	if len(repo.messages[room.ID]) != 1 {
		t.Fatalf("expected 1 stored message, got %d", len(repo.messages[room.ID]))
	}
}

func TestSendMessage_NotifiesOtherParticipant(t *testing.T) {
	svc, repo := newChatTestService()
	notifier := &fakeChatNotifier{}
	svc.SetNotifier(notifier)
	room := seedRoom(repo, uuid.New(), uuid.New())

	long := strings.Repeat("x", 200)
	if _, err := svc.SendMessage(context.Background(), room.HostID, room.ID, long); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.sent))
	}
	n := notifier.sent[0]
	if n.recipientID != room.GuestID {
		t.Fatalf("expected guest %s notified, got %s", room.GuestID, n.recipientID)
	}
	if n.senderID != room.HostID {
		t.Fatalf("expected sender %s, got %s", room.HostID, n.senderID)
	}
	if len(n.preview) != 120 {
		t.Fatalf("expected preview truncated to 120 chars, got %d", len(n.preview))
	}
}

/* =========================
   Room access
   ========================= */

func TestListMessages_RejectsNonParticipant(t *testing.T) {
	svc, repo := newChatTestService()
	room := seedRoom(repo, uuid.New(), uuid.New())

	_, err := svc.ListMessages(context.Background(), uuid.New(), room.ID, 50, 0)
	if !errors.Is(err, chat.ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
}

func TestMarkAsRead_RejectsNonParticipant(t *testing.T) {
	svc, repo := newChatTestService()
	room := seedRoom(repo, uuid.New(), uuid.New())

	err := svc.MarkAsRead(context.Background(), uuid.New(), room.ID)
	if !errors.Is(err, chat.ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
}
