package chat

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrNotParticipant = errors.New("you are not a participant of this room")
	ErrSelfChat       = errors.New("cannot start a chat with yourself")
	ErrEmptyMessage   = errors.New("message content is empty")
)
