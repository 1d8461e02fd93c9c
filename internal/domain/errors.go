package domain

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrInvalidInviteCode = errors.New("invalid invite code")
	ErrEmptyMessage      = errors.New("empty message")
	ErrMessageTooLong    = errors.New("message too long")
)
