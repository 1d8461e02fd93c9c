package domain

import (
	"strings"
	"time"
)

// inviteCodeLen — код приглашения = первые 8 символов UUID комнаты.
const inviteCodeLen = 8

type Room struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	CreatedBy   string    `db:"created_by"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// InviteCode derives the short join code from the room identifier.
// Uniqueness is only as strong as 8-char prefix uniqueness; lookups
// tolerate collisions by picking the lowest matching identifier.
func (r Room) InviteCode() string {
	id := r.ID
	if len(id) > inviteCodeLen {
		id = id[:inviteCodeLen]
	}
	return strings.ToUpper(id)
}

// NormalizeInviteCode приводит пользовательский ввод к виду префикса id.
func NormalizeInviteCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if len(code) > inviteCodeLen {
		code = code[:inviteCodeLen]
	}
	return code
}
