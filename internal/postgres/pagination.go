package postgres

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor — позиция в списке комнат (created_at,id DESC).
type Cursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
}

// MsgCursor — позиция в истории сообщений; id здесь bigserial.
type MsgCursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        int64     `json:"id"`
}

func EncodeCursor(c Cursor) (string, error)       { return encode(c) }
func EncodeMsgCursor(c MsgCursor) (string, error) { return encode(c) }

func DecodeCursor(s string) (*Cursor, error) {
	var c Cursor
	ok, err := decode(s, &c)
	if !ok || err != nil {
		return nil, err
	}
	return &c, nil
}

func DecodeMsgCursor(s string) (*MsgCursor, error) {
	var c MsgCursor
	ok, err := decode(s, &c)
	if !ok || err != nil {
		return nil, err
	}
	return &c, nil
}

func encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

func decode(s string, dst any) (bool, error) {
	if s == "" {
		return false, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return false, fmt.Errorf("%w: decode base64: %v", ErrInvalidCursor, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("%w: decode json: %v", ErrInvalidCursor, err)
	}
	return true, nil
}
