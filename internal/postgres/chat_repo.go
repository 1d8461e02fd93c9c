package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cwrk-planet/videochat-service/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgFKViolation — нарушение внешнего ключа (комнаты нет).
const pgFKViolation = "23503"

type ChatRepository struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Save(ctx context.Context, roomID, sender, content string) (*domain.ChatMessage, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO room_messages (room_id, sender, content)
		VALUES ($1, $2, $3)
		RETURNING id, room_id, sender, content, created_at
	`, roomID, sender, content)

	var m domain.ChatMessage
	if err := row.Scan(&m.ID, &m.RoomID, &m.Sender, &m.Content, &m.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgFKViolation {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return &m, nil
}

// List возвращает сообщения комнаты по возрастанию времени; при равных
// created_at порядок вставки сохраняется за счёт bigserial id.
func (r *ChatRepository) List(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, room_id, sender, content, created_at
		FROM room_messages
		WHERE room_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2
	`, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.RoomID, &m.Sender, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// History возвращает историю сообщений комнаты с курсорной пагинацией (created_at,id DESC).
func (r *ChatRepository) History(ctx context.Context, roomID, after string, limit int) ([]domain.ChatMessage, string, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	cur, err := DecodeMsgCursor(after)
	if err != nil {
		return nil, "", fmt.Errorf("decode cursor: %w", err)
	}
	const baseQuery = `
		SELECT id, room_id, sender, content, created_at
		FROM room_messages
		WHERE room_id = $1
		  AND (
		    $2::timestamptz IS NULL
		    OR created_at < $2
		    OR (created_at = $2 AND id < $3)
		  )
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`

	var createdAt any
	var id any
	if cur != nil {
		createdAt = cur.CreatedAt
		id = cur.ID
	}

	rows, err := r.db.Query(ctx, baseQuery, roomID, createdAt, id, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var out []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.RoomID, &m.Sender, &m.Content, &m.CreatedAt); err != nil {
			return nil, "", err
		}
		out = append(out, m)
	}

	var next string
	if len(out) == limit {
		last := out[len(out)-1]
		if c, e := EncodeMsgCursor(MsgCursor{CreatedAt: last.CreatedAt, ID: last.ID}); e == nil {
			next = c
		}
	}
	return out, next, nil
}
