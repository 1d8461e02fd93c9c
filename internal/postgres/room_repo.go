package postgres

import (
	"context"

	"github.com/cwrk-planet/videochat-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoomRepository struct {
	db *pgxpool.Pool
}

func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	query := `
		INSERT INTO rooms (id, name, description, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING is_active, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, room.ID, room.Name, room.Description, room.CreatedBy).
		Scan(&room.IsActive, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return err
	}
	return nil
}

func (r *RoomRepository) Get(ctx context.Context, id string) (*domain.Room, error) {
	var rm domain.Room
	query := `
		SELECT id, name, description, created_by, is_active, created_at, updated_at
		FROM rooms WHERE id=$1 AND is_active`
	err := r.db.QueryRow(ctx, query, id).
		Scan(&rm.ID, &rm.Name, &rm.Description, &rm.CreatedBy, &rm.IsActive, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

// FindByInvitePrefix ищет активную комнату по первым 8 символам id
// (без учёта регистра). При коллизии префиксов детерминированно
// возвращается комната с наименьшим id.
func (r *RoomRepository) FindByInvitePrefix(ctx context.Context, prefix string) (*domain.Room, error) {
	var rm domain.Room
	query := `
		SELECT id, name, description, created_by, is_active, created_at, updated_at
		FROM rooms
		WHERE is_active AND left(id::text, 8) = $1
		ORDER BY id ASC
		LIMIT 1`
	err := r.db.QueryRow(ctx, query, domain.NormalizeInviteCode(prefix)).
		Scan(&rm.ID, &rm.Name, &rm.Description, &rm.CreatedBy, &rm.IsActive, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

func (r *RoomRepository) List(ctx context.Context, limit int, cursorStr string) ([]domain.Room, string, error) {
	cur, err := DecodeCursor(cursorStr)
	if err != nil {
		return nil, "", err
	}

	query := `
		SELECT id, name, description, created_by, is_active, created_at, updated_at
		FROM rooms
		WHERE is_active
		  AND ($1::timestamptz IS NULL OR created_at < $1
		       OR (created_at = $1 AND id::text < $2))
		ORDER BY created_at DESC, id DESC
		LIMIT $3`

	var createdAt any
	var id any
	if cur != nil {
		createdAt = cur.CreatedAt
		id = cur.ID
	}

	rows, err := r.db.Query(ctx, query, createdAt, id, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var rm domain.Room
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.Description, &rm.CreatedBy, &rm.IsActive, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
			return nil, "", err
		}
		rooms = append(rooms, rm)
	}

	var nextCursor string
	if len(rooms) == limit {
		last := rooms[len(rooms)-1]
		cur := Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
		nextCursor, _ = EncodeCursor(cur)
	}

	return rooms, nextCursor, nil
}

func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM rooms WHERE id=$1`, id)
	return err
}
