package postgres

import (
	"context"

	"github.com/cwrk-planet/videochat-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ParticipantRepository struct {
	db *pgxpool.Pool
}

func NewParticipantRepository(db *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Add идемпотентен: повторное добавление участника — no-op.
func (r *ParticipantRepository) Add(ctx context.Context, roomID, username string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO room_participants (room_id, username)
		VALUES ($1, $2)
		ON CONFLICT (room_id, username) DO NOTHING
	`, roomID, username)
	return err
}

// Remove идемпотентен: удаление отсутствующего участника — no-op.
func (r *ParticipantRepository) Remove(ctx context.Context, roomID, username string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM room_participants WHERE room_id=$1 AND username=$2`, roomID, username)
	return err
}

func (r *ParticipantRepository) Exists(ctx context.Context, roomID, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM room_participants WHERE room_id=$1 AND username=$2)`,
		roomID, username).Scan(&exists)
	return exists, err
}

func (r *ParticipantRepository) ListByRoom(ctx context.Context, roomID string) ([]domain.Participant, error) {
	rows, err := r.db.Query(ctx, `
		SELECT room_id, username, is_online, joined_at, last_seen
		FROM room_participants
		WHERE room_id=$1
		ORDER BY joined_at ASC
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Participant
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.RoomID, &p.Username, &p.IsOnline, &p.JoinedAt, &p.LastSeen); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// SetOnline отражает живое подключение сокета. Отсутствующая строка
// не считается ошибкой: аноним мог открыть сокет, не вступив в комнату.
func (r *ParticipantRepository) SetOnline(ctx context.Context, roomID, username string, online bool) error {
	_, err := r.db.Exec(ctx, `
		UPDATE room_participants SET is_online=$3, last_seen=now()
		WHERE room_id=$1 AND username=$2
	`, roomID, username, online)
	return err
}

func (r *ParticipantRepository) TouchHeartbeat(ctx context.Context, roomID, username string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE room_participants SET last_seen=now() WHERE room_id=$1 AND username=$2`,
		roomID, username)
	return err
}
