package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cwrk-planet/videochat-service/internal/domain"
	"github.com/cwrk-planet/videochat-service/internal/postgres"

	"github.com/google/uuid"
)

type RoomService struct {
	roomRepo        *postgres.RoomRepository
	participantRepo *postgres.ParticipantRepository
}

func NewRoomService(roomRepo *postgres.RoomRepository, participantRepo *postgres.ParticipantRepository) *RoomService {
	return &RoomService{roomRepo: roomRepo, participantRepo: participantRepo}
}

// CreateRoom создаёт комнату и сразу записывает создателя в участники.
func (s *RoomService) CreateRoom(ctx context.Context, name, description, owner string) (*domain.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("room name is required")
	}
	if len(name) > 200 {
		name = name[:200]
	}

	room := &domain.Room{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedBy: owner,
	}
	if d := strings.TrimSpace(description); d != "" {
		room.Description = &d
	}

	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("roomRepo.Create: %w", err)
	}
	if err := s.participantRepo.Add(ctx, room.ID, owner); err != nil {
		return nil, fmt.Errorf("participantRepo.Add: %w", err)
	}
	return room, nil
}

// GetRoom возвращает активную комнату по ID.
func (s *RoomService) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	room, err := s.roomRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

// JoinByInviteCode ищет комнату по коду (первые 8 символов id, регистр
// не важен) и идемпотентно добавляет пользователя в участники.
func (s *RoomService) JoinByInviteCode(ctx context.Context, code, username string) (*domain.Room, error) {
	if domain.NormalizeInviteCode(code) == "" {
		return nil, domain.ErrInvalidInviteCode
	}
	room, err := s.roomRepo.FindByInvitePrefix(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return nil, domain.ErrInvalidInviteCode
		}
		return nil, err
	}
	if err := s.participantRepo.Add(ctx, room.ID, username); err != nil {
		return nil, fmt.Errorf("participantRepo.Add: %w", err)
	}
	return room, nil
}

// ListRooms возвращает список комнат с курсорной пагинацией.
func (s *RoomService) ListRooms(ctx context.Context, limit int, cursor string) ([]domain.Room, string, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	rooms, nextCursor, err := s.roomRepo.List(ctx, limit, cursor)
	if err != nil {
		return nil, "", err
	}
	return rooms, nextCursor, nil
}

// DeleteRoom удаляет комнату; сообщения и участники уходят каскадом.
func (s *RoomService) DeleteRoom(ctx context.Context, id string) error {
	return s.roomRepo.Delete(ctx, id)
}
