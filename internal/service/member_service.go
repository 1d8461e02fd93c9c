package service

import (
	"context"

	"github.com/cwrk-planet/videochat-service/internal/domain"
	"github.com/cwrk-planet/videochat-service/internal/postgres"
)

type MemberService struct {
	participantRepo *postgres.ParticipantRepository
}

func NewMemberService(participantRepo *postgres.ParticipantRepository) *MemberService {
	return &MemberService{participantRepo: participantRepo}
}

// LeaveRoom идемпотентно убирает участника из комнаты.
func (s *MemberService) LeaveRoom(ctx context.Context, roomID, username string) error {
	return s.participantRepo.Remove(ctx, roomID, username)
}

func (s *MemberService) ListParticipants(ctx context.Context, roomID string) ([]domain.Participant, error) {
	return s.participantRepo.ListByRoom(ctx, roomID)
}

// SetOnline фиксирует живое подключение/отключение сокета участника.
func (s *MemberService) SetOnline(ctx context.Context, roomID, username string, online bool) error {
	return s.participantRepo.SetOnline(ctx, roomID, username, online)
}

func (s *MemberService) TouchHeartbeat(ctx context.Context, roomID, username string) error {
	return s.participantRepo.TouchHeartbeat(ctx, roomID, username)
}
