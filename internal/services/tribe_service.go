package services

import (
	"context"

	"github.com/cryptotribes/server/internal/models"
	"github.com/cryptotribes/server/pkg/errors"
	"github.com/cryptotribes/server/pkg/logger"
)

// TribeStore is the persistence contract for tribes and memberships,
// implemented by repositories.TribeRepository.
type TribeStore interface {
	CreateTribe(tribe *models.Tribe, creatorID uint) error
	GetTribeByID(id uint) (*models.Tribe, error)
	ListTribeIDs() ([]uint, error)

	// GetPlayerTribe returns (nil, nil) when the player is not in a tribe.
	GetPlayerTribe(playerID uint) (*models.Tribe, error)

	AddMember(tribeID, playerID uint, role string) error
	RemoveMember(tribeID, playerID uint) error
	GetTribeMembers(tribeID uint) ([]models.TribeMember, error)

	SumMemberVillagePoints(tribeID uint) (int64, error)
	UpdateTribePoints(tribeID uint, points int64) error
	GetTribeLeaderboard(limit int) ([]models.Tribe, error)
	GetTribeRank(tribeID uint) (int64, error)
}

// PlayerStore is the persistence contract for player accounts.
type PlayerStore interface {
	GetPlayerByID(id uint) (*models.Player, error)
}

type TribeService struct {
	tribes  TribeStore
	players PlayerStore
}

func NewTribeService(tribes TribeStore, players PlayerStore) *TribeService {
	return &TribeService{
		tribes:  tribes,
		players: players,
	}
}

func (s *TribeService) CreateTribe(name, description string, creatorID uint) (*models.Tribe, error) {
	if name == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tribe name is required")
	}
	if _, err := s.players.GetPlayerByID(creatorID); err != nil {
		return nil, err
	}

	// One tribe per player
	existing, err := s.tribes.GetPlayerTribe(creatorID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New(errors.ErrCodeAlreadyExists, "player is already in a tribe")
	}

	tribe := &models.Tribe{
		Name:        name,
		Description: description,
		CreatorID:   creatorID,
		MemberCount: 1,
	}

	if err := s.tribes.CreateTribe(tribe, creatorID); err != nil {
		return nil, err
	}

	return tribe, nil
}

func (s *TribeService) AddMember(tribeID, playerID uint) error {
	tribe, err := s.tribes.GetTribeByID(tribeID)
	if err != nil {
		return err
	}

	if tribe.MemberCount >= models.MaxTribeMembers {
		return errors.New(errors.ErrCodeValidationFailed, "tribe is at member capacity")
	}

	existing, err := s.tribes.GetPlayerTribe(playerID)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.New(errors.ErrCodeAlreadyExists, "player is already in a tribe")
	}

	return s.tribes.AddMember(tribeID, playerID, models.TribeRoleMember)
}

func (s *TribeService) LeaveTribe(playerID uint) error {
	tribe, err := s.tribes.GetPlayerTribe(playerID)
	if err != nil {
		return err
	}
	if tribe == nil {
		return errors.New(errors.ErrCodeNotFound, "player is not in a tribe")
	}

	members, err := s.tribes.GetTribeMembers(tribe.ID)
	if err != nil {
		return err
	}

	var isLeader bool
	for _, m := range members {
		if m.PlayerID == playerID && m.Role == models.TribeRoleLeader {
			isLeader = true
			break
		}
	}

	if isLeader && len(members) > 1 {
		return errors.New(errors.ErrCodeValidationFailed, "leader must hand off leadership before leaving")
	}

	return s.tribes.RemoveMember(tribe.ID, playerID)
}

// RecomputePoints refreshes a tribe's score from its members' village
// points. Called after construction sweeps move village scores.
func (s *TribeService) RecomputePoints(tribeID uint) error {
	points, err := s.tribes.SumMemberVillagePoints(tribeID)
	if err != nil {
		return err
	}
	return s.tribes.UpdateTribePoints(tribeID, points)
}

// RunRankingSweep recomputes every tribe's score. Driven by the
// scheduler so tribe rankings follow village points without a write on
// every construction completion.
func (s *TribeService) RunRankingSweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	ids, err := s.tribes.ListTribeIDs()
	if err != nil {
		return report, err
	}
	for _, id := range ids {
		if err := s.RecomputePoints(id); err != nil {
			logger.Warn("ranking sweep skipped tribe", "tribe_id", id, "error", err)
			report.Failed++
			continue
		}
		report.Processed++
	}
	return report, nil
}

func (s *TribeService) GetRanking(limit int) ([]models.Tribe, error) {
	return s.tribes.GetTribeLeaderboard(limit)
}

func (s *TribeService) GetPlayerTribeInfo(playerID uint) (*models.Tribe, int64, error) {
	tribe, err := s.tribes.GetPlayerTribe(playerID)
	if err != nil {
		return nil, 0, err
	}
	if tribe == nil {
		return nil, 0, nil
	}

	rank, err := s.tribes.GetTribeRank(tribe.ID)
	return tribe, rank, err
}
