package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spread-puzzle/puzzle-board-api/internal/models"
	"github.com/spread-puzzle/puzzle-board-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTeamNotFound    = errors.New("team not found")
	ErrInvalidTeamName = errors.New("team name cannot be empty")
	ErrNotTeamMember   = errors.New("user is not a member of this team")
)

// TeamService provides business logic for team operations.
type TeamService struct {
	teamRepo repository.TeamRepository
}

// NewTeamService creates a new TeamService.
func NewTeamService(teamRepo repository.TeamRepository) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
	}
}

// CreateTeam creates a team with the creator as its first member.
func (s *TeamService) CreateTeam(name string, creatorID uint64) (*models.Team, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidTeamName
	}

	team := &models.Team{
		Name: name,
	}

	member := &models.TeamMember{
		UserID:   creatorID,
		JoinedAt: time.Now(),
	}

	if err := s.teamRepo.CreateWithOwner(team, member); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return team, nil
}

// ListTeamsForUser returns the teams the user belongs to.
func (s *TeamService) ListTeamsForUser(userID uint64) ([]models.Team, error) {
	teams, err := s.teamRepo.ListByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// ListMembers returns the team's members with their user records.
func (s *TeamService) ListMembers(teamID uint64) ([]models.TeamMember, error) {
	if _, err := s.teamRepo.FindByID(teamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}

	members, err := s.teamRepo.ListMembers(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	return members, nil
}

// RenameTeam updates a team's name.
func (s *TeamService) RenameTeam(teamID uint64, name string) (*models.Team, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidTeamName
	}

	team, err := s.teamRepo.FindByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}

	team.Name = name
	if err := s.teamRepo.Update(team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	return team, nil
}

// DeleteTeam removes a team with its memberships, boards and step records.
func (s *TeamService) DeleteTeam(teamID uint64) error {
	if _, err := s.teamRepo.FindByID(teamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to find team: %w", err)
	}

	if err := s.teamRepo.Delete(teamID); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}

	return nil
}

// AddMember adds the user to the team. Adding an existing member is a no-op,
// keeping membership idempotent for invitation retries.
func (s *TeamService) AddMember(teamID, userID uint64) error {
	if _, err := s.teamRepo.FindByID(teamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to find team: %w", err)
	}

	if _, err := s.teamRepo.FindMember(teamID, userID); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.TeamMember{
		TeamID:   teamID,
		UserID:   userID,
		JoinedAt: time.Now(),
	}

	if err := s.teamRepo.AddMember(member); err != nil {
		return fmt.Errorf("failed to add member to team: %w", err)
	}

	return nil
}

// IsMember reports whether the user belongs to the team.
func (s *TeamService) IsMember(teamID, userID uint64) (bool, error) {
	if _, err := s.teamRepo.FindMember(teamID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to verify membership: %w", err)
	}
	return true, nil
}
