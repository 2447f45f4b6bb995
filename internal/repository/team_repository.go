package repository

import (
	"github.com/spread-puzzle/puzzle-board-api/internal/models"
	"gorm.io/gorm"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// CreateWithOwner creates the team and its first membership atomically
func (r *GormTeamRepository) CreateWithOwner(team *models.Team, member *models.TeamMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			return err
		}

		member.TeamID = team.ID
		return tx.Create(member).Error
	})
}

// FindByID finds a team by ID
func (r *GormTeamRepository) FindByID(id uint64) (*models.Team, error) {
	var team models.Team
	if err := r.db.First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// Update updates a team
func (r *GormTeamRepository) Update(team *models.Team) error {
	return r.db.Save(team).Error
}

// Delete deletes a team and all related data in a transaction
func (r *GormTeamRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var boardIDs []uint64
		if err := tx.Model(&models.Board{}).
			Where("team_id = ?", id).
			Pluck("id", &boardIDs).Error; err != nil {
			return err
		}

		if len(boardIDs) > 0 {
			if err := tx.Where("board_id IN ?", boardIDs).Delete(&models.Step{}).Error; err != nil {
				return err
			}
			if err := tx.Where("team_id = ?", id).Delete(&models.Board{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("team_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Team{}, id).Error
	})
}

// AddMember adds a member to a team
func (r *GormTeamRepository) AddMember(member *models.TeamMember) error {
	return r.db.Create(member).Error
}

// FindMember finds a specific team member
func (r *GormTeamRepository) FindMember(teamID, userID uint64) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := r.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListByUserID lists all teams a user belongs to
func (r *GormTeamRepository) ListByUserID(userID uint64) ([]models.Team, error) {
	var memberships []models.TeamMember
	if err := r.db.Preload("Team").
		Where("user_id = ?", userID).
		Find(&memberships).Error; err != nil {
		return nil, err
	}

	teams := make([]models.Team, 0, len(memberships))
	for _, m := range memberships {
		if m.Team.ID != 0 {
			teams = append(teams, m.Team)
		}
	}
	return teams, nil
}

// ListMembers lists all members of a team
func (r *GormTeamRepository) ListMembers(teamID uint64) ([]models.TeamMember, error) {
	var members []models.TeamMember
	if err := r.db.Preload("User").
		Where("team_id = ?", teamID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
