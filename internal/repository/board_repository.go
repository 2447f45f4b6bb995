package repository

import (
	"github.com/spread-puzzle/puzzle-board-api/internal/models"
	"gorm.io/gorm"
)

// GormBoardRepository is a GORM implementation of BoardRepository
type GormBoardRepository struct {
	db *gorm.DB
}

// NewBoardRepository creates a new BoardRepository
func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &GormBoardRepository{db: db}
}

// Create creates a new board
func (r *GormBoardRepository) Create(board *models.Board) error {
	return r.db.Create(board).Error
}

// FindByID finds a board by ID
func (r *GormBoardRepository) FindByID(id uint64) (*models.Board, error) {
	var board models.Board
	if err := r.db.First(&board, id).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

// Update updates a board
func (r *GormBoardRepository) Update(board *models.Board) error {
	return r.db.Save(board).Error
}

// Delete deletes a board and its step record in a transaction
func (r *GormBoardRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("board_id = ?", id).Delete(&models.Step{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Board{}, id).Error
	})
}

// ListByTeamID lists boards owned by a team
func (r *GormBoardRepository) ListByTeamID(teamID uint64) ([]models.Board, error) {
	var boards []models.Board
	if err := r.db.Where("team_id = ?", teamID).
		Order("created_at DESC").
		Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}

// ListByTeamIDs lists boards owned by any of the teams
func (r *GormBoardRepository) ListByTeamIDs(teamIDs []uint64, likedOnly bool) ([]models.Board, error) {
	if len(teamIDs) == 0 {
		return []models.Board{}, nil
	}

	query := r.db.Where("team_id IN ?", teamIDs)
	if likedOnly {
		query = query.Where("liked = ?", true)
	}

	var boards []models.Board
	if err := query.Order("created_at DESC").Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}
