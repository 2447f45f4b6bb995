package repository

import (
	"time"

	"github.com/spread-puzzle/puzzle-board-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStepRepository is a GORM implementation of StepRepository
type GormStepRepository struct {
	db *gorm.DB
}

// NewStepRepository creates a new StepRepository
func NewStepRepository(db *gorm.DB) StepRepository {
	return &GormStepRepository{db: db}
}

// UpsertImageURL writes one image slot on the board's step record. When no
// record exists for the board one is inserted; on conflict only the targeted
// slot and updated_at are overwritten, preserving the other slots.
func (r *GormStepRepository) UpsertImageURL(boardID uint64, stepNumber int, imageURL string) (*models.Step, error) {
	step := models.Step{BoardID: boardID}
	step.SetImageURL(stepNumber, imageURL)

	err := r.db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "board_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				models.StepColumn(stepNumber): imageURL,
				"updated_at":                  time.Now(),
			}),
		}).
		Create(&step).Error
	if err != nil {
		return nil, err
	}

	return r.FindByBoardID(boardID)
}

// FindByBoardID finds the step record for a board
func (r *GormStepRepository) FindByBoardID(boardID uint64) (*models.Step, error) {
	var step models.Step
	if err := r.db.Where("board_id = ?", boardID).First(&step).Error; err != nil {
		return nil, err
	}
	return &step, nil
}

// SaveResult stores the analysis result on the board's step record
func (r *GormStepRepository) SaveResult(boardID uint64, result string) error {
	return r.db.Model(&models.Step{}).
		Where("board_id = ?", boardID).
		Updates(map[string]interface{}{
			"result":     result,
			"updated_at": time.Now(),
		}).Error
}
