package models

import (
	"fmt"
	"time"

	"github.com/spread-puzzle/puzzle-board-api/internal/constants"
)

// Step holds per-board workflow progress: one image URL slot per step and
// the analysis result produced after the final step. Exactly one row exists
// per board, created by upsert on the first image upload.
type Step struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	BoardID     uint64    `gorm:"not null;uniqueIndex" json:"board_id"`
	Step1ImgURL string    `gorm:"type:varchar(512)" json:"step1_img_url"`
	Step2ImgURL string    `gorm:"type:varchar(512)" json:"step2_img_url"`
	Step3ImgURL string    `gorm:"type:varchar(512)" json:"step3_img_url"`
	Step4ImgURL string    `gorm:"type:varchar(512)" json:"step4_img_url"`
	Step5ImgURL string    `gorm:"type:varchar(512)" json:"step5_img_url"`
	Step6ImgURL string    `gorm:"type:varchar(512)" json:"step6_img_url"`
	Step7ImgURL string    `gorm:"type:varchar(512)" json:"step7_img_url"`
	Step8ImgURL string    `gorm:"type:varchar(512)" json:"step8_img_url"`
	Step9ImgURL string    `gorm:"type:varchar(512)" json:"step9_img_url"`
	Result      string    `gorm:"type:text" json:"result"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Board Board `gorm:"foreignKey:BoardID" json:"board,omitempty"`
}

// ImageURLs returns the slot values in step order, including empty slots.
func (s *Step) ImageURLs() []string {
	return []string{
		s.Step1ImgURL,
		s.Step2ImgURL,
		s.Step3ImgURL,
		s.Step4ImgURL,
		s.Step5ImgURL,
		s.Step6ImgURL,
		s.Step7ImgURL,
		s.Step8ImgURL,
		s.Step9ImgURL,
	}
}

// StepColumn returns the database column backing a step's image slot.
func StepColumn(stepNumber int) string {
	return fmt.Sprintf("step%d_img_url", stepNumber)
}

// SetImageURL writes the slot for the given step number. Returns false when
// the step number is outside the valid range.
func (s *Step) SetImageURL(stepNumber int, url string) bool {
	if stepNumber < constants.MinStepNumber || stepNumber > constants.MaxStepNumber {
		return false
	}
	switch stepNumber {
	case 1:
		s.Step1ImgURL = url
	case 2:
		s.Step2ImgURL = url
	case 3:
		s.Step3ImgURL = url
	case 4:
		s.Step4ImgURL = url
	case 5:
		s.Step5ImgURL = url
	case 6:
		s.Step6ImgURL = url
	case 7:
		s.Step7ImgURL = url
	case 8:
		s.Step8ImgURL = url
	case 9:
		s.Step9ImgURL = url
	}
	return true
}
