package models

import (
	"time"

	"gorm.io/gorm"
)

type Board struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text;not null" json:"description"`
	ImageURL    *string        `gorm:"type:varchar(512)" json:"image_url"`
	CurrentStep int            `gorm:"not null;default:1" json:"current_step"`
	Liked       bool           `gorm:"not null;default:false" json:"liked"`
	TeamID      uint64         `gorm:"not null;index" json:"team_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Team Team  `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Step *Step `gorm:"foreignKey:BoardID" json:"step,omitempty"`
}
