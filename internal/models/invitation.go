package models

import "time"

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Invitation is addressed to an email, not a user: the invitee may not have
// an account yet.
type Invitation struct {
	ID           uint64           `gorm:"primarykey" json:"id"`
	TeamID       uint64           `gorm:"not null;index" json:"team_id"`
	Sender       string           `gorm:"type:varchar(255);not null" json:"sender"`
	InvitedEmail string           `gorm:"type:varchar(255);not null;index" json:"invited_email"`
	Status       InvitationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt    time.Time        `json:"created_at"`

	// Relations
	Team Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
}
