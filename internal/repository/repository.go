package repository

import (
	"github.com/spread-puzzle/puzzle-board-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}

// TeamRepository defines the interface for team and membership data access
type TeamRepository interface {
	// CreateWithOwner creates a team and its first membership atomically
	CreateWithOwner(team *models.Team, member *models.TeamMember) error

	// FindByID finds a team by ID
	FindByID(id uint64) (*models.Team, error)

	// Update updates a team
	Update(team *models.Team) error

	// Delete deletes a team with its memberships, boards and steps
	Delete(id uint64) error

	// AddMember adds a member to a team
	AddMember(member *models.TeamMember) error

	// FindMember finds a specific team member
	FindMember(teamID, userID uint64) (*models.TeamMember, error)

	// ListByUserID lists all teams a user belongs to
	ListByUserID(userID uint64) ([]models.Team, error)

	// ListMembers lists all members of a team with user records preloaded
	ListMembers(teamID uint64) ([]models.TeamMember, error)
}

// InvitationRepository defines the interface for invitation data access
type InvitationRepository interface {
	// Create creates a new invitation
	Create(invitation *models.Invitation) error

	// FindByID finds an invitation by ID
	FindByID(id uint64) (*models.Invitation, error)

	// UpdateStatus transitions an invitation out of the pending state.
	// It only matches rows still pending so a raced double accept loses.
	UpdateStatus(id uint64, from, to models.InvitationStatus) (bool, error)
}

// BoardRepository defines the interface for board data access
type BoardRepository interface {
	// Create creates a new board
	Create(board *models.Board) error

	// FindByID finds a board by ID
	FindByID(id uint64) (*models.Board, error)

	// Update updates a board
	Update(board *models.Board) error

	// Delete deletes a board and its step record
	Delete(id uint64) error

	// ListByTeamID lists boards owned by a team
	ListByTeamID(teamID uint64) ([]models.Board, error)

	// ListByTeamIDs lists boards owned by any of the teams,
	// optionally only liked ones
	ListByTeamIDs(teamIDs []uint64, likedOnly bool) ([]models.Board, error)
}

// StepRepository defines the interface for step workflow data access
type StepRepository interface {
	// UpsertImageURL sets one image slot on the board's step record,
	// creating the record if none exists, and returns the updated row
	UpsertImageURL(boardID uint64, stepNumber int, imageURL string) (*models.Step, error)

	// FindByBoardID finds the step record for a board
	FindByBoardID(boardID uint64) (*models.Step, error)

	// SaveResult stores the analysis result on the board's step record
	SaveResult(boardID uint64, result string) error
}
