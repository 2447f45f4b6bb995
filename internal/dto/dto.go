package dto

import (
	"time"

	"github.com/spread-puzzle/puzzle-board-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64  `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// TeamDTO represents a team in API responses
type TeamDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeamMemberDTO represents a member in a team
type TeamMemberDTO struct {
	User     UserDTO   `json:"user"`
	JoinedAt time.Time `json:"joined_at"`
}

// InvitationDTO represents an invitation in API responses
type InvitationDTO struct {
	ID           uint64                  `json:"id"`
	TeamID       uint64                  `json:"team_id"`
	Sender       string                  `json:"sender"`
	InvitedEmail string                  `json:"invited_email"`
	Status       models.InvitationStatus `json:"status"`
	CreatedAt    time.Time               `json:"created_at"`
}

// BoardDTO represents a board in API responses
type BoardDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"image_url"`
	CurrentStep int       `json:"current_step"`
	Liked       bool      `json:"liked"`
	TeamID      uint64    `json:"team_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StepDTO represents per-board step progress in API responses
type StepDTO struct {
	BoardID   uint64    `json:"board_id"`
	ImageURLs []string  `json:"image_urls"`
	HasResult bool      `json:"has_result"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		AvatarURL: user.AvatarURL,
	}
}

// ToTeamDTO converts a Team model to TeamDTO
func ToTeamDTO(team models.Team) TeamDTO {
	return TeamDTO{
		ID:        team.ID,
		Name:      team.Name,
		CreatedAt: team.CreatedAt,
		UpdatedAt: team.UpdatedAt,
	}
}

// ToTeamDTOs converts a slice of teams
func ToTeamDTOs(teams []models.Team) []TeamDTO {
	dtos := make([]TeamDTO, len(teams))
	for i, team := range teams {
		dtos[i] = ToTeamDTO(team)
	}
	return dtos
}

// ToTeamMemberDTO converts a member to DTO
func ToTeamMemberDTO(member models.TeamMember) TeamMemberDTO {
	return TeamMemberDTO{
		User:     ToUserDTO(member.User),
		JoinedAt: member.JoinedAt,
	}
}

// ToTeamMemberDTOs converts a slice of members
func ToTeamMemberDTOs(members []models.TeamMember) []TeamMemberDTO {
	dtos := make([]TeamMemberDTO, len(members))
	for i, member := range members {
		dtos[i] = ToTeamMemberDTO(member)
	}
	return dtos
}

// ToInvitationDTO converts an Invitation model to InvitationDTO
func ToInvitationDTO(invitation models.Invitation) InvitationDTO {
	return InvitationDTO{
		ID:           invitation.ID,
		TeamID:       invitation.TeamID,
		Sender:       invitation.Sender,
		InvitedEmail: invitation.InvitedEmail,
		Status:       invitation.Status,
		CreatedAt:    invitation.CreatedAt,
	}
}

// ToBoardDTO converts a Board model to BoardDTO
func ToBoardDTO(board models.Board) BoardDTO {
	return BoardDTO{
		ID:          board.ID,
		Name:        board.Name,
		Description: board.Description,
		ImageURL:    board.ImageURL,
		CurrentStep: board.CurrentStep,
		Liked:       board.Liked,
		TeamID:      board.TeamID,
		CreatedAt:   board.CreatedAt,
		UpdatedAt:   board.UpdatedAt,
	}
}

// ToBoardDTOs converts a slice of boards
func ToBoardDTOs(boards []models.Board) []BoardDTO {
	dtos := make([]BoardDTO, len(boards))
	for i, board := range boards {
		dtos[i] = ToBoardDTO(board)
	}
	return dtos
}

// ToStepDTO converts a Step model to StepDTO
func ToStepDTO(step models.Step) StepDTO {
	return StepDTO{
		BoardID:   step.BoardID,
		ImageURLs: step.ImageURLs(),
		HasResult: step.Result != "",
		UpdatedAt: step.UpdatedAt,
	}
}
