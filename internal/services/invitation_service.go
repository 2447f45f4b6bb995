package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spread-puzzle/puzzle-board-api/internal/models"
	"github.com/spread-puzzle/puzzle-board-api/internal/repository"
	"github.com/spread-puzzle/puzzle-board-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrInvitationNotPending = errors.New("invitation is no longer pending")
	ErrNoInvitedEmails      = errors.New("at least one email address is required")
)

// InviteResult reports the outcome for a single invited address. Mail
// delivery failures do not fail the batch.
type InviteResult struct {
	Email        string `json:"email"`
	InvitationID uint64 `json:"invitation_id,omitempty"`
	Sent         bool   `json:"sent"`
	Error        string `json:"error,omitempty"`
}

// InvitationService owns the invitation lifecycle and its email dispatch.
type InvitationService struct {
	invitationRepo repository.InvitationRepository
	teamService    *TeamService
	authService    *AuthService
	mailer         Mailer
	frontendURL    string
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(
	invitationRepo repository.InvitationRepository,
	teamService *TeamService,
	authService *AuthService,
	mailer Mailer,
	frontendURL string,
) *InvitationService {
	return &InvitationService{
		invitationRepo: invitationRepo,
		teamService:    teamService,
		authService:    authService,
		mailer:         mailer,
		frontendURL:    frontendURL,
	}
}

// InviteMany creates a pending invitation and sends one email per address,
// collecting per-address outcomes.
func (s *InvitationService) InviteMany(teamID uint64, sender string, emails []string) ([]InviteResult, error) {
	if len(emails) == 0 {
		return nil, ErrNoInvitedEmails
	}

	team, err := s.teamService.teamRepo.FindByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}

	results := make([]InviteResult, 0, len(emails))
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))

		if !utils.IsValidEmail(email) {
			results = append(results, InviteResult{Email: email, Error: "invalid email address"})
			continue
		}

		invitation := &models.Invitation{
			TeamID:       teamID,
			Sender:       sender,
			InvitedEmail: email,
			Status:       models.InvitationPending,
		}
		if err := s.invitationRepo.Create(invitation); err != nil {
			results = append(results, InviteResult{Email: email, Error: "failed to create invitation"})
			continue
		}

		inviteLink := fmt.Sprintf("%s/invitations/accept/%d", s.frontendURL, invitation.ID)
		subject, body, err := BuildInvitationEmail(sender, team.Name, inviteLink)
		if err == nil {
			err = s.mailer.Send(email, subject, body)
		}

		result := InviteResult{Email: email, InvitationID: invitation.ID, Sent: err == nil}
		if err != nil {
			logrus.WithError(err).WithField("email", email).Warn("invitation mail failed")
			result.Error = err.Error()
		}
		results = append(results, result)
	}

	return results, nil
}

// GetInvitation fetches an invitation by ID.
func (s *InvitationService) GetInvitation(id uint64) (*models.Invitation, error) {
	invitation, err := s.invitationRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}
	return invitation, nil
}

// Accept marks a pending invitation accepted and adds the given user to the
// team. Accepting twice fails; the membership add is idempotent.
func (s *InvitationService) Accept(invitationID, userID uint64) (*models.Invitation, error) {
	invitation, err := s.GetInvitation(invitationID)
	if err != nil {
		return nil, err
	}

	if invitation.Status != models.InvitationPending {
		return nil, ErrInvitationNotPending
	}

	if err := s.teamService.AddMember(invitation.TeamID, userID); err != nil {
		return nil, err
	}

	updated, err := s.invitationRepo.UpdateStatus(invitationID, models.InvitationPending, models.InvitationAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to update invitation: %w", err)
	}
	if !updated {
		return nil, ErrInvitationNotPending
	}

	invitation.Status = models.InvitationAccepted
	return invitation, nil
}

// AcceptByLink is the unauthenticated email-link flow: the user is resolved
// by the invited address, created if absent, then added to the team.
func (s *InvitationService) AcceptByLink(invitationID uint64) (*models.Invitation, *models.User, error) {
	invitation, err := s.GetInvitation(invitationID)
	if err != nil {
		return nil, nil, err
	}

	if invitation.Status != models.InvitationPending {
		return nil, nil, ErrInvitationNotPending
	}

	user, err := s.authService.GetOrCreateUserByEmail(invitation.InvitedEmail, "", "", nil)
	if err != nil {
		return nil, nil, err
	}

	accepted, err := s.Accept(invitationID, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return accepted, user, nil
}

// Decline marks a pending invitation declined.
func (s *InvitationService) Decline(invitationID uint64) (*models.Invitation, error) {
	invitation, err := s.GetInvitation(invitationID)
	if err != nil {
		return nil, err
	}

	if invitation.Status != models.InvitationPending {
		return nil, ErrInvitationNotPending
	}

	updated, err := s.invitationRepo.UpdateStatus(invitationID, models.InvitationPending, models.InvitationDeclined)
	if err != nil {
		return nil, fmt.Errorf("failed to update invitation: %w", err)
	}
	if !updated {
		return nil, ErrInvitationNotPending
	}

	invitation.Status = models.InvitationDeclined
	return invitation, nil
}
