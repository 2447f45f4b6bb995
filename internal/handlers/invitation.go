package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spread-puzzle/puzzle-board-api/internal/constants"
	"github.com/spread-puzzle/puzzle-board-api/internal/dto"
	apierrors "github.com/spread-puzzle/puzzle-board-api/internal/errors"
	"github.com/spread-puzzle/puzzle-board-api/internal/middleware"
	"github.com/spread-puzzle/puzzle-board-api/internal/models"
	"github.com/spread-puzzle/puzzle-board-api/internal/services"
)

// InvitationHandler coordinates invitation-related HTTP handlers.
type InvitationHandler struct {
	invitationService *services.InvitationService
	authService       *services.AuthService
}

// NewInvitationHandler creates a new InvitationHandler.
func NewInvitationHandler(invitationService *services.InvitationService, authService *services.AuthService) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitationService,
		authService:       authService,
	}
}

// Invite sends invitations to a batch of email addresses for the team in
// context. The response reports per-address outcomes.
func (h *InvitationHandler) Invite(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	teamInterface, _ := c.Get(constants.ContextKeyTeam)
	team := teamInterface.(models.Team)

	type InviteRequest struct {
		Emails []string `json:"emails" binding:"required"`
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	sender, err := h.authService.GetUser(userID)
	if err != nil {
		respondInvitationError(c, err)
		return
	}
	senderName := sender.FirstName + " " + sender.LastName

	results, err := h.invitationService.InviteMany(team.ID, senderName, req.Emails)
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"results": results})
}

// GetInvitation returns an invitation by ID (email-link landing page).
func (h *InvitationHandler) GetInvitation(c *gin.Context) {
	invitationID, ok := parseInvitationID(c)
	if !ok {
		return
	}

	invitation, err := h.invitationService.GetInvitation(invitationID)
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitationDTO(*invitation))
}

// Accept accepts an invitation as the authenticated user.
func (h *InvitationHandler) Accept(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	invitationID, ok := parseInvitationID(c)
	if !ok {
		return
	}

	invitation, err := h.invitationService.Accept(invitationID, userID)
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitationDTO(*invitation))
}

// AcceptByLink accepts an invitation through the unauthenticated email-link
// flow, creating the invited user if they have no account yet.
func (h *InvitationHandler) AcceptByLink(c *gin.Context) {
	invitationID, ok := parseInvitationID(c)
	if !ok {
		return
	}

	invitation, user, err := h.invitationService.AcceptByLink(invitationID)
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invitation": dto.ToInvitationDTO(*invitation),
		"user":       dto.ToUserDTO(*user),
	})
}

// Decline declines a pending invitation.
func (h *InvitationHandler) Decline(c *gin.Context) {
	invitationID, ok := parseInvitationID(c)
	if !ok {
		return
	}

	invitation, err := h.invitationService.Decline(invitationID)
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitationDTO(*invitation))
}

func parseInvitationID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid invitation ID")
		return 0, false
	}
	return id, true
}

func respondInvitationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNoInvitedEmails):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvitationNotFound),
		errors.Is(err, services.ErrTeamNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvitationNotPending):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
