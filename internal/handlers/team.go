package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spread-puzzle/puzzle-board-api/internal/constants"
	"github.com/spread-puzzle/puzzle-board-api/internal/dto"
	apierrors "github.com/spread-puzzle/puzzle-board-api/internal/errors"
	"github.com/spread-puzzle/puzzle-board-api/internal/middleware"
	"github.com/spread-puzzle/puzzle-board-api/internal/models"
	"github.com/spread-puzzle/puzzle-board-api/internal/services"
)

// TeamHandler coordinates team-related HTTP handlers.
type TeamHandler struct {
	teamService *services.TeamService
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

// CreateTeam creates a new team with the current user as first member.
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTeamRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	team, err := h.teamService.CreateTeam(req.Name, userID)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamDTO(*team))
}

// ListMyTeams returns the teams the current user belongs to.
func (h *TeamHandler) ListMyTeams(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	teams, err := h.teamService.ListTeamsForUser(userID)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"teams": dto.ToTeamDTOs(teams)})
}

// ListMembers returns the team's member users.
func (h *TeamHandler) ListMembers(c *gin.Context) {
	teamInterface, _ := c.Get(constants.ContextKeyTeam)
	team := teamInterface.(models.Team)

	members, err := h.teamService.ListMembers(team.ID)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"team":    dto.ToTeamDTO(team),
		"members": dto.ToTeamMemberDTOs(members),
	})
}

// RenameTeam updates the team's name.
func (h *TeamHandler) RenameTeam(c *gin.Context) {
	teamInterface, _ := c.Get(constants.ContextKeyTeam)
	team := teamInterface.(models.Team)

	type RenameTeamRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req RenameTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.teamService.RenameTeam(team.ID, req.Name)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*updated))
}

// DeleteTeam removes the team with its memberships and boards.
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	teamInterface, _ := c.Get(constants.ContextKeyTeam)
	team := teamInterface.(models.Team)

	if err := h.teamService.DeleteTeam(team.ID); err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Team deleted successfully"})
}

func respondTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidTeamName):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTeamNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotTeamMember):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
