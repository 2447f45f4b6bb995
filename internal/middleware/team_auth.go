package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spread-puzzle/puzzle-board-api/internal/constants"
	"github.com/spread-puzzle/puzzle-board-api/internal/database"
	apierrors "github.com/spread-puzzle/puzzle-board-api/internal/errors"
	"github.com/spread-puzzle/puzzle-board-api/internal/models"
)

// RequireTeamAccess checks that the current user is a member of the team
// named by the URL parameter and stores the team in context.
func RequireTeamAccess(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		teamIDStr := c.Param(param)
		teamID, err := strconv.ParseUint(teamIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid team ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var team models.Team
		if err := database.GetDB().First(&team, teamID).Error; err != nil {
			apierrors.NotFound(c, "Team not found")
			c.Abort()
			return
		}

		// 404 instead of 403 to avoid leaking team existence
		var member models.TeamMember
		err = database.GetDB().
			Where("team_id = ? AND user_id = ?", teamID, userID).
			First(&member).Error
		if err != nil {
			apierrors.NotFound(c, "Team not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTeam, team)
		c.Next()
	}
}
