package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spread-puzzle/puzzle-board-api/internal/constants"
	"github.com/spread-puzzle/puzzle-board-api/internal/database"
	apierrors "github.com/spread-puzzle/puzzle-board-api/internal/errors"
	"github.com/spread-puzzle/puzzle-board-api/internal/models"
)

// RequireBoardAccess checks that the current user is a member of the board's
// owning team and stores the board in context. The board ID is taken from
// the named URL parameter.
func RequireBoardAccess(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		boardIDStr := c.Param(param)
		boardID, err := strconv.ParseUint(boardIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid board ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var board models.Board
		if err := database.GetDB().First(&board, boardID).Error; err != nil {
			apierrors.NotFound(c, "Board not found")
			c.Abort()
			return
		}

		// 404 instead of 403 to avoid leaking board existence
		var member models.TeamMember
		err = database.GetDB().
			Where("team_id = ? AND user_id = ?", board.TeamID, userID).
			First(&member).Error
		if err != nil {
			apierrors.NotFound(c, "Board not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyBoard, board)
		c.Next()
	}
}

// GetBoard retrieves the board loaded by RequireBoardAccess.
func GetBoard(c *gin.Context) (models.Board, bool) {
	boardInterface, exists := c.Get(constants.ContextKeyBoard)
	if !exists {
		return models.Board{}, false
	}

	board, ok := boardInterface.(models.Board)
	return board, ok
}
