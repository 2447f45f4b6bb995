package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spread-puzzle/puzzle-board-api/internal/constants"
	apierrors "github.com/spread-puzzle/puzzle-board-api/internal/errors"
	"github.com/spread-puzzle/puzzle-board-api/internal/middleware"
	"github.com/spread-puzzle/puzzle-board-api/internal/services"
)

// RoomHandler coordinates collaboration-room HTTP handlers.
type RoomHandler struct {
	roomService *services.RoomService
	authService *services.AuthService
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(roomService *services.RoomService, authService *services.AuthService) *RoomHandler {
	return &RoomHandler{
		roomService: roomService,
		authService: authService,
	}
}

// Authorize requests a room token granting write access to the board's room
// for the current user from the external issuer.
func (h *RoomHandler) Authorize(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	board, exists := middleware.GetBoard(c)
	if !exists {
		apierrors.NotFound(c, "Board not found")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondRoomError(c, err)
		return
	}

	userInfo := services.RoomUserInfo{
		Name: user.FirstName + " " + user.LastName,
	}
	if user.AvatarURL != nil {
		userInfo.AvatarURL = *user.AvatarURL
	}

	token, err := h.roomService.Authorize(
		c.Request.Context(),
		strconv.FormatUint(userID, 10),
		userInfo,
		boardRoomID(board.ID),
		[]string{constants.RoomWritePermission},
	)
	if err != nil {
		respondRoomError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// boardRoomID names the collaboration room backing a board.
func boardRoomID(boardID uint64) string {
	return fmt.Sprintf("board-%d", boardID)
}

func respondRoomError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRoomAuthFailed):
		apierrors.BadGateway(c, "room issuer", err.Error())
	case errors.Is(err, services.ErrInvalidRoomToken):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
