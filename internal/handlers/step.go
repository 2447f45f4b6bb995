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
	"github.com/spread-puzzle/puzzle-board-api/internal/services"
	"github.com/spread-puzzle/puzzle-board-api/internal/storage"
)

// StepHandler coordinates step-workflow HTTP handlers.
type StepHandler struct {
	stepService *services.StepService
	roomService *services.RoomService
	store       storage.ObjectStorage
}

// NewStepHandler creates a new StepHandler.
func NewStepHandler(stepService *services.StepService, roomService *services.RoomService, store storage.ObjectStorage) *StepHandler {
	return &StepHandler{
		stepService: stepService,
		roomService: roomService,
		store:       store,
	}
}

// RecordStepImage stores the uploaded image for one step slot of the board.
// Submitting the final step with every slot filled triggers the analysis
// call and persists its result.
func (h *StepHandler) RecordStepImage(c *gin.Context) {
	board, exists := middleware.GetBoard(c)
	if !exists {
		apierrors.NotFound(c, "Board not found")
		return
	}

	if !h.checkRoomToken(c, board.ID) {
		return
	}

	stepNumber, err := strconv.Atoi(c.Param("stepNumber"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid step number")
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		apierrors.BadRequest(c, "No file provided")
		return
	}

	data, contentType, err := readImageFile(header)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	url, err := h.store.Upload(c.Request.Context(), data, contentType, header.Filename)
	if err != nil {
		apierrors.BadGateway(c, "storage", err.Error())
		return
	}

	step, err := h.stepService.RecordStepImage(c.Request.Context(), board.ID, stepNumber, url)
	if err != nil {
		respondStepError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToStepDTO(*step))
}

// GetResult returns the stored analysis result for the board.
func (h *StepHandler) GetResult(c *gin.Context) {
	board, exists := middleware.GetBoard(c)
	if !exists {
		apierrors.NotFound(c, "Board not found")
		return
	}

	if !h.checkRoomToken(c, board.ID) {
		return
	}

	result, available, err := h.stepService.FetchResult(board.ID)
	if err != nil {
		respondStepError(c, err)
		return
	}

	if !available {
		c.JSON(http.StatusOK, gin.H{"available": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"available": true, "result": result})
}

// checkRoomToken validates the collaboration-room token header against the
// board's room, writing the error response itself on failure.
func (h *StepHandler) checkRoomToken(c *gin.Context, boardID uint64) bool {
	token := c.GetHeader(constants.RoomTokenHeader)
	if token == "" {
		apierrors.Unauthorized(c, "Room token required")
		return false
	}

	err := h.roomService.ValidateRoomToken(token, boardRoomID(boardID), constants.RoomWritePermission)
	if err != nil {
		apierrors.Forbidden(c, err.Error())
		return false
	}
	return true
}

func respondStepError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidStepNumber):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrStepsIncomplete):
		// the slot write committed before the missing slots were detected
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrStepNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAnalysisFailed):
		apierrors.BadGateway(c, "analysis", err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
