package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spread-puzzle/puzzle-board-api/internal/constants"
	"github.com/spread-puzzle/puzzle-board-api/internal/dto"
	apierrors "github.com/spread-puzzle/puzzle-board-api/internal/errors"
	"github.com/spread-puzzle/puzzle-board-api/internal/middleware"
	"github.com/spread-puzzle/puzzle-board-api/internal/models"
	"github.com/spread-puzzle/puzzle-board-api/internal/services"
	"github.com/spread-puzzle/puzzle-board-api/internal/storage"
)

// BoardHandler coordinates board-related HTTP handlers.
type BoardHandler struct {
	boardService *services.BoardService
	store        storage.ObjectStorage
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(boardService *services.BoardService, store storage.ObjectStorage) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
		store:        store,
	}
}

// CreateBoard creates a board in the team from the multipart form. An image
// file is optional; when present it is stored first and its URL recorded.
func (h *BoardHandler) CreateBoard(c *gin.Context) {
	teamInterface, _ := c.Get(constants.ContextKeyTeam)
	team := teamInterface.(models.Team)

	name := c.PostForm("name")
	description := c.PostForm("description")

	var imageURL *string
	if header, err := c.FormFile("image"); err == nil {
		url, ok := h.uploadBoardImage(c, header)
		if !ok {
			return
		}
		imageURL = &url
	}

	board, err := h.boardService.CreateBoard(services.CreateBoardInput{
		Name:        name,
		Description: description,
		ImageURL:    imageURL,
		TeamID:      team.ID,
	})
	if err != nil {
		respondBoardError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBoardDTO(*board))
}

// ListTeamBoards returns every board of the team in context.
func (h *BoardHandler) ListTeamBoards(c *gin.Context) {
	teamInterface, _ := c.Get(constants.ContextKeyTeam)
	team := teamInterface.(models.Team)

	boards, err := h.boardService.ListBoardsByTeam(team.ID)
	if err != nil {
		respondBoardError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"boards": dto.ToBoardDTOs(boards)})
}

// ListMyBoards returns all boards across the current user's teams.
func (h *BoardHandler) ListMyBoards(c *gin.Context) {
	h.listBoardsForUser(c, false)
}

// ListLikedBoards returns the liked boards across the current user's teams.
func (h *BoardHandler) ListLikedBoards(c *gin.Context) {
	h.listBoardsForUser(c, true)
}

func (h *BoardHandler) listBoardsForUser(c *gin.Context, likedOnly bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	boards, err := h.boardService.ListBoardsForUser(userID, likedOnly)
	if err != nil {
		respondBoardError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"boards": dto.ToBoardDTOs(boards)})
}

// GetBoard returns the board in context.
func (h *BoardHandler) GetBoard(c *gin.Context) {
	board, exists := middleware.GetBoard(c)
	if !exists {
		apierrors.NotFound(c, "Board not found")
		return
	}

	c.JSON(http.StatusOK, dto.ToBoardDTO(board))
}

// UpdateBoard edits the board's name, description and image from the
// multipart form. Absent fields are left unchanged.
func (h *BoardHandler) UpdateBoard(c *gin.Context) {
	board, exists := middleware.GetBoard(c)
	if !exists {
		apierrors.NotFound(c, "Board not found")
		return
	}

	var input services.UpdateBoardInput
	if name, ok := c.GetPostForm("name"); ok {
		input.Name = &name
	}
	if description, ok := c.GetPostForm("description"); ok {
		input.Description = &description
	}
	if header, err := c.FormFile("image"); err == nil {
		url, ok := h.uploadBoardImage(c, header)
		if !ok {
			return
		}
		input.ImageURL = &url
	}

	updated, err := h.boardService.UpdateBoard(board.ID, input)
	if err != nil {
		respondBoardError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBoardDTO(*updated))
}

// DeleteBoard removes the board and its step record.
func (h *BoardHandler) DeleteBoard(c *gin.Context) {
	board, exists := middleware.GetBoard(c)
	if !exists {
		apierrors.NotFound(c, "Board not found")
		return
	}

	if err := h.boardService.DeleteBoard(board.ID); err != nil {
		respondBoardError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Board deleted successfully"})
}

// ToggleLike flips the board's like flag.
func (h *BoardHandler) ToggleLike(c *gin.Context) {
	board, exists := middleware.GetBoard(c)
	if !exists {
		apierrors.NotFound(c, "Board not found")
		return
	}

	updated, err := h.boardService.ToggleLike(board.ID)
	if err != nil {
		respondBoardError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBoardDTO(*updated))
}

// GetCurrentStep returns the board's step counter.
func (h *BoardHandler) GetCurrentStep(c *gin.Context) {
	board, exists := middleware.GetBoard(c)
	if !exists {
		apierrors.NotFound(c, "Board not found")
		return
	}

	currentStep, err := h.boardService.GetCurrentStep(board.ID)
	if err != nil {
		respondBoardError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"current_step": currentStep})
}

// UpdateCurrentStep sets the board's step counter.
func (h *BoardHandler) UpdateCurrentStep(c *gin.Context) {
	board, exists := middleware.GetBoard(c)
	if !exists {
		apierrors.NotFound(c, "Board not found")
		return
	}

	type UpdateCurrentStepRequest struct {
		CurrentStep *int `json:"current_step" binding:"required"`
	}

	var req UpdateCurrentStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.boardService.UpdateCurrentStep(board.ID, *req.CurrentStep)
	if err != nil {
		respondBoardError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBoardDTO(*updated))
}

// uploadBoardImage validates and stores a board image, writing the error
// response itself on failure.
func (h *BoardHandler) uploadBoardImage(c *gin.Context, header *multipart.FileHeader) (string, bool) {
	data, contentType, err := readImageFile(header)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return "", false
	}

	url, err := h.store.Upload(c.Request.Context(), data, contentType, header.Filename)
	if err != nil {
		apierrors.BadGateway(c, "storage", err.Error())
		return "", false
	}
	return url, true
}

func respondBoardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidBoardName),
		errors.Is(err, services.ErrInvalidCurrentStep):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrBoardNotFound),
		errors.Is(err, services.ErrTeamNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
