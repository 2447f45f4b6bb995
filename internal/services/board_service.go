package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spread-puzzle/puzzle-board-api/internal/constants"
	"github.com/spread-puzzle/puzzle-board-api/internal/models"
	"github.com/spread-puzzle/puzzle-board-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrBoardNotFound      = errors.New("board not found")
	ErrInvalidBoardName   = errors.New("board name cannot be empty")
	ErrInvalidCurrentStep = errors.New("current step is out of range")
)

// BoardService provides business logic for board operations.
type BoardService struct {
	boardRepo repository.BoardRepository
	teamRepo  repository.TeamRepository
}

// NewBoardService creates a new BoardService.
func NewBoardService(boardRepo repository.BoardRepository, teamRepo repository.TeamRepository) *BoardService {
	return &BoardService{
		boardRepo: boardRepo,
		teamRepo:  teamRepo,
	}
}

// CreateBoardInput represents parameters to create a new board.
type CreateBoardInput struct {
	Name        string
	Description string
	ImageURL    *string
	TeamID      uint64
}

// CreateBoard creates a board at step 1, not liked.
func (s *BoardService) CreateBoard(input CreateBoardInput) (*models.Board, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidBoardName
	}

	if _, err := s.teamRepo.FindByID(input.TeamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}

	board := &models.Board{
		Name:        input.Name,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		CurrentStep: 1,
		Liked:       false,
		TeamID:      input.TeamID,
	}

	if err := s.boardRepo.Create(board); err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	return board, nil
}

// GetBoard fetches a board by ID.
func (s *BoardService) GetBoard(boardID uint64) (*models.Board, error) {
	board, err := s.boardRepo.FindByID(boardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, fmt.Errorf("failed to find board: %w", err)
	}
	return board, nil
}

// ListBoardsByTeam returns the team's boards.
func (s *BoardService) ListBoardsByTeam(teamID uint64) ([]models.Board, error) {
	boards, err := s.boardRepo.ListByTeamID(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	return boards, nil
}

// ListBoardsForUser resolves all teams containing the user, then all boards
// owned by those teams. No pagination: the full set is returned.
func (s *BoardService) ListBoardsForUser(userID uint64, likedOnly bool) ([]models.Board, error) {
	teams, err := s.teamRepo.ListByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	teamIDs := make([]uint64, len(teams))
	for i, t := range teams {
		teamIDs[i] = t.ID
	}

	boards, err := s.boardRepo.ListByTeamIDs(teamIDs, likedOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	return boards, nil
}

// UpdateBoardInput represents an edit to a board's fields. Nil fields are
// left unchanged.
type UpdateBoardInput struct {
	Name        *string
	Description *string
	ImageURL    *string
}

// UpdateBoard edits a board's name, description and image URL.
func (s *BoardService) UpdateBoard(boardID uint64, input UpdateBoardInput) (*models.Board, error) {
	board, err := s.GetBoard(boardID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidBoardName
		}
		board.Name = *input.Name
	}
	if input.Description != nil {
		board.Description = *input.Description
	}
	if input.ImageURL != nil {
		board.ImageURL = input.ImageURL
	}

	if err := s.boardRepo.Update(board); err != nil {
		return nil, fmt.Errorf("failed to update board: %w", err)
	}

	return board, nil
}

// DeleteBoard removes a board and its step record.
func (s *BoardService) DeleteBoard(boardID uint64) error {
	if _, err := s.GetBoard(boardID); err != nil {
		return err
	}

	if err := s.boardRepo.Delete(boardID); err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}
	return nil
}

// ToggleLike flips the board's like flag. Read-modify-write: concurrent
// toggles are last-write-wins.
func (s *BoardService) ToggleLike(boardID uint64) (*models.Board, error) {
	board, err := s.GetBoard(boardID)
	if err != nil {
		return nil, err
	}

	board.Liked = !board.Liked
	if err := s.boardRepo.Update(board); err != nil {
		return nil, fmt.Errorf("failed to update board: %w", err)
	}

	return board, nil
}

// GetCurrentStep returns the board's step counter.
func (s *BoardService) GetCurrentStep(boardID uint64) (int, error) {
	board, err := s.GetBoard(boardID)
	if err != nil {
		return 0, err
	}
	return board.CurrentStep, nil
}

// UpdateCurrentStep sets the board's step counter.
func (s *BoardService) UpdateCurrentStep(boardID uint64, currentStep int) (*models.Board, error) {
	if currentStep < constants.MinStepNumber || currentStep > constants.MaxStepNumber {
		return nil, ErrInvalidCurrentStep
	}

	board, err := s.GetBoard(boardID)
	if err != nil {
		return nil, err
	}

	board.CurrentStep = currentStep
	if err := s.boardRepo.Update(board); err != nil {
		return nil, fmt.Errorf("failed to update board: %w", err)
	}

	return board, nil
}
