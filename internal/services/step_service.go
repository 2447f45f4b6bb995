package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spread-puzzle/puzzle-board-api/internal/constants"
	"github.com/spread-puzzle/puzzle-board-api/internal/models"
	"github.com/spread-puzzle/puzzle-board-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvalidStepNumber = errors.New("step number is out of range")
	ErrStepsIncomplete   = errors.New("all step images are required before analysis")
	ErrStepNotFound      = errors.New("no step record exists for this board")
	ErrAnalysisFailed    = errors.New("analysis service call failed")
)

// StepService tracks per-board workflow progress and triggers the analysis
// call when the final step completes.
type StepService struct {
	stepRepo repository.StepRepository
	analyzer Analyzer

	// completion of the final step is serialized per board so that two
	// concurrent step-9 submissions cannot both fire the analyzer
	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

// NewStepService creates a new StepService.
func NewStepService(stepRepo repository.StepRepository, analyzer Analyzer) *StepService {
	return &StepService{
		stepRepo: stepRepo,
		analyzer: analyzer,
		locks:    make(map[uint64]*sync.Mutex),
	}
}

func (s *StepService) boardLock(boardID uint64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[boardID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[boardID] = lock
	}
	return lock
}

// RecordStepImage upserts the board's step record with the image URL for the
// given step. Submitting the final step additionally collects all slots and,
// when every one is filled, calls the analyzer and persists its result.
//
// The slot write commits before the analyzer runs: an analyzer failure leaves
// the image recorded and the result absent, and resubmitting the final step
// retries the analysis.
func (s *StepService) RecordStepImage(ctx context.Context, boardID uint64, stepNumber int, imageURL string) (*models.Step, error) {
	if stepNumber < constants.MinStepNumber || stepNumber > constants.MaxStepNumber {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStepNumber, stepNumber)
	}

	lock := s.boardLock(boardID)
	lock.Lock()
	defer lock.Unlock()

	step, err := s.stepRepo.UpsertImageURL(boardID, stepNumber, imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to save step image: %w", err)
	}

	if stepNumber != constants.FinalStepNumber {
		return step, nil
	}

	urls := step.ImageURLs()
	filled := make([]string, 0, len(urls))
	for _, url := range urls {
		if url != "" {
			filled = append(filled, url)
		}
	}

	if len(filled) != constants.MaxStepNumber {
		return step, fmt.Errorf("%w: have %d of %d", ErrStepsIncomplete, len(filled), constants.MaxStepNumber)
	}

	result, err := s.analyzer.AnalyzeImages(ctx, filled)
	if err != nil {
		// the image write above is already committed; callers retry by
		// resubmitting the final step
		return step, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	if err := s.stepRepo.SaveResult(boardID, result); err != nil {
		return step, fmt.Errorf("failed to save analysis result: %w", err)
	}
	step.Result = result

	logrus.WithField("board_id", boardID).Info("step workflow complete, analysis result stored")
	return step, nil
}

// FetchResult returns the stored analysis result for a board. The second
// return value reports whether the result is available yet.
func (s *StepService) FetchResult(boardID uint64) (string, bool, error) {
	step, err := s.stepRepo.FindByBoardID(boardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, ErrStepNotFound
		}
		return "", false, fmt.Errorf("failed to find step record: %w", err)
	}

	if step.Result == "" {
		return "", false, nil
	}
	return step.Result, true, nil
}

// GetStep returns the board's step record.
func (s *StepService) GetStep(boardID uint64) (*models.Step, error) {
	step, err := s.stepRepo.FindByBoardID(boardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStepNotFound
		}
		return nil, fmt.Errorf("failed to find step record: %w", err)
	}
	return step, nil
}
