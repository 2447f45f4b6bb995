package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spread-puzzle/puzzle-board-api/internal/models"
	"github.com/spread-puzzle/puzzle-board-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeAnalyzer records calls and returns a canned result.
type fakeAnalyzer struct {
	calls  [][]string
	result string
	err    error
}

func (f *fakeAnalyzer) AnalyzeImages(ctx context.Context, imageURLs []string) (string, error) {
	f.calls = append(f.calls, imageURLs)
	if f.err != nil {
		return "", f.err
	}
	return f.result, nil
}

// StepServiceTestSuite defines the test suite for StepService
type StepServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	analyzer *fakeAnalyzer
	service  *StepService
}

// SetupTest runs before each test
func (suite *StepServiceTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.Board{}, &models.Step{})
	suite.Require().NoError(err)

	suite.analyzer = &fakeAnalyzer{result: "## Analysis\nLooks complete."}
	suite.service = NewStepService(repository.NewStepRepository(suite.db), suite.analyzer)
}

// TearDownTest runs after each test
func (suite *StepServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *StepServiceTestSuite) recordSteps(boardID uint64, from, to int) {
	for n := from; n <= to; n++ {
		_, err := suite.service.RecordStepImage(context.Background(), boardID, n, stepURL(n))
		suite.Require().NoError(err)
	}
}

func stepURL(n int) string {
	return fmt.Sprintf("https://cdn.example.com/steps/%d.png", n)
}

// TestRecordStepImage_InvalidNumber tests rejecting out-of-range steps
func (suite *StepServiceTestSuite) TestRecordStepImage_InvalidNumber() {
	for _, n := range []int{0, 10, -1} {
		_, err := suite.service.RecordStepImage(context.Background(), 1, n, "https://cdn.example.com/x.png")
		assert.ErrorIs(suite.T(), err, ErrInvalidStepNumber)
	}

	// Nothing was written
	var count int64
	suite.db.Model(&models.Step{}).Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

// TestRecordStepImage_PreservesOtherSlots tests that upserts only touch the
// targeted slot
func (suite *StepServiceTestSuite) TestRecordStepImage_PreservesOtherSlots() {
	step, err := suite.service.RecordStepImage(context.Background(), 1, 1, stepURL(1))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), stepURL(1), step.Step1ImgURL)

	step, err = suite.service.RecordStepImage(context.Background(), 1, 3, stepURL(3))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), stepURL(1), step.Step1ImgURL)
	assert.Equal(suite.T(), stepURL(3), step.Step3ImgURL)
	assert.Empty(suite.T(), step.Step2ImgURL)

	// Exactly one row per board
	var count int64
	suite.db.Model(&models.Step{}).Count(&count)
	assert.Equal(suite.T(), int64(1), count)
}

// TestFinalStep_MissingSlots tests that step 9 with gaps commits the slot but
// fails without calling the analyzer
func (suite *StepServiceTestSuite) TestFinalStep_MissingSlots() {
	step, err := suite.service.RecordStepImage(context.Background(), 1, 9, stepURL(9))
	assert.ErrorIs(suite.T(), err, ErrStepsIncomplete)
	assert.Empty(suite.T(), suite.analyzer.calls)

	// The slot write is not rolled back
	assert.Equal(suite.T(), stepURL(9), step.Step9ImgURL)
	var stored models.Step
	suite.db.Where("board_id = ?", uint64(1)).First(&stored)
	assert.Equal(suite.T(), stepURL(9), stored.Step9ImgURL)
	assert.Empty(suite.T(), stored.Result)
}

// TestFinalStep_TriggersAnalysisOnce tests the full workflow completion
func (suite *StepServiceTestSuite) TestFinalStep_TriggersAnalysisOnce() {
	suite.recordSteps(1, 1, 8)

	step, err := suite.service.RecordStepImage(context.Background(), 1, 9, stepURL(9))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "## Analysis\nLooks complete.", step.Result)

	suite.Require().Len(suite.analyzer.calls, 1)
	urls := suite.analyzer.calls[0]
	suite.Require().Len(urls, 9)
	for i, url := range urls {
		assert.Equal(suite.T(), stepURL(i+1), url)
	}

	var stored models.Step
	suite.db.Where("board_id = ?", uint64(1)).First(&stored)
	assert.Equal(suite.T(), "## Analysis\nLooks complete.", stored.Result)
}

// TestFinalStep_AnalyzerFailure tests that a failed analysis keeps the image
// and that resubmitting the final step retries
func (suite *StepServiceTestSuite) TestFinalStep_AnalyzerFailure() {
	suite.recordSteps(1, 1, 8)
	suite.analyzer.err = errors.New("model unavailable")

	step, err := suite.service.RecordStepImage(context.Background(), 1, 9, stepURL(9))
	assert.ErrorIs(suite.T(), err, ErrAnalysisFailed)
	assert.Equal(suite.T(), stepURL(9), step.Step9ImgURL)

	var stored models.Step
	suite.db.Where("board_id = ?", uint64(1)).First(&stored)
	assert.Equal(suite.T(), stepURL(9), stored.Step9ImgURL)
	assert.Empty(suite.T(), stored.Result)

	// Resubmitting the final step retries the analysis
	suite.analyzer.err = nil
	step, err = suite.service.RecordStepImage(context.Background(), 1, 9, stepURL(9))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "## Analysis\nLooks complete.", step.Result)
	assert.Len(suite.T(), suite.analyzer.calls, 2)
}

// TestFetchResult tests the availability states of the result
func (suite *StepServiceTestSuite) TestFetchResult() {
	_, _, err := suite.service.FetchResult(1)
	assert.ErrorIs(suite.T(), err, ErrStepNotFound)

	suite.recordSteps(1, 1, 3)
	result, available, err := suite.service.FetchResult(1)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), available)
	assert.Empty(suite.T(), result)

	suite.recordSteps(1, 4, 9)
	result, available, err = suite.service.FetchResult(1)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), available)
	assert.Equal(suite.T(), "## Analysis\nLooks complete.", result)
}

// TestSuite runs the test suite
func TestStepServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StepServiceTestSuite))
}
