package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spread-puzzle/puzzle-board-api/internal/config"
	"github.com/spread-puzzle/puzzle-board-api/internal/database"
	"github.com/spread-puzzle/puzzle-board-api/internal/models"
	"github.com/spread-puzzle/puzzle-board-api/internal/repository"
	"github.com/spread-puzzle/puzzle-board-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type handlerAnalyzer struct {
	result string
}

func (f *handlerAnalyzer) AnalyzeImages(ctx context.Context, imageURLs []string) (string, error) {
	return f.result, nil
}

// StepHandlerTestSuite defines the test suite for StepHandler
type StepHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	store   *fakeStorage
	handler *StepHandler
}

// SetupTest runs before each test
func (suite *StepHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Invitation{},
		&models.Board{},
		&models.Step{},
	)
	suite.Require().NoError(err)

	// Set the test DB as the default database
	database.SetDB(suite.db)

	stepRepo := repository.NewStepRepository(suite.db)
	stepService := services.NewStepService(stepRepo, &handlerAnalyzer{result: "done"})
	roomService := services.NewRoomService(&config.Config{})

	suite.store = &fakeStorage{}
	suite.handler = NewStepHandler(stepService, roomService, suite.store)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *StepHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *StepHandlerTestSuite) createTestBoard() *models.Board {
	team := &models.Team{Name: "Test Team"}
	suite.db.Create(team)
	board := &models.Board{
		Name:        "Board",
		CurrentStep: 1,
		TeamID:      team.ID,
	}
	suite.db.Create(board)
	return board
}

// roomToken signs a room credential granting the permissions on the room.
// The handler inspects the payload only, so any signing key works.
func (suite *StepHandlerTestSuite) roomToken(roomID string, perms []string) string {
	claims := jwt.MapClaims{
		"perms": map[string]interface{}{roomID: perms},
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("issuer-key"))
	suite.Require().NoError(err)
	return token
}

// imageUpload builds a multipart body with a single PNG image part.
func (suite *StepHandlerTestSuite) imageUpload(fieldName, fileName string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+fileName+`"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	suite.Require().NoError(err)
	part.Write([]byte("fake png bytes"))
	writer.Close()

	return body, writer.FormDataContentType()
}

func (suite *StepHandlerTestSuite) createStepContext(board *models.Board, stepNumber, token string, withFile bool) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()

	var req *http.Request
	if withFile {
		body, contentType := suite.imageUpload("image", "step.png")
		req = httptest.NewRequest("POST", "/api/steps/1/"+stepNumber, body)
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest("POST", "/api/steps/1/"+stepNumber, nil)
	}
	if token != "" {
		req.Header.Set("X-Room-Token", token)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("user_id", uint64(1))
	c.Set("board", *board)
	c.Params = gin.Params{
		{Key: "boardId", Value: "1"},
		{Key: "stepNumber", Value: stepNumber},
	}

	return c, w
}

// TestRecordStepImage_MissingRoomToken tests the missing credential case
func (suite *StepHandlerTestSuite) TestRecordStepImage_MissingRoomToken() {
	board := suite.createTestBoard()

	c, w := suite.createStepContext(board, "1", "", true)
	suite.handler.RecordStepImage(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	assert.Empty(suite.T(), suite.store.uploads)
}

// TestRecordStepImage_WrongRoom tests a credential for a different room
func (suite *StepHandlerTestSuite) TestRecordStepImage_WrongRoom() {
	board := suite.createTestBoard()
	token := suite.roomToken("board-999", []string{"room:write"})

	c, w := suite.createStepContext(board, "1", token, true)
	suite.handler.RecordStepImage(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
	assert.Empty(suite.T(), suite.store.uploads)
}

// TestRecordStepImage_Success tests storing one step image
func (suite *StepHandlerTestSuite) TestRecordStepImage_Success() {
	board := suite.createTestBoard()
	token := suite.roomToken("board-1", []string{"room:write"})

	c, w := suite.createStepContext(board, "2", token, true)
	suite.handler.RecordStepImage(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Len(suite.T(), suite.store.uploads, 1)

	var stored models.Step
	err := suite.db.Where("board_id = ?", board.ID).First(&stored).Error
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.store.uploads[0], stored.Step2ImgURL)
}

// TestRecordStepImage_InvalidStepNumber tests an out-of-range step
func (suite *StepHandlerTestSuite) TestRecordStepImage_InvalidStepNumber() {
	board := suite.createTestBoard()
	token := suite.roomToken("board-1", []string{"room:write"})

	c, w := suite.createStepContext(board, "12", token, true)
	suite.handler.RecordStepImage(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var count int64
	suite.db.Model(&models.Step{}).Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

// TestRecordStepImage_NoFile tests a request without an image part
func (suite *StepHandlerTestSuite) TestRecordStepImage_NoFile() {
	board := suite.createTestBoard()
	token := suite.roomToken("board-1", []string{"room:write"})

	c, w := suite.createStepContext(board, "1", token, false)
	suite.handler.RecordStepImage(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestGetResult_NotAvailable tests polling before the workflow completes
func (suite *StepHandlerTestSuite) TestGetResult_NotAvailable() {
	board := suite.createTestBoard()
	token := suite.roomToken("board-1", []string{"room:write"})

	// Record one step so the row exists
	c, _ := suite.createStepContext(board, "1", token, true)
	suite.handler.RecordStepImage(c)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/steps/1/result", nil)
	req.Header.Set("X-Room-Token", token)
	c, _ = gin.CreateTestContext(w)
	c.Request = req
	c.Set("user_id", uint64(1))
	c.Set("board", *board)

	suite.handler.GetResult(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), false, response["available"])
}

// TestSuite runs the test suite
func TestStepHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(StepHandlerTestSuite))
}
