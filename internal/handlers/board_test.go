package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spread-puzzle/puzzle-board-api/internal/database"
	"github.com/spread-puzzle/puzzle-board-api/internal/models"
	"github.com/spread-puzzle/puzzle-board-api/internal/repository"
	"github.com/spread-puzzle/puzzle-board-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeStorage records uploads and returns deterministic URLs.
type fakeStorage struct {
	uploads []string
	err     error
}

func (f *fakeStorage) Upload(ctx context.Context, data []byte, contentType, originalName string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	url := fmt.Sprintf("https://cdn.example.com/%d/%s", len(f.uploads), originalName)
	f.uploads = append(f.uploads, url)
	return url, nil
}

// BoardHandlerTestSuite defines the test suite for BoardHandler
type BoardHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	store   *fakeStorage
	handler *BoardHandler
}

// SetupTest runs before each test
func (suite *BoardHandlerTestSuite) SetupTest() {
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

	boardRepo := repository.NewBoardRepository(suite.db)
	teamRepo := repository.NewTeamRepository(suite.db)
	boardService := services.NewBoardService(boardRepo, teamRepo)

	suite.store = &fakeStorage{}
	suite.handler = NewBoardHandler(boardService, suite.store)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *BoardHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper functions to create test data
func (suite *BoardHandlerTestSuite) createTestUser(email string) *models.User {
	user := &models.User{
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
	}
	suite.db.Create(user)
	return user
}

func (suite *BoardHandlerTestSuite) createTestTeam(name string, memberIDs ...uint64) *models.Team {
	team := &models.Team{Name: name}
	suite.db.Create(team)
	for _, userID := range memberIDs {
		suite.db.Create(&models.TeamMember{TeamID: team.ID, UserID: userID})
	}
	return team
}

func (suite *BoardHandlerTestSuite) createTestBoard(name string, teamID uint64, liked bool) *models.Board {
	board := &models.Board{
		Name:        name,
		CurrentStep: 1,
		Liked:       liked,
		TeamID:      teamID,
	}
	suite.db.Create(board)
	return board
}

// Helper function to create authenticated context
func (suite *BoardHandlerTestSuite) createAuthContext(method, url string, body []byte, contentType string, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("user_id", userID)

	return c, w
}

// Helper function to set team context (simulates RequireTeamAccess middleware)
func (suite *BoardHandlerTestSuite) setTeamContext(c *gin.Context, team models.Team) {
	c.Set("team", team)
}

// Helper function to set board context (simulates RequireBoardAccess middleware)
func (suite *BoardHandlerTestSuite) setBoardContext(c *gin.Context, board models.Board) {
	c.Set("board", board)
}

// TestCreateBoard_Defaults tests that new boards start at step 1, not liked
func (suite *BoardHandlerTestSuite) TestCreateBoard_Defaults() {
	user := suite.createTestUser("test@example.com")
	team := suite.createTestTeam("Test Team", user.ID)

	form := "name=My+Board&description=First+board"
	c, w := suite.createAuthContext("POST", "/api/boards/team/1", []byte(form), "application/x-www-form-urlencoded", user.ID)
	suite.setTeamContext(c, *team)

	suite.handler.CreateBoard(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "My Board", response["name"])
	assert.Equal(suite.T(), float64(1), response["current_step"])
	assert.Equal(suite.T(), false, response["liked"])
}

// TestCreateBoard_MissingName tests board creation without a name
func (suite *BoardHandlerTestSuite) TestCreateBoard_MissingName() {
	user := suite.createTestUser("test@example.com")
	team := suite.createTestTeam("Test Team", user.ID)

	form := "description=no+name"
	c, w := suite.createAuthContext("POST", "/api/boards/team/1", []byte(form), "application/x-www-form-urlencoded", user.ID)
	suite.setTeamContext(c, *team)

	suite.handler.CreateBoard(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestToggleLike_FlipsAndRestores tests that two toggles return to the start
func (suite *BoardHandlerTestSuite) TestToggleLike_FlipsAndRestores() {
	user := suite.createTestUser("test@example.com")
	team := suite.createTestTeam("Test Team", user.ID)
	board := suite.createTestBoard("Board", team.ID, false)

	c, w := suite.createAuthContext("POST", "/api/boards/1/like", nil, "", user.ID)
	suite.setBoardContext(c, *board)
	suite.handler.ToggleLike(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), true, response["liked"])

	c, w = suite.createAuthContext("POST", "/api/boards/1/like", nil, "", user.ID)
	suite.setBoardContext(c, *board)
	suite.handler.ToggleLike(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	err = json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), false, response["liked"])

	var stored models.Board
	suite.db.First(&stored, board.ID)
	assert.False(suite.T(), stored.Liked)
}

// TestListMyBoards_AcrossTeams tests the teams-then-boards lookup
func (suite *BoardHandlerTestSuite) TestListMyBoards_AcrossTeams() {
	user := suite.createTestUser("test@example.com")
	other := suite.createTestUser("other@example.com")
	teamA := suite.createTestTeam("Team A", user.ID)
	teamB := suite.createTestTeam("Team B", other.ID)
	suite.createTestBoard("Board A1", teamA.ID, false)
	suite.createTestBoard("Board A2", teamA.ID, true)
	suite.createTestBoard("Board B1", teamB.ID, false)

	c, w := suite.createAuthContext("GET", "/api/boards/mine", nil, "", user.ID)
	suite.handler.ListMyBoards(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	boards := response["boards"].([]interface{})
	assert.Len(suite.T(), boards, 2)
	for _, b := range boards {
		name := b.(map[string]interface{})["name"].(string)
		assert.True(suite.T(), strings.HasPrefix(name, "Board A"))
	}
}

// TestListLikedBoards_FiltersLiked tests the liked-only listing
func (suite *BoardHandlerTestSuite) TestListLikedBoards_FiltersLiked() {
	user := suite.createTestUser("test@example.com")
	team := suite.createTestTeam("Test Team", user.ID)
	suite.createTestBoard("Plain", team.ID, false)
	liked := suite.createTestBoard("Liked", team.ID, true)

	c, w := suite.createAuthContext("GET", "/api/boards/liked", nil, "", user.ID)
	suite.handler.ListLikedBoards(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	boards := response["boards"].([]interface{})
	assert.Len(suite.T(), boards, 1)
	assert.Equal(suite.T(), liked.Name, boards[0].(map[string]interface{})["name"])
}

// TestUpdateCurrentStep_Success tests moving the step counter
func (suite *BoardHandlerTestSuite) TestUpdateCurrentStep_Success() {
	user := suite.createTestUser("test@example.com")
	team := suite.createTestTeam("Test Team", user.ID)
	board := suite.createTestBoard("Board", team.ID, false)

	body, _ := json.Marshal(map[string]interface{}{"current_step": 3})
	c, w := suite.createAuthContext("PATCH", "/api/boards/1/current-step", body, "application/json", user.ID)
	suite.setBoardContext(c, *board)

	suite.handler.UpdateCurrentStep(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var stored models.Board
	suite.db.First(&stored, board.ID)
	assert.Equal(suite.T(), 3, stored.CurrentStep)
}

// TestUpdateCurrentStep_OutOfRange tests rejecting an out-of-range step
func (suite *BoardHandlerTestSuite) TestUpdateCurrentStep_OutOfRange() {
	user := suite.createTestUser("test@example.com")
	team := suite.createTestTeam("Test Team", user.ID)
	board := suite.createTestBoard("Board", team.ID, false)

	body, _ := json.Marshal(map[string]interface{}{"current_step": 10})
	c, w := suite.createAuthContext("PATCH", "/api/boards/1/current-step", body, "application/json", user.ID)
	suite.setBoardContext(c, *board)

	suite.handler.UpdateCurrentStep(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var stored models.Board
	suite.db.First(&stored, board.ID)
	assert.Equal(suite.T(), 1, stored.CurrentStep)
}

// TestUpdateBoard_PartialFields tests that absent form fields are unchanged
func (suite *BoardHandlerTestSuite) TestUpdateBoard_PartialFields() {
	user := suite.createTestUser("test@example.com")
	team := suite.createTestTeam("Test Team", user.ID)
	board := suite.createTestBoard("Old Name", team.ID, false)
	board.Description = "Old description"
	suite.db.Save(board)

	form := "name=New+Name"
	c, w := suite.createAuthContext("PATCH", "/api/boards/1", []byte(form), "application/x-www-form-urlencoded", user.ID)
	suite.setBoardContext(c, *board)

	suite.handler.UpdateBoard(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var stored models.Board
	suite.db.First(&stored, board.ID)
	assert.Equal(suite.T(), "New Name", stored.Name)
	assert.Equal(suite.T(), "Old description", stored.Description)
}

// TestDeleteBoard_Success tests board deletion
func (suite *BoardHandlerTestSuite) TestDeleteBoard_Success() {
	user := suite.createTestUser("test@example.com")
	team := suite.createTestTeam("Test Team", user.ID)
	board := suite.createTestBoard("Board", team.ID, false)

	c, w := suite.createAuthContext("DELETE", "/api/boards/1", nil, "", user.ID)
	suite.setBoardContext(c, *board)

	suite.handler.DeleteBoard(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var deleted models.Board
	err := suite.db.First(&deleted, board.ID).Error
	assert.Error(suite.T(), err)
}

// TestSuite runs the test suite
func TestBoardHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(BoardHandlerTestSuite))
}
