package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/lendaro/loanledger/internal/apperrors"
	"github.com/lendaro/loanledger/internal/core/domain"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
	"github.com/lendaro/loanledger/internal/dto"
	"github.com/lendaro/loanledger/internal/handlers"
	"github.com/lendaro/loanledger/internal/platform/config"
)

// --- Mock UserService ---

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error) {
	args := m.Called(ctx, userID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetOrCreateGoogleUser(ctx context.Context, info domain.GoogleUserInfo) (*domain.User, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	args := m.Called(ctx, userID, refreshTokenHash, refreshTokenExpiryTime)
	return args.Error(0)
}

func (m *MockUserService) ClearRefreshToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserService) DeleteUser(ctx context.Context, userID string, requestingUserID string) error {
	args := m.Called(ctx, userID, requestingUserID)
	return args.Error(0)
}

func (m *MockUserService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// --- Test Suite Setup ---

type UserHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockUserService *MockUserService
	jwtSecret       string
}

func (suite *UserHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockUserService = new(MockUserService)

	cfg := &config.Config{
		JWTSecret:    suite.jwtSecret,
		IsProduction: true, // keeps swagger out of the test router
	}
	container := &portssvc.ServiceContainer{
		User: suite.mockUserService,
	}
	handlers.RegisterRoutes(suite.router, cfg, container)
}

func (suite *UserHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "loanledger-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *UserHandlerTestSuite) doRequest(method, url, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func testUser(userID string) *domain.User {
	return &domain.User{
		UserID:       userID,
		Name:         "Pat Miller",
		Email:        "pat@example.com",
		AuthProvider: domain.ProviderLocal,
	}
}

// --- Test Cases ---

func (suite *UserHandlerTestSuite) TestGetCurrentUser_Success() {
	userID := uuid.NewString()
	suite.mockUserService.On("GetUserByID", mock.Anything, userID).Return(testUser(userID), nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/users/me", userID, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.UserResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(userID, resp.UserID)
	suite.Equal("pat@example.com", resp.Email)
	suite.mockUserService.AssertExpectations(suite.T())
}

func (suite *UserHandlerTestSuite) TestGetCurrentUser_NoToken() {
	w := suite.doRequest(http.MethodGet, "/api/v1/users/me", "", nil)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockUserService.AssertNotCalled(suite.T(), "GetUserByID", mock.Anything, mock.Anything)
}

func (suite *UserHandlerTestSuite) TestGetCurrentUser_UserGone() {
	userID := uuid.NewString()
	suite.mockUserService.On("GetUserByID", mock.Anything, userID).Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/users/me", userID, nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockUserService.AssertExpectations(suite.T())
}

func (suite *UserHandlerTestSuite) TestGetUser_OwnRecord() {
	userID := uuid.NewString()
	suite.mockUserService.On("GetUserByID", mock.Anything, userID).Return(testUser(userID), nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/users/"+userID, userID, nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockUserService.AssertExpectations(suite.T())
}

func (suite *UserHandlerTestSuite) TestGetUser_OtherUserForbidden() {
	w := suite.doRequest(http.MethodGet, "/api/v1/users/"+uuid.NewString(), uuid.NewString(), nil)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockUserService.AssertNotCalled(suite.T(), "GetUserByID", mock.Anything, mock.Anything)
}

func (suite *UserHandlerTestSuite) TestCreateUser_DuplicateEmail() {
	userID := uuid.NewString()
	req := dto.CreateUserRequest{
		Name:     "Pat Miller",
		Email:    "pat@example.com",
		Password: "correct-horse-battery",
	}
	suite.mockUserService.On("CreateUser", mock.Anything, req).Return(nil, apperrors.ErrDuplicate).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/users", userID, req)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockUserService.AssertExpectations(suite.T())
}

func (suite *UserHandlerTestSuite) TestCreateUser_InvalidBody() {
	userID := uuid.NewString()
	// Password below the minimum length fails binding before the service runs.
	body := map[string]string{"name": "Pat", "email": "pat@example.com", "password": "short"}

	w := suite.doRequest(http.MethodPost, "/api/v1/users", userID, body)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockUserService.AssertNotCalled(suite.T(), "CreateUser", mock.Anything, mock.Anything)
}

func (suite *UserHandlerTestSuite) TestUpdateUser_Success() {
	userID := uuid.NewString()
	newName := "Pat M. Miller"
	req := dto.UpdateUserRequest{Name: &newName}
	updated := testUser(userID)
	updated.Name = newName
	suite.mockUserService.On("UpdateUser", mock.Anything, userID, req, userID).Return(updated, nil).Once()

	w := suite.doRequest(http.MethodPut, "/api/v1/users/"+userID, userID, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.UserResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(newName, resp.Name)
	suite.mockUserService.AssertExpectations(suite.T())
}

func (suite *UserHandlerTestSuite) TestDeleteUser_Forbidden() {
	targetID := uuid.NewString()
	callerID := uuid.NewString()
	suite.mockUserService.On("DeleteUser", mock.Anything, targetID, callerID).Return(apperrors.ErrForbidden).Once()

	w := suite.doRequest(http.MethodDelete, "/api/v1/users/"+targetID, callerID, nil)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockUserService.AssertExpectations(suite.T())
}

func (suite *UserHandlerTestSuite) TestListUsers_DefaultPagination() {
	userID := uuid.NewString()
	users := []domain.User{*testUser(uuid.NewString()), *testUser(uuid.NewString())}
	suite.mockUserService.On("ListUsers", mock.Anything, 20, 0).Return(users, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/users", userID, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListUsersResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Users, 2)
	suite.mockUserService.AssertExpectations(suite.T())
}

func TestUserHandler(t *testing.T) {
	suite.Run(t, new(UserHandlerTestSuite))
}
