package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/lendaro/loanledger/internal/apperrors"
	"github.com/lendaro/loanledger/internal/core/domain"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
	"github.com/lendaro/loanledger/internal/core/services"
	"github.com/lendaro/loanledger/internal/dto"
	"github.com/lendaro/loanledger/internal/utils"
)

// MockUserRepository is a mock type for the UserRepositoryFacade interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByProviderID(ctx context.Context, provider string, providerID string) (*domain.User, error) {
	args := m.Called(ctx, provider, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, expiryTime time.Time) error {
	args := m.Called(ctx, userID, refreshTokenHash, expiryTime)
	return args.Error(0)
}

func (m *MockUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	args := m.Called(ctx, userID, deletedAt, deletedBy)
	return args.Error(0)
}

// --- Test Suite Setup ---

type UserServiceTestSuite struct {
	suite.Suite
	mockRepo *MockUserRepository
	service  portssvc.UserSvcFacade
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockUserRepository)
	suite.service = services.NewUserService(suite.mockRepo)
}

func localUser(email, password string) domain.User {
	hash, err := utils.HashPassword(password)
	if err != nil {
		panic(err)
	}
	id := uuid.NewString()
	return domain.User{
		UserID:       id,
		Name:         "Back Office",
		Email:        email,
		PasswordHash: hash,
		AuthProvider: domain.ProviderLocal,
	}
}

// --- Test Cases ---

func (suite *UserServiceTestSuite) TestCreateUser_Success() {
	ctx := context.Background()
	req := dto.CreateUserRequest{
		Name:     "Ops Admin",
		Email:    "ops@lendaro.example",
		Password: "s3cret-pass!",
	}

	suite.mockRepo.On("FindUserByEmail", ctx, req.Email).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == req.Email &&
			u.AuthProvider == domain.ProviderLocal &&
			u.PasswordHash != "" &&
			utils.CheckPasswordHash(req.Password, u.PasswordHash)
	})).Return(nil).Once()

	created, err := suite.service.CreateUser(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.NotEmpty(created.UserID)
	suite.Equal(req.Name, created.Name)
	suite.Equal(created.UserID, created.CreatedBy)
	suite.NotEqual(req.Password, created.PasswordHash)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestCreateUser_DuplicateEmail() {
	ctx := context.Background()
	existing := localUser("ops@lendaro.example", "whatever-pass")
	req := dto.CreateUserRequest{Name: "Ops Admin", Email: existing.Email, Password: "s3cret-pass!"}

	suite.mockRepo.On("FindUserByEmail", ctx, existing.Email).Return(&existing, nil).Once()

	created, err := suite.service.CreateUser(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Nil(created)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_Success() {
	ctx := context.Background()
	user := localUser("ops@lendaro.example", "s3cret-pass!")

	suite.mockRepo.On("FindUserByEmail", ctx, user.Email).Return(&user, nil).Once()

	authenticated, err := suite.service.AuthenticateUser(ctx, user.Email, "s3cret-pass!")

	suite.Require().NoError(err)
	suite.Require().NotNil(authenticated)
	suite.Equal(user.UserID, authenticated.UserID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_WrongPassword() {
	ctx := context.Background()
	user := localUser("ops@lendaro.example", "s3cret-pass!")

	suite.mockRepo.On("FindUserByEmail", ctx, user.Email).Return(&user, nil).Once()

	authenticated, err := suite.service.AuthenticateUser(ctx, user.Email, "not-the-password")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.Nil(authenticated)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_UnknownEmail() {
	ctx := context.Background()

	suite.mockRepo.On("FindUserByEmail", ctx, "nobody@lendaro.example").Return(nil, apperrors.ErrNotFound).Once()

	authenticated, err := suite.service.AuthenticateUser(ctx, "nobody@lendaro.example", "whatever")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.Nil(authenticated)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_DeletedUser() {
	ctx := context.Background()
	user := localUser("ops@lendaro.example", "s3cret-pass!")
	deletedAt := time.Now().Add(-time.Hour)
	user.DeletedAt = &deletedAt

	suite.mockRepo.On("FindUserByEmail", ctx, user.Email).Return(&user, nil).Once()

	authenticated, err := suite.service.AuthenticateUser(ctx, user.Email, "s3cret-pass!")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.Nil(authenticated)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_OAuthOnlyAccount() {
	ctx := context.Background()
	user := domain.User{
		UserID:       uuid.NewString(),
		Name:         "Google Only",
		Email:        "oauth@lendaro.example",
		AuthProvider: domain.ProviderGoogle,
		ProviderID:   "google-sub-123",
	}

	suite.mockRepo.On("FindUserByEmail", ctx, user.Email).Return(&user, nil).Once()

	authenticated, err := suite.service.AuthenticateUser(ctx, user.Email, "anything")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.Nil(authenticated)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestUpdateUser_Success() {
	ctx := context.Background()
	user := localUser("ops@lendaro.example", "s3cret-pass!")
	newName := "Ops Lead"

	suite.mockRepo.On("FindUserByID", ctx, user.UserID).Return(&user, nil).Once()
	suite.mockRepo.On("UpdateUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.UserID == user.UserID && u.Name == newName && u.LastUpdatedBy == user.UserID
	})).Return(nil).Once()

	updated, err := suite.service.UpdateUser(ctx, user.UserID, dto.UpdateUserRequest{Name: &newName}, user.UserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(updated)
	suite.Equal(newName, updated.Name)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestUpdateUser_OtherUserForbidden() {
	ctx := context.Background()
	newName := "Hijacked"

	updated, err := suite.service.UpdateUser(ctx, uuid.NewString(), dto.UpdateUserRequest{Name: &newName}, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(updated)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindUserByID", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestDeleteUser_Success() {
	ctx := context.Background()
	user := localUser("ops@lendaro.example", "s3cret-pass!")

	suite.mockRepo.On("FindUserByID", ctx, user.UserID).Return(&user, nil).Once()
	suite.mockRepo.On("MarkUserDeleted", ctx, user.UserID, mock.AnythingOfType("time.Time"), user.UserID).Return(nil).Once()

	err := suite.service.DeleteUser(ctx, user.UserID, user.UserID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestDeleteUser_OtherUserForbidden() {
	ctx := context.Background()

	err := suite.service.DeleteUser(ctx, uuid.NewString(), uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockRepo.AssertNotCalled(suite.T(), "MarkUserDeleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestGetOrCreateGoogleUser_ExistingProviderID() {
	ctx := context.Background()
	user := domain.User{
		UserID:       uuid.NewString(),
		Email:        "oauth@lendaro.example",
		AuthProvider: domain.ProviderGoogle,
		ProviderID:   "google-sub-123",
	}
	info := domain.GoogleUserInfo{ID: "google-sub-123", Email: user.Email, VerifiedEmail: true, Name: "Google User"}

	suite.mockRepo.On("FindUserByProviderID", ctx, domain.ProviderGoogle, info.ID).Return(&user, nil).Once()

	found, err := suite.service.GetOrCreateGoogleUser(ctx, info)

	suite.Require().NoError(err)
	suite.Require().NotNil(found)
	suite.Equal(user.UserID, found.UserID)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindUserByEmail", mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestGetOrCreateGoogleUser_LinksExistingLocalAccount() {
	ctx := context.Background()
	user := localUser("ops@lendaro.example", "s3cret-pass!")
	info := domain.GoogleUserInfo{ID: "google-sub-456", Email: user.Email, VerifiedEmail: true, Name: user.Name}

	suite.mockRepo.On("FindUserByProviderID", ctx, domain.ProviderGoogle, info.ID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindUserByEmail", ctx, user.Email).Return(&user, nil).Once()
	suite.mockRepo.On("UpdateUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.UserID == user.UserID && u.ProviderID == info.ID
	})).Return(nil).Once()

	linked, err := suite.service.GetOrCreateGoogleUser(ctx, info)

	suite.Require().NoError(err)
	suite.Require().NotNil(linked)
	suite.Equal(user.UserID, linked.UserID)
	suite.Equal(info.ID, linked.ProviderID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestGetOrCreateGoogleUser_ProvisionsNewUser() {
	ctx := context.Background()
	info := domain.GoogleUserInfo{ID: "google-sub-789", Email: "new@lendaro.example", VerifiedEmail: true, Name: "New User"}

	suite.mockRepo.On("FindUserByProviderID", ctx, domain.ProviderGoogle, info.ID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindUserByEmail", ctx, info.Email).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == info.Email &&
			u.AuthProvider == domain.ProviderGoogle &&
			u.ProviderID == info.ID &&
			u.PasswordHash == ""
	})).Return(nil).Once()

	created, err := suite.service.GetOrCreateGoogleUser(ctx, info)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.Equal(info.Name, created.Name)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestGetOrCreateGoogleUser_UnverifiedEmail() {
	ctx := context.Background()
	info := domain.GoogleUserInfo{ID: "google-sub-000", Email: "spoof@lendaro.example", VerifiedEmail: false}

	created, err := suite.service.GetOrCreateGoogleUser(ctx, info)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.Nil(created)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindUserByProviderID", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestUpdateRefreshToken_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	expiry := time.Now().Add(7 * 24 * time.Hour)

	suite.mockRepo.On("UpdateRefreshToken", ctx, userID, "token-hash", expiry).Return(nil).Once()

	err := suite.service.UpdateRefreshToken(ctx, userID, "token-hash", expiry)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestListUsers_NormalizesPaging() {
	ctx := context.Background()
	users := []domain.User{localUser("a@lendaro.example", "pass-word-1")}

	suite.mockRepo.On("FindUsers", ctx, 20, 0).Return(users, nil).Once()

	listed, err := suite.service.ListUsers(ctx, -1, -1)

	suite.Require().NoError(err)
	suite.Len(listed, 1)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
