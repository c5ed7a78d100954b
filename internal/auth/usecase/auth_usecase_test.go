package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"showcase-platform/internal/auth/adapter/persistence/memory"
	"showcase-platform/internal/auth/config"
	"showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/auth/domain/repository"
	"showcase-platform/internal/auth/usecase"
	"showcase-platform/internal/shared/eventbus"
	"showcase-platform/internal/shared/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

const strongPassword = "Sup3r$ecret"

type recordedEvents struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (r *recordedEvents) handler(_ context.Context, e eventbus.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordedEvents) ofType(t string) []eventbus.ActivityPayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []eventbus.ActivityPayload
	for _, e := range r.events {
		if e.Type() == t {
			out = append(out, e.Data().(eventbus.ActivityPayload))
		}
	}
	return out
}

type AuthUsecaseTestSuite struct {
	suite.Suite
	mockRepo  *mockAuthRepository
	mockToken *mockTokenService
	lockouts  *memory.LockoutStore
	csrf      *memory.CSRFStore
	events    *recordedEvents
	usecase   *usecase.AuthUsecase
	config    *config.Config
	now       time.Time
}

func (suite *AuthUsecaseTestSuite) SetupTest() {
	suite.mockRepo = &mockAuthRepository{}
	suite.mockToken = &mockTokenService{}
	suite.now = time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return suite.now }

	suite.config = &config.Config{
		JWTSecretKey:      "test-secret-key",
		JWTIssuer:         "test-issuer",
		AccessTokenTTL:    60 * time.Minute,
		SessionTimeout:    60 * time.Minute,
		LockoutThreshold:  5,
		LockoutDuration:   30 * time.Minute,
		LockoutCounterTTL: 24 * time.Hour,
		CSRFEnabled:       true,
		CSRFTokenTTL:      4 * time.Hour,
		BcryptCost:        bcrypt.MinCost,
	}

	suite.lockouts = memory.NewLockoutStore(suite.config.LockoutCounterTTL).WithClock(clock)
	suite.csrf = memory.NewCSRFStore().WithClock(clock)
	suite.events = &recordedEvents{}

	bus := eventbus.NewEventBus(nil)
	for _, t := range []string{
		eventbus.EventTypeUserLoggedIn,
		eventbus.EventTypeLoginFailed,
		eventbus.EventTypeAccountLocked,
		eventbus.EventTypeUserLoggedOut,
		eventbus.EventTypeResourceCreated,
		eventbus.EventTypeResourceUpdated,
	} {
		bus.Subscribe(t, suite.events.handler)
	}

	suite.usecase = usecase.NewAuthUsecase(suite.mockRepo, suite.mockToken, suite.lockouts, suite.csrf, bus, suite.config, nil).
		WithClock(clock)
}

func (suite *AuthUsecaseTestSuite) user(email, password string) *model.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(suite.T(), err)
	return &model.User{
		ID:           "user-123",
		Email:        email,
		Username:     "tester",
		PasswordHash: string(hash),
		Roles:        []model.Role{model.RoleStudent},
		Status:       model.UserStatusActive,
	}
}

func (suite *AuthUsecaseTestSuite) expectSessionStart(token string) {
	suite.mockRepo.On("CreateSession", mock.Anything, mock.AnythingOfType("*model.Session")).Return(nil)
	suite.mockToken.On("GenerateToken", mock.Anything, mock.MatchedBy(func(s repository.TokenSubject) bool {
		return s.UserID != "" && s.SessionID != ""
	})).Return(token, nil)
}

func (suite *AuthUsecaseTestSuite) TestRegister_Success() {
	// Arrange
	ctx := context.Background()
	email := "new.student@example.com"

	suite.mockRepo.On("GetUserByEmail", ctx, email).Return(nil, usecase.ErrUserNotFound)
	suite.mockRepo.On("CreateUser", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == email && u.Username == "new-student" && u.HasRole(model.RoleStudent) && len(u.Roles) == 1
	})).Return(nil)
	suite.expectSessionStart("jwt-token-123")

	// Act
	resp, err := suite.usecase.Register(ctx, usecase.RegisterRequest{
		Email:     email,
		Password:  strongPassword,
		FirstName: "New",
		LastName:  "Student",
		Roles:     []model.Role{model.RoleAdmin},
	})

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "jwt-token-123", resp.AccessToken)
	assert.Empty(suite.T(), resp.User.PasswordHash)
	assert.Equal(suite.T(), []model.Role{model.RoleStudent}, resp.User.Roles, "self registration cannot pick roles")
	assert.NotEmpty(suite.T(), resp.CSRFToken)
	assert.Equal(suite.T(), suite.now.Add(time.Hour), resp.ExpiresAt)
	assert.Regexp(suite.T(), `^session-\d+-[0-9a-f]{32}$`, resp.SessionID)

	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockToken.AssertExpectations(suite.T())
}

func (suite *AuthUsecaseTestSuite) TestRegister_AdminAssignsRoles() {
	ctx := utils.WithUserRole(utils.WithUserID(context.Background(), "admin-1"), string(model.RoleAdmin))
	email := "coach@example.com"

	suite.mockRepo.On("GetUserByEmail", ctx, email).Return(nil, usecase.ErrUserNotFound)
	suite.mockRepo.On("CreateUser", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.HasRole(model.RoleInstructor)
	})).Return(nil)
	suite.expectSessionStart("jwt")

	resp, err := suite.usecase.Register(ctx, usecase.RegisterRequest{
		Email:     email,
		Password:  strongPassword,
		FirstName: "Coach",
		LastName:  "Person",
		Roles:     []model.Role{model.RoleInstructor},
	})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), model.RoleInstructor, resp.User.PrimaryRole())
}

func (suite *AuthUsecaseTestSuite) TestCreateUser_NoSessionStarted() {
	ctx := utils.WithUserRole(utils.WithUserID(context.Background(), "admin-1"), string(model.RoleAdmin))
	email := "mentor@example.com"

	suite.mockRepo.On("GetUserByEmail", ctx, email).Return(nil, usecase.ErrUserNotFound)
	suite.mockRepo.On("CreateUser", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == email && u.HasRole(model.RoleInstructor)
	})).Return(nil)

	user, err := suite.usecase.CreateUser(ctx, usecase.RegisterRequest{
		Email:     email,
		Password:  strongPassword,
		FirstName: "Mentor",
		LastName:  "Person",
		Roles:     []model.Role{model.RoleInstructor},
	})

	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), user.PasswordHash)
	assert.Equal(suite.T(), model.RoleInstructor, user.PrimaryRole())

	suite.mockRepo.AssertNotCalled(suite.T(), "CreateSession", mock.Anything, mock.Anything)
	suite.mockToken.AssertNotCalled(suite.T(), "GenerateToken", mock.Anything, mock.Anything)
	assert.Empty(suite.T(), suite.events.ofType(eventbus.EventTypeUserLoggedIn))
	assert.Empty(suite.T(), suite.events.ofType(eventbus.EventTypeUserLoggedOut))

	created := suite.events.ofType(eventbus.EventTypeResourceCreated)
	require.Len(suite.T(), created, 1)
	assert.Equal(suite.T(), "admin-1", created[0].ActorID)
	assert.Equal(suite.T(), user.ID, created[0].ResourceID)
	assert.Equal(suite.T(), "User created by admin", created[0].Details)
}

func (suite *AuthUsecaseTestSuite) TestCreateUser_DefaultsToStudent() {
	ctx := utils.WithUserRole(utils.WithUserID(context.Background(), "admin-1"), string(model.RoleAdmin))
	email := "plain@example.com"

	suite.mockRepo.On("GetUserByEmail", ctx, email).Return(nil, usecase.ErrUserNotFound)
	suite.mockRepo.On("CreateUser", ctx, mock.AnythingOfType("*model.User")).Return(nil)

	user, err := suite.usecase.CreateUser(ctx, usecase.RegisterRequest{
		Email: email, Password: strongPassword, FirstName: "Plain", LastName: "Person",
	})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []model.Role{model.RoleStudent}, user.Roles)
}

func (suite *AuthUsecaseTestSuite) TestRegister_EmailAlreadyTaken() {
	ctx := context.Background()
	email := "existing@example.com"
	suite.mockRepo.On("GetUserByEmail", ctx, email).Return(&model.User{ID: "existing", Email: email}, nil)

	resp, err := suite.usecase.Register(ctx, usecase.RegisterRequest{
		Email: email, Password: strongPassword, FirstName: "A", LastName: "B",
	})

	assert.ErrorIs(suite.T(), err, usecase.ErrEmailTaken)
	assert.Nil(suite.T(), resp)
	suite.mockToken.AssertNotCalled(suite.T(), "GenerateToken", mock.Anything, mock.Anything)
}

func (suite *AuthUsecaseTestSuite) TestRegister_RejectsBadInput() {
	cases := map[string]usecase.RegisterRequest{
		"invalid email":    {Email: "invalid-email", Password: strongPassword, FirstName: "A", LastName: "B"},
		"missing name":     {Email: "a@example.com", Password: strongPassword},
		"short password":   {Email: "a@example.com", Password: "Ab1!", FirstName: "A", LastName: "B"},
		"weak password":    {Email: "a@example.com", Password: "password123", FirstName: "A", LastName: "B"},
		"bad username":     {Email: "a@example.com", Username: "no spaces", Password: strongPassword, FirstName: "A", LastName: "B"},
		"unknown root dom": {Email: "test@", Password: strongPassword, FirstName: "A", LastName: "B"},
	}

	for name, req := range cases {
		suite.Run(name, func() {
			resp, err := suite.usecase.Register(context.Background(), req)
			assert.Error(suite.T(), err)
			assert.Nil(suite.T(), resp)
		})
	}
	suite.mockRepo.AssertNotCalled(suite.T(), "GetUserByEmail", mock.Anything, mock.Anything)
}

func (suite *AuthUsecaseTestSuite) TestLogin_SuccessResetsFailures() {
	ctx := context.Background()
	email := "test@example.com"
	user := suite.user(email, strongPassword)

	_, _ = suite.lockouts.IncrementFailures(ctx, email)
	_, _ = suite.lockouts.IncrementFailures(ctx, email)

	suite.mockRepo.On("GetUserByEmail", ctx, email).Return(user, nil)
	suite.mockRepo.On("UpdateUser", ctx, user).Return(nil)
	suite.expectSessionStart("jwt-token-456")

	resp, err := suite.usecase.Login(ctx, usecase.LoginRequest{
		Email:    "  Test@Example.com ",
		Password: strongPassword,
		Client:   usecase.ClientInfo{IPAddress: "10.0.0.1", UserAgent: "test-agent"},
	})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "jwt-token-456", resp.AccessToken)
	require.NotNil(suite.T(), user.LastLogin)

	state, err := suite.lockouts.Get(ctx, email)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), state.FailedCount)

	logins := suite.events.ofType(eventbus.EventTypeUserLoggedIn)
	require.Len(suite.T(), logins, 1)
	assert.Equal(suite.T(), "10.0.0.1", logins[0].IPAddress)
	assert.Equal(suite.T(), user.ID, logins[0].ActorID)
}

func (suite *AuthUsecaseTestSuite) TestLogin_InvalidCredentials() {
	ctx := context.Background()
	email := "test@example.com"
	suite.mockRepo.On("GetUserByEmail", ctx, email).Return(suite.user(email, strongPassword), nil)

	resp, err := suite.usecase.Login(ctx, usecase.LoginRequest{Email: email, Password: "wrong"})

	assert.Equal(suite.T(), usecase.ErrInvalidCredentials, err)
	assert.Equal(suite.T(), "Invalid email or password", err.Error())
	assert.Nil(suite.T(), resp)

	failures := suite.events.ofType(eventbus.EventTypeLoginFailed)
	require.Len(suite.T(), failures, 1)
	assert.Equal(suite.T(), "Failed login attempt 1", failures[0].Details)
}

func (suite *AuthUsecaseTestSuite) TestLogin_UnknownUserCountsTowardsLockout() {
	ctx := context.Background()
	email := "ghost@example.com"
	suite.mockRepo.On("GetUserByEmail", ctx, email).Return(nil, usecase.ErrUserNotFound)

	_, err := suite.usecase.Login(ctx, usecase.LoginRequest{Email: email, Password: "whatever"})
	assert.Equal(suite.T(), usecase.ErrInvalidCredentials, err)

	state, err := suite.lockouts.Get(ctx, email)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, state.FailedCount)
}

func (suite *AuthUsecaseTestSuite) TestLogin_LocksAfterThreshold() {
	ctx := context.Background()
	email := "test@example.com"
	user := suite.user(email, strongPassword)
	suite.mockRepo.On("GetUserByEmail", ctx, email).Return(user, nil)

	for i := 1; i < 5; i++ {
		_, err := suite.usecase.Login(ctx, usecase.LoginRequest{Email: email, Password: "wrong"})
		assert.Equal(suite.T(), usecase.ErrInvalidCredentials, err, "attempt %d", i)
	}

	_, err := suite.usecase.Login(ctx, usecase.LoginRequest{Email: email, Password: "wrong"})
	require.ErrorIs(suite.T(), err, usecase.ErrAccountLocked)
	var lockErr *usecase.LockoutError
	require.True(suite.T(), errors.As(err, &lockErr))
	assert.Equal(suite.T(), 30*time.Minute, lockErr.Remaining)
	assert.Equal(suite.T(), "Account is locked out. Please try again in 30 minutes.", err.Error())

	locked := suite.events.ofType(eventbus.EventTypeAccountLocked)
	require.Len(suite.T(), locked, 1)
	assert.Equal(suite.T(), "Account locked out after 5 failed attempts", locked[0].Details)

	// Correct password is still refused while locked, and the lock is not extended.
	suite.now = suite.now.Add(10 * time.Minute)
	_, err = suite.usecase.Login(ctx, usecase.LoginRequest{Email: email, Password: strongPassword})
	require.True(suite.T(), errors.As(err, &lockErr))
	assert.Equal(suite.T(), 20*time.Minute, lockErr.Remaining)
	assert.Equal(suite.T(), "Account is locked out. Please try again in 20 minutes.", err.Error())

	// After expiry the correct password succeeds.
	suite.now = suite.now.Add(21 * time.Minute)
	suite.mockRepo.On("UpdateUser", ctx, user).Return(nil)
	suite.expectSessionStart("jwt")
	resp, err := suite.usecase.Login(ctx, usecase.LoginRequest{Email: email, Password: strongPassword})
	require.NoError(suite.T(), err)
	assert.NotNil(suite.T(), resp)

	status, err := suite.usecase.LockoutStatus(ctx, email)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), status.Locked)
	assert.Zero(suite.T(), status.FailedAttempts)
}

func (suite *AuthUsecaseTestSuite) TestLogin_InactiveAccount() {
	ctx := context.Background()
	email := "test@example.com"
	user := suite.user(email, strongPassword)
	user.Status = model.UserStatusSuspended
	suite.mockRepo.On("GetUserByEmail", ctx, email).Return(user, nil)

	_, err := suite.usecase.Login(ctx, usecase.LoginRequest{Email: email, Password: strongPassword})
	assert.ErrorIs(suite.T(), err, usecase.ErrAccountInactive)
}

func (suite *AuthUsecaseTestSuite) TestUnlockAccount() {
	ctx := context.Background()
	email := "test@example.com"
	require.NoError(suite.T(), suite.lockouts.Lock(ctx, email, suite.now.Add(time.Hour)))

	status, err := suite.usecase.LockoutStatus(ctx, email)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), status.Locked)
	assert.Equal(suite.T(), int64(3600), status.RemainingSeconds)

	require.NoError(suite.T(), suite.usecase.UnlockAccount(ctx, "TEST@example.com"))
	status, err = suite.usecase.LockoutStatus(ctx, email)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), status.Locked)
}

func (suite *AuthUsecaseTestSuite) session(id string) *model.Session {
	return &model.Session{
		ID:           id,
		UserID:       "user-123",
		UserEmail:    "test@example.com",
		UserRole:     model.RoleStudent,
		CreatedAt:    suite.now,
		ExpiresAt:    suite.now.Add(time.Hour),
		LastActivity: suite.now,
		IsActive:     true,
	}
}

func (suite *AuthUsecaseTestSuite) TestValidateToken_TouchesSession() {
	ctx := context.Background()
	sess := suite.session("session-1")
	claims := &repository.Claims{UserID: "user-123", Role: model.RoleStudent, SessionID: "session-1"}

	suite.mockToken.On("ValidateToken", ctx, "good").Return(claims, nil)
	suite.mockRepo.On("GetSessionByID", ctx, "session-1").Return(sess, nil)
	suite.mockRepo.On("UpdateSession", ctx, sess).Return(nil)

	suite.now = suite.now.Add(10 * time.Minute)
	got, err := suite.usecase.ValidateToken(ctx, "good")

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), claims, got)
	assert.Equal(suite.T(), suite.now, sess.LastActivity)
}

func (suite *AuthUsecaseTestSuite) TestValidateToken_ExpiredSession() {
	ctx := context.Background()
	sess := suite.session("session-1")
	suite.mockToken.On("ValidateToken", ctx, "good").
		Return(&repository.Claims{UserID: "user-123", SessionID: "session-1"}, nil)
	suite.mockRepo.On("GetSessionByID", ctx, "session-1").Return(sess, nil)

	suite.now = suite.now.Add(61 * time.Minute)
	_, err := suite.usecase.ValidateToken(ctx, "good")

	assert.ErrorIs(suite.T(), err, usecase.ErrSessionExpired)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateSession", mock.Anything, mock.Anything)
}

func (suite *AuthUsecaseTestSuite) TestValidateToken_BadToken() {
	ctx := context.Background()
	suite.mockToken.On("ValidateToken", ctx, "bad").Return(nil, errors.New("signature"))

	_, err := suite.usecase.ValidateToken(ctx, "bad")
	assert.ErrorIs(suite.T(), err, usecase.ErrTokenInvalid)
}

func (suite *AuthUsecaseTestSuite) TestLogout_ClearsSessionAndCSRF() {
	ctx := context.Background()
	sess := suite.session("session-1")
	require.NoError(suite.T(), suite.csrf.Save(ctx, "session-1", &model.CSRFToken{Token: "t", ExpiresAt: suite.now.Add(time.Hour)}))

	suite.mockRepo.On("GetSessionByID", ctx, "session-1").Return(sess, nil)
	suite.mockRepo.On("DeleteSession", ctx, "session-1").Return(nil)

	require.NoError(suite.T(), suite.usecase.Logout(ctx, "session-1"))

	tok, err := suite.csrf.Get(ctx, "session-1")
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), tok)
	require.Len(suite.T(), suite.events.ofType(eventbus.EventTypeUserLoggedOut), 1)
}

func (suite *AuthUsecaseTestSuite) TestExpireSession_AuditsTimeout() {
	ctx := context.Background()
	sess := suite.session("session-1")
	require.NoError(suite.T(), suite.csrf.Save(ctx, "session-1", &model.CSRFToken{Token: "t", ExpiresAt: suite.now.Add(time.Hour)}))

	suite.mockRepo.On("GetSessionByID", ctx, "session-1").Return(sess, nil)
	suite.mockRepo.On("DeleteSession", ctx, "session-1").Return(nil)

	require.NoError(suite.T(), suite.usecase.ExpireSession(ctx, "session-1"))

	tok, err := suite.csrf.Get(ctx, "session-1")
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), tok)

	out := suite.events.ofType(eventbus.EventTypeUserLoggedOut)
	require.Len(suite.T(), out, 1)
	assert.Equal(suite.T(), usecase.SessionTimeoutReason, out[0].Details)
	assert.Equal(suite.T(), "session-1", out[0].Metadata["sessionId"])
}

func (suite *AuthUsecaseTestSuite) TestLogout_UnknownSessionIsNoop() {
	ctx := context.Background()
	suite.mockRepo.On("GetSessionByID", ctx, "gone").Return(nil, usecase.ErrSessionNotFound)

	assert.NoError(suite.T(), suite.usecase.Logout(ctx, "gone"))
	suite.mockRepo.AssertNotCalled(suite.T(), "DeleteSession", mock.Anything, mock.Anything)
}

func (suite *AuthUsecaseTestSuite) TestExtendSession() {
	ctx := context.Background()
	sess := suite.session("session-1")
	suite.mockRepo.On("GetSessionByID", ctx, "session-1").Return(sess, nil)
	suite.mockRepo.On("UpdateSession", ctx, sess).Return(nil)

	suite.now = suite.now.Add(50 * time.Minute)
	status, err := suite.usecase.ExtendSession(ctx, "session-1")

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.now.Add(time.Hour), status.ExpiresAt)
	assert.Equal(suite.T(), int64(3600), status.RemainingSeconds)

	tok, err := suite.csrf.Get(ctx, "session-1")
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), tok, "extending issues a csrf token when none exists")
}

func (suite *AuthUsecaseTestSuite) TestCSRFTokenAndValidation() {
	ctx := context.Background()
	suite.mockRepo.On("GetSessionByID", ctx, "session-1").Return(suite.session("session-1"), nil)

	tok, err := suite.usecase.CSRFToken(ctx, "session-1")
	require.NoError(suite.T(), err)

	again, err := suite.usecase.CSRFToken(ctx, "session-1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), tok.Token, again.Token)

	ok, err := suite.usecase.ValidateCSRF(ctx, "session-1", tok.Token)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), ok)

	ok, err = suite.usecase.ValidateCSRF(ctx, "session-1", "forged")
	require.NoError(suite.T(), err)
	assert.False(suite.T(), ok)

	suite.config.CSRFEnabled = false
	ok, err = suite.usecase.ValidateCSRF(ctx, "session-1", "")
	require.NoError(suite.T(), err)
	assert.True(suite.T(), ok)
}

func (suite *AuthUsecaseTestSuite) TestChangePassword() {
	ctx := context.Background()
	user := suite.user("test@example.com", strongPassword)
	suite.mockRepo.On("GetUserByID", ctx, user.ID).Return(user, nil)
	suite.mockRepo.On("UpdateUser", ctx, user).Return(nil)
	suite.mockRepo.On("DeleteUserSessions", ctx, user.ID).Return(nil)

	assert.ErrorIs(suite.T(), suite.usecase.ChangePassword(ctx, user.ID, "wrong", "N3w$ecret!"), usecase.ErrInvalidCredentials)
	assert.ErrorIs(suite.T(), suite.usecase.ChangePassword(ctx, user.ID, strongPassword, "weakpassword"), usecase.ErrWeakPassword)

	require.NoError(suite.T(), suite.usecase.ChangePassword(ctx, user.ID, strongPassword, "N3w$ecret!"))
	assert.NoError(suite.T(), bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("N3w$ecret!")))
	suite.mockRepo.AssertCalled(suite.T(), "DeleteUserSessions", ctx, user.ID)
}

func (suite *AuthUsecaseTestSuite) TestUpdateUserAccess() {
	ctx := utils.WithUserID(context.Background(), "admin-1")
	user := suite.user("test@example.com", strongPassword)
	suite.mockRepo.On("GetUserByID", ctx, user.ID).Return(user, nil)
	suite.mockRepo.On("UpdateUser", ctx, user).Return(nil)
	suite.mockRepo.On("DeleteUserSessions", ctx, user.ID).Return(nil)

	updated, err := suite.usecase.UpdateUserAccess(ctx, user.ID, usecase.UpdateAccessRequest{
		Roles:  []model.Role{model.RoleInstructor},
		Status: model.UserStatusActive,
	})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), model.RoleInstructor, updated.PrimaryRole())
	assert.Empty(suite.T(), updated.PasswordHash)

	changes := suite.events.ofType(eventbus.EventTypeResourceUpdated)
	require.Len(suite.T(), changes, 1)
	assert.Equal(suite.T(), "admin-1", changes[0].ActorID)

	_, err = suite.usecase.UpdateUserAccess(ctx, user.ID, usecase.UpdateAccessRequest{Roles: []model.Role{"root"}})
	assert.ErrorIs(suite.T(), err, usecase.ErrInvalidRole)
}

func TestAuthUsecaseTestSuite(t *testing.T) {
	suite.Run(t, new(AuthUsecaseTestSuite))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, usecase.ValidatePassword(strongPassword))
	assert.Error(t, usecase.ValidatePassword("Ab1!"))
	assert.ErrorIs(t, usecase.ValidatePassword("alllowercase1!"), usecase.ErrWeakPassword)
	assert.ErrorIs(t, usecase.ValidatePassword("NoDigits!!"), usecase.ErrWeakPassword)
	assert.ErrorIs(t, usecase.ValidatePassword("NoSpecial123"), usecase.ErrWeakPassword)
}
