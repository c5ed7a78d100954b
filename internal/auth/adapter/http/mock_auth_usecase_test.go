package http_test

import (
	"context"

	"showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/auth/domain/repository"
	"showcase-platform/internal/auth/usecase"

	"github.com/stretchr/testify/mock"
)

// mockAuthUsecase is a shared mock type for the AuthUsecaseInterface
type mockAuthUsecase struct {
	mock.Mock
}

func (m *mockAuthUsecase) authResponse(args mock.Arguments) (*usecase.AuthResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.AuthResponse), args.Error(1)
}

func (m *mockAuthUsecase) Register(ctx context.Context, req usecase.RegisterRequest) (*usecase.AuthResponse, error) {
	return m.authResponse(m.Called(ctx, req))
}

func (m *mockAuthUsecase) Login(ctx context.Context, req usecase.LoginRequest) (*usecase.AuthResponse, error) {
	return m.authResponse(m.Called(ctx, req))
}

func (m *mockAuthUsecase) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *mockAuthUsecase) ExpireSession(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *mockAuthUsecase) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Claims), args.Error(1)
}

func (m *mockAuthUsecase) RefreshToken(ctx context.Context, tokenString string) (*usecase.AuthResponse, error) {
	return m.authResponse(m.Called(ctx, tokenString))
}

func (m *mockAuthUsecase) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockAuthUsecase) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	return m.Called(ctx, userID, oldPassword, newPassword).Error(0)
}

func (m *mockAuthUsecase) sessionStatus(args mock.Arguments) (*usecase.SessionStatus, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.SessionStatus), args.Error(1)
}

func (m *mockAuthUsecase) SessionStatus(ctx context.Context, sessionID string) (*usecase.SessionStatus, error) {
	return m.sessionStatus(m.Called(ctx, sessionID))
}

func (m *mockAuthUsecase) ExtendSession(ctx context.Context, sessionID string) (*usecase.SessionStatus, error) {
	return m.sessionStatus(m.Called(ctx, sessionID))
}

func (m *mockAuthUsecase) TouchSession(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *mockAuthUsecase) CSRFToken(ctx context.Context, sessionID string) (*model.CSRFToken, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CSRFToken), args.Error(1)
}

func (m *mockAuthUsecase) ValidateCSRF(ctx context.Context, sessionID, token string) (bool, error) {
	args := m.Called(ctx, sessionID, token)
	return args.Bool(0), args.Error(1)
}

func (m *mockAuthUsecase) CreateUser(ctx context.Context, req usecase.RegisterRequest) (*model.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockAuthUsecase) ListUsers(ctx context.Context, filter repository.UserFilter) ([]*model.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *mockAuthUsecase) UpdateUserAccess(ctx context.Context, userID string, req usecase.UpdateAccessRequest) (*model.User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockAuthUsecase) DeleteUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockAuthUsecase) LockoutStatus(ctx context.Context, email string) (*usecase.LockoutStatus, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.LockoutStatus), args.Error(1)
}

func (m *mockAuthUsecase) UnlockAccount(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

// Ensure mockAuthUsecase implements all methods of AuthUsecaseInterface
var _ usecase.AuthUsecaseInterface = (*mockAuthUsecase)(nil)
