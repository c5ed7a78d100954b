package usecase_test

import (
	"context"
	"testing"
	"time"

	"showcase-platform/internal/auth/adapter/persistence/memory"
	"showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/auth/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestProvisioner_CreateUser(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC)
	repo := &mockAuthRepository{}
	repo.On("GetUserByEmail", ctx, "ada@example.com").Return(nil, usecase.ErrUserNotFound)
	repo.On("CreateUser", ctx, mock.AnythingOfType("*model.User")).Return(nil)

	p := usecase.NewProvisioner(repo, nil, bcrypt.MinCost, nil, nil).
		WithClock(func() time.Time { return now })

	user, err := p.CreateUser(ctx, usecase.ProvisionRequest{
		Email:    "  Ada@Example.com ",
		Password: strongPassword,
		Roles:    []model.Role{model.RoleInstructor},
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "ada", user.Username)
	assert.Equal(t, []model.Role{model.RoleInstructor}, user.Roles)
	assert.Equal(t, model.UserStatusActive, user.Status)
	assert.Equal(t, now, user.CreatedAt)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(strongPassword)))
	repo.AssertExpectations(t)
}

func TestProvisioner_CreateUserDefaultsToStudent(t *testing.T) {
	ctx := context.Background()
	repo := &mockAuthRepository{}
	repo.On("GetUserByEmail", ctx, "sam@example.com").Return(nil, usecase.ErrUserNotFound)
	repo.On("CreateUser", ctx, mock.AnythingOfType("*model.User")).Return(nil)

	user, err := usecase.NewProvisioner(repo, nil, bcrypt.MinCost, nil, nil).
		CreateUser(ctx, usecase.ProvisionRequest{Email: "sam@example.com", Username: "sam_k", Password: strongPassword})
	require.NoError(t, err)
	assert.Equal(t, "sam_k", user.Username)
	assert.Equal(t, []model.Role{model.RoleStudent}, user.Roles)
}

func TestProvisioner_CreateUserRejects(t *testing.T) {
	ctx := context.Background()
	existing := &model.User{ID: "u-1", Email: "taken@example.com"}

	tests := []struct {
		name    string
		req     usecase.ProvisionRequest
		setup   func(*mockAuthRepository)
		wantErr error
	}{
		{
			name:    "bad email",
			req:     usecase.ProvisionRequest{Email: "not-an-email", Password: strongPassword},
			wantErr: usecase.ErrInvalidEmailFormat,
		},
		{
			name:    "bad username",
			req:     usecase.ProvisionRequest{Email: "a@example.com", Username: "a b", Password: strongPassword},
			wantErr: usecase.ErrInvalidUsername,
		},
		{
			name:    "unknown role",
			req:     usecase.ProvisionRequest{Email: "a@example.com", Password: strongPassword, Roles: []model.Role{"root"}},
			wantErr: usecase.ErrInvalidRole,
		},
		{
			name: "email taken",
			req:  usecase.ProvisionRequest{Email: "taken@example.com", Password: strongPassword},
			setup: func(r *mockAuthRepository) {
				r.On("GetUserByEmail", ctx, "taken@example.com").Return(existing, nil)
			},
			wantErr: usecase.ErrEmailTaken,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockAuthRepository{}
			if tt.setup != nil {
				tt.setup(repo)
			}
			_, err := usecase.NewProvisioner(repo, nil, bcrypt.MinCost, nil, nil).CreateUser(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		})
	}
}

func TestProvisioner_ResetPasswordEndsSessions(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: "u-1", Email: "ada@example.com", PasswordHash: "old"}
	repo := &mockAuthRepository{}
	repo.On("GetUserByEmail", ctx, "ada@example.com").Return(user, nil)
	repo.On("UpdateUser", ctx, user).Return(nil)
	repo.On("DeleteUserSessions", ctx, "u-1").Return(nil)

	_, err := usecase.NewProvisioner(repo, nil, bcrypt.MinCost, nil, nil).
		ResetPassword(ctx, "ADA@example.com", strongPassword)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(strongPassword)))
	repo.AssertExpectations(t)
}

func TestProvisioner_Unlock(t *testing.T) {
	ctx := context.Background()
	lockouts := memory.NewLockoutStore(time.Hour)
	_, err := lockouts.IncrementFailures(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NoError(t, lockouts.Lock(ctx, "ada@example.com", time.Now().Add(time.Hour)))

	p := usecase.NewProvisioner(&mockAuthRepository{}, lockouts, bcrypt.MinCost, nil, nil)
	require.NoError(t, p.Unlock(ctx, " Ada@example.com"))

	state, err := lockouts.Get(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Zero(t, state.FailedCount)
	assert.True(t, state.LockedUntil.IsZero())
}

func TestProvisioner_UnlockWithoutStore(t *testing.T) {
	p := usecase.NewProvisioner(&mockAuthRepository{}, nil, bcrypt.MinCost, nil, nil)
	assert.ErrorIs(t, p.Unlock(context.Background(), "ada@example.com"), usecase.ErrLockoutUnavailable)
}
