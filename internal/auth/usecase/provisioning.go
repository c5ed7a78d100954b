package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/auth/domain/repository"
	"showcase-platform/internal/shared/eventbus"
	"showcase-platform/internal/shared/logger"

	"github.com/google/uuid"
)

// ErrLockoutUnavailable is returned by Unlock when lockout state is not reachable
// from this process.
var ErrLockoutUnavailable = errors.New("lockout state is kept in server memory; unlock through the admin API")

// ProvisionRequest describes an account created by an operator.
type ProvisionRequest struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
	Roles     []model.Role
}

// Provisioner manages accounts outside the HTTP flow: it creates users without
// opening a session, resets passwords and clears lockouts.
type Provisioner struct {
	repo       repository.AuthRepository
	lockouts   repository.LockoutStore
	bcryptCost int
	events     eventbus.EventBusInterface
	log        logger.Logger
	now        Clock
}

// NewProvisioner builds a provisioner. lockouts may be nil when lockout state lives
// only in the server process.
func NewProvisioner(repo repository.AuthRepository, lockouts repository.LockoutStore, bcryptCost int, events eventbus.EventBusInterface, log logger.Logger) *Provisioner {
	if log == nil {
		log = logger.NewNop()
	}
	return &Provisioner{
		repo:       repo,
		lockouts:   lockouts,
		bcryptCost: bcryptCost,
		events:     events,
		log:        log.WithComponent("provisioner"),
		now:        time.Now,
	}
}

func (p *Provisioner) WithClock(c Clock) *Provisioner {
	p.now = c
	return p
}

// CreateUser validates and stores a new active account. Roles default to student.
func (p *Provisioner) CreateUser(ctx context.Context, req ProvisionRequest) (*model.User, error) {
	email := normalizeEmail(req.Email)
	if !emailRegex.MatchString(email) {
		return nil, ErrInvalidEmailFormat
	}
	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = usernameFromEmail(email)
	}
	if !usernameRegex.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	roles := req.Roles
	if len(roles) == 0 {
		roles = []model.Role{model.RoleStudent}
	}
	for _, r := range roles {
		if !r.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRole, r)
		}
	}

	if _, err := p.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := HashPassword(req.Password, p.bcryptCost)
	if err != nil {
		return nil, err
	}
	now := p.now()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Roles:        roles,
		Status:       model.UserStatusActive,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	eventbus.Emit(ctx, p.events, p.log, eventbus.EventTypeResourceCreated, "auth", eventbus.ActivityPayload{
		ActorID:      "system",
		ResourceType: "user",
		ResourceID:   user.ID,
		Details:      "User provisioned",
	})
	return user, nil
}

// ResetPassword replaces the password of email and ends its sessions.
func (p *Provisioner) ResetPassword(ctx context.Context, email, password string) (*model.User, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	user, err := p.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(password, p.bcryptCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	user.UpdatedAt = p.now()
	if err := p.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	if err := p.repo.DeleteUserSessions(ctx, user.ID); err != nil {
		p.log.WithContext(ctx).Warnf("failed to end sessions of %s: %v", user.ID, err)
	}
	return user, nil
}

// Unlock clears the failed login counter and any lockout of email.
func (p *Provisioner) Unlock(ctx context.Context, email string) error {
	if p.lockouts == nil {
		return ErrLockoutUnavailable
	}
	return p.lockouts.Reset(ctx, normalizeEmail(email))
}
