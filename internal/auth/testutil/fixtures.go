package testutil

import (
	"strings"
	"time"

	"showcase-platform/internal/auth/domain/model"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword satisfies the password policy.
const DefaultPassword = "Sup3r$ecret"

// UserFixture provides test data for User model
type UserFixture struct{}

// NewUserFixture creates a new UserFixture instance
func NewUserFixture() *UserFixture {
	return &UserFixture{}
}

func hash(password string) string {
	h, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(h)
}

// UserWithRole returns an active user holding role.
func (f *UserFixture) UserWithRole(email string, role model.Role) *model.User {
	now := time.Now().UTC()
	return &model.User{
		ID:           "user-" + email,
		Email:        email,
		Username:     strings.SplitN(email, "@", 2)[0],
		PasswordHash: hash(DefaultPassword),
		Roles:        []model.Role{role},
		Status:       model.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// UserWithEmail returns a student with specific email
func (f *UserFixture) UserWithEmail(email string) *model.User {
	return f.UserWithRole(email, model.RoleStudent)
}

// UserWithPassword returns a student with specific password
func (f *UserFixture) UserWithPassword(email, password string) *model.User {
	u := f.UserWithEmail(email)
	u.PasswordHash = hash(password)
	return u
}

// SessionFixture provides test data for Session model
type SessionFixture struct{}

// NewSessionFixture creates a new SessionFixture instance
func NewSessionFixture() *SessionFixture {
	return &SessionFixture{}
}

// SessionForUser returns an active session for specific user
func (f *SessionFixture) SessionForUser(user *model.User) *model.Session {
	now := time.Now().UTC()
	return &model.Session{
		ID:           "session-for-" + user.ID,
		UserID:       user.ID,
		UserEmail:    user.Email,
		UserRole:     user.PrimaryRole(),
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Hour),
		LastActivity: now,
		IsActive:     true,
	}
}

// ExpiredSession returns a session that expired an hour ago
func (f *SessionFixture) ExpiredSession(user *model.User) *model.Session {
	s := f.SessionForUser(user)
	s.ID = "expired-" + s.ID
	s.CreatedAt = s.CreatedAt.Add(-2 * time.Hour)
	s.LastActivity = s.CreatedAt
	s.ExpiresAt = s.CreatedAt.Add(time.Hour)
	return s
}

// TestData provides all fixtures
type TestData struct {
	Users    *UserFixture
	Sessions *SessionFixture
}

// NewTestData creates a new TestData instance with all fixtures
func NewTestData() *TestData {
	return &TestData{
		Users:    NewUserFixture(),
		Sessions: NewSessionFixture(),
	}
}

// Common inputs for validation testing
var (
	InvalidEmails = []string{
		"",
		"invalid-email",
		"@example.com",
		"test@",
		"test space@example.com",
	}

	// Each fails exactly one password rule.
	WeakPasswords = []string{
		"Sh0rt!",
		"alllowercase1!",
		"ALLUPPERCASE1!",
		"NoDigitsHere!",
		"NoSpecials123",
	}
)
