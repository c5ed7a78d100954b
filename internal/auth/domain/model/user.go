package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStatus of an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// User represents an account on the platform
type User struct {
	ID           string                 `json:"id" bson:"id"`
	ObjectID     primitive.ObjectID     `json:"-" bson:"_id,omitempty"`
	CognitoID    string                 `json:"cognitoId,omitempty" bson:"cognito_id,omitempty"`
	Email        string                 `json:"email" bson:"email"`
	Username     string                 `json:"username" bson:"username"`
	PasswordHash string                 `json:"-" bson:"password_hash"`
	Roles        []Role                 `json:"roles" bson:"roles"`
	Status       UserStatus             `json:"status" bson:"status"`
	FirstName    string                 `json:"firstName,omitempty" bson:"first_name,omitempty"`
	LastName     string                 `json:"lastName,omitempty" bson:"last_name,omitempty"`
	LastLogin    *time.Time             `json:"lastLogin,omitempty" bson:"last_login,omitempty"`
	Settings     map[string]interface{} `json:"settings,omitempty" bson:"settings,omitempty"`
	CreatedAt    time.Time              `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time              `json:"updatedAt" bson:"updated_at"`
}

// HasRole reports whether the user holds role r.
func (u *User) HasRole(r Role) bool {
	for _, have := range u.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// PrimaryRole is the effective role used for authorization.
func (u *User) PrimaryRole() Role {
	return HighestRole(u.Roles)
}

// IsActive reports whether the account may sign in.
func (u *User) IsActive() bool {
	return u.Status == "" || u.Status == UserStatusActive
}

// Sanitized returns a copy without credentials.
func (u *User) Sanitized() *User {
	cp := *u
	cp.PasswordHash = ""
	cp.Roles = append([]Role(nil), u.Roles...)
	return &cp
}
