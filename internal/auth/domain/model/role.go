package model

import "strings"

// Role is a platform role. A user may hold several; the highest one is effective.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleStudent    Role = "student"
	RoleGuest      Role = "guest"
)

var roleRank = map[Role]int{
	RoleGuest:      0,
	RoleStudent:    1,
	RoleInstructor: 2,
	RoleAdmin:      3,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r is at least as privileged as other.
func (r Role) AtLeast(other Role) bool {
	return r.Valid() && roleRank[r] >= roleRank[other]
}

// ParseRole normalizes s; unknown values yield RoleGuest and false.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return RoleGuest, false
	}
	return r, true
}

// HighestRole returns the most privileged of roles, or RoleGuest when empty.
func HighestRole(roles []Role) Role {
	best := RoleGuest
	for _, r := range roles {
		if r.Valid() && roleRank[r] > roleRank[best] {
			best = r
		}
	}
	return best
}
