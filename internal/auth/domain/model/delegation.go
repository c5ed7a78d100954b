package model

import (
	"errors"
	"sort"
	"time"
)

var (
	ErrDelegationSelf       = errors.New("cannot delegate to yourself")
	ErrDelegationExpiry     = errors.New("delegation expiry must be in the future")
	ErrDelegationNoPerms    = errors.New("delegation requires at least one permission")
	ErrDelegationIncomplete = errors.New("delegator and delegatee are required")
)

// Delegation grants another user a subset of permissions, optionally limited to
// specific resources, until it expires or is revoked.
type Delegation struct {
	ID           string     `json:"id" bson:"_id"`
	DelegatorID  string     `json:"delegatorId" bson:"delegator_id"`
	DelegateeID  string     `json:"delegateeId" bson:"delegatee_id"`
	Permissions  []string   `json:"permissions" bson:"permissions"`
	ResourceType string     `json:"resourceType,omitempty" bson:"resource_type,omitempty"`
	ResourceIDs  []string   `json:"resourceIds,omitempty" bson:"resource_ids,omitempty"`
	Reason       string     `json:"reason,omitempty" bson:"reason,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" bson:"created_at"`
	ExpiresAt    time.Time  `json:"expiresAt" bson:"expires_at"`
	RevokedAt    *time.Time `json:"revokedAt,omitempty" bson:"revoked_at,omitempty"`
	RevokedBy    string     `json:"revokedBy,omitempty" bson:"revoked_by,omitempty"`
}

// Validate checks the delegation can be created at now.
func (d *Delegation) Validate(now time.Time) error {
	if d.DelegatorID == "" || d.DelegateeID == "" {
		return ErrDelegationIncomplete
	}
	if d.DelegatorID == d.DelegateeID {
		return ErrDelegationSelf
	}
	if len(d.Permissions) == 0 {
		return ErrDelegationNoPerms
	}
	if !d.ExpiresAt.After(now) {
		return ErrDelegationExpiry
	}
	return nil
}

// IsActive reports whether the delegation is neither revoked nor expired.
func (d *Delegation) IsActive(now time.Time) bool {
	return d.RevokedAt == nil && d.ExpiresAt.After(now)
}

// Covers reports whether the delegation grants permission on resourceID. An empty
// resource list covers every resource of the delegated type.
func (d *Delegation) Covers(permission, resourceType, resourceID string) bool {
	found := false
	for _, p := range d.Permissions {
		if p == permission || p == "*" {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	if d.ResourceType != "" && resourceType != "" && d.ResourceType != resourceType {
		return false
	}
	if len(d.ResourceIDs) == 0 || resourceID == "" {
		return true
	}
	for _, id := range d.ResourceIDs {
		if id == resourceID {
			return true
		}
	}
	return false
}

// ActivePermissions is the sorted union of the permissions granted by the
// delegations that are active at now.
func ActivePermissions(delegations []*Delegation, now time.Time) []string {
	seen := make(map[string]bool)
	perms := make([]string, 0)
	for _, d := range delegations {
		if !d.IsActive(now) {
			continue
		}
		for _, p := range d.Permissions {
			if !seen[p] {
				seen[p] = true
				perms = append(perms, p)
			}
		}
	}
	sort.Strings(perms)
	return perms
}
