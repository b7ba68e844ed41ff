package domain

import (
	"fmt"
	"strings"
)

// Role is the application role carried by a principal.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Principal is the authenticated identity making a request.
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether p has the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Relation is how a principal stands towards an event. Every read and write
// decision is a switch over this closed set.
type Relation int

const (
	RelationOther Relation = iota
	RelationOwner
	RelationAdmin
)

func (r Relation) String() string {
	switch r {
	case RelationAdmin:
		return "admin"
	case RelationOwner:
		return "owner"
	default:
		return "other"
	}
}

// Relate classifies p against e. Admin wins over ownership.
func Relate(p Principal, e *Event) Relation {
	if p.IsAdmin() {
		return RelationAdmin
	}
	if p.UserID != "" && p.UserID == e.CreatedBy {
		return RelationOwner
	}
	return RelationOther
}

// WritePolicy selects who may create, update and delete events.
type WritePolicy string

const (
	// WritePolicyAdminOnly lets only admins write. Owners who are not admins
	// cannot edit their own events.
	WritePolicyAdminOnly WritePolicy = "admin"
	// WritePolicyAdminOrOwner lets any principal create and lets admins or
	// the event's creator update and delete.
	WritePolicyAdminOrOwner WritePolicy = "owner"
)

// ParseWritePolicy parses the configured policy name. Empty means admin-only.
func ParseWritePolicy(s string) (WritePolicy, error) {
	switch WritePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", WritePolicyAdminOnly:
		return WritePolicyAdminOnly, nil
	case WritePolicyAdminOrOwner:
		return WritePolicyAdminOrOwner, nil
	}
	return "", fmt.Errorf("unknown event write policy %q", s)
}

// CanRead reports whether p may see e.
func CanRead(p Principal, e *Event) bool {
	switch Relate(p, e) {
	case RelationAdmin, RelationOwner:
		return true
	case RelationOther:
		return e.IsPublic
	}
	return false
}

// CanCreate reports whether p may create events under policy.
func CanCreate(p Principal, policy WritePolicy) bool {
	if p.IsAdmin() {
		return true
	}
	return policy == WritePolicyAdminOrOwner && p.UserID != ""
}

// CanWrite reports whether p may update or delete e under policy.
func CanWrite(p Principal, e *Event, policy WritePolicy) bool {
	switch Relate(p, e) {
	case RelationAdmin:
		return true
	case RelationOwner:
		return policy == WritePolicyAdminOrOwner
	case RelationOther:
		return false
	}
	return false
}
