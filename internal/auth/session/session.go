package session

import (
	"time"

	"github.com/google/uuid"
)

// Role is the access tier a session was authenticated into. A session
// carries exactly one role; switching roles means authenticating again.
type Role int

const (
	RoleUnknown Role = iota
	RoleTenantOwner
	RoleFleetManager
	RoleDriver
	RoleSuperadmin
)

// String returns the wire name of the role.
func (r Role) String() string {
	switch r {
	case RoleTenantOwner:
		return "tenant_owner"
	case RoleFleetManager:
		return "fleet_manager"
	case RoleDriver:
		return "driver"
	case RoleSuperadmin:
		return "superadmin"
	default:
		return "unknown"
	}
}

// ParseRole maps a wire name back to a Role.
func ParseRole(s string) Role {
	switch s {
	case "tenant_owner":
		return RoleTenantOwner
	case "fleet_manager":
		return RoleFleetManager
	case "driver":
		return RoleDriver
	case "superadmin":
		return RoleSuperadmin
	default:
		return RoleUnknown
	}
}

// Session is the server-side record behind a bearer token. TenantAccountID
// names the tenant whose database the session operates on. SubjectID is
// the manager or driver row id within that tenant, 0 for owner sessions,
// and unused for superadmin sessions.
type Session struct {
	ID              string    `json:"id"`
	TenantAccountID uint      `json:"tenantAccountId"`
	Role            Role      `json:"role"`
	SubjectID       uint      `json:"subjectId"`
	SubjectName     string    `json:"subjectName"`
	CreatedAt       time.Time `json:"createdAt"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

// New builds an unsaved session with a fresh id and expiry.
func New(tenantAccountID uint, role Role, subjectID uint, subjectName string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:              uuid.NewString(),
		TenantAccountID: tenantAccountID,
		Role:            role,
		SubjectID:       subjectID,
		SubjectName:     subjectName,
		CreatedAt:       now,
		ExpiresAt:       now.Add(ttl),
	}
}

// Expired reports whether the session's lifetime has passed.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// ActorID returns the identifier recorded in audit entries for actions
// performed under this session. Only fleet managers have a row id in the
// tenant database; owner and superadmin actions record the -1 sentinel.
func (s *Session) ActorID() int64 {
	if s.Role == RoleFleetManager || s.Role == RoleDriver {
		return int64(s.SubjectID)
	}
	return -1
}
