package rbac

// RoleAdmin is the role name that unlocks administrative actions.
const RoleAdmin = "admin"

// Capabilities is the typed view of a session's roles claim.
type Capabilities struct {
	Roles   []string `json:"roles"`
	IsAdmin bool     `json:"is_admin"`
}

// Principal describes the authenticated actor.
type Principal struct {
	UserID       int64
	Email        string
	Capabilities Capabilities
}

// GetID returns the user identifier.
func (p Principal) GetID() int64 {
	return p.UserID
}

// IsSuperUser reports admin capability.
func (p Principal) IsSuperUser() bool {
	return p.Capabilities.IsAdmin
}
