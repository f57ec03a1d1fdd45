package domain

import "strings"

type Role string

const (
	RoleRetail    Role = "retail"
	RoleWholesale Role = "wholesale"
	RoleDealer    Role = "dealer"
	RoleAdmin     Role = "admin"
)

// Roles lists every role in order of increasing discount.
var Roles = []Role{RoleRetail, RoleWholesale, RoleDealer, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleRetail, RoleWholesale, RoleDealer, RoleAdmin:
		return true
	}
	return false
}

// ParseRole is case-insensitive and rejects anything outside the enum.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", NewInvalidArgument("role", "unknown role", s)
	}
	return r, nil
}

type User struct {
	ID    string `db:"id"`
	Email string `db:"email"`
	Name  string `db:"name"`
	Hash  string `db:"password_hash"`
	Role  Role   `db:"role"`
}

// Principal is whoever is acting on the current session.
type Principal struct {
	UserID        string `json:"userId,omitempty"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	Role          Role   `json:"role"`
	Authenticated bool   `json:"authenticated"`
}

// Anonymous is the principal of a session without a logged-in user.
func Anonymous() Principal { return Principal{Role: RoleRetail} }

func (u *User) Principal() Principal {
	return Principal{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, Authenticated: true}
}

func (p Principal) IsAdmin() bool { return p.Authenticated && p.Role == RoleAdmin }
