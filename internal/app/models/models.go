package models

import "strings"

// Role is the single role held by an account
type Role string

const (
	RoleStudent Role = "student"
	RoleCollege Role = "college"
	RoleCompany Role = "company"
	RoleAdmin   Role = "admin"
)

// AllRoles lists every assignable role
var AllRoles = []Role{RoleStudent, RoleCollege, RoleCompany, RoleAdmin}

// ParseRole lower-cases s and checks it against AllRoles
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllRoles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// SelfRegistrable reports whether the role may be chosen at signup
func (r Role) SelfRegistrable() bool {
	return r == RoleStudent || r == RoleCollege || r == RoleCompany
}

// OwnsOrganization reports whether the role is backed by a college or company row
func (r Role) OwnsOrganization() bool {
	return r == RoleCollege || r == RoleCompany
}
