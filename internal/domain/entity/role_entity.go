package entity

import "strings"

// Role is the coarse authorization level of a user.
// Always stored upper-case; compare against the constants only.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole normalizes input at write time.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleUser, RoleAdmin:
		return r, true
	}
	return "", false
}
