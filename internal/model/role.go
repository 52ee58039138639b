package model

import (
	"fmt"
	"strings"
)

// Role selects which flows a session may reach. The zero value means no
// one is logged in.
type Role string

const (
	RoleNone    Role = ""
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// ParseRole accepts "admin" or "student" in any letter case.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleStudent:
		return RoleStudent, nil
	default:
		return RoleNone, fmt.Errorf("unknown role %q: must be admin or student", s)
	}
}
