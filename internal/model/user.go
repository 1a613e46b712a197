package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// roleRank orders roles so that a higher rank satisfies every lower one.
var roleRank = map[Role]int{
	RoleUser:  1,
	RoleAdmin: 2,
}

func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	_, ok := roleRank[role]
	return role, ok
}

// Satisfies reports whether r grants at least the privileges of required.
// Unknown roles satisfy nothing and are satisfied by nothing.
func (r Role) Satisfies(required Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	want, ok := roleRank[required]
	if !ok {
		return false
	}
	return have >= want
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type AuthUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

func (u User) Public() AuthUser {
	return AuthUser{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// Principal is the caller of a single request. It is built from a usable
// token and is never persisted.
type Principal struct {
	Identity string `json:"identity"`
	HolderID int64  `json:"holder_id"`
	Role     Role   `json:"role"`
}

// HasRole is nil-safe: an absent principal has no role.
func (p *Principal) HasRole(role Role) bool {
	if p == nil {
		return false
	}
	return p.Role.Satisfies(role)
}

type AuthResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	User      AuthUser  `json:"user"`
}
