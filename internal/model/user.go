package model

import "time"

// User represents an account of the local identity provider as stored in
// the `users` table.  Accounts issued by Firebase have no row here; they are
// identified by their Firebase UID only.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  DisplayName  – "name lastName" shown on comments.
//  Role         – USER or ADMIN.
//  IsActive     – whether the account may sign in.
type User struct {
	ID           uint64
	Email        string
	PasswordHash string
	DisplayName  string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Roles accepted by the role middleware.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is never stored, only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
