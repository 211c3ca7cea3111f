package model

// User represents an account as stored in the `users` table.  The password
// hash never leaves the server: it carries no json tag and handlers build
// their own response types.
//
// Fields:
//  ID           – UUID string.
//  Name         – display name.
//  Email        – unique, lower-cased address.
//  PasswordHash – bcrypt hash.
//  IsAdmin      – grants access to admin-only routes.
type User struct {
	ID           string // users.id
	Name         string // users.name
	Email        string // users.email
	PasswordHash string // users.password_hash
	IsAdmin      bool   // users.is_admin
}
