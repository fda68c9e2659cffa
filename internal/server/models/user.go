// Package models holds server-side persistence types.
package models

// User is a row of the users table without its password hash, which is
// fetched separately and never leaves the orchestrator.
type User struct {
	ID       int64
	UserName string
	Role     string
}
