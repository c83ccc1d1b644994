package model

import "time"

type User struct {
	ID           int
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string // rbac role, "member" or "admin"
	CreatedAt    time.Time
}

// FullName returns the display name used when denormalizing the submitter
// onto a request.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
