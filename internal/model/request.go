package model

import "time"

// Request is a user's ask for a service recommendation, scoped to one group.
// SubmitterName/SubmitterEmail are denormalized from the user at write time.
// ServiceType is always non-empty; unmatched requests carry the sentinel
// category "general".
type Request struct {
	ID             int
	GroupID        int
	UserID         int
	SubmitterName  string
	SubmitterEmail string
	Body           string
	ServiceType    string
	CreatedAt      time.Time
}
