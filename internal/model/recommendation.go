package model

import "time"

// Recommendation endorses a provider, either as a reply to a request
// (RequestID set) or standalone within a group.
type Recommendation struct {
	ID           int
	RequestID    *int
	GroupID      int
	UserID       int
	ProviderName string
	Testimonial  string
	ServiceType  string
	CreatedAt    time.Time
}

// RecommendationWithCounts carries the thank/save tallies for feed views.
type RecommendationWithCounts struct {
	Recommendation
	ThanksCount int
	SavesCount  int
}
