package mq

import "time"

// RecommendationCreatedPayload 推荐创建事件的 payload
type RecommendationCreatedPayload struct {
	RecommendationID int       `json:"recommendation_id"`
	RequestID        *int      `json:"request_id,omitempty"` // nil 表示独立推荐
	GroupID          int       `json:"group_id"`
	UserID           int       `json:"user_id"`
	ServiceType      string    `json:"service_type"`
	ProviderName     string    `json:"provider_name"`
	TraceID          string    `json:"trace_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
