package mq

import "time"

// RequestCreatedPayload 请求创建事件的 payload
type RequestCreatedPayload struct {
	RequestID   int       `json:"request_id"`
	GroupID     int       `json:"group_id"`
	UserID      int       `json:"user_id"`
	ServiceType string    `json:"service_type"`
	Body        string    `json:"body"`
	Source      string    `json:"source"` // api / email
	TraceID     string    `json:"trace_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
