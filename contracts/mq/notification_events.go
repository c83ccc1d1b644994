package mq

import "time"

// NotificationSentPayload 通知发送成功事件的 payload
type NotificationSentPayload struct {
	NotificationID int       `json:"notification_id"`
	UserID         int       `json:"user_id"`
	Channel        string    `json:"channel"`
	SentAt         time.Time `json:"sent_at"`
}

// NotificationFailedPayload 通知发送失败事件的 payload
type NotificationFailedPayload struct {
	NotificationID int    `json:"notification_id"`
	UserID         int    `json:"user_id"`
	Channel        string `json:"channel"`
	Error          string `json:"error"`
	RetryCount     int    `json:"retry_count"`
}
