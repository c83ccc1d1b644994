package mq

// UserRegisteredPayload 用户注册事件的 payload
type UserRegisteredPayload struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
}
