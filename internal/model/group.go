package model

import "time"

// Group 社区分组，请求和推荐都按组划分
type Group struct {
	ID        int
	Name      string
	CreatedAt time.Time
}
