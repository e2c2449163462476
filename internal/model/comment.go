package model

import (
	"time"
)

// Comment 评论为硬删除，没有墓碑标记
type Comment struct {
	ID        string       `json:"id"`
	PostID    string       `json:"postId"`
	Author    UserSnapshot `json:"author"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Edited updatedAt 晚于 createdAt 时展示"已编辑"标记
func (c *Comment) Edited() bool {
	return c.UpdatedAt.After(c.CreatedAt)
}
