package model

import (
	"time"
)

// View 以 (postId, userId) 为键；View 的存在是 viewCount 自增的唯一依据
type View struct {
	User     UserSnapshot `json:"user"`
	ViewedAt time.Time    `json:"viewedAt"`
}
