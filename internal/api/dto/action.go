package dto

import "Classfeed/internal/model"

// ReactionToggleReq 表态翻转请求
type ReactionToggleReq struct {
	Type string `json:"type" binding:"required,oneof=like love laugh surprised sad angry"`
}

// ReactionToggleDTO 翻转结果
type ReactionToggleDTO struct {
	Result string           `json:"result"` // added / removed / changed
	Counts map[string]int64 `json:"counts"`
}

// ReactionCountsDTO 各表态类型计数
type ReactionCountsDTO struct {
	Counts map[string]int64 `json:"counts"`
}

// CommentCreateReq 发评论请求
type CommentCreateReq struct {
	Content string `json:"content" binding:"required,max=1000"`
}

// CommentUpdateReq 改评论请求
type CommentUpdateReq struct {
	Content string `json:"content" binding:"required,max=1000"`
}

// CommentDTO 评论明细响应
type CommentDTO struct {
	ID        string             `json:"id"`
	PostID    string             `json:"postId"`
	Author    model.UserSnapshot `json:"author"`
	Content   string             `json:"content"`
	Edited    bool               `json:"edited"`
	CreatedAt string             `json:"createdAt"`
	UpdatedAt string             `json:"updatedAt"`
}

// CommentCountDTO 评论计数响应
type CommentCountDTO struct {
	PostID       string `json:"postId"`
	CommentCount int64  `json:"commentCount"`
}

// ViewCountDTO 浏览计数响应
type ViewCountDTO struct {
	PostID    string `json:"postId"`
	ViewCount int64  `json:"viewCount"`
}
