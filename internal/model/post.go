package model

import (
	"time"
)

const (
	PostStatusPending  = "pending"
	PostStatusApproved = "approved"
	PostStatusRejected = "rejected"
)

type Post struct {
	ID              string        `json:"id"`
	Author          UserSnapshot  `json:"author"`
	Content         string        `json:"content"`
	Attachments     []Attachment  `json:"attachments"`
	Status          string        `json:"status"` // pending / approved / rejected
	IsApproved      bool          `json:"isApproved"`
	Moderator       *UserSnapshot `json:"moderator"`
	RejectionReason *string       `json:"rejectionReason"`
	ViewCount       int64         `json:"viewCount"`
	IsDeleted       bool          `json:"isDeleted"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

type Attachment struct {
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

// VisibleTo 可见性规则：已通过的帖子所有人可见；
// 待审核与已拒绝仅作者和特权角色可见；已删除对所有人不可见。
func (p *Post) VisibleTo(viewer UserSnapshot) bool {
	if p.IsDeleted {
		return false
	}
	if p.Status == PostStatusApproved {
		return true
	}
	return p.Author.ID == viewer.ID || IsPrivileged(viewer.Role)
}
