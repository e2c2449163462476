package dto

import "Classfeed/internal/model"

// PostCreateReq 发帖请求（multipart 表单，附件走文件域）
type PostCreateReq struct {
	Content string `form:"content" binding:"required,max=5000"`
}

// PostEditReq 编辑帖子请求
type PostEditReq struct {
	Content string `json:"content" binding:"required,max=5000"`
}

// PostModerateReq 审核裁决请求
type PostModerateReq struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason" binding:"max=500"`
}

// PostDTO 帖子明细响应
type PostDTO struct {
	ID              string              `json:"id"`
	Author          model.UserSnapshot  `json:"author"`
	Content         string              `json:"content"`
	Attachments     []model.Attachment  `json:"attachments"`
	Status          string              `json:"status"`
	IsApproved      bool                `json:"isApproved"`
	Moderator       *model.UserSnapshot `json:"moderator,omitempty"`
	RejectionReason *string             `json:"rejectionReason,omitempty"`
	ViewCount       int64               `json:"viewCount"`
	CreatedAt       string              `json:"createdAt"`
	UpdatedAt       string              `json:"updatedAt"`
}
