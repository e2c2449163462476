package model

import (
	"time"
)

const (
	ReactionLike      = "like"
	ReactionLove      = "love"
	ReactionLaugh     = "laugh"
	ReactionSurprised = "surprised"
	ReactionSad       = "sad"
	ReactionAngry     = "angry"
)

// ReactionTypes 全部合法的表情类型，计数时缺省补零
var ReactionTypes = []string{
	ReactionLike,
	ReactionLove,
	ReactionLaugh,
	ReactionSurprised,
	ReactionSad,
	ReactionAngry,
}

// IsValidReactionType 校验表情类型
func IsValidReactionType(t string) bool {
	for _, v := range ReactionTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Reaction 以 (postId, userId) 为键，每个用户对同一帖子至多一条
type Reaction struct {
	Type      string       `json:"type"`
	User      UserSnapshot `json:"user"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
