package security

import (
	"Classfeed/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// UserClaims 鉴权协作方签发的 Token 中携带的用户快照
type UserClaims struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Snapshot 转换为写入文档时内嵌的用户快照
func (c *UserClaims) Snapshot() model.UserSnapshot {
	return model.UserSnapshot{
		ID:        c.UserID,
		Name:      c.Name,
		AvatarURL: c.AvatarURL,
		Role:      c.Role,
	}
}
