package model

const (
	RoleStudent = "student"
	RoleTutor   = "tutor"
	RoleStaff   = "staff"
	RoleAdmin   = "admin"
)

// UserSnapshot 写入文档时内嵌的用户快照，来源是鉴权协作方签发的 Token
type UserSnapshot struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	Role      string `json:"role"`
}

// IsPrivileged 判断角色是否拥有审核特权
func IsPrivileged(role string) bool {
	switch role {
	case RoleAdmin, RoleStaff, RoleTutor:
		return true
	}
	return false
}
