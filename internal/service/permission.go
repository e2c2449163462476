package service

import (
	"Classfeed/internal/model"
)

// Action 需要鉴权的帖子操作
type Action string

const (
	ActionModerate Action = "moderate"
	ActionEdit     Action = "edit"
	ActionResubmit Action = "resubmit"
	ActionDelete   Action = "delete"
)

type permKey struct {
	Action     Action
	ActorRole  string
	AuthorRole string
}

// matrix 以 (操作, 操作者角色, 作者角色) 为键的权限矩阵，
// 取代散落在各调用点的角色字符串比较。矩阵没有覆盖的组合
// 再按"操作者是否为作者本人"判定。
var matrix = map[permKey]bool{}

func init() {
	roles := []string{model.RoleStudent, model.RoleTutor, model.RoleStaff, model.RoleAdmin}

	for _, author := range roles {
		// 审核：特权角色对任意作者
		matrix[permKey{ActionModerate, model.RoleAdmin, author}] = true
		matrix[permKey{ActionModerate, model.RoleStaff, author}] = true
		matrix[permKey{ActionModerate, model.RoleTutor, author}] = true

		// 删除：admin 对任意作者
		matrix[permKey{ActionDelete, model.RoleAdmin, author}] = true
	}

	// 删除：staff/tutor 仅可删学生的帖子
	matrix[permKey{ActionDelete, model.RoleStaff, model.RoleStudent}] = true
	matrix[permKey{ActionDelete, model.RoleTutor, model.RoleStudent}] = true

	// 编辑与重新提交只有作者本人可以做，矩阵中没有任何角色组合
}

// Allowed 每个操作只在入口处判定一次
func Allowed(action Action, actor model.UserSnapshot, post *model.Post) bool {
	if matrix[permKey{action, actor.Role, post.Author.Role}] {
		return true
	}

	switch action {
	case ActionEdit, ActionResubmit, ActionDelete:
		return actor.ID == post.Author.ID
	}
	return false
}
