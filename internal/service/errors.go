package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid        = errors.New("参数错误")
	ErrContentEmpty        = errors.New("内容不能为空")
	ErrReactionTypeInvalid = errors.New("不支持的表情类型")
	ErrPostNotFound        = errors.New("帖子不存在")
	ErrCommentNotFound     = errors.New("评论不存在")
	ErrPostNotPending      = errors.New("帖子不在待审核状态")
	ErrPostNotRejected     = errors.New("帖子未被拒绝，无需重新提交")
	ErrRejectReasonEmpty   = errors.New("拒绝时必须填写理由")
	UnauthorizedError      = errors.New("权限不足")
	UnExpectedError        = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:        BadRequest,
	ErrContentEmpty:        BadRequest,
	ErrReactionTypeInvalid: BadRequest,
	ErrPostNotFound:        NotFound,
	ErrCommentNotFound:     NotFound,
	ErrPostNotPending:      BadRequest,
	ErrPostNotRejected:     BadRequest,
	ErrRejectReasonEmpty:   BadRequest,
	UnauthorizedError:      Unauthorized,
	UnExpectedError:        InternalServerError,
}
