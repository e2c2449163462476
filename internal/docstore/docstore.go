// Package docstore 封装一棵远端键值树：按路径读写整条记录，
// 订阅者在每次变更时收到该路径下的完整当前值（不是增量）。
// 同一路径上的推送有序，不同路径之间没有顺序保证，也没有跨路径事务。
package docstore

import (
	"context"
	"errors"
	"strings"

	"github.com/goccy/go-json"
)

// ErrNoValue 路径上没有值
var ErrNoValue = errors.New("docstore: 路径上没有值")

// ErrTransient 存储暂时不可用，调用方可自行决定重试策略
var ErrTransient = errors.New("docstore: 存储暂时不可用")

// Snapshot 订阅回调携带的全量快照，Value 为 nil 表示路径上已无值
type Snapshot struct {
	Path  string
	Value json.RawMessage
}

// CancelFunc 取消订阅。多次调用只生效一次。
type CancelFunc func()

// Store 文档存储契约。写操作彼此独立，可能部分失败。
type Store interface {
	// Subscribe 订阅路径，订阅建立后立即收到一次当前值的快照
	Subscribe(ctx context.Context, path string, fn func(Snapshot)) (CancelFunc, error)
	// ReadOnce 读取路径当前值并解码到 out，无值时返回 ErrNoValue
	ReadOnce(ctx context.Context, path string, out any) error
	// Write 整条替换路径上的值
	Write(ctx context.Context, path string, value any) error
	// Update 仅更新叶子记录的部分字段
	Update(ctx context.Context, path string, fields map[string]any) error
	// Remove 删除路径及其全部子路径
	Remove(ctx context.Context, path string) error
	// Push 为路径生成一个新的子节点 ID，不写入任何值
	Push(ctx context.Context, path string) (string, error)
}

type transientError struct {
	cause error
}

func (e *transientError) Error() string {
	return "docstore: " + e.cause.Error()
}

func (e *transientError) Unwrap() error {
	return e.cause
}

func (e *transientError) Is(target error) bool {
	return target == ErrTransient
}

// Transient 把底层存储错误标记为瞬时错误
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{cause: err}
}

// Parent 返回父路径，顶层路径返回空串
func Parent(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// Join 拼接路径段
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}
