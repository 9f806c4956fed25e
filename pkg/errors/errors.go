package errors

import "errors"

// ── 错误类别 ──
//
// 业务错误通过 New 归属到以下某个类别，Handler 层按类别映射 HTTP 状态码。

var (
	ErrNotFound   = errors.New("资源不存在")
	ErrConflict   = errors.New("资源冲突")
	ErrValidation = errors.New("参数校验失败")
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// New 创建归属于 kind 的业务错误。
// errors.Is 既能匹配返回值本身，也能匹配 kind。
func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}
