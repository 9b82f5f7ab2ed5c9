package gateway

import (
	"errors"
	"fmt"
)

// ErrorKind 网关错误分类，UI 据此决定重试还是空态展示
type ErrorKind string

const (
	// KindUnreachable 所有后端都没有应答，可重试或走缓存
	KindUnreachable ErrorKind = "unreachable"
	// KindNotFound 有后端应答但实体不存在，不重试
	KindNotFound ErrorKind = "not_found"
	// KindInvalid 请求本身不合法，不重试
	KindInvalid ErrorKind = "invalid"
)

// Error 网关对外的唯一错误类型。传输层异常一律在网关内吸收转换，
// 原始错误保留在 Err 中供日志使用，Message 面向用户。
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func unreachableErr(op, message string, err error) *Error {
	return &Error{Kind: KindUnreachable, Op: op, Message: message, Err: err}
}

func notFoundErr(op, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

func invalidErr(op, message string) *Error {
	return &Error{Kind: KindInvalid, Op: op, Message: message}
}

// KindOf 非网关错误按 unreachable 处理
func KindOf(err error) ErrorKind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindUnreachable
}

// errNotSupported 某后端表达不了该操作（如主数据服务没有分块表），
// 网关跳过它继续尝试下一个来源。
var errNotSupported = errors.New("operation not supported by this source")
