package graphsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/dep2p/go-graphdir/pkg/types"
)

// ============================================================================
//                              错误分类
// ============================================================================

// ErrorKind 本地更新失败的分类
type ErrorKind int

const (
	// KindInvalidArgument 参数无效，未发生任何变更
	KindInvalidArgument ErrorKind = iota + 1
	// KindPublishRejected 传输层拒绝了发布，缓存变更已提交
	KindPublishRejected
	// KindTransportUnavailable 传输层不可用（已关闭、超时或取消），缓存变更已提交
	KindTransportUnavailable
)

// String 返回分类名称
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindPublishRejected:
		return "publish_rejected"
	case KindTransportUnavailable:
		return "transport_unavailable"
	default:
		return "unknown"
	}
}

// 分类哨兵，用于 errors.Is 匹配
var (
	// ErrInvalidArgument 参数无效
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}

	// ErrPublishRejected 发布被拒绝
	ErrPublishRejected = &Error{Kind: KindPublishRejected}

	// ErrTransportUnavailable 传输层不可用
	ErrTransportUnavailable = &Error{Kind: KindTransportUnavailable}
)

// 服务生命周期错误
var (
	// ErrAlreadyStarted 服务已启动
	ErrAlreadyStarted = errors.New("graphsync: service already started")

	// ErrNotStarted 服务未启动
	ErrNotStarted = errors.New("graphsync: service not started")

	// ErrNilPubSub PubSub 为 nil
	ErrNilPubSub = errors.New("graphsync: pubsub is nil")

	// ErrNilCache 缓存为 nil
	ErrNilCache = errors.New("graphsync: cache is nil")
)

// Error 本地更新错误
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("graphsync: %s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("graphsync: %s: %s", e.Op, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("graphsync: %s: %v", e.Kind, e.Err)
	default:
		return "graphsync: " + e.Kind.String()
	}
}

// Unwrap 返回底层错误
func (e *Error) Unwrap() error {
	return e.Err
}

// Is 按分类匹配
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf 返回错误分类，非 *Error 返回 0
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// ============================================================================
//                              返回码映射
// ============================================================================

// codeKinds 传输层返回码到错误分类的映射，覆盖全部非 OK 返回码
//
// 返回码只出现在发布路径上，此时缓存变更已提交，因此不映射到 KindInvalidArgument。
var codeKinds = map[types.TransportCode]ErrorKind{
	types.CodeError:              KindPublishRejected,
	types.CodeUnsupported:        KindPublishRejected,
	types.CodeBadParameter:       KindPublishRejected,
	types.CodePreconditionNotMet: KindPublishRejected,
	types.CodeOutOfResources:     KindPublishRejected,
	types.CodeNotEnabled:         KindTransportUnavailable,
	types.CodeImmutablePolicy:    KindPublishRejected,
	types.CodeInconsistentPolicy: KindPublishRejected,
	types.CodeAlreadyDeleted:     KindTransportUnavailable,
	types.CodeTimeout:            KindTransportUnavailable,
	types.CodeNoData:             KindPublishRejected,
	types.CodeIllegalOperation:   KindPublishRejected,
}

// KindForCode 返回传输层返回码对应的错误分类
//
// CodeOK 和未定义的返回码返回 false。
func KindForCode(code types.TransportCode) (ErrorKind, bool) {
	k, ok := codeKinds[code]
	return k, ok
}

// classifyPublishError 将发布错误归入分类
func classifyPublishError(err error) ErrorKind {
	if code, ok := types.TransportCodeOf(err); ok {
		if k, ok := KindForCode(code); ok {
			return k
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindTransportUnavailable
	}
	return KindPublishRejected
}

// wrapPublishError 包装发布错误
//
// 发布者返回的 KindInvalidArgument 改记为 KindPublishRejected。
func wrapPublishError(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Kind != KindInvalidArgument {
			return err
		}
		return &Error{Kind: KindPublishRejected, Op: op, Err: err}
	}
	return &Error{Kind: classifyPublishError(err), Op: op, Err: err}
}

// invalidArgument 包装参数错误
func invalidArgument(op string, err error) error {
	return &Error{Kind: KindInvalidArgument, Op: op, Err: err}
}
