package participant

import (
	"errors"

	"github.com/dep2p/go-graphdir/internal/protocol/graphsync"
)

var (
	// ErrClosed 上下文已关闭
	ErrClosed = errors.New("participant: context closed")

	// ErrNilPubSub 未提供发布订阅服务
	ErrNilPubSub = errors.New("participant: pubsub is nil")

	// ErrNilNode 节点句柄为 nil
	ErrNilNode = errors.New("participant: node is nil")

	// ErrNilEntity 实体句柄为 nil
	ErrNilEntity = errors.New("participant: entity is nil")

	// ErrNodeDestroyed 节点已销毁
	ErrNodeDestroyed = errors.New("participant: node destroyed")

	// ErrForeignNode 节点不属于此上下文
	ErrForeignNode = errors.New("participant: node belongs to another context")

	// ErrForeignEntity 实体不属于此节点
	ErrForeignEntity = errors.New("participant: entity belongs to another node")

	errNilPredicate = errors.New("participant: predicate is nil")
)

// invalidArgument 将参数错误归入 graphsync 的 InvalidArgument 分类
func invalidArgument(op string, err error) error {
	return &graphsync.Error{Kind: graphsync.KindInvalidArgument, Op: op, Err: err}
}

