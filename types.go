package graphdir

import (
	"github.com/dep2p/go-graphdir/internal/participant"
	"github.com/dep2p/go-graphdir/internal/protocol/graphsync"
	"github.com/dep2p/go-graphdir/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

type (
	// Node 本地节点句柄
	Node = participant.Node

	// Entity 发布者或订阅者句柄
	Entity = participant.Entity

	// Snapshot 全域快照
	Snapshot = types.Snapshot

	// NodeInfo 节点名与命名空间
	NodeInfo = types.NodeInfo

	// ParticipantID 参与者 ID
	ParticipantID = types.ParticipantID

	// EntityID 实体 ID
	EntityID = types.EntityID
)

// 本地更新错误分类，使用 errors.Is 匹配
var (
	ErrInvalidArgument      = graphsync.ErrInvalidArgument
	ErrPublishRejected      = graphsync.ErrPublishRejected
	ErrTransportUnavailable = graphsync.ErrTransportUnavailable
)
