package participant

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/dep2p/go-graphdir/internal/core/graphcache"
	"github.com/dep2p/go-graphdir/pkg/types"
)

// ============================================================================
//                              Node
// ============================================================================

// Node 本地节点句柄
//
// ref 指向句柄自己的缓存记录，同名节点之间互不影响。
type Node struct {
	owner     *Context
	info      types.NodeInfo
	ref       graphcache.NodeRef
	destroyed atomic.Bool
}

// Info 返回节点名与命名空间
func (n *Node) Info() types.NodeInfo {
	return n.info
}

// Name 返回节点名
func (n *Node) Name() string {
	return n.info.Name
}

// Namespace 返回命名空间
func (n *Node) Namespace() string {
	return n.info.Namespace
}

// Destroyed 节点是否已销毁
func (n *Node) Destroyed() bool {
	return n.destroyed.Load()
}

// CreateNode 创建本地节点并广播
//
// 同名节点可以重复创建，缓存按重数保存。
// 发布失败时返回错误，但节点已写入缓存，由下一次成功的发布带出。
func (c *Context) CreateNode(ctx context.Context, name, namespace string) (*Node, error) {
	const op = "create_node"
	if err := types.ValidateNodeName(name); err != nil {
		return nil, invalidArgument(op, err)
	}
	if err := types.ValidateNamespace(namespace); err != nil {
		return nil, invalidArgument(op, err)
	}

	info := types.NodeInfo{Name: name, Namespace: namespace}
	var ref graphcache.NodeRef
	err := c.apply(ctx, op, func() (msg *types.DirectoryMessage, err error) {
		ref, msg, err = c.cache.AddNodeRecord(c.local, info.Name, info.Namespace)
		return msg, err
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("节点已创建", "node", info.FullyQualifiedName())
	return &Node{owner: c, info: info, ref: ref}, nil
}

// DestroyNode 销毁本地节点，节点下的实体一并移除
//
// 已销毁的句柄再次销毁为空操作。
func (c *Context) DestroyNode(ctx context.Context, n *Node) error {
	const op = "destroy_node"
	if n == nil {
		return invalidArgument(op, ErrNilNode)
	}
	if n.owner != c {
		return invalidArgument(op, ErrForeignNode)
	}
	if n.destroyed.Load() {
		return nil
	}

	err := c.apply(ctx, op, func() (*types.DirectoryMessage, error) {
		return c.cache.RemoveNodeRecord(c.local, n.ref)
	})
	if errors.Is(err, ErrClosed) {
		return err
	}
	// 发布失败时缓存中的节点已删除，句柄同样视为已销毁
	n.destroyed.Store(true)
	return err
}

// ============================================================================
//                              Entity
// ============================================================================

// Entity 发布者或订阅者句柄
type Entity struct {
	node      *Node
	id        types.EntityID
	destroyed atomic.Bool
}

// ID 返回实体 GID
func (e *Entity) ID() types.EntityID {
	return e.id
}

// Kind 返回实体类型
func (e *Entity) Kind() types.EntityKind {
	return e.id.Kind()
}

// Node 返回所属节点
func (e *Entity) Node() *Node {
	return e.node
}

// Destroyed 实体是否已销毁（含随节点级联销毁）
func (e *Entity) Destroyed() bool {
	return e.destroyed.Load() || e.node.Destroyed()
}

// CreatePublisher 在节点下创建发布者
func (n *Node) CreatePublisher(ctx context.Context) (*Entity, error) {
	return n.createEntity(ctx, "create_publisher", types.KindPublisher)
}

// CreateSubscriber 在节点下创建订阅者
func (n *Node) CreateSubscriber(ctx context.Context) (*Entity, error) {
	return n.createEntity(ctx, "create_subscriber", types.KindSubscriber)
}

func (n *Node) createEntity(ctx context.Context, op string, kind types.EntityKind) (*Entity, error) {
	if n.destroyed.Load() {
		return nil, invalidArgument(op, ErrNodeDestroyed)
	}
	c := n.owner
	id, err := c.nextEntityID(kind)
	if err != nil {
		return nil, invalidArgument(op, err)
	}

	err = c.apply(ctx, op, func() (*types.DirectoryMessage, error) {
		return c.cache.AddEntityTo(c.local, n.ref, id)
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("实体已创建", "node", n.info.FullyQualifiedName(), "kind", kind.String(), "entity", id.ShortString())
	return &Entity{node: n, id: id}, nil
}

// DestroyEntity 销毁节点下的实体
//
// 已销毁的实体或已随节点级联销毁的实体再次销毁为空操作。
func (n *Node) DestroyEntity(ctx context.Context, e *Entity) error {
	const op = "destroy_entity"
	if e == nil {
		return invalidArgument(op, ErrNilEntity)
	}
	if e.node != n {
		return invalidArgument(op, ErrForeignEntity)
	}
	if e.Destroyed() {
		return nil
	}

	c := n.owner
	err := c.apply(ctx, op, func() (*types.DirectoryMessage, error) {
		return c.cache.RemoveEntityFrom(c.local, n.ref, e.id)
	})
	if errors.Is(err, ErrClosed) {
		return err
	}
	e.destroyed.Store(true)
	return err
}
