package graphsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-graphdir/config"
	"github.com/dep2p/go-graphdir/internal/core/graphcache"
	"github.com/dep2p/go-graphdir/internal/core/metrics"
	"github.com/dep2p/go-graphdir/pkg/interfaces"
	"github.com/dep2p/go-graphdir/pkg/lib/log"
	"github.com/dep2p/go-graphdir/pkg/lib/proto/directory"
	"github.com/dep2p/go-graphdir/pkg/types"
)

// ============================================================================
//                              配置
// ============================================================================

// Config 同步服务配置
type Config struct {
	// TopicName 目录消息主题
	TopicName string

	// PublishTimeout 单次发布超时，0 表示不设超时
	PublishTimeout time.Duration

	// AnnounceOnPeerJoin 有新成员加入时重新广播本地视图
	AnnounceOnPeerJoin bool

	// RemoveOnPeerLeave 成员离开时删除其条目
	RemoveOnPeerLeave bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return ConfigFromUnified(nil)
}

// ConfigFromUnified 从统一配置创建同步服务配置
func ConfigFromUnified(cfg *config.Config) Config {
	g := config.DefaultGraphConfig()
	if cfg != nil {
		g = cfg.Graph
	}
	return Config{
		TopicName:          g.TopicName,
		PublishTimeout:     g.PublishTimeout.Duration(),
		AnnounceOnPeerJoin: g.AnnounceOnPeerJoin,
		RemoveOnPeerLeave:  g.RemoveOnPeerLeave,
	}
}

// ============================================================================
//                              Service
// ============================================================================

// Service 目录同步服务
type Service struct {
	cfg     Config
	cache   *graphcache.Cache
	signal  interfaces.ChangeSignal
	pubsub  interfaces.PubSub
	metrics *metrics.GraphMetrics
	coord   *Coordinator

	decodeLog rate.Sometimes

	mu        sync.RWMutex
	started   bool
	topic     interfaces.Topic
	publisher *topicPublisher
	sub       interfaces.TopicSubscription
	events    interfaces.TopicEventHandler
	cancel    context.CancelFunc
	loops     *errgroup.Group
}

// 确保实现接口
var _ interfaces.DirectoryPublisher = (*Service)(nil)

// NewService 创建同步服务
//
// signal 与 m 可以为 nil。服务本身作为协调器的发布者，
// 未启动时发布返回 CodeNotEnabled。
func NewService(
	cfg Config,
	cache *graphcache.Cache,
	signal interfaces.ChangeSignal,
	pubsub interfaces.PubSub,
	m *metrics.GraphMetrics,
) (*Service, error) {
	if cache == nil {
		return nil, ErrNilCache
	}
	if pubsub == nil {
		return nil, ErrNilPubSub
	}
	if cfg.TopicName == "" {
		cfg.TopicName = config.DefaultTopicName
	}

	s := &Service{
		cfg:       cfg,
		cache:     cache,
		signal:    signal,
		pubsub:    pubsub,
		metrics:   m,
		decodeLog: rate.Sometimes{First: 1, Interval: 10 * time.Second},
	}
	s.coord = NewCoordinator(s, signal, m)
	return s, nil
}

// Coordinator 返回本地更新协调器
func (s *Service) Coordinator() *Coordinator {
	return s.coord
}

// Start 加入目录主题并启动投递循环与成员事件循环
func (s *Service) Start(_ context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	topic, err := s.pubsub.Join(s.cfg.TopicName)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, topic.Close())
		}
	}()

	sub, err := topic.Subscribe()
	if err != nil {
		return err
	}
	events, err := topic.EventHandler()
	if err != nil {
		sub.Cancel()
		return err
	}

	// 不使用传入的 ctx：Fx OnStart 的 ctx 在返回后即被取消
	ctx, cancel := context.WithCancel(context.Background())
	loops := &errgroup.Group{}
	loops.Go(func() error { return s.deliveryLoop(ctx, sub) })
	loops.Go(func() error { return s.peerEventLoop(ctx, events) })

	s.topic = topic
	s.publisher = newTopicPublisher(topic, s.cfg.PublishTimeout)
	s.sub = sub
	s.events = events
	s.cancel = cancel
	s.loops = loops
	s.started = true

	logger.Info("目录同步服务已启动",
		"participant", s.cache.LocalParticipant().ShortString(),
		"topic", s.cfg.TopicName)
	return nil
}

// Stop 停止循环并离开主题
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.started = false
	topic, sub, events, cancel, loops := s.topic, s.sub, s.events, s.cancel, s.loops
	s.topic, s.publisher, s.sub, s.events, s.cancel, s.loops = nil, nil, nil, nil, nil, nil
	s.mu.Unlock()

	cancel()
	sub.Cancel()
	events.Cancel()

	done := make(chan error, 1)
	go func() { done <- loops.Wait() }()

	var err error
	select {
	case loopErr := <-done:
		err = multierr.Append(err, loopErr)
	case <-ctx.Done():
		err = multierr.Append(err, ctx.Err())
	}
	err = multierr.Append(err, topic.Close())

	logger.Info("目录同步服务已停止", "participant", s.cache.LocalParticipant().ShortString())
	return err
}

// Started 服务是否已启动
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Publish 实现 DirectoryPublisher
func (s *Service) Publish(ctx context.Context, msg *types.DirectoryMessage) error {
	s.mu.RLock()
	p := s.publisher
	s.mu.RUnlock()

	if p == nil {
		return types.NewTransportError("publish", types.CodeNotEnabled, ErrNotStarted)
	}
	return p.Publish(ctx, msg)
}

// ApplyLocal 通过协调器执行本地变更，并刷新图规模指标
func (s *Service) ApplyLocal(ctx context.Context, op string, mutation Mutation) error {
	err := s.coord.ApplyLocal(ctx, op, mutation)
	if KindOf(err) != KindInvalidArgument {
		s.updateGraphSize()
	}
	return err
}

// Announce 在更新锁内广播当前本地视图
func (s *Service) Announce(ctx context.Context) error {
	return s.coord.Republish(ctx, "announce", s.cache.LocalMessage)
}

// ============================================================================
//                              远端消息
// ============================================================================

// HandleDirectoryMessage 合并一条已解码的远端目录消息
//
// 视图发生变化时通知 ChangeSignal；被拒绝的消息只计入诊断。
func (s *Service) HandleDirectoryMessage(msg *types.DirectoryMessage) graphcache.MergeResult {
	result := s.cache.Merge(msg)
	s.metrics.ObserveMerge(result.String())

	if result == graphcache.MergeApplied {
		logger.Debug("合并远端目录",
			"participant", msg.Participant.ShortString(),
			"nodes", len(msg.Nodes))
		s.updateGraphSize()
		s.notify()
	}
	return result
}

func (s *Service) handleRaw(m *interfaces.Message) {
	msg, err := directory.Unmarshal(m.Data)
	if err != nil {
		s.metrics.ObserveDecodeError()
		s.decodeLog.Do(func() {
			logger.Warn("目录消息解码失败", "from", log.TruncateID(m.From, 8), "size", len(m.Data), "err", err)
		})
		return
	}
	// 发送方已重新加入但其加入事件尚未处理
	if m.From == msg.Participant.String() && s.cache.Departed(msg.Participant) && s.isMember(m.From) {
		s.cache.Readmit(msg.Participant)
	}
	s.HandleDirectoryMessage(msg)
}

// isMember 节点当前是否在目录主题内
func (s *Service) isMember(peer string) bool {
	s.mu.RLock()
	topic := s.topic
	s.mu.RUnlock()

	if topic == nil {
		return false
	}
	for _, p := range topic.ListPeers() {
		if p == peer {
			return true
		}
	}
	return false
}

func (s *Service) deliveryLoop(ctx context.Context, sub interfaces.TopicSubscription) error {
	for {
		m, err := sub.Next(ctx)
		if err != nil {
			return loopExit(ctx, "delivery", err)
		}
		s.handleRaw(m)
	}
}

// ============================================================================
//                              成员事件
// ============================================================================

func (s *Service) peerEventLoop(ctx context.Context, events interfaces.TopicEventHandler) error {
	for {
		ev, err := events.NextPeerEvent(ctx)
		if err != nil {
			return loopExit(ctx, "peer_event", err)
		}
		s.handlePeerEvent(ctx, ev)
	}
}

// handlePeerEvent 处理成员事件
//
// 节点 ID 即参与者 ID 的 Base58 表示，无法解析的 ID 被忽略。
// 离开的参与者在再次加入之前，其目录消息按过期处理：
// 投递循环与事件循环互不等待，离开事件之后仍可能收到离开前发出的消息。
func (s *Service) handlePeerEvent(ctx context.Context, ev interfaces.PeerEvent) {
	s.metrics.ObservePeerEvent(ev.Type.String())

	switch ev.Type {
	case interfaces.PeerLeave:
		if !s.cfg.RemoveOnPeerLeave {
			return
		}
		pid, err := types.ParseParticipantID(ev.Peer)
		if err != nil {
			logger.Debug("忽略无法解析的节点离开事件", "peer", log.TruncateID(ev.Peer, 8))
			return
		}
		if s.cache.RemoveParticipant(pid) {
			logger.Info("参与者离开，已删除其目录", "participant", pid.ShortString())
			s.updateGraphSize()
			s.notify()
		}

	case interfaces.PeerJoin:
		if pid, err := types.ParseParticipantID(ev.Peer); err == nil && s.cache.Readmit(pid) {
			logger.Debug("参与者重新加入", "participant", pid.ShortString())
		}
		if !s.cfg.AnnounceOnPeerJoin {
			return
		}
		if err := s.Announce(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("新成员加入后补发本地目录失败", "peer", log.TruncateID(ev.Peer, 8), "err", err)
		}
	}
}

// ============================================================================
//                              辅助
// ============================================================================

func (s *Service) notify() {
	if s.signal != nil {
		s.signal.Notify()
	}
}

func (s *Service) updateGraphSize() {
	if s.metrics == nil {
		return
	}
	s.metrics.SetGraphSize(s.cache.Participants(), s.cache.CountNodes())
}

// loopExit 将循环的终止原因归类：取消视为正常退出
func loopExit(ctx context.Context, loop string, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return nil
	}
	if code, ok := types.TransportCodeOf(err); ok && code == types.CodeAlreadyDeleted {
		return nil
	}
	logger.Warn("同步循环异常退出", "loop", loop, "err", err)
	return err
}
