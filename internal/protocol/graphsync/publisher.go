package graphsync

import (
	"context"
	"time"

	"github.com/dep2p/go-graphdir/pkg/interfaces"
	"github.com/dep2p/go-graphdir/pkg/lib/proto/directory"
	"github.com/dep2p/go-graphdir/pkg/types"
)

// topicPublisher 将目录消息编码后发布到主题
type topicPublisher struct {
	topic   interfaces.Topic
	timeout time.Duration
}

// 确保实现接口
var _ interfaces.DirectoryPublisher = (*topicPublisher)(nil)

func newTopicPublisher(topic interfaces.Topic, timeout time.Duration) *topicPublisher {
	return &topicPublisher{topic: topic, timeout: timeout}
}

// Publish 实现 DirectoryPublisher
func (p *topicPublisher) Publish(ctx context.Context, msg *types.DirectoryMessage) error {
	data, err := directory.Marshal(msg)
	if err != nil {
		return types.NewTransportError("encode", types.CodeBadParameter, err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return p.topic.Publish(ctx, data)
}
