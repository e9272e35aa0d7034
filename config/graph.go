package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dep2p/go-graphdir/pkg/types"
)

// DefaultTopicName 目录消息默认主题
const DefaultTopicName = "graphdir/participant-entities"

// GraphConfig 目录同步配置
type GraphConfig struct {
	// ParticipantID 固定的参与者 ID（Base58），为空时随机生成
	ParticipantID string `json:"participant_id,omitempty"`

	// TopicName 目录消息主题
	TopicName string `json:"topic_name"`

	// PublishTimeout 单次发布超时，0 表示不设超时
	PublishTimeout Duration `json:"publish_timeout"`

	// AnnounceOnPeerJoin 有新成员加入主题时重新广播本地视图
	AnnounceOnPeerJoin bool `json:"announce_on_peer_join"`

	// RemoveOnPeerLeave 成员离开主题时删除其条目
	RemoveOnPeerLeave bool `json:"remove_on_peer_leave"`
}

// DefaultGraphConfig 返回默认目录同步配置
func DefaultGraphConfig() GraphConfig {
	return GraphConfig{
		TopicName:          DefaultTopicName,
		PublishTimeout:     Duration(5 * time.Second),
		AnnounceOnPeerJoin: true,
		RemoveOnPeerLeave:  true,
	}
}

// Validate 验证目录同步配置
func (c GraphConfig) Validate() error {
	if strings.TrimSpace(c.TopicName) == "" {
		return errors.New("graph topic name must not be empty")
	}
	if c.PublishTimeout < 0 {
		return fmt.Errorf("graph publish timeout must not be negative: %s", c.PublishTimeout)
	}
	if c.ParticipantID != "" {
		pid, err := types.ParseParticipantID(c.ParticipantID)
		if err != nil {
			return fmt.Errorf("graph participant id: %w", err)
		}
		if pid.IsEmpty() {
			return fmt.Errorf("graph participant id: %w", types.ErrInvalidGID)
		}
	}
	return nil
}
