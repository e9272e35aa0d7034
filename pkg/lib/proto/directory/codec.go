// Package directory 实现目录消息的线格式编解码
//
// 线格式与 directory.proto 描述的 Protobuf 消息兼容，直接使用
// protowire 编码，避免为一个消息引入生成代码。
package directory

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-graphdir/pkg/types"
)

// MaxMessageSize 单条目录消息的最大字节数
const MaxMessageSize = 4 << 20

const (
	fieldParticipantID protowire.Number = 1
	fieldNodes         protowire.Number = 2

	fieldNodeName      protowire.Number = 1
	fieldNodeNamespace protowire.Number = 2
	fieldNodeEntities  protowire.Number = 3
)

var (
	// ErrNilMessage 消息为空
	ErrNilMessage = errors.New("directory: nil message")

	// ErrMessageTooLarge 消息超过 MaxMessageSize
	ErrMessageTooLarge = errors.New("directory: message too large")

	// ErrMalformed 线格式损坏
	ErrMalformed = errors.New("directory: malformed message")

	// ErrInvalidGID GID 长度错误
	ErrInvalidGID = fmt.Errorf("directory: %w", types.ErrInvalidGID)

	// ErrMissingParticipant 缺少参与者 ID
	ErrMissingParticipant = errors.New("directory: missing participant id")
)

// ============================================================================
//                              编码
// ============================================================================

// Marshal 编码目录消息
func Marshal(msg *types.DirectoryMessage) ([]byte, error) {
	if msg == nil {
		return nil, ErrNilMessage
	}

	b := make([]byte, 0, 32+len(msg.Nodes)*64)
	b = protowire.AppendTag(b, fieldParticipantID, protowire.BytesType)
	b = protowire.AppendBytes(b, msg.Participant[:])

	var node []byte
	for _, n := range msg.Nodes {
		node = appendNode(node[:0], n)
		b = protowire.AppendTag(b, fieldNodes, protowire.BytesType)
		b = protowire.AppendBytes(b, node)
		if len(b) > MaxMessageSize {
			return nil, ErrMessageTooLarge
		}
	}
	return b, nil
}

func appendNode(b []byte, n types.NodeEntities) []byte {
	b = protowire.AppendTag(b, fieldNodeName, protowire.BytesType)
	b = protowire.AppendString(b, n.Name)
	b = protowire.AppendTag(b, fieldNodeNamespace, protowire.BytesType)
	b = protowire.AppendString(b, n.Namespace)
	for _, e := range n.Entities {
		b = protowire.AppendTag(b, fieldNodeEntities, protowire.BytesType)
		b = protowire.AppendBytes(b, e[:])
	}
	return b
}

// ============================================================================
//                              解码
// ============================================================================

// Unmarshal 解码目录消息
//
// 未知字段被跳过；GID 长度错误或缺少参与者 ID 视为无效消息。
func Unmarshal(data []byte) (*types.DirectoryMessage, error) {
	if len(data) > MaxMessageSize {
		return nil, ErrMessageTooLarge
	}

	msg := &types.DirectoryMessage{}
	hasParticipant := false

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, malformed(n)
		}
		data = data[n:]

		switch {
		case num == fieldParticipantID && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, malformed(m)
			}
			pid, err := types.ParticipantIDFromBytes(v)
			if err != nil {
				return nil, ErrInvalidGID
			}
			msg.Participant = pid
			hasParticipant = true
			data = data[m:]

		case num == fieldNodes && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, malformed(m)
			}
			node, err := decodeNode(v)
			if err != nil {
				return nil, err
			}
			msg.Nodes = append(msg.Nodes, node)
			data = data[m:]

		default:
			m := protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return nil, malformed(m)
			}
			data = data[m:]
		}
	}

	if !hasParticipant || msg.Participant.IsEmpty() {
		return nil, ErrMissingParticipant
	}
	return msg, nil
}

func decodeNode(data []byte) (types.NodeEntities, error) {
	var node types.NodeEntities
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return node, malformed(n)
		}
		data = data[n:]

		if typ != protowire.BytesType || num < fieldNodeName || num > fieldNodeEntities {
			m := protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return node, malformed(m)
			}
			data = data[m:]
			continue
		}

		v, m := protowire.ConsumeBytes(data)
		if m < 0 {
			return node, malformed(m)
		}
		data = data[m:]

		switch num {
		case fieldNodeName:
			if !utf8.Valid(v) {
				return node, fmt.Errorf("%w: node name is not valid UTF-8", ErrMalformed)
			}
			node.Name = string(v)
		case fieldNodeNamespace:
			if !utf8.Valid(v) {
				return node, fmt.Errorf("%w: node namespace is not valid UTF-8", ErrMalformed)
			}
			node.Namespace = string(v)
		case fieldNodeEntities:
			id, err := types.EntityIDFromBytes(v)
			if err != nil {
				return node, ErrInvalidGID
			}
			node.Entities = append(node.Entities, id)
		}
	}
	return node, nil
}

func malformed(n int) error {
	return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
}
