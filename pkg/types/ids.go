// Package types 定义 graphdir 的基础类型
//
// 这是整个系统的最底层包，不依赖任何其他 graphdir 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
package types

import (
	"encoding/binary"
	"errors"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// ============================================================================
//                              GID 布局
// ============================================================================

// GIDSize GID 固定长度（字节）
//
// 布局：
//
//	[0:16)  参与者前缀（UUID v4）
//	[16:23) 实体序号（大端，参与者自身为 0）
//	[23]    实体类型标记
const GIDSize = 24

const (
	prefixSize  = 16
	sequenceLen = GIDSize - prefixSize - 1

	// MaxEntitySequence 单个参与者可分配的最大实体序号
	MaxEntitySequence = 1<<(8*sequenceLen) - 1
)

// EntityKind 实体类型，编码在 GID 最后一个字节
type EntityKind uint8

const (
	// KindUnknown 未知类型
	KindUnknown EntityKind = 0x00
	// KindParticipant 参与者自身
	KindParticipant EntityKind = 0xC1
	// KindPublisher 发布者（DataWriter）
	KindPublisher EntityKind = 0x03
	// KindSubscriber 订阅者（DataReader）
	KindSubscriber EntityKind = 0x04
)

// String 返回实体类型名称
func (k EntityKind) String() string {
	switch k {
	case KindParticipant:
		return "participant"
	case KindPublisher:
		return "publisher"
	case KindSubscriber:
		return "subscriber"
	default:
		return "unknown"
	}
}

// IsEntity 是否为可挂在节点下的实体类型
func (k EntityKind) IsEntity() bool {
	return k == KindPublisher || k == KindSubscriber
}

var (
	// ErrInvalidGID GID 长度或内容无效
	ErrInvalidGID = errors.New("types: invalid GID: must be 24 bytes")

	// ErrSequenceExhausted 实体序号耗尽
	ErrSequenceExhausted = errors.New("types: entity sequence exhausted")
)

// ============================================================================
//                              ParticipantID
// ============================================================================

// ParticipantID 参与者全局唯一标识
//
// 零值表示未设置，在所有变更操作中均视为无效参数。
type ParticipantID [GIDSize]byte

// EmptyParticipantID 空参与者 ID
var EmptyParticipantID ParticipantID

// NewParticipantID 生成新的参与者 ID
func NewParticipantID() ParticipantID {
	var id ParticipantID
	u := uuid.New()
	copy(id[:prefixSize], u[:])
	id[GIDSize-1] = byte(KindParticipant)
	return id
}

// ParticipantIDFromBytes 从字节切片创建 ParticipantID
func ParticipantIDFromBytes(b []byte) (ParticipantID, error) {
	if len(b) != GIDSize {
		return EmptyParticipantID, ErrInvalidGID
	}
	var id ParticipantID
	copy(id[:], b)
	return id, nil
}

// ParseParticipantID 从 Base58 字符串解析 ParticipantID
func ParseParticipantID(s string) (ParticipantID, error) {
	if s == "" {
		return EmptyParticipantID, ErrInvalidGID
	}
	b, err := base58.Decode(s)
	if err != nil {
		return EmptyParticipantID, ErrInvalidGID
	}
	return ParticipantIDFromBytes(b)
}

// String 返回 Base58 表示
func (id ParticipantID) String() string {
	if id.IsEmpty() {
		return ""
	}
	return base58.Encode(id[:])
}

// ShortString 返回用于日志的短表示
func (id ParticipantID) ShortString() string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// Bytes 返回字节切片副本
func (id ParticipantID) Bytes() []byte {
	b := make([]byte, GIDSize)
	copy(b, id[:])
	return b
}

// IsEmpty 检查是否为空
func (id ParticipantID) IsEmpty() bool {
	return id == EmptyParticipantID
}

// Entity 派生该参与者名下序号为 seq 的实体 ID
func (id ParticipantID) Entity(seq uint64, kind EntityKind) (EntityID, error) {
	if id.IsEmpty() || !kind.IsEntity() {
		return EmptyEntityID, ErrInvalidGID
	}
	if seq == 0 || seq > MaxEntitySequence {
		return EmptyEntityID, ErrSequenceExhausted
	}
	var e EntityID
	copy(e[:prefixSize], id[:prefixSize])
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seq)
	copy(e[prefixSize:GIDSize-1], buf[8-sequenceLen:])
	e[GIDSize-1] = byte(kind)
	return e, nil
}

// Owns 判断实体是否属于该参与者
func (id ParticipantID) Owns(e EntityID) bool {
	if id.IsEmpty() || e.IsEmpty() {
		return false
	}
	return [prefixSize]byte(id[:prefixSize]) == [prefixSize]byte(e[:prefixSize])
}

// ============================================================================
//                              EntityID
// ============================================================================

// EntityID 发布者/订阅者的全局唯一标识，隶属于某个参与者
type EntityID [GIDSize]byte

// EmptyEntityID 空实体 ID
var EmptyEntityID EntityID

// EntityIDFromBytes 从字节切片创建 EntityID
func EntityIDFromBytes(b []byte) (EntityID, error) {
	if len(b) != GIDSize {
		return EmptyEntityID, ErrInvalidGID
	}
	var id EntityID
	copy(id[:], b)
	return id, nil
}

// ParseEntityID 从 Base58 字符串解析 EntityID
func ParseEntityID(s string) (EntityID, error) {
	if s == "" {
		return EmptyEntityID, ErrInvalidGID
	}
	b, err := base58.Decode(s)
	if err != nil {
		return EmptyEntityID, ErrInvalidGID
	}
	return EntityIDFromBytes(b)
}

// String 返回 Base58 表示
func (id EntityID) String() string {
	if id.IsEmpty() {
		return ""
	}
	return base58.Encode(id[:])
}

// ShortString 返回用于日志的短表示
func (id EntityID) ShortString() string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// Bytes 返回字节切片副本
func (id EntityID) Bytes() []byte {
	b := make([]byte, GIDSize)
	copy(b, id[:])
	return b
}

// IsEmpty 检查是否为空
func (id EntityID) IsEmpty() bool {
	return id == EmptyEntityID
}

// Kind 返回实体类型
func (id EntityID) Kind() EntityKind {
	return EntityKind(id[GIDSize-1])
}

// Sequence 返回实体序号
func (id EntityID) Sequence() uint64 {
	var buf [8]byte
	copy(buf[8-sequenceLen:], id[prefixSize:GIDSize-1])
	return binary.BigEndian.Uint64(buf[:])
}
