package graphcache

import "errors"

var (
	// ErrInvalidParticipant 参与者 ID 未设置
	ErrInvalidParticipant = errors.New("graphcache: invalid participant id")

	// ErrInvalidEntity 实体 ID 未设置
	ErrInvalidEntity = errors.New("graphcache: invalid entity id")
)
