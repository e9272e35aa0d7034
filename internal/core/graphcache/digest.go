package graphcache

import (
	"encoding/binary"

	"github.com/spaolacci/murmur3"

	"github.com/dep2p/go-graphdir/pkg/types"
)

// viewDigest 计算视图摘要，用于识别重复投递的相同视图
func viewDigest(view types.ParticipantView) uint64 {
	h := murmur3.New64()
	var buf [binary.MaxVarintLen64]byte

	writeString := func(s string) {
		n := binary.PutUvarint(buf[:], uint64(len(s)))
		_, _ = h.Write(buf[:n])
		_, _ = h.Write([]byte(s))
	}

	n := binary.PutUvarint(buf[:], uint64(len(view.Nodes)))
	_, _ = h.Write(buf[:n])
	for _, node := range view.Nodes {
		writeString(node.Name)
		writeString(node.Namespace)
		n = binary.PutUvarint(buf[:], uint64(len(node.Entities)))
		_, _ = h.Write(buf[:n])
		for _, e := range node.Entities {
			_, _ = h.Write(e[:])
		}
	}
	return h.Sum64()
}
