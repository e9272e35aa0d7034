package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntity(t *testing.T, pid ParticipantID, seq uint64, kind EntityKind) EntityID {
	t.Helper()
	e, err := pid.Entity(seq, kind)
	require.NoError(t, err)
	return e
}

func TestNodeInfo_FullyQualifiedName(t *testing.T) {
	assert.Equal(t, "/talker", NodeInfo{Name: "talker", Namespace: "/"}.FullyQualifiedName())
	assert.Equal(t, "/robot/arm", NodeInfo{Name: "arm", Namespace: "/robot"}.FullyQualifiedName())
}

func TestParticipantView_CloneIsDeep(t *testing.T) {
	pid := NewParticipantID()
	view := ParticipantView{Nodes: []NodeEntities{
		{NodeInfo: NodeInfo{Name: "a", Namespace: "/"}, Entities: []EntityID{testEntity(t, pid, 1, KindPublisher)}},
	}}

	clone := view.Clone()
	clone.Nodes[0].Entities[0] = testEntity(t, pid, 9, KindSubscriber)
	clone.Nodes[0].Name = "changed"

	assert.Equal(t, "a", view.Nodes[0].Name)
	assert.Equal(t, KindPublisher, view.Nodes[0].Entities[0].Kind())
}

func TestParticipantView_Equality(t *testing.T) {
	pid := NewParticipantID()
	pub := testEntity(t, pid, 1, KindPublisher)
	sub := testEntity(t, pid, 2, KindSubscriber)

	a := ParticipantView{Nodes: []NodeEntities{
		{NodeInfo: NodeInfo{Name: "a", Namespace: "/"}, Entities: []EntityID{pub, sub}},
		{NodeInfo: NodeInfo{Name: "b", Namespace: "/"}},
	}}
	reordered := ParticipantView{Nodes: []NodeEntities{a.Nodes[1], a.Nodes[0]}}
	swapped := ParticipantView{Nodes: []NodeEntities{
		{NodeInfo: NodeInfo{Name: "a", Namespace: "/"}, Entities: []EntityID{sub, pub}},
		a.Nodes[1],
	}}

	assert.True(t, a.Equal(a.Clone()))
	assert.False(t, a.Equal(reordered))
	assert.True(t, a.EquivalentTo(reordered))
	assert.False(t, a.EquivalentTo(swapped))

	assert.Equal(t, 1, a.CountKind(KindPublisher))
	assert.Equal(t, 1, a.CountKind(KindSubscriber))
	assert.Equal(t, []EntityID{pub}, a.Nodes[0].Publishers())
	assert.Equal(t, []EntityID{sub}, a.Nodes[0].Subscribers())
}

func TestDirectoryMessage_ViewCopies(t *testing.T) {
	pid := NewParticipantID()
	view := ParticipantView{Nodes: []NodeEntities{{NodeInfo: NodeInfo{Name: "n", Namespace: "/"}}}}

	msg := NewDirectoryMessage(pid, view)
	view.Nodes[0].Name = "mutated"
	assert.Equal(t, "n", msg.Nodes[0].Name)

	out := msg.View()
	out.Nodes[0].Name = "again"
	assert.Equal(t, "n", msg.Nodes[0].Name)

	var nilMsg *DirectoryMessage
	assert.Empty(t, nilMsg.View().Nodes)
}

func TestSnapshot_Helpers(t *testing.T) {
	a, b := NewParticipantID(), NewParticipantID()
	snap := Snapshot{
		a: {Nodes: []NodeEntities{{NodeInfo: NodeInfo{Name: "x", Namespace: "/"}}}},
		b: {Nodes: []NodeEntities{{NodeInfo: NodeInfo{Name: "y", Namespace: "/ns"}}, {NodeInfo: NodeInfo{Name: "z", Namespace: "/"}}}},
	}

	assert.Len(t, snap.Participants(), 2)
	assert.Equal(t, 3, snap.NodeCount())
	assert.True(t, snap.HasNode("y", "/ns"))
	assert.False(t, snap.HasNode("y", "/"))
}
