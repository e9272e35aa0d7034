package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParticipantID(t *testing.T) {
	a := NewParticipantID()
	b := NewParticipantID()

	assert.False(t, a.IsEmpty())
	assert.NotEqual(t, a, b)
	assert.Equal(t, byte(KindParticipant), a[GIDSize-1])
}

func TestParticipantID_StringRoundTrip(t *testing.T) {
	id := NewParticipantID()

	parsed, err := ParseParticipantID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.Len(t, id.ShortString(), 8)

	_, err = ParseParticipantID("")
	assert.ErrorIs(t, err, ErrInvalidGID)
	_, err = ParseParticipantID("0OIl")
	assert.ErrorIs(t, err, ErrInvalidGID)
	_, err = ParticipantIDFromBytes([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidGID)

	assert.Equal(t, "", EmptyParticipantID.String())
}

func TestParticipantID_Entity(t *testing.T) {
	pid := NewParticipantID()

	pub, err := pid.Entity(1, KindPublisher)
	require.NoError(t, err)
	sub, err := pid.Entity(2, KindSubscriber)
	require.NoError(t, err)

	assert.Equal(t, KindPublisher, pub.Kind())
	assert.Equal(t, KindSubscriber, sub.Kind())
	assert.Equal(t, uint64(1), pub.Sequence())
	assert.Equal(t, uint64(2), sub.Sequence())
	assert.True(t, pid.Owns(pub))
	assert.False(t, NewParticipantID().Owns(pub))

	parsed, err := ParseEntityID(pub.String())
	require.NoError(t, err)
	assert.Equal(t, pub, parsed)
}

func TestParticipantID_EntityInvalid(t *testing.T) {
	pid := NewParticipantID()

	_, err := EmptyParticipantID.Entity(1, KindPublisher)
	assert.ErrorIs(t, err, ErrInvalidGID)

	_, err = pid.Entity(1, KindParticipant)
	assert.ErrorIs(t, err, ErrInvalidGID)

	_, err = pid.Entity(0, KindPublisher)
	assert.ErrorIs(t, err, ErrSequenceExhausted)

	_, err = pid.Entity(MaxEntitySequence+1, KindPublisher)
	assert.ErrorIs(t, err, ErrSequenceExhausted)

	last, err := pid.Entity(MaxEntitySequence, KindSubscriber)
	require.NoError(t, err)
	assert.Equal(t, uint64(MaxEntitySequence), last.Sequence())
}

func TestEntityKind_String(t *testing.T) {
	assert.Equal(t, "publisher", KindPublisher.String())
	assert.Equal(t, "subscriber", KindSubscriber.String())
	assert.Equal(t, "participant", KindParticipant.String())
	assert.Equal(t, "unknown", EntityKind(0x7f).String())
}
