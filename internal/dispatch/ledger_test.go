package dispatch

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerOneScanPerAddress(t *testing.T) {
	first, second := uuid.New(), uuid.New()

	var l Ledger

	l, err := l.Begin("10.0.0.1", first)
	require.NoError(t, err)

	again, err := l.Begin("10.0.0.1", second)
	require.ErrorIs(t, err, ErrPortScanPending)
	assert.Equal(t, l, again)

	id, ok := l.Outstanding("10.0.0.1")
	require.True(t, ok)
	assert.Equal(t, first, id)

	other, err := l.Begin("10.0.0.2", second)
	require.NoError(t, err)
	assert.Len(t, other, 2)
	assert.Len(t, l, 1)
}

func TestLedgerFinishMatchesID(t *testing.T) {
	id := uuid.New()

	l, err := Ledger{}.Begin("10.0.0.1", id)
	require.NoError(t, err)

	same, ok := l.Finish("10.0.0.1", uuid.New())
	assert.False(t, ok)
	assert.Equal(t, l, same)

	done, ok := l.Finish("10.0.0.1", id)
	require.True(t, ok)
	assert.Empty(t, done)

	_, still := l.Outstanding("10.0.0.1")
	assert.True(t, still, "Finish must not modify the receiver")

	_, err = done.Begin("10.0.0.1", uuid.New())
	assert.NoError(t, err)
}

func TestLedgerDrop(t *testing.T) {
	l, err := Ledger{}.Begin("10.0.0.1", uuid.New())
	require.NoError(t, err)

	assert.Empty(t, l.Drop("10.0.0.1"))
	assert.Equal(t, l, l.Drop("10.0.0.9"))
}

func TestLedgerAcknowledge(t *testing.T) {
	id := uuid.New()

	l, err := Ledger{}.Begin("10.0.0.2", id)
	require.NoError(t, err)

	l, err = l.Begin("10.0.0.1", uuid.New())
	require.NoError(t, err)

	assert.Empty(t, l.AwaitingPush())
	assert.Equal(t, l, l.Acknowledge("10.0.0.2", uuid.New()))

	acked := l.Acknowledge("10.0.0.2", id)
	assert.Equal(t, []string{"10.0.0.2"}, acked.AwaitingPush())
	assert.Empty(t, l.AwaitingPush(), "Acknowledge must not modify the receiver")

	got, ok := acked.Outstanding("10.0.0.2")
	require.True(t, ok)
	assert.Equal(t, id, got)

	done, ok := acked.Finish("10.0.0.2", id)
	require.True(t, ok)
	assert.Empty(t, done.AwaitingPush())
}
