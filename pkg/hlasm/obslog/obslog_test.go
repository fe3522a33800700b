package obslog

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRingRetainsCapacity(t *testing.T) {
	ring := NewRing(2)
	logger := New(io.Discard, ring)

	logger.Debug("first")
	logger.Debug("second")
	logger.Debug("third")

	messages := ring.Messages()
	require.Len(t, messages, 2)
	require.Equal(t, []string{"second", "third"}, messages)
}

func TestRingWithAttrsDoesNotMutateParent(t *testing.T) {
	ring := NewRing(8)
	logger := New(io.Discard, ring).With("component", "test")

	logger.Debug("hello")

	messages := ring.Messages()
	require.Len(t, messages, 1)
	require.Equal(t, "hello", messages[0])
}
