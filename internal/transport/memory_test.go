package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	t.Parallel()
	tr := NewMemoryTransport(8)
	topic := TopicSensores(1)

	require.NoError(t, tr.Subscribe(topic))
	require.NoError(t, tr.Publish(topic, []byte("abc")))

	got, ok := tr.TryPop(topic)
	require.True(t, ok)
	assert.Equal(t, []byte("abc"), got)

	_, ok = tr.TryPop(topic)
	assert.False(t, ok)
}

func TestMemoryDropsWithoutSubscriber(t *testing.T) {
	t.Parallel()
	tr := NewMemoryTransport(8)

	require.NoError(t, tr.Publish(TopicLogs(1), []byte("descartada")))

	_, ok := tr.TryPop(TopicLogs(1))
	assert.False(t, ok)
}

func TestMemoryQueueKeepsNewest(t *testing.T) {
	t.Parallel()
	tr := NewMemoryTransport(2)
	topic := TopicComandos(3)

	require.NoError(t, tr.Subscribe(topic))
	for _, msg := range []string{"a", "b", "c"} {
		require.NoError(t, tr.Publish(topic, []byte(msg)))
	}

	got, ok := tr.TryPop(topic)
	require.True(t, ok)
	assert.Equal(t, "b", string(got))

	got, ok = tr.TryPop(topic)
	require.True(t, ok)
	assert.Equal(t, "c", string(got))
}

func TestMemoryPayloadIsolation(t *testing.T) {
	t.Parallel()
	tr := NewMemoryTransport(4)
	topic := TopicEstado(2)
	require.NoError(t, tr.Subscribe(topic))

	src := []byte("original")
	require.NoError(t, tr.Publish(topic, src))
	src[0] = 'X'

	got, ok := tr.TryPop(topic)
	require.True(t, ok)
	assert.Equal(t, "original", string(got))
}

func TestTopicNames(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "/mina/caminhoes/7/sensores", TopicSensores(7))
	assert.Equal(t, "/mina/caminhoes/7/sim/defeito", TopicSimDefeito(7))
	assert.Equal(t, "/mina/gerente/falhas", TopicGerenteFalhas)
}
