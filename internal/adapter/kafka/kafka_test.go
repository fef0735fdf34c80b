package kafka

import (
	"io"
	"log/slog"
	"testing"

	"github.com/couchcryptid/flex-control/internal/domain"
	"github.com/couchcryptid/flex-control/internal/retrieval"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest() *domain.Request {
	req := domain.NewRequest()
	req.Set("class", "EA")
	req.Set("type", "AN")
	req.Set("levelist", "1/to/137")
	return req
}

func TestSerializeToMessage(t *testing.T) {
	msg, err := serializeToMessage(sampleRequest(), retrieval.BackendMARS, "run-1")
	require.NoError(t, err)

	_, err = uuid.ParseBytes(msg.Key)
	require.NoError(t, err)
	assert.Equal(t, `{"class":"EA","type":"AN","levelist":"1/to/137"}`, string(msg.Value))

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "backend", msg.Headers[0].Key)
	assert.Equal(t, []byte("mars"), msg.Headers[0].Value)
	assert.Equal(t, "run_id", msg.Headers[1].Key)
	assert.Equal(t, []byte("run-1"), msg.Headers[1].Value)
	assert.Equal(t, "class", msg.Headers[2].Key)
	assert.Equal(t, []byte("EA"), msg.Headers[2].Value)
}

func TestSerializeToMessage_OptionalHeaders(t *testing.T) {
	req := domain.NewRequest()
	req.Set("type", "FC")

	msg, err := serializeToMessage(req, retrieval.BackendPublic, "")
	require.NoError(t, err)

	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "backend", msg.Headers[0].Key)
	assert.Equal(t, []byte("public"), msg.Headers[0].Value)
}

func TestSerializeToMessage_UniqueKeys(t *testing.T) {
	a, err := serializeToMessage(sampleRequest(), retrieval.BackendMARS, "")
	require.NoError(t, err)
	b, err := serializeToMessage(sampleRequest(), retrieval.BackendMARS, "")
	require.NoError(t, err)
	assert.NotEqual(t, a.Key, b.Key)
}

func TestNewPublisher(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"}, "retrieval-mars", retrieval.BackendMARS,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = p.Close() })

	assert.Equal(t, "retrieval-mars", p.writer.Topic)
	assert.Equal(t, retrieval.BackendMARS, p.backend)
}
