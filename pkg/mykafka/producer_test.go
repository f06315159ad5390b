package mykafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_NoBrokers(t *testing.T) {
	_, err := NewProducer(nil, []string{"order_events"})
	require.Error(t, err)
}

func TestPublishEvent_UnknownTopic(t *testing.T) {
	p, err := NewProducer([]string{"localhost:9092"}, []string{"order_events"})
	require.NoError(t, err)
	defer p.Close()

	err = p.PublishEvent(context.Background(), "cart_events", "k", map[string]any{"type": "x"})
	assert.ErrorIs(t, err, ErrUnknownTopic)
}
