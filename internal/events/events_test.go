package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	fail   bool
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail {
		return errors.New("broker down")
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_KeysByOrder(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w)

	p.Publish(context.Background(), Event{Type: OrderCreated, OrderID: "o1", UserID: "u1"})
	p.Publish(context.Background(), Event{Type: PaymentSucceeded, OrderID: "o1", UserID: "u1"})
	require.NoError(t, p.Close())

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "o1", string(w.msgs[0].Key))
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)
	assert.Equal(t, OrderCreated, string(w.msgs[0].Headers[0].Value))

	var ev Event
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &ev))
	assert.Equal(t, PaymentSucceeded, ev.Type)
	assert.False(t, ev.OccurredAt.IsZero())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteErrorsAreSwallowed(t *testing.T) {
	w := &fakeWriter{fail: true}
	p := newKafkaPublisher(w)

	assert.NotPanics(t, func() {
		p.Publish(context.Background(), Event{Type: OrderCreated, OrderID: "o1"})
	})
	require.NoError(t, p.Close())
	assert.Empty(t, w.msgs)
}

func TestKafkaPublisher_CloseTwice(t *testing.T) {
	p := newKafkaPublisher(&fakeWriter{})
	require.NoError(t, p.Close())
	assert.NoError(t, p.Close())
}
