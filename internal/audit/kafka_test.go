package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authgate/pkg/platform/circuit"
)

func TestKafkaSink_UnreachableBrokerFailsWithinTimeout(t *testing.T) {
	sink, err := newKafkaSink(KafkaConfig{
		Brokers:      []string{"127.0.0.1:1"},
		Topic:        "authgate.audit",
		WriteTimeout: 200 * time.Millisecond,
	})
	require.NoError(t, err)
	defer sink.Close()

	breaker := circuit.New("kafka", circuit.WithFailureThreshold(1))
	guarded := NewGuardedSink(sink, breaker, slog.New(slog.NewTextHandler(io.Discard, nil)))

	done := make(chan error, 1)
	go func() {
		done <- guarded.Write(context.Background(), Event{Action: ActionLoginFailed, Email: "a@x.com"})
	}()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("write to an unreachable broker did not return")
	}
	assert.True(t, breaker.IsOpen())
	assert.ErrorIs(t, guarded.Write(context.Background(), Event{}), ErrSinkUnavailable)
}

func TestKafkaSink_PublisherCloseDoesNotHang(t *testing.T) {
	sink, err := newKafkaSink(KafkaConfig{
		Brokers:      []string{"127.0.0.1:1"},
		Topic:        "authgate.audit",
		WriteTimeout: 200 * time.Millisecond,
	})
	require.NoError(t, err)
	defer sink.Close()

	pub := NewPublisher(MultiSink{NewMemorySink(), sink},
		WithAsyncBuffer(4),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, pub.Emit(context.Background(), Event{Action: ActionAccountRegistered, Email: "a@x.com"}))

	closed := make(chan struct{})
	go func() {
		pub.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(10 * time.Second):
		t.Fatal("publisher close blocked on the kafka sink")
	}
}

func TestNewKafkaSink_RequiresBrokersAndTopic(t *testing.T) {
	_, err := NewKafkaSink(context.Background(), KafkaConfig{Topic: "t"})
	assert.Error(t, err)
	_, err = NewKafkaSink(context.Background(), KafkaConfig{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)
}
