package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSink publishes events as JSON records keyed by email.
type KafkaSink struct {
	client       *kgo.Client
	topic        string
	writeTimeout time.Duration
}

// defaultKafkaWriteTimeout bounds one produce, and topic bootstrap at startup.
const defaultKafkaWriteTimeout = 5 * time.Second

// KafkaConfig selects the brokers and topic for the audit stream.
type KafkaConfig struct {
	Brokers    []string
	Topic      string
	Partitions int32
	// ReplicationFactor of -1 uses the broker default.
	ReplicationFactor int16
	// WriteTimeout caps a single Write, including broker unavailability.
	// Zero uses 5s.
	WriteTimeout time.Duration
}

// NewKafkaSink connects to the brokers and makes sure the topic exists.
func NewKafkaSink(ctx context.Context, cfg KafkaConfig) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka audit sink requires at least one broker")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka audit sink requires a topic")
	}
	if cfg.Partitions <= 0 {
		cfg.Partitions = 1
	}
	if cfg.ReplicationFactor == 0 {
		cfg.ReplicationFactor = -1
	}

	sink, err := newKafkaSink(cfg)
	if err != nil {
		return nil, err
	}

	bootCtx, cancel := context.WithTimeout(ctx, sink.writeTimeout)
	defer cancel()
	if err := ensureTopic(bootCtx, kadm.NewClient(sink.client), cfg); err != nil {
		sink.Close()
		return nil, err
	}
	return sink, nil
}

// newKafkaSink builds the producer without touching the brokers.
func newKafkaSink(cfg KafkaConfig) (*KafkaSink, error) {
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = defaultKafkaWriteTimeout
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.RecordDeliveryTimeout(timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaSink{client: client, topic: cfg.Topic, writeTimeout: timeout}, nil
}

func ensureTopic(ctx context.Context, adm *kadm.Client, cfg KafkaConfig) error {
	resp, err := adm.CreateTopics(ctx, cfg.Partitions, cfg.ReplicationFactor, nil, cfg.Topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create audit topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// Write produces one record and waits for the acks, at most writeTimeout.
func (s *KafkaSink) Write(ctx context.Context, event Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Email),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Ping checks that at least one broker answers.
func (s *KafkaSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close flushes buffered records and releases broker connections.
func (s *KafkaSink) Close() {
	s.client.Close()
}
