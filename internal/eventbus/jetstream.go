// Package eventbus provides the NATS JetStream transport behind every
// module router. Streams are provisioned per top-level subject token, so
// match.* topics land on the "match" stream and stats.* topics on the
// "stats" stream. Consumers are durable with explicit acks; delivery is
// at least once, and handlers are responsible for idempotency.
package eventbus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
)

// EventBus implements watermill's message.Publisher and
// message.Subscriber over JetStream.
type EventBus struct {
	logger      watermill.LoggerAdapter
	natsURL     string
	publisher   *wnats.Publisher
	subscriber  *wnats.Subscriber
	provisioner *streamProvisioner
}

var (
	_ message.Publisher  = (*EventBus)(nil)
	_ message.Subscriber = (*EventBus)(nil)
)

// New connects to NATS and builds the publisher/subscriber pair.
func New(natsURL string, logger watermill.LoggerAdapter) (*EventBus, error) {
	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
		nc.ErrorHandler(func(_ *nc.Conn, s *nc.Subscription, err error) {
			if s != nil {
				logger.Error("Error in subscription", err, watermill.LogFields{
					"subject": s.Subject,
					"queue":   s.Queue,
				})
			} else {
				logger.Error("Error in connection", err, nil)
			}
		}),
	}

	provisioner, err := newStreamProvisioner(natsURL, options, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream provisioner: %w", err)
	}

	publisher, err := wnats.NewPublisher(
		wnats.PublisherConfig{
			URL:         natsURL,
			NatsOptions: options,
			Marshaler:   &wnats.NATSMarshaler{},
			JetStream: wnats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
			},
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	subscriber, err := wnats.NewSubscriber(
		wnats.SubscriberConfig{
			URL:         natsURL,
			NatsOptions: options,
			Unmarshaler: &wnats.NATSMarshaler{},
			JetStream: wnats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
			},
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	return &EventBus{
		logger:      logger,
		natsURL:     natsURL,
		publisher:   publisher,
		subscriber:  subscriber,
		provisioner: provisioner,
	}, nil
}

// Publish ensures the topic's stream exists and publishes the messages.
func (b *EventBus) Publish(topic string, messages ...*message.Message) error {
	if err := b.provisioner.EnsureStream(streamForTopic(topic)); err != nil {
		return fmt.Errorf("failed to ensure stream for %s: %w", topic, err)
	}
	if err := b.publisher.Publish(topic, messages...); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe ensures the stream and a durable consumer exist, then hands
// the subscription to watermill.
func (b *EventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	stream := streamForTopic(topic)
	if err := b.provisioner.EnsureStream(stream); err != nil {
		return nil, fmt.Errorf("failed to ensure stream for %s: %w", topic, err)
	}
	if err := b.provisioner.EnsureConsumer(stream, consumerName(topic), topic); err != nil {
		return nil, fmt.Errorf("failed to ensure consumer for %s: %w", topic, err)
	}
	return b.subscriber.Subscribe(ctx, topic)
}

// Close releases the underlying connections.
func (b *EventBus) Close() error {
	if err := b.publisher.Close(); err != nil {
		return fmt.Errorf("failed to close publisher: %w", err)
	}
	if err := b.subscriber.Close(); err != nil {
		return fmt.Errorf("failed to close subscriber: %w", err)
	}
	b.provisioner.Close()
	return nil
}

// streamForTopic maps a dotted topic to its stream: the first token.
func streamForTopic(topic string) string {
	if i := strings.IndexByte(topic, '.'); i > 0 {
		return topic[:i]
	}
	return topic
}

// consumerName derives a durable consumer name valid under NATS naming
// rules (no periods).
func consumerName(topic string) string {
	return strings.ReplaceAll(topic, ".", "-") + "-consumer"
}

// streamProvisioner creates JetStream streams and consumers on demand.
type streamProvisioner struct {
	logger watermill.LoggerAdapter
	conn   *nc.Conn
	js     nc.JetStreamContext
}

func newStreamProvisioner(natsURL string, options []nc.Option, logger watermill.LoggerAdapter) (*streamProvisioner, error) {
	conn, err := nc.Connect(natsURL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &streamProvisioner{
		logger: logger,
		conn:   conn,
		js:     js,
	}, nil
}

// EnsureStream creates the stream if it doesn't exist.
func (p *streamProvisioner) EnsureStream(streamName string) error {
	if !isValidStreamName(streamName) {
		return fmt.Errorf("invalid stream name: %s", streamName)
	}

	info, err := p.js.StreamInfo(streamName)
	if err != nil && err != nc.ErrStreamNotFound {
		return fmt.Errorf("failed to get stream info: %w", err)
	}
	if info != nil {
		return nil
	}

	_, err = p.js.AddStream(&nc.StreamConfig{
		Name:     streamName,
		Subjects: []string{fmt.Sprintf("%s.>", streamName)},
	})
	if err != nil {
		return fmt.Errorf("failed to add stream: %w", err)
	}

	p.logger.Info("Stream created", watermill.LogFields{"stream": streamName})
	return nil
}

// EnsureConsumer creates a durable explicit-ack consumer filtered to the
// given subject.
func (p *streamProvisioner) EnsureConsumer(streamName, consumer, subject string) error {
	info, err := p.js.ConsumerInfo(streamName, consumer)
	if err != nil && err != nc.ErrConsumerNotFound {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}
	if info != nil {
		return nil
	}

	_, err = p.js.AddConsumer(streamName, &nc.ConsumerConfig{
		Durable:       consumer,
		DeliverPolicy: nc.DeliverAllPolicy,
		AckPolicy:     nc.AckExplicitPolicy,
		FilterSubject: subject,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	p.logger.Info("Consumer created", watermill.LogFields{
		"stream":   streamName,
		"consumer": consumer,
		"subject":  subject,
	})
	return nil
}

func (p *streamProvisioner) Close() {
	p.conn.Close()
}

// isValidStreamName checks a stream name against NATS naming rules.
func isValidStreamName(name string) bool {
	for _, r := range name {
		if !isValidRune(r) {
			return false
		}
	}
	return name != "" && name[0] != '-' && name[len(name)-1] != '-'
}

func isValidRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
}
