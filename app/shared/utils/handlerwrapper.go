package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sideout-club/sideout-backend/app/shared/attr"
)

// TopicMetadataKey carries the publish topic on messages produced by
// handlers; the module router resolves it when publishing.
const TopicMetadataKey = "topic"

// Result is one outgoing event a handler wants published after it
// returns. The router performs the publish so handlers stay free of
// transport concerns.
type Result struct {
	Topic   string
	Payload any
}

// TypedHandler is a handler operating on a decoded payload.
type TypedHandler[P any] func(ctx context.Context, payload *P) ([]Result, error)

// WrapHandler adapts a TypedHandler into a watermill message.HandlerFunc:
// it decodes the JSON payload, threads the correlation ID onto the
// context, opens a span, and marshals any returned Results into outgoing
// messages tagged with their publish topic.
func WrapHandler[P any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	handle TypedHandler[P],
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := msg.Context()
		if corrID := msg.Metadata.Get(attr.CorrelationIDMetadataKey); corrID != "" {
			ctx = attr.WithCorrelationID(ctx, corrID)
		}

		ctx, span := tracer.Start(ctx, handlerName, trace.WithAttributes(
			attribute.String("handler", handlerName),
			attribute.String("message_uuid", msg.UUID),
		))
		defer span.End()

		var payload P
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			// A payload that cannot decode will never decode; surface it
			// as terminal rather than let the broker redeliver forever.
			logger.ErrorContext(ctx, "Failed to decode payload, dropping message",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("message_uuid", msg.UUID),
				attr.Error(err),
			)
			span.RecordError(err)
			return nil, nil
		}

		results, err := handle(ctx, &payload)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("%s: %w", handlerName, err)
		}

		out := make([]*message.Message, 0, len(results))
		for _, r := range results {
			raw, err := json.Marshal(r.Payload)
			if err != nil {
				span.RecordError(err)
				return nil, fmt.Errorf("%s: marshal result for %s: %w", handlerName, r.Topic, err)
			}
			m := message.NewMessage(watermill.NewUUID(), raw)
			m.Metadata.Set(TopicMetadataKey, r.Topic)
			m.Metadata.Set(attr.CorrelationIDMetadataKey, msg.Metadata.Get(attr.CorrelationIDMetadataKey))
			out = append(out, m)
		}
		return out, nil
	}
}

// NewEvent marshals a payload into a message ready to publish on topic.
func NewEvent(topic string, payload any) (*message.Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload for %s: %w", topic, err)
	}
	m := message.NewMessage(watermill.NewUUID(), raw)
	m.Metadata.Set(TopicMetadataKey, topic)
	return m, nil
}
