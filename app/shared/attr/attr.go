// Package attr provides slog attribute helpers shared by every module.
package attr

import (
	"context"
	"log/slog"

	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

type correlationIDKey struct{}

// CorrelationIDMetadataKey is the message-metadata key the router
// middleware reads and writes.
const CorrelationIDMetadataKey = "correlation_id"

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

func Any(key string, value any) slog.Attr { return slog.Any(key, value) }

func Error(err error) slog.Attr { return slog.Any("error", err) }

func MatchID(key string, id sharedtypes.MatchID) slog.Attr {
	return slog.String(key, id.String())
}

func PlayerID(key string, id sharedtypes.PlayerID) slog.Attr {
	return slog.String(key, string(id))
}

// WithCorrelationID stores a correlation ID on the context for later
// extraction by ExtractCorrelationID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationIDFromContext returns the stored correlation ID, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

// ExtractCorrelationID returns a log attribute for the context's
// correlation ID so handlers and services log it uniformly.
func ExtractCorrelationID(ctx context.Context) slog.Attr {
	return slog.String(CorrelationIDMetadataKey, CorrelationIDFromContext(ctx))
}
