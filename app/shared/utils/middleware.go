package utils

import (
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
)

// MiddlewareHelpers groups the metadata middleware shared by module
// routers.
type MiddlewareHelpers struct{}

func NewMiddlewareHelper() MiddlewareHelpers {
	return MiddlewareHelpers{}
}

// CommonMetadataMiddleware stamps every message passing through a module's
// router with the handling module and a processing timestamp.
func (MiddlewareHelpers) CommonMetadataMiddleware(module string) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			msg.Metadata.Set("handled_by", module)
			msg.Metadata.Set("handled_at", time.Now().UTC().Format(time.RFC3339Nano))
			return h(msg)
		}
	}
}
