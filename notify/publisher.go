//go:generate mockgen -source=publisher.go -destination=mock_publisher.go -package=notify

package notify

import (
	"context"
	"errors"

	"github.com/phillip/campus-services-go/utils"
)

// Publisher delivers domain events under a routing key.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
	Close() error
}

type NoopPub struct{}

func NewNoop() Publisher { return NoopPub{} }

func (NoopPub) Publish(context.Context, string, any) error { return nil }
func (NoopPub) Close() error                                 { return nil }

// Multi fans an event out to every publisher; one failing sink does not stop the rest.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, key string, event any) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, key, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Emit publishes and only logs failures. Event delivery never fails the operation that caused it.
func Emit(ctx context.Context, p Publisher, key string, event any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, key, event); err != nil {
		utils.Warn("event publish failed", map[string]any{
			"key":        key,
			"request_id": RequestIDFrom(ctx),
			"error":      err.Error(),
		})
	}
}

type requestIDKey struct{}

// WithRequestID attaches the inbound request id so published events can carry it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
