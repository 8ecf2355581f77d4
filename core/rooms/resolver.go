package rooms

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultMaxAttempts = 5
	defaultRetryDelay  = 500 * time.Millisecond
)

// RoomLister is the registry surface the resolver needs.
type RoomLister interface {
	ListRooms(ctx context.Context) ([]Room, error)
}

// Resolver obtains a call's configuration even when it is not yet visible to
// a process that just attached to the call. Room metadata propagates with a
// delay, so the resolver re-queries the registry a bounded number of times
// before degrading to empty configuration.
type Resolver struct {
	registry    RoomLister
	maxAttempts int
	retryDelay  time.Duration
}

type ResolverOption func(*Resolver)

// WithMaxAttempts bounds the registry retry loop.
func WithMaxAttempts(maxAttempts int) ResolverOption {
	return func(r *Resolver) {
		if maxAttempts > 0 {
			r.maxAttempts = maxAttempts
		}
	}
}

// WithRetryDelay sets the pause between registry attempts.
func WithRetryDelay(delay time.Duration) ResolverOption {
	return func(r *Resolver) {
		if delay > 0 {
			r.retryDelay = delay
		}
	}
}

func NewResolver(registry RoomLister, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		registry:    registry,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve returns the call's configuration. The metadata already attached to
// the call is preferred; when it is absent the registry is queried with a
// bounded retry loop. Exhausting the attempts is not an error: the zero
// RoomMetadata is returned and the caller proceeds with built-in defaults.
func (r *Resolver) Resolve(ctx context.Context, callID string, attachedMetadata string) RoomMetadata {
	ctx, span := tracer.Start(ctx, "resolve call metadata")
	defer span.End()
	span.SetAttributes(attribute.String("call.id", callID))

	if attachedMetadata != "" {
		metadata, err := ParseMetadata(attachedMetadata)
		if err != nil {
			logger.WarnContext(ctx, "Failed to parse attached metadata, falling back to registry", "call", callID, "error", err)
		} else if !metadata.IsEmpty() {
			span.SetAttributes(attribute.String("metadata.source", "attached"))
			return metadata
		}
	}

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if metadata, found := r.lookup(ctx, callID, attempt); found {
			span.SetAttributes(
				attribute.String("metadata.source", "registry"),
				attribute.Int("metadata.attempts", attempt),
			)
			return metadata
		}

		if attempt == r.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			logger.WarnContext(ctx, "Metadata resolution cancelled, using defaults", "call", callID)
			return RoomMetadata{}
		case <-time.After(r.retryDelay):
		}
	}

	logger.WarnContext(ctx, "Metadata not visible after all attempts, using default prompts",
		"call", callID, "attempts", r.maxAttempts)
	span.SetAttributes(attribute.String("metadata.source", "defaults"))
	return RoomMetadata{}
}

func (r *Resolver) lookup(ctx context.Context, callID string, attempt int) (RoomMetadata, bool) {
	rooms, err := r.registry.ListRooms(ctx)
	if err != nil {
		logger.WarnContext(ctx, "Registry query failed", "call", callID, "attempt", attempt, "error", err)
		return RoomMetadata{}, false
	}

	for _, room := range rooms {
		if room.Name != callID {
			continue
		}

		if room.Metadata == "" {
			logger.InfoContext(ctx, "Room listed without metadata yet", "call", callID, "attempt", attempt)
			return RoomMetadata{}, false
		}

		metadata, err := ParseMetadata(room.Metadata)
		if err != nil {
			logger.WarnContext(ctx, "Failed to parse room metadata, using defaults", "call", callID, "error", err)
			return RoomMetadata{}, true
		}
		return metadata, true
	}

	logger.InfoContext(ctx, "Call not listed by registry yet", "call", callID, "attempt", attempt)
	return RoomMetadata{}, false
}
