package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"isu-photo-board/internal/platform/rabbitmq"
)

type invalidationPublisher interface {
	Publish(ctx context.Context, event rabbitmq.InvalidationEvent) error
}

// Invalidator routes cache invalidations through the event queue so the
// worker deletes them off the request path. A failed publish falls back to
// a direct delete; either way invalidation stays best-effort and a stale
// read inside the window is acceptable.
type Invalidator struct {
	publisher invalidationPublisher
	cache     Cache
	log       *logrus.Logger
}

func NewInvalidator(publisher invalidationPublisher, cache Cache, log *logrus.Logger) *Invalidator {
	return &Invalidator{
		publisher: publisher,
		cache:     cache,
		log:       log,
	}
}

func (i *Invalidator) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if i.publisher != nil {
		err := i.publisher.Publish(ctx, rabbitmq.InvalidationEvent{Keys: keys})
		if err == nil {
			return
		}
		i.log.WithError(err).WithField("keys", keys).Warn("invalidation publish failed, deleting directly")
	}
	i.cache.Delete(ctx, keys...)
}
