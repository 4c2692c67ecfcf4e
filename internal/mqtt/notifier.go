package mqtt

import (
	"context"
	"sync"

	"irrigation_valve/internal/logger"
	"irrigation_valve/internal/models"
)

// Notifier is a controller observer that forwards state changes to a Publisher from its
// own goroutine. The controller never waits on the broker: only the most recent pending
// status is kept, since the state topic is retained and older documents are superseded.
type Notifier struct {
	pub Publisher
	log *logger.Logger

	mu      sync.Mutex
	pending []byte
	wake    chan struct{}
}

func NewNotifier(pub Publisher, log *logger.Logger) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Notifier{
		pub:  pub,
		log:  log,
		wake: make(chan struct{}, 1),
	}
}

// StateChanged queues st for publication.
func (n *Notifier) StateChanged(st models.Status, reason string) {
	payload, err := FormatStatePayload(st, reason)
	if err != nil {
		n.log.Errorw("mqtt_format_failed", "err", err)
		return
	}
	n.mu.Lock()
	n.pending = payload
	n.mu.Unlock()

	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// PersistFailed is not published; the state document already reflects the change.
func (n *Notifier) PersistFailed(error) {}

// RelayFailed is not published.
func (n *Notifier) RelayFailed(error) {}

// Run publishes pending states until ctx is canceled, then closes the publisher.
func (n *Notifier) Run(ctx context.Context) error {
	defer func() {
		if err := n.pub.Close(); err != nil {
			n.log.Warnw("mqtt_close_failed", "err", err)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-n.wake:
		}
		n.flush()
	}
}

func (n *Notifier) flush() {
	n.mu.Lock()
	payload := n.pending
	n.pending = nil
	n.mu.Unlock()

	if payload == nil {
		return
	}
	if err := n.pub.PublishState(payload); err != nil {
		n.log.Warnw("mqtt_publish_failed", "err", err)
	}
}
