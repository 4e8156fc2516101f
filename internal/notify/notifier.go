package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"coachmetrics/internal/models"
)

// Notifier decouples event producers from the notification list through
// a channel: producers Publish, a single consumer goroutine owns the
// ring buffer. Nothing shares a mutable slice with a timer closure.
type Notifier struct {
	events chan models.Notification
	done   chan struct{}

	mu     sync.RWMutex
	recent []models.Notification
	limit  int

	logger *logrus.Logger
}

func NewNotifier(limit int, logger *logrus.Logger) *Notifier {
	if limit < 1 {
		limit = 50
	}
	n := &Notifier{
		events: make(chan models.Notification, 64),
		done:   make(chan struct{}),
		limit:  limit,
		logger: logger,
	}
	go n.consume()
	return n
}

// Publish emits a notification. Drops the event rather than blocking
// when the buffer is full.
func (n *Notifier) Publish(eventType, title, message string) {
	notification := models.Notification{
		ID:        uuid.New().String(),
		Type:      eventType,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	select {
	case n.events <- notification:
	default:
		n.logger.WithField("title", title).Warn("Notification buffer full, dropping event")
	}
}

func (n *Notifier) consume() {
	for {
		select {
		case event := <-n.events:
			n.mu.Lock()
			n.recent = append(n.recent, event)
			if len(n.recent) > n.limit {
				n.recent = n.recent[len(n.recent)-n.limit:]
			}
			n.mu.Unlock()
		case <-n.done:
			return
		}
	}
}

// Recent returns a copy of the buffered notifications, newest last.
func (n *Notifier) Recent() []models.Notification {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]models.Notification, len(n.recent))
	copy(out, n.recent)
	return out
}

// Close stops the consumer goroutine.
func (n *Notifier) Close() {
	close(n.done)
}
