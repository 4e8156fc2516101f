package notify

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestPublishAndRecent(t *testing.T) {
	n := NewNotifier(10, quietLogger())
	defer n.Close()

	n.Publish("record_high", "New Record", "June views hit an all-time high")

	require.Eventually(t, func() bool {
		return len(n.Recent()) == 1
	}, time.Second, 10*time.Millisecond)

	got := n.Recent()[0]
	assert.Equal(t, "record_high", got.Type)
	assert.Equal(t, "New Record", got.Title)
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestRecentBounded(t *testing.T) {
	n := NewNotifier(3, quietLogger())
	defer n.Close()

	for i := 0; i < 5; i++ {
		n.Publish("dropoff", fmt.Sprintf("event %d", i), "")
	}

	require.Eventually(t, func() bool {
		recent := n.Recent()
		return len(recent) == 3 && recent[2].Title == "event 4"
	}, time.Second, 10*time.Millisecond)

	recent := n.Recent()
	assert.Equal(t, "event 2", recent[0].Title, "oldest events are evicted first")
}

func TestRecentReturnsCopy(t *testing.T) {
	n := NewNotifier(10, quietLogger())
	defer n.Close()

	n.Publish("record_high", "original", "")
	require.Eventually(t, func() bool {
		return len(n.Recent()) == 1
	}, time.Second, 10*time.Millisecond)

	got := n.Recent()
	got[0].Title = "mutated"
	assert.Equal(t, "original", n.Recent()[0].Title)
}

func TestLimitClamped(t *testing.T) {
	n := NewNotifier(0, quietLogger())
	defer n.Close()
	assert.Equal(t, 50, n.limit)
}
