package monitoring

import (
	"errors"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powermix/config"
	coremon "github.com/kilianp07/powermix/core/monitoring"
)

const testDSN = "https://public@example.com/1"

type eventCapture struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (c *eventCapture) hook(ev *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func TestNewSentryMonitor_NoDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)
}

func TestNewSentryMonitor_BadDSN(t *testing.T) {
	_, err := NewSentryMonitor(config.SentryConfig{DSN: "::not a dsn"})
	assert.Error(t, err)
}

func TestSentryMonitor_CaptureWithTags(t *testing.T) {
	var capture eventCapture
	m, err := newSentryMonitor(config.SentryConfig{DSN: testDSN, Environment: "test"}, capture.hook)
	require.NoError(t, err)

	m.CaptureException(errors.New("optimize failed"), map[string]string{"command": "optimize"})
	m.CaptureException(nil, nil)

	require.Len(t, capture.events, 1)
	ev := capture.events[0]
	assert.Equal(t, "test", ev.Environment)
	assert.Equal(t, "optimize", ev.Tags["command"])
	assert.Equal(t, "powermix", ev.Tags["service"])
	require.NotEmpty(t, ev.Exception)
	assert.Equal(t, "optimize failed", ev.Exception[len(ev.Exception)-1].Value)
}

func TestSentryMonitor_TagsDoNotLeak(t *testing.T) {
	var capture eventCapture
	m, err := newSentryMonitor(config.SentryConfig{DSN: testDSN}, capture.hook)
	require.NoError(t, err)

	m.CaptureException(errors.New("first"), map[string]string{"run_id": "a"})
	m.CaptureException(errors.New("second"), nil)

	require.Len(t, capture.events, 2)
	assert.NotContains(t, capture.events[1].Tags, "run_id")
}

func TestSentryMonitor_RecoverRepanics(t *testing.T) {
	var capture eventCapture
	m, err := newSentryMonitor(config.SentryConfig{DSN: testDSN}, capture.hook)
	require.NoError(t, err)

	assert.PanicsWithValue(t, "boom", func() {
		defer m.Recover()
		panic("boom")
	})
	assert.Len(t, capture.events, 1)
}
