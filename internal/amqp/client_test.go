package amqp

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashmonitor/internal/core"
)

func TestExponentialBackoff(t *testing.T) {
	want := []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second,
		maxBackoff, maxBackoff,
	}
	for attempt, d := range want {
		assert.Equal(t, d, exponentialBackoff(attempt), "attempt %d", attempt)
	}
	assert.Equal(t, maxBackoff, exponentialBackoff(40))
}

func TestIsConnectionError(t *testing.T) {
	retry := []error{
		errors.New("dial tcp 127.0.0.1:5672: connect: connection refused"),
		errors.New("Exception (504) Reason: \"channel/connection is not open\""),
		errors.New("connection closed"),
		io.ErrUnexpectedEOF,
		errors.New("write: broken pipe"),
		errors.New("use of closed network connection"),
	}
	for _, err := range retry {
		assert.True(t, isConnectionError(err), err.Error())
	}

	for _, err := range []error{nil, errors.New("PRECONDITION_FAILED - inequivalent arg 'durable'"), errors.New("invalid input")} {
		assert.False(t, isConnectionError(err), "%v", err)
	}
}

func TestCircuitBreakerTransitions(t *testing.T) {
	c := &Client{}
	require.False(t, c.isCircuitOpen(), "closed initially")

	for i := 1; i < maxFailures; i++ {
		c.recordFailure()
		require.False(t, c.isCircuitOpen(), "still closed after %d failures", i)
	}
	c.recordFailure()
	assert.True(t, c.isCircuitOpen(), "open at the threshold")
	assert.Equal(t, StateOpen, c.state.Load())

	// Inside the open window nothing changes.
	c.lastFailure = time.Now().Add(-openTimeout / 2)
	assert.True(t, c.isCircuitOpen())

	// After the window one attempt is let through.
	c.lastFailure = time.Now().Add(-openTimeout - time.Second)
	assert.False(t, c.isCircuitOpen())
	assert.Equal(t, StateHalfOpen, c.state.Load())

	// A failed probe reopens immediately.
	c.recordFailure()
	assert.Equal(t, StateOpen, c.state.Load())

	c.recordSuccess()
	assert.Equal(t, StateClosed, c.state.Load())
	assert.Zero(t, c.failureCount.Load())
	assert.False(t, c.isCircuitOpen())
}

func TestPublishMonthChangedWithoutBroker(t *testing.T) {
	key := core.MonthKey{Year: 2026, Month: 10}

	t.Run("open circuit fails fast", func(t *testing.T) {
		c := &Client{}
		c.state.Store(StateOpen)
		c.lastFailure = time.Now()

		err := c.PublishMonthChanged(context.Background(), key, "add")
		assert.ErrorContains(t, err, "circuit breaker is open")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := (&Client{}).PublishMonthChanged(ctx, key, "add")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMonthChangedMessage(t *testing.T) {
	key := core.MonthKey{Year: 2026, Month: 3}
	msg := NewMonthChangedMessage(key, "rollover")
	assert.Equal(t, key, msg.Key())
	assert.Equal(t, "rollover", msg.Reason)
	assert.WithinDuration(t, time.Now(), msg.Timestamp, time.Second)

	msg.Timestamp = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	data, err := msg.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"year":2026,"month":3,"reason":"rollover","timestamp":"2026-03-01T12:00:00Z"}`, string(data))

	back, err := MonthChangedMessageFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, key, back.Key())
	assert.True(t, back.Timestamp.Equal(msg.Timestamp))
}

func TestMonthChangedMessageFromJSONRejects(t *testing.T) {
	tests := map[string]string{
		"not json":           `month=2026-03`,
		"wrong type":         `{"year": "2026", "month": 1}`,
		"month out of range": `{"year": 2026, "month": 13}`,
		"missing key":        `{"reason": "add"}`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := MonthChangedMessageFromJSON([]byte(data))
			assert.Error(t, err)
		})
	}
}
