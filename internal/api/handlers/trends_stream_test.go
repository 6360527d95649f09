package handlers

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchmap/backend/internal/estimator"
	"github.com/launchmap/backend/internal/trends"
)

var errConnGone = errors.New("connection gone")

// fakeStreamConn scripts the client side of a stream session. With repeat
// set, the last pending request is served on every read, so the reader loop
// never runs out of messages.
type fakeStreamConn struct {
	mu       sync.Mutex
	pending  []streamRequest
	repeat   bool
	writeErr error
	writes   []streamMessage
}

func (f *fakeStreamConn) ReadJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.pending) == 0 {
		return errConnGone
	}

	*(v.(*streamRequest)) = f.pending[0]
	if !f.repeat || len(f.pending) > 1 {
		f.pending = f.pending[1:]
	}
	return nil
}

func (f *fakeStreamConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, v.(streamMessage))
	return nil
}

func (f *fakeStreamConn) Close() error { return nil }

func (f *fakeStreamConn) written() []streamMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]streamMessage(nil), f.writes...)
}

func newStreamHandler() *TrendsStreamHandler {
	svc := trends.NewService(estimator.NewSimulator(estimator.DefaultSimulatorConfig()))
	return NewTrendsStreamHandler(svc, time.Hour)
}

func TestStreamSubscribeSendsForecast(t *testing.T) {
	conn := &fakeStreamConn{
		pending: []streamRequest{
			{Type: "subscribe", Category: "hoodie", Seed: "acme", LeadTime: 60},
		},
	}

	newStreamHandler().serve(conn)

	writes := conn.written()
	require.Len(t, writes, 1)
	assert.Equal(t, "forecast", writes[0].Type)

	forecast, ok := writes[0].Payload.(estimator.Forecast)
	require.True(t, ok)
	assert.Len(t, forecast.Series, 30+1+60)
}

func TestStreamSubscribeWithoutCategorySendsScan(t *testing.T) {
	conn := &fakeStreamConn{
		pending: []streamRequest{{Type: "subscribe", Seed: "acme"}},
	}

	newStreamHandler().serve(conn)

	writes := conn.written()
	require.Len(t, writes, 1)
	assert.Equal(t, "scan", writes[0].Type)
}

func TestStreamIgnoresUnknownMessageTypes(t *testing.T) {
	conn := &fakeStreamConn{
		pending: []streamRequest{{Type: "ping"}},
	}

	newStreamHandler().serve(conn)

	assert.Empty(t, conn.written())
}

// A connection torn down by a failed write must not strand the reader
// goroutine on its channel send, even with more messages in flight.
func TestStreamReaderExitsAfterWriteFailure(t *testing.T) {
	conn := &fakeStreamConn{
		pending:  []streamRequest{{Type: "subscribe", Category: "hoodie"}},
		repeat:   true,
		writeErr: errConnGone,
	}

	before := runtime.NumGoroutine()
	newStreamHandler().serve(conn)

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 2*time.Second, 10*time.Millisecond)
}
