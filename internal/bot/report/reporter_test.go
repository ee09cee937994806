package report

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// runDispatcher consumes requests like the chat dispatch loop does,
// answering each with the given error. Returns the requests it saw.
func runDispatcher(r *Reporter, answer error, done <-chan struct{}) <-chan *Request {
	seen := make(chan *Request, 16)
	go func() {
		for {
			select {
			case req := <-r.Requests():
				seen <- req
				req.Reply <- answer
			case <-done:
				return
			}
		}
	}()
	return seen
}

func TestEditDelivered(t *testing.T) {
	r := New(discardLogger(), time.Second)

	done := make(chan struct{})
	defer close(done)
	seen := runDispatcher(r, nil, done)

	err := r.Edit(42, 7, "processing")
	require.NoError(t, err)

	req := <-seen
	assert.Equal(t, OpEdit, req.Op)
	assert.Equal(t, int64(42), req.ChatID)
	assert.Equal(t, 7, req.MessageID)
	assert.Equal(t, "processing", req.Text)
}

func TestDeleteDelivered(t *testing.T) {
	r := New(discardLogger(), time.Second)

	done := make(chan struct{})
	defer close(done)
	seen := runDispatcher(r, nil, done)

	err := r.Delete(42, 9)
	require.NoError(t, err)

	req := <-seen
	assert.Equal(t, OpDelete, req.Op)
	assert.Equal(t, 9, req.MessageID)
}

func TestTransportErrorReturned(t *testing.T) {
	r := New(discardLogger(), time.Second)

	transportErr := errors.New("message to edit not found")
	done := make(chan struct{})
	defer close(done)
	runDispatcher(r, transportErr, done)

	err := r.Edit(1, 2, "text")
	assert.ErrorIs(t, err, transportErr)
}

func TestTimeoutWithoutDispatcher(t *testing.T) {
	// Nothing consumes the request channel: the submit step must give up
	// after the timeout instead of hanging the worker.
	r := New(discardLogger(), 30*time.Millisecond)

	start := time.Now()
	err := r.Edit(1, 2, "text")
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, elapsed, time.Second)
}

func TestTimeoutOnSilentDispatcher(t *testing.T) {
	// The dispatcher accepts the request but never replies.
	r := New(discardLogger(), 30*time.Millisecond)

	go func() {
		<-r.Requests()
		// No reply.
	}()

	err := r.Edit(1, 2, "text")
	assert.ErrorIs(t, err, ErrTimeout)
}
