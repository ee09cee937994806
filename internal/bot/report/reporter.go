// Package report bridges the worker loop and the chat dispatch goroutine.
//
// Chat-mutating operations (edit, delete) must run on the chat dispatch
// goroutine, while the worker runs on its own goroutine doing slow
// external calls. The reporter turns each operation into a request with a
// reply channel: the worker posts the request, the dispatch loop executes
// it and pushes the result back, and the worker blocks on the reply with a
// bounded timeout at both steps. A stalled dispatcher therefore cannot
// hang the worker, and the worker never touches the chat session directly.
package report

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Op identifies a chat mutation.
type Op int

const (
	// OpEdit replaces the text of an existing message.
	OpEdit Op = iota
	// OpDelete removes a message.
	OpDelete
)

// Request is one chat mutation posted to the dispatch loop.
type Request struct {
	Op        Op
	ChatID    int64
	MessageID int
	Text      string

	// Reply receives the outcome of the executed operation. Buffered so
	// the dispatch loop never blocks on a worker that gave up waiting.
	Reply chan error
}

// ErrTimeout is returned when the dispatch loop does not accept or answer
// a request within the configured timeout.
var ErrTimeout = errors.New("status report timed out")

// Reporter submits chat mutations to the dispatch loop and waits for
// their completion.
type Reporter struct {
	logger   *slog.Logger
	requests chan *Request
	timeout  time.Duration
}

// New creates a reporter. timeout bounds both the hand-off to the
// dispatch loop and the wait for its answer.
func New(logger *slog.Logger, timeout time.Duration) *Reporter {
	return &Reporter{
		logger:   logger,
		requests: make(chan *Request),
		timeout:  timeout,
	}
}

// Requests is the channel the chat dispatch loop consumes. Every request
// received from it must be answered on its Reply channel.
func (r *Reporter) Requests() <-chan *Request {
	return r.requests
}

// Edit replaces the text of a chat message. Failures (timeout, transport
// error) are logged as warnings and returned; callers treat them as
// non-fatal.
func (r *Reporter) Edit(chatID int64, messageID int, text string) error {
	err := r.submit(&Request{
		Op:        OpEdit,
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		Reply:     make(chan error, 1),
	})
	if err != nil {
		r.logger.Warn("Failed to edit status message",
			slog.Int64("chat_id", chatID),
			slog.Int("message_id", messageID),
			slog.String("error", err.Error()),
		)
	}
	return err
}

// Delete removes a chat message. Best-effort: failures are logged and
// returned, never escalated.
func (r *Reporter) Delete(chatID int64, messageID int) error {
	err := r.submit(&Request{
		Op:        OpDelete,
		ChatID:    chatID,
		MessageID: messageID,
		Reply:     make(chan error, 1),
	})
	if err != nil {
		r.logger.Warn("Failed to delete message",
			slog.Int64("chat_id", chatID),
			slog.Int("message_id", messageID),
			slog.String("error", err.Error()),
		)
	}
	return err
}

// submit hands a request to the dispatch loop and waits for its answer.
func (r *Reporter) submit(req *Request) error {
	deadline := time.NewTimer(r.timeout)
	defer deadline.Stop()

	select {
	case r.requests <- req:
	case <-deadline.C:
		return fmt.Errorf("%w: dispatch loop did not accept request", ErrTimeout)
	}

	select {
	case err := <-req.Reply:
		return err
	case <-deadline.C:
		return fmt.Errorf("%w: no reply from dispatch loop", ErrTimeout)
	}
}
