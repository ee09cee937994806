// Package handler turns inbound chat messages into queued jobs.
package handler

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/btquan/tweetnest/internal/bot/domain"
	"github.com/btquan/tweetnest/internal/bot/links"
	"github.com/btquan/tweetnest/internal/bot/queue"
)

// Chat is the transport surface the handler needs on the dispatch
// goroutine: sending the initial status reply happens inline, before any
// job exists.
type Chat interface {
	// Reply sends text as a reply to replyTo and returns the id of the
	// sent message.
	Reply(chatID int64, replyTo int, text string) (int, error)
}

// Handler is the producer side of the pipeline. It runs on the chat
// dispatch goroutine, so everything here must return quickly; the slow
// work happens in the worker.
type Handler struct {
	logger *slog.Logger
	queue  *queue.Queue
	chat   Chat
}

// New creates a message handler.
func New(logger *slog.Logger, q *queue.Queue, chat Chat) *Handler {
	return &Handler{
		logger: logger,
		queue:  q,
		chat:   chat,
	}
}

// HandleMessage extracts post links from msg and enqueues one job per
// link. Messages with no recognizable link are ignored silently: no
// reply, no job.
func (h *Handler) HandleMessage(msg *domain.ChatMessage) {
	if msg == nil || (msg.Text == "" && len(msg.LinkAnnotations) == 0) {
		return
	}

	urls := links.Extract(msg.Text, msg.LinkAnnotations)
	if len(urls) == 0 {
		return
	}

	statusMessageID, err := h.chat.Reply(msg.ChatID, msg.MessageID,
		fmt.Sprintf("Received %d link(s), queued for processing...", len(urls)))
	if err != nil {
		h.logger.Error("Failed to send status reply, dropping links",
			slog.Int64("chat_id", msg.ChatID),
			slog.Int("message_id", msg.MessageID),
			slog.String("error", err.Error()),
		)
		return
	}

	for _, url := range urls {
		job := &domain.Job{
			ID:              uuid.NewString(),
			URL:             url,
			ChatID:          msg.ChatID,
			StatusMessageID: statusMessageID,
			OriginMessageID: msg.MessageID,
		}
		h.queue.Enqueue(job)
		h.logger.Info("Link queued",
			slog.String("job_id", job.ID),
			slog.String("url", url),
			slog.Int64("chat_id", msg.ChatID),
			slog.Int("status_message_id", statusMessageID),
		)
	}
}

// StartText is the reply to the /start command.
const StartText = "Hi! Forward me Twitter/X links and I will summarize and archive them for you."
