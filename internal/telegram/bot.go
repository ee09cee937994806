// Package telegram adapts the Telegram Bot API to the bot core.
//
// All chat mutations happen on the single dispatch goroutine started by
// Run, which multiplexes inbound updates and the status reporter's request
// channel. The worker never calls the Telegram client directly.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/btquan/tweetnest/internal/bot/domain"
	"github.com/btquan/tweetnest/internal/bot/handler"
	"github.com/btquan/tweetnest/internal/bot/report"
)

// Config holds Telegram transport configuration.
type Config struct {
	Token          string
	PollingTimeout int
	Logger         *slog.Logger
}

// Bot is the Telegram transport. It owns the dispatch goroutine and
// implements handler.Chat for the producer side.
type Bot struct {
	api            *tgbotapi.BotAPI
	logger         *slog.Logger
	pollingTimeout int
}

// New connects to the Telegram Bot API and verifies the credential.
func New(cfg *Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}

	cfg.Logger.Info("Telegram bot authorized",
		slog.String("username", api.Self.UserName),
	)

	return &Bot{
		api:            api,
		logger:         cfg.Logger,
		pollingTimeout: cfg.PollingTimeout,
	}, nil
}

// Run is the dispatch loop. It long-polls for updates and interleaves
// them with requests from the status reporter; blocking it stalls all
// chat traffic, so handlers must stay fast.
func (b *Bot) Run(ctx context.Context, h *handler.Handler, reporter *report.Reporter) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollingTimeout
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Telegram dispatch loop started",
		slog.Int("polling_timeout", b.pollingTimeout),
	)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("Telegram dispatch loop stopped")
			return ctx.Err()

		case update, ok := <-updates:
			if !ok {
				b.logger.Warn("Telegram update channel closed")
				return fmt.Errorf("telegram update channel closed")
			}
			if update.Message == nil {
				continue
			}
			b.dispatchMessage(update.Message, h)

		case req := <-reporter.Requests():
			req.Reply <- b.execute(req)
		}
	}
}

// dispatchMessage routes one inbound message to the /start handler or the
// link handler.
func (b *Bot) dispatchMessage(msg *tgbotapi.Message, h *handler.Handler) {
	if msg.IsCommand() {
		if msg.Command() == "start" {
			reply := tgbotapi.NewMessage(msg.Chat.ID, handler.StartText)
			if _, err := b.api.Send(reply); err != nil {
				b.logger.Warn("Failed to send /start reply",
					slog.Int64("chat_id", msg.Chat.ID),
					slog.String("error", err.Error()),
				)
			}
		}
		return
	}

	h.HandleMessage(&domain.ChatMessage{
		ChatID:          msg.Chat.ID,
		MessageID:       msg.MessageID,
		Text:            msg.Text,
		LinkAnnotations: linkAnnotations(msg.Text, msg.Entities),
	})
}

// Reply implements handler.Chat.
func (b *Bot) Reply(chatID int64, replyTo int, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo

	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to send reply: %w", err)
	}
	return sent.MessageID, nil
}

// execute performs one reporter request against the Telegram API.
func (b *Bot) execute(req *report.Request) error {
	switch req.Op {
	case report.OpEdit:
		_, err := b.api.Send(tgbotapi.NewEditMessageText(req.ChatID, req.MessageID, req.Text))
		return err
	case report.OpDelete:
		_, err := b.api.Request(tgbotapi.NewDeleteMessage(req.ChatID, req.MessageID))
		return err
	default:
		return fmt.Errorf("unknown report op %d", req.Op)
	}
}

// linkAnnotations converts Telegram message entities into plain URLs.
// Text links carry the target URL on the entity; bare url entities are
// sliced out of the message text by their UTF-16 offsets, which is the
// unit Telegram counts entity positions in.
func linkAnnotations(text string, entities []tgbotapi.MessageEntity) []string {
	if len(entities) == 0 {
		return nil
	}

	var urls []string
	encoded := utf16.Encode([]rune(text))
	for _, e := range entities {
		switch e.Type {
		case "text_link":
			if e.URL != "" {
				urls = append(urls, e.URL)
			}
		case "url":
			start, end := e.Offset, e.Offset+e.Length
			if start < 0 || end > len(encoded) || start >= end {
				continue
			}
			urls = append(urls, string(utf16.Decode(encoded[start:end])))
		}
	}
	return urls
}
