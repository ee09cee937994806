package handler

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btquan/tweetnest/internal/bot/domain"
	"github.com/btquan/tweetnest/internal/bot/queue"
)

type fakeChat struct {
	replies       []string
	nextMessageID int
	err           error
}

func (c *fakeChat) Reply(chatID int64, replyTo int, text string) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.replies = append(c.replies, text)
	c.nextMessageID++
	return c.nextMessageID, nil
}

func drain(t *testing.T, q *queue.Queue) []*domain.Job {
	t.Helper()
	var jobs []*domain.Job
	for q.Depth() > 0 {
		job, err := q.Dequeue(context.Background())
		require.NoError(t, err)
		jobs = append(jobs, job)
	}
	return jobs
}

func newHandler(chat *fakeChat) (*Handler, *queue.Queue) {
	q := queue.New()
	return New(slog.New(slog.DiscardHandler), q, chat), q
}

func TestNoLinksNoReplyNoJob(t *testing.T) {
	chat := &fakeChat{}
	h, q := newHandler(chat)

	h.HandleMessage(&domain.ChatMessage{
		ChatID:    1,
		MessageID: 10,
		Text:      "hello there",
	})

	assert.Empty(t, chat.replies)
	assert.Equal(t, 0, q.Depth())
}

func TestEmptyMessageIgnored(t *testing.T) {
	chat := &fakeChat{}
	h, q := newHandler(chat)

	h.HandleMessage(&domain.ChatMessage{ChatID: 1, MessageID: 10})
	h.HandleMessage(nil)

	assert.Empty(t, chat.replies)
	assert.Equal(t, 0, q.Depth())
}

func TestSingleLinkOneJob(t *testing.T) {
	chat := &fakeChat{}
	h, q := newHandler(chat)

	h.HandleMessage(&domain.ChatMessage{
		ChatID:    1,
		MessageID: 10,
		Text:      "check this out https://x.com/user/status/12345",
	})

	require.Len(t, chat.replies, 1)
	assert.Contains(t, chat.replies[0], "1 link")

	jobs := drain(t, q)
	require.Len(t, jobs, 1)
	job := jobs[0]
	assert.Equal(t, "https://x.com/user/status/12345", job.URL)
	assert.Equal(t, int64(1), job.ChatID)
	assert.Equal(t, 1, job.StatusMessageID)
	assert.Equal(t, 10, job.OriginMessageID)
	assert.NotEmpty(t, job.ID)
}

func TestMultipleLinksShareStatusMessage(t *testing.T) {
	chat := &fakeChat{}
	h, q := newHandler(chat)

	h.HandleMessage(&domain.ChatMessage{
		ChatID:    1,
		MessageID: 10,
		Text:      "first https://x.com/a/status/111 second https://x.com/b/status/222",
	})

	require.Len(t, chat.replies, 1)
	assert.Contains(t, chat.replies[0], "2 link")

	jobs := drain(t, q)
	require.Len(t, jobs, 2)
	assert.Equal(t, "https://x.com/a/status/111", jobs[0].URL)
	assert.Equal(t, "https://x.com/b/status/222", jobs[1].URL)

	// Jobs from one message share the status and origin ids but carry
	// distinct correlation ids.
	assert.Equal(t, jobs[0].StatusMessageID, jobs[1].StatusMessageID)
	assert.Equal(t, jobs[0].OriginMessageID, jobs[1].OriginMessageID)
	assert.NotEqual(t, jobs[0].ID, jobs[1].ID)
}

func TestDuplicateLinksCollapse(t *testing.T) {
	chat := &fakeChat{}
	h, q := newHandler(chat)

	h.HandleMessage(&domain.ChatMessage{
		ChatID:    1,
		MessageID: 10,
		Text:      "https://x.com/u/status/1?a=b twice https://x.com/u/status/1",
	})

	jobs := drain(t, q)
	require.Len(t, jobs, 1)
	assert.Equal(t, "https://x.com/u/status/1", jobs[0].URL)
}

func TestReplyFailureDropsLinks(t *testing.T) {
	chat := &fakeChat{err: errors.New("chat unavailable")}
	h, q := newHandler(chat)

	h.HandleMessage(&domain.ChatMessage{
		ChatID:    1,
		MessageID: 10,
		Text:      "https://x.com/user/status/12345",
	})

	// Without a status message there is nothing to edit; the links are
	// dropped rather than queued into the void.
	assert.Equal(t, 0, q.Depth())
}

func TestAnnotationOnlyMessage(t *testing.T) {
	chat := &fakeChat{}
	h, q := newHandler(chat)

	h.HandleMessage(&domain.ChatMessage{
		ChatID:          1,
		MessageID:       10,
		Text:            "look at this",
		LinkAnnotations: []string{"https://twitter.com/linked/status/444?s=20"},
	})

	jobs := drain(t, q)
	require.Len(t, jobs, 1)
	assert.Equal(t, "https://twitter.com/linked/status/444", jobs[0].URL)
}
