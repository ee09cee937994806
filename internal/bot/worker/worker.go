// Package worker implements the single-consumer loop that drives each job
// through fetch, enrichment and archival.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/btquan/tweetnest/internal/bot/domain"
	"github.com/btquan/tweetnest/internal/bot/queue"
)

// ContentFetcher retrieves post content for a canonical URL.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (*domain.PostContent, error)
}

// Enricher derives a title, summary and tags from post text, given the
// controlled tag vocabulary to match against.
type Enricher interface {
	Enrich(ctx context.Context, text string, vocabulary []string) (*domain.EnrichedRecord, error)
}

// Archive is the persistence target for enriched posts.
type Archive interface {
	// TagVocabulary reads the controlled tag set. Best-effort: an empty
	// vocabulary is a valid result.
	TagVocabulary(ctx context.Context) ([]string, error)
	Save(ctx context.Context, post *domain.SavedPost) error
}

// StatusReporter mutates chat messages on the worker's behalf.
type StatusReporter interface {
	Edit(chatID int64, messageID int, text string) error
	Delete(chatID int64, messageID int) error
}

// Config holds worker configuration.
type Config struct {
	Logger   *slog.Logger
	Queue    *queue.Queue
	Fetcher  ContentFetcher
	Enricher Enricher
	Archive  Archive
	Reporter StatusReporter

	// Cooldown is the fixed pause between jobs, a rate-limiting courtesy
	// to the upstream APIs. Not a backoff scheme.
	Cooldown time.Duration
}

// Worker is the single long-lived queue consumer. It processes exactly
// one job at a time to completion; serialization keeps concurrent edits
// off the same status message and throttles the aggregate call rate
// against the rate-limited upstream APIs.
type Worker struct {
	logger   *slog.Logger
	queue    *queue.Queue
	fetcher  ContentFetcher
	enricher Enricher
	archive  Archive
	reporter StatusReporter
	cooldown time.Duration
}

// New creates a worker.
func New(cfg *Config) *Worker {
	return &Worker{
		logger:   cfg.Logger,
		queue:    cfg.Queue,
		fetcher:  cfg.Fetcher,
		enricher: cfg.Enricher,
		archive:  cfg.Archive,
		reporter: cfg.Reporter,
		cooldown: cfg.Cooldown,
	}
}

// Run drains the queue until ctx is canceled. No job failure terminates
// the loop; the loop must stay available across arbitrarily many failed
// jobs.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Worker started",
		slog.Duration("cooldown", w.cooldown),
	)

	for {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			w.logger.Info("Worker stopping", slog.String("reason", err.Error()))
			return err
		}

		w.processJob(ctx, job)
		w.queue.Acknowledge()

		select {
		case <-time.After(w.cooldown):
		case <-ctx.Done():
			w.logger.Info("Worker stopping during cooldown")
			return ctx.Err()
		}
	}
}

// processJob runs one job end to end. Every failure path reports a
// terminal status edit; nothing escapes to the caller, including panics
// from a collaborator.
func (w *Worker) processJob(ctx context.Context, job *domain.Job) {
	logger := w.logger.With(
		slog.String("job_id", job.ID),
		slog.String("url", job.URL),
		slog.Int64("chat_id", job.ChatID),
	)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered panic while processing job",
				slog.Any("panic", r),
			)
			w.reportStatus(job, statusUnexpectedError(job.URL))
		}
	}()

	logger.Info("Processing job",
		slog.Int("origin_message_id", job.OriginMessageID),
	)

	w.reportStatus(job, statusProcessing(job.URL))

	content, err := w.fetcher.Fetch(ctx, job.URL)
	if err != nil {
		logger.Error("Failed to fetch post",
			slog.String("error", err.Error()),
		)
		w.reportStatus(job, statusFetchFailed(job.URL))
		return
	}

	vocabulary, err := w.archive.TagVocabulary(ctx)
	if err != nil {
		// Non-fatal: enrich with no predefined tags rather than abort.
		logger.Warn("Failed to read tag vocabulary, proceeding without",
			slog.String("error", err.Error()),
		)
		vocabulary = nil
	}

	record, err := w.enricher.Enrich(ctx, content.Text, vocabulary)
	if err != nil {
		logger.Error("Enrichment failed",
			slog.String("error", err.Error()),
		)
		w.reportStatus(job, statusEnrichFailed(job.URL))
		return
	}

	if err := w.archive.Save(ctx, &domain.SavedPost{
		URL:     job.URL,
		RawText: content.Text,
		Record:  record,
	}); err != nil {
		// Best-effort write: logged for manual inspection, the pipeline
		// is not blocked and the user sees no distinct failure state.
		logger.Error("Failed to archive post",
			slog.String("title", record.Title),
			slog.String("error", err.Error()),
		)
	}

	logger.Info("Job completed",
		slog.String("title", record.Title),
		slog.Int("matched_tags", len(record.MatchedTags)),
	)
	w.reportStatus(job, statusSaved(record.Title, job.URL))

	// Origin message cleanup is best-effort; the reporter already logged
	// any failure.
	if err := w.reporter.Delete(job.ChatID, job.OriginMessageID); err == nil {
		logger.Info("Deleted origin message",
			slog.Int("message_id", job.OriginMessageID),
		)
	}
}

// reportStatus edits the status message. Report failures are logged by
// the reporter and never affect job control flow.
func (w *Worker) reportStatus(job *domain.Job, text string) {
	_ = w.reporter.Edit(job.ChatID, job.StatusMessageID, text)
}

// User-visible status texts.

func statusProcessing(url string) string {
	return fmt.Sprintf("⚙️ Processing link...\n%s", url)
}

func statusFetchFailed(url string) string {
	return fmt.Sprintf("❌ Failed: could not fetch the post.\n%s", url)
}

func statusEnrichFailed(url string) string {
	return fmt.Sprintf("❌ Failed: could not summarize this content.\n%s", url)
}

func statusSaved(title, url string) string {
	return fmt.Sprintf("✅ Saved: %s\n%s", title, url)
}

func statusUnexpectedError(url string) string {
	return fmt.Sprintf("❌ Unexpected error while processing.\n%s", url)
}
