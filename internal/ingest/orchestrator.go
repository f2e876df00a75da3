package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zakhij/subreddit-scraper/internal/models"
	"github.com/zakhij/subreddit-scraper/internal/reddit"
	"github.com/zakhij/subreddit-scraper/internal/repository"
)

// Source is the remote data source the orchestrator pulls from. It must
// yield threads in reverse-chronological order; retry and backoff are its
// responsibility, not the orchestrator's.
type Source interface {
	FetchSubreddit(ctx context.Context, name string) (*reddit.SubredditRecord, error)
	StreamNewThreads(ctx context.Context, name string, fn func(*reddit.ThreadRecord) (bool, error)) error
	FetchComments(ctx context.Context, name, threadID string) ([]*reddit.CommentRecord, error)
}

// Options configures a single ingestion run. Exactly one of Subreddit and
// SubredditURL must be set.
type Options struct {
	Subreddit    string
	SubredditURL string
	LookbackDate time.Time
}

// RunSummary aggregates the outcome of a single ingestion run. Errors are
// additive information; nothing in a summary implies a rollback.
type RunSummary struct {
	RunID             string
	Subreddit         string
	LookbackDate      time.Time
	ThreadsInserted   int
	ThreadsUpdated    int
	ThreadsUnchanged  int
	CommentsInserted  int
	CommentsUpdated   int
	CommentsUnchanged int
	Skipped           int
	Errors            []string
}

// Orchestrator drives an end-to-end ingestion run: subreddit resolution,
// lookback-bounded thread streaming, per-thread reconciliation and run
// bookkeeping. Threads and comments are processed strictly sequentially;
// parent-before-child ordering inside a thread is a correctness
// requirement, not an optimization.
type Orchestrator struct {
	source     Source
	repos      *repository.Repositories
	reconciler *Reconciler
	log        zerolog.Logger
}

// NewOrchestrator creates an orchestrator over the given source and store
func NewOrchestrator(source Source, repos *repository.Repositories, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		source:     source,
		repos:      repos,
		reconciler: NewReconciler(repos, log),
		log:        log.With().Str("component", "orchestrator").Logger(),
	}
}

// Run executes one ingestion run. Configuration errors abort before any
// fetch; per-item failures are collected into the summary and never roll
// back previously committed items.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*RunSummary, error) {
	name, err := ResolveSubredditName(opts.Subreddit, opts.SubredditURL)
	if err != nil {
		return nil, err
	}
	if opts.LookbackDate.IsZero() {
		return nil, &ConfigurationError{Reason: "lookback date is required"}
	}

	srec, err := o.source.FetchSubreddit(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("fetching subreddit %s: %w", name, err)
	}
	if srec.ID == "" {
		return nil, &MalformedRecordError{Kind: "subreddit"}
	}

	sub := &models.Subreddit{
		ID:          srec.ID,
		Name:        srec.Name,
		FirstSeenAt: time.Now(),
	}
	if err := o.repos.Subreddit.Upsert(ctx, sub); err != nil {
		return nil, fmt.Errorf("upserting subreddit %s: %w", name, err)
	}

	run := &models.IngestionRun{
		ID:            uuid.New().String(),
		SubredditName: srec.Name,
		LookbackDate:  opts.LookbackDate,
		Status:        models.RunStatusRunning,
		StartedAt:     time.Now(),
	}
	if err := o.repos.Run.Create(ctx, run); err != nil {
		// Bookkeeping only; the ingestion itself still proceeds.
		o.log.Warn().Err(err).Msg("Failed to record ingestion run")
	}

	summary := &RunSummary{
		RunID:        run.ID,
		Subreddit:    srec.Name,
		LookbackDate: opts.LookbackDate,
	}

	o.log.Info().
		Str("subreddit", srec.Name).
		Time("lookback", opts.LookbackDate).
		Str("run_id", run.ID).
		Msg("Starting ingestion run")

	streamErr := o.source.StreamNewThreads(ctx, name, func(rec *reddit.ThreadRecord) (bool, error) {
		// The source is sorted newest first, so the first thread older
		// than the boundary ends the stream without further pagination.
		if rec.CreatedAt.Before(opts.LookbackDate) {
			return false, nil
		}
		o.processThread(ctx, name, sub.ID, rec, summary)
		return true, nil
	})
	if streamErr != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("thread stream: %v", streamErr))
	}

	o.finalize(ctx, run, sub, summary, streamErr == nil)

	o.log.Info().
		Str("run_id", run.ID).
		Int("threads_inserted", summary.ThreadsInserted).
		Int("threads_updated", summary.ThreadsUpdated).
		Int("comments_inserted", summary.CommentsInserted).
		Int("comments_updated", summary.CommentsUpdated).
		Int("skipped", summary.Skipped).
		Int("errors", len(summary.Errors)).
		Msg("Ingestion run finished")

	return summary, nil
}

// processThread reconciles one thread row and its full comment tree.
// Failures stay local to the thread: they are counted and the run moves on.
func (o *Orchestrator) processThread(ctx context.Context, name, subredditID string, rec *reddit.ThreadRecord, summary *RunSummary) {
	o.log.Debug().Str("thread_id", rec.ID).Str("title", rec.Title).Msg("Processing thread")

	outcome, err := o.reconciler.ReconcileThread(ctx, subredditID, rec)
	if err != nil {
		var malformed *MalformedRecordError
		if errors.As(err, &malformed) {
			summary.Skipped++
			o.log.Warn().Err(err).Msg("Skipping malformed thread")
		} else {
			summary.Errors = append(summary.Errors, err.Error())
			o.log.Error().Err(err).Str("thread_id", rec.ID).Msg("Thread reconciliation failed")
		}
		// Without a thread row its comments cannot be attached.
		return
	}

	switch outcome {
	case OutcomeInserted:
		summary.ThreadsInserted++
	case OutcomeUpdated:
		summary.ThreadsUpdated++
	case OutcomeUnchanged:
		summary.ThreadsUnchanged++
	}

	roots, err := o.source.FetchComments(ctx, name, rec.ID)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("fetching comments of thread %s: %v", rec.ID, err))
		o.log.Error().Err(err).Str("thread_id", rec.ID).Msg("Comment fetch failed")
		return
	}

	stats, err := o.reconciler.ReconcileCommentTree(ctx, rec.ID, roots)
	summary.CommentsInserted += stats.Inserted
	summary.CommentsUpdated += stats.Updated
	summary.CommentsUnchanged += stats.Unchanged
	summary.Skipped += stats.Skipped
	summary.Errors = append(summary.Errors, stats.Errors...)
	if err != nil {
		// Structural failure aborts this thread's tree only.
		summary.Errors = append(summary.Errors, err.Error())
		o.log.Error().Err(err).Str("thread_id", rec.ID).Msg("Comment tree aborted")
	}
}

// finalize closes out the run row and, on success, stamps the subreddit's
// ingestion metadata. The stamp happens only after a completed run so that
// a crashed run is retried over the same window.
func (o *Orchestrator) finalize(ctx context.Context, run *models.IngestionRun, sub *models.Subreddit, summary *RunSummary, streamOK bool) {
	now := time.Now()
	run.Status = models.RunStatusCompleted
	if !streamOK {
		run.Status = models.RunStatusFailed
	}
	run.ThreadsInserted = summary.ThreadsInserted
	run.ThreadsUpdated = summary.ThreadsUpdated
	run.ThreadsUnchanged = summary.ThreadsUnchanged
	run.CommentsInserted = summary.CommentsInserted
	run.CommentsUpdated = summary.CommentsUpdated
	run.CommentsUnchanged = summary.CommentsUnchanged
	run.ItemsSkipped = summary.Skipped
	run.ErrorCount = len(summary.Errors)
	run.CompletedAt = &now

	if err := o.repos.Run.Update(ctx, run); err != nil {
		o.log.Warn().Err(err).Str("run_id", run.ID).Msg("Failed to finalize ingestion run")
	}

	if streamOK {
		if err := o.repos.Subreddit.RecordIngestion(ctx, sub.ID, now, summary.LookbackDate); err != nil {
			o.log.Warn().Err(err).Str("subreddit", sub.Name).Msg("Failed to record ingestion timestamp")
		}
	}
}

// ResolveSubredditName derives the subreddit name from exactly one of a
// direct name or a subreddit URL.
func ResolveSubredditName(name, rawURL string) (string, error) {
	if name != "" && rawURL != "" {
		return "", &ConfigurationError{Reason: "supply either a subreddit name or a subreddit URL, not both"}
	}
	if name != "" {
		return name, nil
	}
	if rawURL == "" {
		return "", &ConfigurationError{Reason: "a subreddit name or subreddit URL is required"}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", &ConfigurationError{Reason: fmt.Sprintf("invalid subreddit URL %q", rawURL)}
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i, segment := range segments {
		if segment == "r" && i+1 < len(segments) && segments[i+1] != "" {
			return segments[i+1], nil
		}
	}
	return "", &ConfigurationError{Reason: fmt.Sprintf("no subreddit name in URL %q", rawURL)}
}

// ParseLookbackDate parses an ISO date and rejects dates in the future.
func ParseLookbackDate(value string) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, &ConfigurationError{Reason: fmt.Sprintf("invalid lookback date %q, expected YYYY-MM-DD", value)}
	}
	if parsed.After(time.Now()) {
		return time.Time{}, &ConfigurationError{Reason: "lookback date must be in the past"}
	}
	return parsed, nil
}
