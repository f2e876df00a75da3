package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/zakhij/subreddit-scraper/internal/ingest"
	"github.com/zakhij/subreddit-scraper/internal/mocks"
	"github.com/zakhij/subreddit-scraper/internal/models"
	"github.com/zakhij/subreddit-scraper/internal/reddit"
	"github.com/zakhij/subreddit-scraper/internal/repository"
)

func newTestHarness() (*repository.Repositories, *mocks.MockSource, *mocks.MockSubredditRepository, *mocks.MockThreadRepository, *mocks.MockCommentRepository, *mocks.MockRunRepository) {
	subredditRepo := mocks.NewMockSubredditRepository()
	threadRepo := mocks.NewMockThreadRepository()
	commentRepo := mocks.NewMockCommentRepository()
	runRepo := mocks.NewMockRunRepository()
	repos := &repository.Repositories{
		Subreddit: subredditRepo,
		Thread:    threadRepo,
		Comment:   commentRepo,
		Run:       runRepo,
	}
	source := mocks.NewMockSource()
	source.Subreddit = &reddit.SubredditRecord{ID: "2qh1o", Name: "golang"}
	return repos, source, subredditRepo, threadRepo, commentRepo, runRepo
}

func datedThread(id string, created time.Time) *reddit.ThreadRecord {
	return &reddit.ThreadRecord{
		ID:        id,
		Title:     "Thread " + id,
		Permalink: "/r/golang/comments/" + id + "/thread/",
		Author:    "gopher",
		Score:     10,
		CreatedAt: created,
		IsSelf:    true,
	}
}

func TestRun_LookbackBoundaryShortCircuits(t *testing.T) {
	repos, source, _, threadRepo, _, _ := newTestHarness()
	source.Threads = []*reddit.ThreadRecord{
		datedThread("t1", time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)),
		datedThread("t2", time.Date(2024, 8, 18, 0, 0, 0, 0, time.UTC)),
		datedThread("t3", time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC)),
	}

	orch := ingest.NewOrchestrator(source, repos, zerolog.Nop())
	summary, err := orch.Run(context.Background(), ingest.Options{
		Subreddit:    "golang",
		LookbackDate: time.Date(2024, 8, 18, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.ThreadsInserted != 2 {
		t.Errorf("Expected 2 threads inserted, got %d", summary.ThreadsInserted)
	}
	if _, ok := threadRepo.Threads["t3"]; ok {
		t.Error("Thread older than the lookback boundary must not be ingested")
	}
	// The out-of-window thread ends the stream; nothing past it is pulled.
	if source.ThreadsYielded != 3 {
		t.Errorf("Expected stream to stop at the boundary thread, yielded %d", source.ThreadsYielded)
	}
	if source.CommentFetches != 2 {
		t.Errorf("Expected comment fetches for in-window threads only, got %d", source.CommentFetches)
	}
}

func TestRun_SecondRunIsAllNoOps(t *testing.T) {
	repos, source, _, _, _, _ := newTestHarness()
	source.Threads = []*reddit.ThreadRecord{
		datedThread("t1", time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)),
	}
	source.CommentsByThread["t1"] = []*reddit.CommentRecord{
		commentRecord("c1", "", 5, commentRecord("c2", "c1", 3)),
	}

	orch := ingest.NewOrchestrator(source, repos, zerolog.Nop())
	opts := ingest.Options{
		Subreddit:    "golang",
		LookbackDate: time.Date(2024, 8, 18, 0, 0, 0, 0, time.UTC),
	}

	first, err := orch.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if first.ThreadsInserted != 1 || first.CommentsInserted != 2 {
		t.Fatalf("Unexpected first run: %+v", first)
	}

	second, err := orch.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.ThreadsInserted != 0 || second.ThreadsUpdated != 0 ||
		second.CommentsInserted != 0 || second.CommentsUpdated != 0 {
		t.Errorf("Second run over unchanged data must be all no-ops: %+v", second)
	}
	if second.ThreadsUnchanged != 1 || second.CommentsUnchanged != 2 {
		t.Errorf("Expected unchanged counts, got %+v", second)
	}
}

func TestRun_CreatesSubredditAndRunRow(t *testing.T) {
	repos, source, subredditRepo, _, _, runRepo := newTestHarness()
	source.Threads = []*reddit.ThreadRecord{
		datedThread("t1", time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)),
	}

	orch := ingest.NewOrchestrator(source, repos, zerolog.Nop())
	summary, err := orch.Run(context.Background(), ingest.Options{
		Subreddit:    "golang",
		LookbackDate: time.Date(2024, 8, 18, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	sub := subredditRepo.Subreddits["2qh1o"]
	if sub == nil {
		t.Fatal("Subreddit row should be created")
	}
	if sub.LastIngestedAt == nil {
		t.Error("Successful run should stamp last ingestion")
	}
	if sub.LookbackEarliest == nil || !sub.LookbackEarliest.Equal(time.Date(2024, 8, 18, 0, 0, 0, 0, time.UTC)) {
		t.Error("Successful run should record the lookback watermark")
	}

	run := runRepo.Runs[summary.RunID]
	if run == nil {
		t.Fatal("Run row should be recorded")
	}
	if run.Status != models.RunStatusCompleted {
		t.Errorf("Expected completed run, got %s", run.Status)
	}
	if run.ThreadsInserted != 1 {
		t.Errorf("Run row should carry counts, got %+v", run)
	}
	if run.CompletedAt == nil {
		t.Error("Run row should be finalized")
	}
}

func TestRun_StreamFailureMarksRunFailed(t *testing.T) {
	repos, source, subredditRepo, _, _, runRepo := newTestHarness()
	source.StreamError = fmt.Errorf("reddit returned status 503")

	orch := ingest.NewOrchestrator(source, repos, zerolog.Nop())
	summary, err := orch.Run(context.Background(), ingest.Options{
		Subreddit:    "golang",
		LookbackDate: time.Date(2024, 8, 18, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Run should collect the stream failure, got %v", err)
	}
	if len(summary.Errors) != 1 {
		t.Errorf("Expected 1 error in summary, got %d", len(summary.Errors))
	}

	run := runRepo.Runs[summary.RunID]
	if run == nil || run.Status != models.RunStatusFailed {
		t.Error("Failed stream should mark the run failed")
	}
	if sub := subredditRepo.Subreddits["2qh1o"]; sub != nil && sub.LastIngestedAt != nil {
		t.Error("Failed run must not stamp last ingestion")
	}
}

func TestRun_StructuralFailureContinuesWithNextThread(t *testing.T) {
	repos, source, _, threadRepo, commentRepo, _ := newTestHarness()
	source.Threads = []*reddit.ThreadRecord{
		datedThread("t1", time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)),
		datedThread("t2", time.Date(2024, 8, 19, 0, 0, 0, 0, time.UTC)),
	}
	source.CommentsByThread["t1"] = []*reddit.CommentRecord{
		commentRecord("c1", "unresolved_parent", 1),
	}
	source.CommentsByThread["t2"] = []*reddit.CommentRecord{
		commentRecord("c2", "", 1),
	}

	orch := ingest.NewOrchestrator(source, repos, zerolog.Nop())
	summary, err := orch.Run(context.Background(), ingest.Options{
		Subreddit:    "golang",
		LookbackDate: time.Date(2024, 8, 18, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(summary.Errors) != 1 {
		t.Errorf("Expected the structural error recorded, got %d errors", len(summary.Errors))
	}
	if _, ok := threadRepo.Threads["t2"]; !ok {
		t.Error("Next thread should still be processed")
	}
	if _, ok := commentRepo.Comments["c2"]; !ok {
		t.Error("Next thread's comments should still be reconciled")
	}
}

func TestRun_MissingLookbackIsConfigurationError(t *testing.T) {
	repos, source, _, _, _, _ := newTestHarness()
	orch := ingest.NewOrchestrator(source, repos, zerolog.Nop())

	_, err := orch.Run(context.Background(), ingest.Options{Subreddit: "golang"})
	var confErr *ingest.ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("Expected ConfigurationError, got %v", err)
	}
	if source.ThreadsYielded != 0 {
		t.Error("Configuration errors must abort before any fetch")
	}
}

func TestResolveSubredditName(t *testing.T) {
	tests := []struct {
		name      string
		direct    string
		url       string
		want      string
		wantError bool
	}{
		{"direct name", "golang", "", "golang", false},
		{"plain url", "", "https://www.reddit.com/r/golang", "golang", false},
		{"url with trailing slash", "", "https://reddit.com/r/golang/", "golang", false},
		{"url with listing suffix", "", "https://reddit.com/r/golang/new", "golang", false},
		{"both supplied", "golang", "https://reddit.com/r/golang", "", true},
		{"neither supplied", "", "", "", true},
		{"url without subreddit", "", "https://reddit.com/user/someone", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ingest.ResolveSubredditName(tt.direct, tt.url)
			if tt.wantError {
				var confErr *ingest.ConfigurationError
				if !errors.As(err, &confErr) {
					t.Fatalf("Expected ConfigurationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveSubredditName failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseLookbackDate(t *testing.T) {
	parsed, err := ingest.ParseLookbackDate("2024-08-18")
	if err != nil {
		t.Fatalf("ParseLookbackDate failed: %v", err)
	}
	if !parsed.Equal(time.Date(2024, 8, 18, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected date: %v", parsed)
	}

	if _, err := ingest.ParseLookbackDate("18-08-2024"); err == nil {
		t.Error("Malformed date should be rejected")
	}

	future := time.Now().AddDate(1, 0, 0).Format("2006-01-02")
	if _, err := ingest.ParseLookbackDate(future); err == nil {
		t.Error("Future date should be rejected")
	}
}
