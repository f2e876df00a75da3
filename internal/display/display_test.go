package display_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/zakhij/subreddit-scraper/internal/display"
	"github.com/zakhij/subreddit-scraper/internal/mocks"
	"github.com/zakhij/subreddit-scraper/internal/models"
	"github.com/zakhij/subreddit-scraper/internal/repository"
)

func seedRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	subredditRepo := mocks.NewMockSubredditRepository()
	threadRepo := mocks.NewMockThreadRepository()
	commentRepo := mocks.NewMockCommentRepository()
	repos := &repository.Repositories{
		Subreddit: subredditRepo,
		Thread:    threadRepo,
		Comment:   commentRepo,
		Run:       mocks.NewMockRunRepository(),
	}

	ctx := context.Background()
	author := "gopher"
	alice := "alice"
	bob := "bob"
	parent := "c1"

	subredditRepo.Upsert(ctx, &models.Subreddit{ID: "sub1", Name: "golang", FirstSeenAt: time.Now()})
	threadRepo.Insert(ctx, &models.Thread{
		ID:          "t1",
		SubredditID: "sub1",
		Title:       "Go 1.21 released",
		SelfText:    "Release notes inside.",
		URL:         "https://reddit.com/r/golang/comments/t1/go_121_released/",
		Author:      &author,
		Score:       420,
		CreatedAt:   time.Date(2024, 8, 20, 12, 0, 0, 0, time.UTC),
	})
	commentRepo.Insert(ctx, &models.Comment{
		ID: "c1", ThreadID: "t1", Author: &alice, Body: "Great release!",
		Score: 12, CreatedAt: time.Date(2024, 8, 20, 13, 0, 0, 0, time.UTC),
	})
	commentRepo.Insert(ctx, &models.Comment{
		ID: "c2", ThreadID: "t1", ParentCommentID: &parent, Author: &bob, Body: "Agreed.",
		Score: 4, CreatedAt: time.Date(2024, 8, 20, 14, 0, 0, 0, time.UTC),
	})
	return repos
}

func TestShowSubredditThreads(t *testing.T) {
	repos := seedRepos(t)
	var buf bytes.Buffer
	renderer := display.NewRenderer(repos, &buf)

	err := renderer.ShowSubredditThreads(context.Background(), "golang", time.Date(2024, 8, 18, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ShowSubredditThreads failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Go 1.21 released (by gopher)") {
		t.Errorf("Thread header missing:\n%s", out)
	}
	if !strings.Contains(out, "Score: 420") {
		t.Errorf("Thread score missing:\n%s", out)
	}
	if !strings.Contains(out, "- alice (score: 12") {
		t.Errorf("Top-level comment missing:\n%s", out)
	}
	// The reply renders one level deeper than its parent.
	if !strings.Contains(out, "    - bob (score: 4") {
		t.Errorf("Nested reply should be indented:\n%s", out)
	}
}

func TestShowSubredditThreads_UnknownSubreddit(t *testing.T) {
	repos := seedRepos(t)
	var buf bytes.Buffer
	renderer := display.NewRenderer(repos, &buf)

	err := renderer.ShowSubredditThreads(context.Background(), "nosuchsub", time.Time{})
	if err != nil {
		t.Fatalf("ShowSubredditThreads failed: %v", err)
	}
	if !strings.Contains(buf.String(), "not found") {
		t.Errorf("Expected not-found message, got:\n%s", buf.String())
	}
}

func TestShowSubredditThreads_NoThreadsInWindow(t *testing.T) {
	repos := seedRepos(t)
	var buf bytes.Buffer
	renderer := display.NewRenderer(repos, &buf)

	err := renderer.ShowSubredditThreads(context.Background(), "golang", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ShowSubredditThreads failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No threads found") {
		t.Errorf("Expected empty-window message, got:\n%s", buf.String())
	}
}
