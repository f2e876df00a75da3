package display

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zakhij/subreddit-scraper/internal/models"
	"github.com/zakhij/subreddit-scraper/internal/repository"
)

// Renderer writes stored threads and their comment trees as formatted
// console output. It only reads; ingestion never goes through here.
type Renderer struct {
	repos *repository.Repositories
	out   io.Writer
}

// NewRenderer creates a renderer over the given repositories
func NewRenderer(repos *repository.Repositories, out io.Writer) *Renderer {
	return &Renderer{repos: repos, out: out}
}

// ShowSubredditThreads prints every stored thread of a subreddit created on
// or after the given date, each followed by its comment tree.
func (r *Renderer) ShowSubredditThreads(ctx context.Context, name string, since time.Time) error {
	sub, err := r.repos.Subreddit.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("looking up subreddit %s: %w", name, err)
	}
	if sub == nil {
		fmt.Fprintf(r.out, "Subreddit %q not found in the database.\n", name)
		return nil
	}

	threads, err := r.repos.Thread.ListBySubredditSince(ctx, sub.ID, since)
	if err != nil {
		return fmt.Errorf("listing threads of %s: %w", name, err)
	}
	if len(threads) == 0 {
		fmt.Fprintf(r.out, "No threads found for subreddit %q since %s.\n", name, since.Format("2006-01-02"))
		return nil
	}

	for _, thread := range threads {
		if err := r.showThread(ctx, thread); err != nil {
			return err
		}
		fmt.Fprintln(r.out)
	}
	return nil
}

// showThread prints a thread header block followed by its comments.
func (r *Renderer) showThread(ctx context.Context, thread *models.Thread) error {
	author := "[deleted]"
	if thread.Author != nil {
		author = *thread.Author
	}

	divider := strings.Repeat("=", 72)
	fmt.Fprintln(r.out, divider)
	fmt.Fprintf(r.out, "%s (by %s)\n", thread.Title, author)
	fmt.Fprintf(r.out, "Score: %d | Posted: %s\n", thread.Score, thread.CreatedAt.Format("2006-01-02 15:04:05"))
	if thread.SelfText != "" {
		fmt.Fprintf(r.out, "\n%s\n", thread.SelfText)
	}
	if thread.ExternalURL != nil {
		fmt.Fprintf(r.out, "External URL: %s\n", *thread.ExternalURL)
	}
	fmt.Fprintf(r.out, "Thread URL: %s\n", thread.URL)
	fmt.Fprintln(r.out, divider)

	comments, err := r.repos.Comment.ListByThread(ctx, thread.ID)
	if err != nil {
		return fmt.Errorf("listing comments of thread %s: %w", thread.ID, err)
	}
	if len(comments) > 0 {
		fmt.Fprintln(r.out, "Comments:")
		r.printCommentTree(comments)
	}
	return nil
}

// printCommentTree reconstructs the hierarchy from the flat parent
// references and prints it with indentation. Comments arrive in
// chronological order, so every parent is seen before its children; a
// comment whose parent is missing from the batch is rendered at top level
// rather than dropped.
func (r *Renderer) printCommentTree(comments []*models.Comment) {
	depth := make(map[string]int, len(comments))
	children := make(map[string][]*models.Comment, len(comments))
	var roots []*models.Comment

	for _, c := range comments {
		if c.ParentCommentID != nil {
			if _, ok := depth[*c.ParentCommentID]; ok {
				depth[c.ID] = depth[*c.ParentCommentID] + 1
				children[*c.ParentCommentID] = append(children[*c.ParentCommentID], c)
				continue
			}
		}
		depth[c.ID] = 0
		roots = append(roots, c)
	}

	var walk func(c *models.Comment)
	walk = func(c *models.Comment) {
		r.printComment(c, depth[c.ID])
		for _, child := range children[c.ID] {
			walk(child)
		}
	}
	for _, root := range roots {
		walk(root)
	}
}

func (r *Renderer) printComment(c *models.Comment, depth int) {
	indent := strings.Repeat("    ", depth)
	author := "[deleted]"
	if c.Author != nil {
		author = *c.Author
	}
	fmt.Fprintf(r.out, "%s- %s (score: %d, %s)\n", indent, author, c.Score, c.CreatedAt.Format("2006-01-02 15:04"))
	for _, line := range strings.Split(c.Body, "\n") {
		fmt.Fprintf(r.out, "%s  %s\n", indent, line)
	}
}
