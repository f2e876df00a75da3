package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zakhij/subreddit-scraper/internal/models"
	"github.com/zakhij/subreddit-scraper/internal/reddit"
	"github.com/zakhij/subreddit-scraper/internal/repository"
)

// Outcome is the reconciliation decision for a single record.
type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeInserted
	OutcomeUpdated
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeUpdated:
		return "updated"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unchanged"
	}
}

// TreeStats aggregates the reconciliation of one thread's comment forest.
type TreeStats struct {
	Inserted  int
	Updated   int
	Unchanged int
	Skipped   int
	Errors    []string
}

// Reconciler diffs fetched records against stored rows and issues only the
// writes needed to bring the store into agreement with upstream. External
// ids are the sole reconciliation key.
type Reconciler struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// NewReconciler creates a reconciler over the given repositories
func NewReconciler(repos *repository.Repositories, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		repos: repos,
		log:   log.With().Str("component", "reconciler").Logger(),
	}
}

// ReconcileThread decides insert/update/skip for a fetched thread. Only the
// mutable attribute subset participates in the diff; creation timestamp,
// author and external id are immutable and excluded.
func (r *Reconciler) ReconcileThread(ctx context.Context, subredditID string, rec *reddit.ThreadRecord) (Outcome, error) {
	if rec.ID == "" {
		return OutcomeSkipped, &MalformedRecordError{Kind: "thread"}
	}

	stored, err := r.repos.Thread.GetByID(ctx, rec.ID)
	if err != nil {
		return OutcomeSkipped, fmt.Errorf("looking up thread %s: %w", rec.ID, err)
	}

	fetched := threadFromRecord(subredditID, rec)

	if stored == nil {
		if err := r.repos.Thread.Insert(ctx, fetched); err != nil {
			return OutcomeSkipped, fmt.Errorf("inserting thread %s: %w", rec.ID, err)
		}
		return OutcomeInserted, nil
	}

	if !threadChanged(stored, fetched) {
		return OutcomeUnchanged, nil
	}

	if err := r.repos.Thread.Update(ctx, fetched); err != nil {
		return OutcomeSkipped, fmt.Errorf("updating thread %s: %w", rec.ID, err)
	}
	return OutcomeUpdated, nil
}

// ReconcileCommentTree walks a fetched comment forest depth-first, parents
// strictly before children, reconciling each node. A parent reference that
// resolves to neither a stored row nor a comment reconciled earlier in this
// call is a StructuralIntegrityError and aborts the remaining tree.
//
// Per-item persistence failures are recorded in the stats and do not stop
// sibling processing; descendants of a failed insert are skipped because
// their parent row does not exist.
func (r *Reconciler) ReconcileCommentTree(ctx context.Context, threadID string, roots []*reddit.CommentRecord) (TreeStats, error) {
	stats := TreeStats{}
	// Comment ids confirmed present in the store, either pre-existing or
	// written earlier in this traversal.
	resolved := make(map[string]bool)

	var walk func(node *reddit.CommentRecord) error
	walk = func(node *reddit.CommentRecord) error {
		if node.ID == "" {
			stats.Skipped++
			r.log.Warn().Str("thread_id", threadID).Msg("Skipping comment without external id")
			return nil
		}

		if node.ParentID != "" && !resolved[node.ParentID] {
			exists, err := r.repos.Comment.Exists(ctx, node.ParentID)
			if err != nil {
				stats.Errors = append(stats.Errors, fmt.Sprintf("checking parent of comment %s: %v", node.ID, err))
				return nil
			}
			if !exists {
				return &StructuralIntegrityError{
					ThreadID:  threadID,
					CommentID: node.ID,
					ParentID:  node.ParentID,
				}
			}
			resolved[node.ParentID] = true
		}

		stored, err := r.repos.Comment.GetByID(ctx, node.ID)
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("looking up comment %s: %v", node.ID, err))
			return nil
		}

		fetched := commentFromRecord(threadID, node)

		if stored == nil {
			if err := r.repos.Comment.Insert(ctx, fetched); err != nil {
				stats.Errors = append(stats.Errors, fmt.Sprintf("inserting comment %s: %v", node.ID, err))
				return nil
			}
			stats.Inserted++
		} else if commentChanged(stored, fetched) {
			if err := r.repos.Comment.Update(ctx, fetched); err != nil {
				stats.Errors = append(stats.Errors, fmt.Sprintf("updating comment %s: %v", node.ID, err))
			} else {
				stats.Updated++
			}
		} else {
			stats.Unchanged++
		}
		resolved[node.ID] = true

		for _, reply := range node.Replies {
			if err := walk(reply); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range roots {
		if err := walk(root); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// threadChanged compares the mutable attribute subset field by field. Any
// difference, in either direction, triggers an update.
func threadChanged(stored, fetched *models.Thread) bool {
	return stored.Title != fetched.Title ||
		stored.SelfText != fetched.SelfText ||
		stored.URL != fetched.URL ||
		stored.Score != fetched.Score ||
		stored.NumComments != fetched.NumComments
}

// commentChanged compares score, body and author. Author participates so
// that upstream deletions overwrite the row with its redacted tombstone.
func commentChanged(stored, fetched *models.Comment) bool {
	return stored.Score != fetched.Score ||
		stored.Body != fetched.Body ||
		!equalOptional(stored.Author, fetched.Author)
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// threadFromRecord maps a raw API record onto the storage model. The
// canonical URL is rebuilt from the permalink; the external URL is kept
// only for link posts, mirroring how self posts carry no external target.
func threadFromRecord(subredditID string, rec *reddit.ThreadRecord) *models.Thread {
	thread := &models.Thread{
		ID:          rec.ID,
		SubredditID: subredditID,
		Title:       rec.Title,
		SelfText:    rec.SelfText,
		URL:         "https://reddit.com" + rec.Permalink,
		Author:      optionalString(rec.Author),
		Score:       rec.Score,
		NumComments: rec.NumComments,
		CreatedAt:   rec.CreatedAt,
	}
	if !rec.IsSelf && rec.URL != "" {
		externalURL := rec.URL
		thread.ExternalURL = &externalURL
	}
	return thread
}

func commentFromRecord(threadID string, rec *reddit.CommentRecord) *models.Comment {
	comment := &models.Comment{
		ID:        rec.ID,
		ThreadID:  threadID,
		Author:    optionalString(rec.Author),
		Body:      rec.Body,
		Score:     rec.Score,
		CreatedAt: rec.CreatedAt,
	}
	if rec.ParentID != "" {
		parentID := rec.ParentID
		comment.ParentCommentID = &parentID
	}
	return comment
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
