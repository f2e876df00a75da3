package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/zakhij/subreddit-scraper/internal/models"
	"github.com/zakhij/subreddit-scraper/internal/repository"
)

// ThreadHandler serves stored threads and comment trees
type ThreadHandler struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// NewThreadHandler creates a new thread handler
func NewThreadHandler(repos *repository.Repositories, log zerolog.Logger) *ThreadHandler {
	return &ThreadHandler{
		repos: repos,
		log:   log.With().Str("handler", "threads").Logger(),
	}
}

// ListThreads returns the stored threads of a subreddit, newest first.
// GET /v1/subreddits/:name/threads?since=2024-01-01
func (h *ThreadHandler) ListThreads(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("name")

	since := time.Time{}
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since date, expected YYYY-MM-DD"})
			return
		}
		since = parsed
	}

	sub, err := h.repos.Subreddit.GetByName(ctx, name)
	if err != nil {
		h.log.Error().Err(err).Str("subreddit", name).Msg("Subreddit lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if sub == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "subreddit not found"})
		return
	}

	threads, err := h.repos.Thread.ListBySubredditSince(ctx, sub.ID, since)
	if err != nil {
		h.log.Error().Err(err).Str("subreddit", name).Msg("Thread listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subreddit": sub,
		"threads":   threads,
		"count":     len(threads),
	})
}

// CommentNode is a comment with its replies nested for JSON output
type CommentNode struct {
	*models.Comment
	Replies []*CommentNode `json:"replies,omitempty"`
}

// GetCommentTree returns a thread's comments as a nested tree.
// GET /v1/threads/:id/comments
func (h *ThreadHandler) GetCommentTree(c *gin.Context) {
	ctx := c.Request.Context()
	threadID := c.Param("id")

	exists, err := h.repos.Thread.Exists(ctx, threadID)
	if err != nil {
		h.log.Error().Err(err).Str("thread_id", threadID).Msg("Thread lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "thread not found"})
		return
	}

	comments, err := h.repos.Comment.ListByThread(ctx, threadID)
	if err != nil {
		h.log.Error().Err(err).Str("thread_id", threadID).Msg("Comment listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"thread_id": threadID,
		"comments":  buildCommentTree(comments),
		"count":     len(comments),
	})
}

// buildCommentTree nests flat parent-referenced rows. Rows arrive in
// chronological order, so parents are indexed before their children; a
// child whose parent is absent falls back to top level.
func buildCommentTree(comments []*models.Comment) []*CommentNode {
	index := make(map[string]*CommentNode, len(comments))
	var roots []*CommentNode

	for _, comment := range comments {
		node := &CommentNode{Comment: comment}
		index[comment.ID] = node

		if comment.ParentCommentID != nil {
			if parent, ok := index[*comment.ParentCommentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	if roots == nil {
		roots = []*CommentNode{}
	}
	return roots
}
