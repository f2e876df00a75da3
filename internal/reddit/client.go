package reddit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/zakhij/subreddit-scraper/internal/config"
)

const (
	authURL = "https://www.reddit.com/api/v1/access_token"
	apiURL  = "https://oauth.reddit.com"

	maxRetries     = 5
	initialBackoff = 1 * time.Second
	maxBackoff     = 32 * time.Second

	// /api/morechildren accepts at most 100 comment ids per request.
	moreChildrenBatch = 100
)

// Client is an OAuth2 client-credentials Reddit API client. Retry and
// backoff live here; callers treat fetches as plain synchronous calls.
type Client struct {
	conf         *clientcredentials.Config
	http         *http.Client
	baseURL      string
	userAgent    string
	pageSize     int
	commentLimit int
	timeout      time.Duration
	log          zerolog.Logger
}

// NewClient creates a Reddit API client from application configuration.
func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	c := &Client{
		conf: &clientcredentials.Config{
			ClientID:     cfg.Reddit.ClientID,
			ClientSecret: cfg.Reddit.ClientSecret,
			TokenURL:     authURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		baseURL:      apiURL,
		userAgent:    cfg.Reddit.UserAgent,
		pageSize:     cfg.Ingest.PageSize,
		commentLimit: cfg.Ingest.CommentLimit,
		timeout:      cfg.Reddit.RequestTimeout,
		log:          log.With().Str("component", "reddit").Logger(),
	}
	c.http = c.newHTTPClient(context.Background())
	return c
}

// newHTTPClient builds the OAuth2 transport with the configured request
// timeout. Used at construction and again after a token refresh.
func (c *Client) newHTTPClient(ctx context.Context) *http.Client {
	httpClient := c.conf.Client(ctx)
	httpClient.Timeout = c.timeout
	return httpClient
}

// FetchSubreddit resolves a subreddit's external id and canonical name.
func (c *Client) FetchSubreddit(ctx context.Context, name string) (*SubredditRecord, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/r/%s/about", c.baseURL, url.PathEscape(name)), nil)
	if err != nil {
		return nil, err
	}
	return parseSubredditThing(body)
}

// StreamNewThreads pages through /r/{name}/new, newest first, invoking fn
// for each post. fn returns false to stop the stream; no further pages are
// requested once it does.
func (c *Client) StreamNewThreads(ctx context.Context, name string, fn func(*ThreadRecord) (bool, error)) error {
	after := ""
	for {
		params := url.Values{
			"limit":    {strconv.Itoa(c.pageSize)},
			"raw_json": {"1"},
		}
		if after != "" {
			params.Set("after", after)
		}

		body, err := c.get(ctx, fmt.Sprintf("%s/r/%s/new", c.baseURL, url.PathEscape(name)), params)
		if err != nil {
			return err
		}

		threads, next, err := parseThreadListing(body)
		if err != nil {
			return err
		}
		if len(threads) == 0 {
			return nil
		}

		for _, t := range threads {
			cont, err := fn(t)
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}

		if next == "" {
			return nil
		}
		after = next
	}
}

// FetchComments retrieves the full comment forest for a thread. Branches
// the listing collapses into "more" stubs are expanded via /api/morechildren
// so the returned forest is complete.
func (c *Client) FetchComments(ctx context.Context, name, threadID string) ([]*CommentRecord, error) {
	params := url.Values{
		"limit":    {strconv.Itoa(c.commentLimit)},
		"raw_json": {"1"},
		"sort":     {"old"},
	}
	body, err := c.get(ctx,
		fmt.Sprintf("%s/r/%s/comments/%s", c.baseURL, url.PathEscape(name), url.PathEscape(threadID)),
		params)
	if err != nil {
		return nil, err
	}
	forest, stubs, err := parseCommentsResponse(body)
	if err != nil {
		return nil, err
	}
	return c.resolveMoreComments(ctx, threadID, forest, stubs)
}

// resolveMoreComments expands "more" stubs by requesting their hidden
// comment ids in batches and grafting the results into the forest by parent
// id. Expansions can themselves return further stubs; each id is requested
// at most once, so the loop terminates.
func (c *Client) resolveMoreComments(ctx context.Context, threadID string, forest []*CommentRecord, stubs []*moreStub) ([]*CommentRecord, error) {
	if len(stubs) == 0 {
		return forest, nil
	}

	index := make(map[string]*CommentRecord)
	indexComments(forest, index)

	requested := make(map[string]bool)
	var pending []string
	queue := stubs

	for len(queue) > 0 || len(pending) > 0 {
		for len(queue) > 0 {
			stub := queue[0]
			queue = queue[1:]
			if len(stub.Children) == 0 {
				// Continuation stubs carry no ids to request.
				c.log.Warn().
					Str("thread_id", threadID).
					Str("parent_id", stub.ParentID).
					Int("count", stub.Count).
					Msg("Skipping comment continuation without child ids")
				continue
			}
			for _, id := range stub.Children {
				if !requested[id] {
					requested[id] = true
					pending = append(pending, id)
				}
			}
		}
		if len(pending) == 0 {
			break
		}

		n := min(len(pending), moreChildrenBatch)
		batch := pending[:n]
		pending = pending[n:]

		params := url.Values{
			"link_id":  {"t3_" + threadID},
			"children": {strings.Join(batch, ",")},
			"api_type": {"json"},
			"raw_json": {"1"},
			"sort":     {"old"},
		}
		body, err := c.get(ctx, c.baseURL+"/api/morechildren", params)
		if err != nil {
			return nil, fmt.Errorf("expanding hidden comments of thread %s: %w", threadID, err)
		}
		nodes, more, err := parseMoreChildrenResponse(body)
		if err != nil {
			return nil, err
		}
		for _, node := range nodes {
			forest = graftComment(forest, index, node)
		}
		queue = append(queue, more...)
	}

	return forest, nil
}

// get performs a GET with token refresh on 401 and exponential backoff on
// 429, up to maxRetries attempts.
func (c *Client) get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	if params != nil {
		rawURL = rawURL + "?" + params.Encode()
	}

	backoff := initialBackoff
	refreshed := false

	for attempt := 1; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("reddit request failed: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, err
			}
			return body, nil

		case http.StatusUnauthorized:
			resp.Body.Close()
			if refreshed {
				return nil, fmt.Errorf("reddit auth rejected after token refresh")
			}
			c.log.Warn().Msg("Token expired, refreshing")
			c.http = c.newHTTPClient(ctx)
			refreshed = true

		case http.StatusTooManyRequests:
			resp.Body.Close()
			c.log.Warn().
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Rate limited, backing off")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}

		default:
			resp.Body.Close()
			return nil, fmt.Errorf("reddit returned status %d for %s", resp.StatusCode, rawURL)
		}
	}

	return nil, fmt.Errorf("reddit request failed after %d attempts: %s", maxRetries, rawURL)
}
