package reddit

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Reddit wraps every payload in a kind/data envelope ("thing"). Listings
// are kind "Listing", posts "t3", comments "t1", subreddits "t5",
// pagination stubs "more".
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listingData struct {
	After    string  `json:"after"`
	Children []thing `json:"children"`
}

type subredditData struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type linkData struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	IsSelf      bool    `json:"is_self"`
}

type commentData struct {
	ID         string  `json:"id"`
	ParentID   string  `json:"parent_id"`
	Author     string  `json:"author"`
	Body       string  `json:"body"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
	// Replies is a nested listing thing, or "" when there are none.
	Replies json.RawMessage `json:"replies"`
}

type moreData struct {
	Count    int      `json:"count"`
	ParentID string   `json:"parent_id"`
	Children []string `json:"children"`
}

// moreStub is a collapsed branch of the comment tree. Children holds the
// hidden comment ids to request via /api/morechildren; a continuation stub
// (deep "continue this thread" marker) carries no child ids.
type moreStub struct {
	ParentID string
	Count    int
	Children []string
}

// parseSubredditThing decodes a t5 thing into a SubredditRecord.
func parseSubredditThing(raw []byte) (*SubredditRecord, error) {
	var t thing
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decoding subreddit response: %w", err)
	}
	if t.Kind != "t5" {
		return nil, fmt.Errorf("expected subreddit (t5), got kind %q", t.Kind)
	}
	var data subredditData
	if err := json.Unmarshal(t.Data, &data); err != nil {
		return nil, fmt.Errorf("decoding subreddit data: %w", err)
	}
	return &SubredditRecord{ID: data.ID, Name: data.DisplayName}, nil
}

// parseThreadListing decodes one page of a /new listing into thread records
// plus the pagination cursor for the next page.
func parseThreadListing(raw []byte) ([]*ThreadRecord, string, error) {
	var t thing
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, "", fmt.Errorf("decoding listing: %w", err)
	}
	var listing listingData
	if err := json.Unmarshal(t.Data, &listing); err != nil {
		return nil, "", fmt.Errorf("decoding listing data: %w", err)
	}

	threads := make([]*ThreadRecord, 0, len(listing.Children))
	for _, child := range listing.Children {
		if child.Kind != "t3" {
			continue
		}
		var link linkData
		if err := json.Unmarshal(child.Data, &link); err != nil {
			return nil, "", fmt.Errorf("decoding post data: %w", err)
		}
		threads = append(threads, &ThreadRecord{
			ID:          link.ID,
			Title:       link.Title,
			SelfText:    link.SelfText,
			URL:         link.URL,
			Permalink:   link.Permalink,
			Author:      link.Author,
			Score:       link.Score,
			NumComments: link.NumComments,
			CreatedAt:   time.Unix(int64(link.CreatedUTC), 0).UTC(),
			IsSelf:      link.IsSelf,
		})
	}
	return threads, listing.After, nil
}

// parseCommentsResponse decodes the two-element article response
// [post listing, comment listing] into a comment forest plus the "more"
// stubs marking branches the listing collapsed.
func parseCommentsResponse(raw []byte) ([]*CommentRecord, []*moreStub, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return nil, nil, fmt.Errorf("decoding comments response: %w", err)
	}
	if len(parts) < 2 {
		return nil, nil, fmt.Errorf("expected [post, comments] pair, got %d elements", len(parts))
	}
	var t thing
	if err := json.Unmarshal(parts[1], &t); err != nil {
		return nil, nil, fmt.Errorf("decoding comment listing: %w", err)
	}
	return parseCommentForest(t.Data)
}

// parseCommentForest decodes a comment listing into nested CommentRecords,
// collecting "more" stubs so the client can chase the hidden comments.
func parseCommentForest(rawListing json.RawMessage) ([]*CommentRecord, []*moreStub, error) {
	var listing listingData
	if err := json.Unmarshal(rawListing, &listing); err != nil {
		return nil, nil, fmt.Errorf("decoding comment listing data: %w", err)
	}

	var forest []*CommentRecord
	var stubs []*moreStub
	for _, child := range listing.Children {
		switch child.Kind {
		case "t1":
			node, nested, err := parseCommentThing(child.Data)
			if err != nil {
				return nil, nil, err
			}
			forest = append(forest, node)
			stubs = append(stubs, nested...)
		case "more":
			var data moreData
			if err := json.Unmarshal(child.Data, &data); err != nil {
				return nil, nil, fmt.Errorf("decoding more stub: %w", err)
			}
			stubs = append(stubs, &moreStub{
				ParentID: parentCommentID(data.ParentID),
				Count:    data.Count,
				Children: data.Children,
			})
		}
	}
	return forest, stubs, nil
}

func parseCommentThing(raw json.RawMessage) (*CommentRecord, []*moreStub, error) {
	var data commentData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, nil, fmt.Errorf("decoding comment data: %w", err)
	}

	node := &CommentRecord{
		ID:        data.ID,
		ParentID:  parentCommentID(data.ParentID),
		Author:    data.Author,
		Body:      data.Body,
		Score:     data.Score,
		CreatedAt: time.Unix(int64(data.CreatedUTC), 0).UTC(),
	}

	// Replies is an empty string when the comment has none.
	var stubs []*moreStub
	if len(data.Replies) > 0 && data.Replies[0] == '{' {
		var repliesThing thing
		if err := json.Unmarshal(data.Replies, &repliesThing); err != nil {
			return nil, nil, fmt.Errorf("decoding replies of comment %s: %w", data.ID, err)
		}
		replies, nested, err := parseCommentForest(repliesThing.Data)
		if err != nil {
			return nil, nil, err
		}
		node.Replies = replies
		stubs = nested
	}

	return node, stubs, nil
}

// parseMoreChildrenResponse decodes an /api/morechildren response into flat
// comment records plus any further stubs the expansion itself produced.
func parseMoreChildrenResponse(raw []byte) ([]*CommentRecord, []*moreStub, error) {
	var resp struct {
		JSON struct {
			Data struct {
				Things []thing `json:"things"`
			} `json:"data"`
		} `json:"json"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, nil, fmt.Errorf("decoding morechildren response: %w", err)
	}

	var nodes []*CommentRecord
	var stubs []*moreStub
	for _, t := range resp.JSON.Data.Things {
		switch t.Kind {
		case "t1":
			node, nested, err := parseCommentThing(t.Data)
			if err != nil {
				return nil, nil, err
			}
			nodes = append(nodes, node)
			stubs = append(stubs, nested...)
		case "more":
			var data moreData
			if err := json.Unmarshal(t.Data, &data); err != nil {
				return nil, nil, fmt.Errorf("decoding more stub: %w", err)
			}
			stubs = append(stubs, &moreStub{
				ParentID: parentCommentID(data.ParentID),
				Count:    data.Count,
				Children: data.Children,
			})
		}
	}
	return nodes, stubs, nil
}

// indexComments records every node of a forest by external id.
func indexComments(forest []*CommentRecord, index map[string]*CommentRecord) {
	for _, node := range forest {
		index[node.ID] = node
		indexComments(node.Replies, index)
	}
}

// graftComment attaches an expanded comment to its parent in the forest.
// A node whose parent is unknown keeps its parent reference and joins the
// roots; the reconciler decides whether the reference resolves in the store.
func graftComment(roots []*CommentRecord, index map[string]*CommentRecord, node *CommentRecord) []*CommentRecord {
	index[node.ID] = node
	indexComments(node.Replies, index)
	if node.ParentID != "" {
		if parent, ok := index[node.ParentID]; ok {
			parent.Replies = append(parent.Replies, node)
			return roots
		}
	}
	return append(roots, node)
}

// parentCommentID strips the type prefix from a fullname parent reference.
// Only t1_ parents are comments; a t3_ parent means the comment is
// top-level on the post itself.
func parentCommentID(fullname string) string {
	if strings.HasPrefix(fullname, "t1_") {
		return strings.TrimPrefix(fullname, "t1_")
	}
	return ""
}
