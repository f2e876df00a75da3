package reddit

import (
	"testing"
	"time"
)

const threadListingFixture = `{
	"kind": "Listing",
	"data": {
		"after": "t3_abc2",
		"children": [
			{
				"kind": "t3",
				"data": {
					"id": "abc1",
					"title": "Go 1.21 released",
					"selftext": "",
					"url": "https://go.dev/blog/go1.21",
					"permalink": "/r/golang/comments/abc1/go_121_released/",
					"author": "gopher",
					"score": 420,
					"num_comments": 2,
					"created_utc": 1724112000,
					"is_self": false
				}
			},
			{
				"kind": "t3",
				"data": {
					"id": "abc2",
					"title": "Question about channels",
					"selftext": "How do buffered channels work?",
					"url": "https://www.reddit.com/r/golang/comments/abc2/question_about_channels/",
					"permalink": "/r/golang/comments/abc2/question_about_channels/",
					"author": "newbie",
					"score": 15,
					"num_comments": 7,
					"created_utc": 1724025600,
					"is_self": true
				}
			}
		]
	}
}`

const commentsResponseFixture = `[
	{"kind": "Listing", "data": {"after": "", "children": []}},
	{
		"kind": "Listing",
		"data": {
			"after": "",
			"children": [
				{
					"kind": "t1",
					"data": {
						"id": "c1",
						"parent_id": "t3_abc1",
						"author": "alice",
						"body": "Great release!",
						"score": 12,
						"created_utc": 1724115600,
						"replies": {
							"kind": "Listing",
							"data": {
								"after": "",
								"children": [
									{
										"kind": "t1",
										"data": {
											"id": "c2",
											"parent_id": "t1_c1",
											"author": "bob",
											"body": "Agreed.",
											"score": 4,
											"created_utc": 1724119200,
											"replies": ""
										}
									},
									{
										"kind": "more",
										"data": {"id": "c999", "parent_id": "t1_c1", "count": 2, "children": ["c3", "c4"]}
									}
								]
							}
						}
					}
				},
				{
					"kind": "t1",
					"data": {
						"id": "c5",
						"parent_id": "t3_abc1",
						"author": "[deleted]",
						"body": "[removed]",
						"score": -2,
						"created_utc": 1724122800,
						"replies": ""
					}
				}
			]
		}
	}
]`

const subredditFixture = `{
	"kind": "t5",
	"data": {"id": "2rc7j", "display_name": "golang"}
}`

func TestParseThreadListing(t *testing.T) {
	threads, after, err := parseThreadListing([]byte(threadListingFixture))
	if err != nil {
		t.Fatalf("parseThreadListing failed: %v", err)
	}
	if after != "t3_abc2" {
		t.Errorf("Expected cursor t3_abc2, got %q", after)
	}
	if len(threads) != 2 {
		t.Fatalf("Expected 2 threads, got %d", len(threads))
	}

	first := threads[0]
	if first.ID != "abc1" {
		t.Errorf("Expected id abc1, got %s", first.ID)
	}
	if first.Score != 420 || first.NumComments != 2 {
		t.Errorf("Unexpected counters: score=%d num_comments=%d", first.Score, first.NumComments)
	}
	if first.IsSelf {
		t.Error("Link post should not be marked self")
	}
	if !first.CreatedAt.Equal(time.Unix(1724112000, 0).UTC()) {
		t.Errorf("Unexpected creation time: %v", first.CreatedAt)
	}

	second := threads[1]
	if !second.IsSelf || second.SelfText == "" {
		t.Error("Self post should carry its selftext")
	}
}

func TestParseCommentsResponse(t *testing.T) {
	forest, stubs, err := parseCommentsResponse([]byte(commentsResponseFixture))
	if err != nil {
		t.Fatalf("parseCommentsResponse failed: %v", err)
	}
	if len(forest) != 2 {
		t.Fatalf("Expected 2 top-level comments, got %d", len(forest))
	}

	c1 := forest[0]
	if c1.ID != "c1" {
		t.Errorf("Expected id c1, got %s", c1.ID)
	}
	// A t3 parent means top-level: no parent comment reference.
	if c1.ParentID != "" {
		t.Errorf("Top-level comment should have empty parent, got %q", c1.ParentID)
	}
	if len(c1.Replies) != 1 {
		t.Fatalf("Expected 1 direct reply, got %d", len(c1.Replies))
	}

	c2 := c1.Replies[0]
	if c2.ID != "c2" || c2.ParentID != "c1" {
		t.Errorf("Reply should reference its parent comment, got id=%s parent=%s", c2.ID, c2.ParentID)
	}

	// The collapsed branch must surface as a stub, not vanish.
	if len(stubs) != 1 {
		t.Fatalf("Expected 1 more stub, got %d", len(stubs))
	}
	stub := stubs[0]
	if stub.ParentID != "c1" {
		t.Errorf("Expected stub parent c1, got %q", stub.ParentID)
	}
	if stub.Count != 2 || len(stub.Children) != 2 || stub.Children[0] != "c3" || stub.Children[1] != "c4" {
		t.Errorf("Unexpected stub contents: %+v", stub)
	}

	tombstone := forest[1]
	if tombstone.Author != "[deleted]" || tombstone.Body != "[removed]" {
		t.Error("Redacted fields should be preserved as-is")
	}
	if tombstone.Score != -2 {
		t.Errorf("Negative scores are valid, got %d", tombstone.Score)
	}
}

const moreChildrenFixture = `{
	"json": {
		"errors": [],
		"data": {
			"things": [
				{
					"kind": "t1",
					"data": {"id": "c3", "parent_id": "t1_c1", "author": "carol", "body": "Late reply.", "score": 2, "created_utc": 1724126400, "replies": ""}
				},
				{
					"kind": "t1",
					"data": {"id": "c4", "parent_id": "t3_abc1", "author": "dave", "body": "Another top-level.", "score": 1, "created_utc": 1724130000, "replies": ""}
				},
				{
					"kind": "more",
					"data": {"id": "c998", "parent_id": "t1_c3", "count": 7, "children": ["c6", "c7"]}
				}
			]
		}
	}
}`

func TestParseMoreChildrenResponse(t *testing.T) {
	nodes, stubs, err := parseMoreChildrenResponse([]byte(moreChildrenFixture))
	if err != nil {
		t.Fatalf("parseMoreChildrenResponse failed: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("Expected 2 comments, got %d", len(nodes))
	}
	if nodes[0].ID != "c3" || nodes[0].ParentID != "c1" {
		t.Errorf("Unexpected first node: %+v", nodes[0])
	}
	if nodes[1].ID != "c4" || nodes[1].ParentID != "" {
		t.Errorf("t3 parent should mean top-level, got %+v", nodes[1])
	}
	if len(stubs) != 1 || stubs[0].ParentID != "c3" || len(stubs[0].Children) != 2 {
		t.Fatalf("Expansion stub should be collected, got %+v", stubs)
	}
}

func TestGraftComment(t *testing.T) {
	parent := &CommentRecord{ID: "c1"}
	forest := []*CommentRecord{parent}
	index := make(map[string]*CommentRecord)
	indexComments(forest, index)

	child := &CommentRecord{ID: "c2", ParentID: "c1"}
	forest = graftComment(forest, index, child)
	if len(forest) != 1 {
		t.Fatalf("Grafted child should not become a root, forest size %d", len(forest))
	}
	if len(parent.Replies) != 1 || parent.Replies[0].ID != "c2" {
		t.Error("Child should attach to its parent")
	}

	// Grandchild attaches through the freshly indexed node.
	grandchild := &CommentRecord{ID: "c3", ParentID: "c2"}
	forest = graftComment(forest, index, grandchild)
	if len(child.Replies) != 1 || child.Replies[0].ID != "c3" {
		t.Error("Grandchild should attach to the grafted child")
	}

	// Unknown parent: the node joins the roots with its reference intact.
	orphan := &CommentRecord{ID: "c9", ParentID: "missing"}
	forest = graftComment(forest, index, orphan)
	if len(forest) != 2 || forest[1].ID != "c9" {
		t.Error("Orphan should join the roots")
	}
	if forest[1].ParentID != "missing" {
		t.Error("Orphan must keep its parent reference")
	}
}

func TestParseSubredditThing(t *testing.T) {
	sub, err := parseSubredditThing([]byte(subredditFixture))
	if err != nil {
		t.Fatalf("parseSubredditThing failed: %v", err)
	}
	if sub.ID != "2rc7j" || sub.Name != "golang" {
		t.Errorf("Unexpected record: %+v", sub)
	}

	if _, err := parseSubredditThing([]byte(`{"kind": "Listing", "data": {}}`)); err == nil {
		t.Error("Non-subreddit payload should be rejected")
	}
}

func TestParentCommentID(t *testing.T) {
	tests := []struct {
		fullname string
		want     string
	}{
		{"t1_c42", "c42"},
		{"t3_abc1", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := parentCommentID(tt.fullname); got != tt.want {
			t.Errorf("parentCommentID(%q) = %q, want %q", tt.fullname, got, tt.want)
		}
	}
}
