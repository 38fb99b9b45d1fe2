package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"IdeaScanner/internal/scanner"
)

const listingFixture = `{
  "kind": "Listing",
  "data": {
    "children": [
      {"kind": "t3", "data": {"id": "pin", "name": "t3_pin", "title": "Weekly thread", "stickied": true, "subreddit": "startups"}},
      {"kind": "t3", "data": {
        "id": "abc", "name": "t3_abc", "title": "Tired of chasing invoices &amp; late payments",
        "selftext": "fallback text",
        "selftext_html": "&lt;!-- SC_OFF --&gt;&lt;div class=\"md\"&gt;&lt;p&gt;Freelancers lose hours every week.&lt;/p&gt;&lt;ul&gt;&lt;li&gt;manual reminders&lt;/li&gt;&lt;li&gt;no overview&lt;/li&gt;&lt;/ul&gt;&lt;/div&gt;",
        "subreddit": "startups", "author": "maker", "score": 42, "num_comments": 7,
        "url": "https://www.reddit.com/r/startups/comments/abc/x/", "permalink": "/r/startups/comments/abc/x/",
        "created_utc": 1735689600.0
      }},
      {"kind": "t3", "data": {"id": "def", "title": "Plain post", "selftext": "just text", "subreddit": "startups", "author": "other", "created_utc": 1735689700}}
    ]
  }
}`

func TestBuildListingURL(t *testing.T) {
	t.Parallel()

	u, err := buildListingURL("https://www.reddit.com", "r/SaaS", "top", "week", 50)
	if err != nil {
		t.Fatalf("buildListingURL returned error: %v", err)
	}

	parsed, err := url.Parse(u)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if parsed.Path != "/r/SaaS/top.json" {
		t.Fatalf("unexpected path: %s", parsed.Path)
	}
	q := parsed.Query()
	if q.Get("limit") != "50" || q.Get("t") != "week" {
		t.Fatalf("unexpected query: %s", parsed.RawQuery)
	}

	if _, err := buildListingURL("https://www.reddit.com", " ", "hot", "day", 10); err == nil {
		t.Fatal("expected error for empty community")
	}
}

func TestClampLimit(t *testing.T) {
	t.Parallel()

	cases := map[int]int{0: defaultLimit, -3: defaultLimit, 10: 10, 500: maxLimit}
	for in, want := range cases {
		if got := clampLimit(in); got != want {
			t.Fatalf("clampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestHTMLToText(t *testing.T) {
	t.Parallel()

	got := htmlToText("&lt;div&gt;&lt;p&gt;First&lt;/p&gt;&lt;ul&gt;&lt;li&gt;&lt;p&gt;nested&lt;/p&gt;&lt;/li&gt;&lt;/ul&gt;&lt;/div&gt;")
	if got != "First\nnested" {
		t.Fatalf("unexpected text: %q", got)
	}

	if got := htmlToText("just words"); got != "just words" {
		t.Fatalf("expected bare text passthrough, got %q", got)
	}
}

func TestRedditScannerScan(t *testing.T) {
	t.Parallel()

	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path+"?"+r.URL.RawQuery)
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "IdeaScanner") {
			t.Errorf("unexpected user agent %q", ua)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listingFixture))
	}))
	defer srv.Close()

	s := NewRedditScanner(srv.Client(), srv.URL)
	posts, err := s.Scan(context.Background(), scanner.Request{
		SiteName:    "reddit",
		Communities: []string{"startups", "SaaS"},
		Limit:       5,
		Options:     map[string]string{"sort": "new"},
	})
	if err != nil {
		t.Fatalf("scan returned error: %v", err)
	}

	if len(paths) != 2 || !strings.HasPrefix(paths[0], "/r/startups/new.json?") || !strings.Contains(paths[0], "limit=5") {
		t.Fatalf("unexpected requests: %v", paths)
	}

	// The second community returns the same listing, so repeats collapse.
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}

	first := posts[0]
	if first.ExternalID != "t3_abc" {
		t.Fatalf("unexpected id: %s", first.ExternalID)
	}
	if first.Title != "Tired of chasing invoices & late payments" {
		t.Fatalf("unexpected title: %s", first.Title)
	}
	if first.Body != "Freelancers lose hours every week.\n- manual reminders\n- no overview" {
		t.Fatalf("unexpected body: %q", first.Body)
	}
	if first.Score != 42 || first.CommentCount != 7 || first.Author != "maker" {
		t.Fatalf("unexpected counters: %+v", first)
	}
	if !first.CreatedAt.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected created_at: %s", first.CreatedAt)
	}

	if posts[1].ExternalID != "t3_def" || posts[1].Body != "just text" {
		t.Fatalf("unexpected second post: %+v", posts[1])
	}
}

func TestRedditScannerStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewRedditScanner(srv.Client(), srv.URL).Scan(context.Background(), scanner.Request{Communities: []string{"startups"}})
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected 429 error, got %v", err)
	}
}

func TestRedditScannerRequiresCommunities(t *testing.T) {
	t.Parallel()

	if _, err := NewRedditScanner(nil, "").Scan(context.Background(), scanner.Request{SiteName: "reddit"}); err == nil {
		t.Fatal("expected error without communities")
	}
}
