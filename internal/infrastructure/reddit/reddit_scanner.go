package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"IdeaScanner/internal/domain"
	"IdeaScanner/internal/scanner"
)

const (
	redditBaseURL = "https://www.reddit.com"
	defaultLimit  = 25
	maxLimit      = 100
	defaultSort   = "hot"
	defaultWindow = "day"
)

// RedditScanner reads community listings from the public JSON endpoints.
type RedditScanner struct {
	client  *http.Client
	baseURL string
}

// NewRedditScanner wires an HTTP client; baseURL defaults to reddit.com.
func NewRedditScanner(client *http.Client, baseURL string) *RedditScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if baseURL == "" {
		baseURL = redditBaseURL
	}
	return &RedditScanner{client: client, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Name identifies the strategy inside the registry.
func (s *RedditScanner) Name() string {
	return "reddit"
}

// Scan fetches one listing per community and flattens the posts.
// Stickied posts and repeats across communities are skipped.
func (s *RedditScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.CandidatePost, error) {
	if len(req.Communities) == 0 {
		return nil, fmt.Errorf("no communities provided for site %s", req.SiteName)
	}

	sort := req.Option("sort", defaultSort)
	window := req.Option("window", defaultWindow)
	limit := clampLimit(req.Limit)

	results := make([]domain.CandidatePost, 0)
	seen := map[string]struct{}{}

	for _, community := range req.Communities {
		listingURL, err := buildListingURL(s.baseURL, community, sort, window, limit)
		if err != nil {
			return nil, fmt.Errorf("community %s: %w", community, err)
		}

		page, err := s.fetchListing(ctx, listingURL)
		if err != nil {
			return nil, fmt.Errorf("community %s: %w", community, err)
		}

		for _, child := range page.Data.Children {
			if child.Data.Stickied {
				continue
			}
			post := toCandidate(child.Data)
			if post.ExternalID == "" {
				continue
			}
			if _, ok := seen[post.ExternalID]; ok {
				continue
			}
			seen[post.ExternalID] = struct{}{}
			results = append(results, post)
		}
	}

	return results, nil
}

type listing struct {
	Data struct {
		Children []struct {
			Kind string   `json:"kind"`
			Data listItem `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type listItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Title        string  `json:"title"`
	Selftext     string  `json:"selftext"`
	SelftextHTML string  `json:"selftext_html"`
	Subreddit    string  `json:"subreddit"`
	Author       string  `json:"author"`
	Score        int     `json:"score"`
	NumComments  int     `json:"num_comments"`
	URL          string  `json:"url"`
	Permalink    string  `json:"permalink"`
	CreatedUTC   float64 `json:"created_utc"`
	Stickied     bool    `json:"stickied"`
}

func (s *RedditScanner) fetchListing(ctx context.Context, listingURL string) (*listing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "IdeaScanner/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit returned %s", resp.Status)
	}

	var page listing
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return &page, nil
}

func toCandidate(item listItem) domain.CandidatePost {
	id := item.Name
	if id == "" && item.ID != "" {
		id = "t3_" + item.ID
	}

	body := strings.TrimSpace(item.Selftext)
	if item.SelftextHTML != "" {
		if text := htmlToText(item.SelftextHTML); text != "" {
			body = text
		}
	}

	sec, frac := math.Modf(item.CreatedUTC)
	return domain.CandidatePost{
		ExternalID:   id,
		Title:        strings.TrimSpace(html.UnescapeString(item.Title)),
		Body:         body,
		Community:    item.Subreddit,
		Author:       item.Author,
		Score:        item.Score,
		CommentCount: item.NumComments,
		URL:          item.URL,
		Permalink:    item.Permalink,
		CreatedAt:    time.Unix(int64(sec), int64(frac*1e9)).UTC(),
	}
}

// htmlToText flattens selftext_html into one line per block element.
// The listing API escapes the markup, so it is unescaped before parsing.
func htmlToText(escaped string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html.UnescapeString(escaped)))
	if err != nil {
		return ""
	}

	var lines []string
	doc.Find("p, li, pre, blockquote, h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		if sel.Is("li") && sel.Find("p").Length() > 0 {
			return
		}
		if sel.Is("blockquote") && sel.Find("p").Length() > 0 {
			return
		}
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		if sel.Is("li") {
			text = "- " + text
		}
		lines = append(lines, text)
	})

	if len(lines) == 0 {
		return strings.TrimSpace(doc.Text())
	}
	return strings.Join(lines, "\n")
}

func buildListingURL(base, community, sort, window string, limit int) (string, error) {
	community = strings.TrimPrefix(strings.TrimSpace(community), "r/")
	if community == "" {
		return "", fmt.Errorf("empty community name")
	}

	parsed, err := url.Parse(fmt.Sprintf("%s/r/%s/%s.json", base, url.PathEscape(community), url.PathEscape(sort)))
	if err != nil {
		return "", fmt.Errorf("invalid listing url for %s: %w", community, err)
	}

	query := parsed.Query()
	query.Set("limit", strconv.Itoa(limit))
	query.Set("t", window)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultLimit
	case limit > maxLimit:
		return maxLimit
	default:
		return limit
	}
}
