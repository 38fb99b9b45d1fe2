package reddit

import (
	"context"
	"errors"
	"strings"
	"testing"

	"IdeaScanner/internal/config"
	"IdeaScanner/internal/domain"
	"IdeaScanner/internal/scanner"
)

type recordingScanner struct {
	name     string
	requests []scanner.Request
	err      error
}

func (r *recordingScanner) Name() string { return r.name }

func (r *recordingScanner) Scan(_ context.Context, req scanner.Request) ([]domain.CandidatePost, error) {
	r.requests = append(r.requests, req)
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.CandidatePost, 0, len(req.Communities))
	for _, c := range req.Communities {
		out = append(out, domain.CandidatePost{ExternalID: req.SiteName + "/" + c, Community: c})
	}
	return out, nil
}

func TestStrategySourceOverrides(t *testing.T) {
	t.Parallel()

	fake := &recordingScanner{name: "fake"}
	reg := scanner.NewRegistry()
	reg.Register(fake)

	src := NewStrategySource(reg, []config.SiteConfig{
		{Name: "a", Scanner: "fake", Communities: []string{"startups"}, Limit: 10},
		{Name: "b", Scanner: "fake", Communities: []string{"SaaS", "smallbusiness"}, Limit: 20},
	}, nil)

	posts, err := src.FetchCandidates(context.Background(), nil, 0)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(posts) != 3 || posts[0].ExternalID != "a/startups" || posts[2].ExternalID != "b/smallbusiness" {
		t.Fatalf("unexpected posts: %+v", posts)
	}
	if fake.requests[1].Limit != 20 {
		t.Fatalf("expected site limit, got %d", fake.requests[1].Limit)
	}

	fake.requests = nil
	posts, err = src.FetchCandidates(context.Background(), []string{"Entrepreneur"}, 7)
	if err != nil {
		t.Fatalf("fetch with override: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected one post per site, got %d", len(posts))
	}
	for _, req := range fake.requests {
		if req.Limit != 7 || len(req.Communities) != 1 || req.Communities[0] != "Entrepreneur" {
			t.Fatalf("override not applied: %+v", req)
		}
	}
}

func TestStrategySourceFailures(t *testing.T) {
	t.Parallel()

	if _, err := NewStrategySource(nil, nil, nil).FetchCandidates(context.Background(), nil, 0); err == nil {
		t.Fatal("expected error without registry")
	}

	reg := scanner.NewRegistry()
	reg.Register(&recordingScanner{name: "broken", err: errors.New("offline")})

	_, err := NewStrategySource(reg, []config.SiteConfig{{Name: "x", Scanner: "missing"}}, nil).
		FetchCandidates(context.Background(), nil, 0)
	if err == nil {
		t.Fatal("expected unresolved scanner error")
	}

	_, err = NewStrategySource(reg, []config.SiteConfig{{Name: "x", Scanner: "broken"}}, nil).
		FetchCandidates(context.Background(), nil, 0)
	if err == nil || !strings.Contains(err.Error(), "offline") {
		t.Fatalf("expected scan error to abort, got %v", err)
	}
}
