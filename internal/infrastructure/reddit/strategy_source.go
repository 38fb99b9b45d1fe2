package reddit

import (
	"context"
	"fmt"
	"log/slog"

	"IdeaScanner/internal/config"
	"IdeaScanner/internal/domain"
	"IdeaScanner/internal/ports"
	"IdeaScanner/internal/scanner"
)

// StrategySource implements PostSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
}

var _ ports.PostSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
	}
}

// FetchCandidates runs every configured site. Non-empty communities and a
// positive limit override the per-site settings. Any site failure aborts.
func (s *StrategySource) FetchCandidates(ctx context.Context, communities []string, limitPerCommunity int) ([]domain.CandidatePost, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("fetch candidates", "sites", len(s.sites), "communities_override", len(communities))

	var aggregated []domain.CandidatePost
	for _, site := range s.sites {
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}

		req := scanner.Request{
			SiteName:    site.Name,
			Communities: site.Communities,
			Limit:       site.Limit,
			Options:     site.Options,
		}
		if len(communities) > 0 {
			req.Communities = communities
		}
		if limitPerCommunity > 0 {
			req.Limit = limitPerCommunity
		}
		s.debug("process site", "site", site.Name, "scanner", site.Scanner, "communities", len(req.Communities))

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("scan site %s: %w", site.Name, err)
		}

		s.debug("site produced posts", "site", site.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	s.debug("strategy source done", "total_posts", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
