// Package pipeline wires normalization, feature extraction, scoring,
// bucketing and prioritization into a single pass over a portfolio.
package pipeline

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/Veraticus/edrs/internal/common"
	"github.com/Veraticus/edrs/internal/features"
	"github.com/Veraticus/edrs/internal/model"
	"github.com/Veraticus/edrs/internal/priority"
	"github.com/Veraticus/edrs/internal/schema"
	"github.com/Veraticus/edrs/internal/scoring"
	"github.com/Veraticus/edrs/internal/table"
)

// Config selects the scoring policy, bucket thresholds and recency rule.
type Config struct {
	Logger        *slog.Logger
	Policy        scoring.Policy
	Tiers         scoring.Tiers
	StrictRecency bool
}

// DefaultConfig returns the production policy and thresholds with strict
// recency enabled.
func DefaultConfig() Config {
	return Config{
		Policy:        scoring.DefaultPolicy(),
		Tiers:         scoring.DefaultTiers(),
		StrictRecency: true,
	}
}

// Portfolio is the scored snapshot of one loaded table.
type Portfolio struct {
	byID       map[int]int
	percentile []float64
	Layout     model.Layout
	// Scored is in input order.
	Scored []model.ScoredAccount
	All    []model.ScoredAccount
	Top    []model.ScoredAccount
}

// Run scores every account in raw. The table is normalized first, so column
// names may be in any supported spelling.
func Run(raw table.Table, cfg Config) (*Portfolio, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Policy.Rules) == 0 {
		cfg.Policy = scoring.DefaultPolicy()
	}
	if len(cfg.Tiers) == 0 {
		cfg.Tiers = scoring.DefaultTiers()
	}

	t, err := schema.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize columns: %w", err)
	}

	layout, err := schema.Validate(t, schema.Options{StrictRecency: cfg.StrictRecency})
	if err != nil {
		return nil, fmt.Errorf("validate columns: %w", err)
	}

	accounts, err := schema.Decode(t, layout)
	if err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	logger.Debug("decoded accounts",
		"accounts", len(accounts),
		"pay_lags", layout.PayLags,
		"bill_periods", len(layout.BillPeriods))

	feats, err := features.Extract(layout, accounts)
	if err != nil {
		return nil, fmt.Errorf("extract features: %w", err)
	}

	scored := make([]model.ScoredAccount, len(accounts))
	for i, acct := range accounts {
		s, err := score(acct, feats[i], cfg)
		if err != nil {
			return nil, err
		}
		scored[i] = s
	}

	views := priority.Prioritize(scored)
	logger.Debug("prioritized portfolio",
		"policy", cfg.Policy.Name,
		"all", len(views.All),
		"top", len(views.Top))

	p := &Portfolio{
		Layout:     layout,
		Scored:     scored,
		All:        views.All,
		Top:        views.Top,
		byID:       make(map[int]int, len(scored)),
		percentile: percentRank(accounts),
	}
	for i, s := range scored {
		p.byID[s.ID()] = i
	}
	return p, nil
}

func score(acct model.Account, f model.Features, cfg Config) (model.ScoredAccount, error) {
	total, breakdown := cfg.Policy.Score(f)
	bucket := cfg.Tiers.Bucket(total)
	action, err := scoring.NextBestAction(bucket)
	if err != nil {
		return model.ScoredAccount{}, fmt.Errorf("account %d: %w", acct.ID, err)
	}
	return model.ScoredAccount{
		Account:   acct,
		Features:  f,
		Score:     total,
		Bucket:    bucket,
		Action:    action,
		Breakdown: breakdown,
	}, nil
}

// Len returns the number of accounts in the portfolio.
func (p *Portfolio) Len() int {
	return len(p.Scored)
}

// Find returns the scored account with the given ID.
func (p *Portfolio) Find(id int) (model.ScoredAccount, error) {
	i, ok := p.byID[id]
	if !ok {
		return model.ScoredAccount{}, fmt.Errorf("account %d: %w", id, common.ErrNotFound)
	}
	return p.Scored[i], nil
}

// LimitPercentile returns the percentile rank of the account's LIMIT_BAL
// within the portfolio, in (0, 1]. Ties share their average rank.
func (p *Portfolio) LimitPercentile(id int) (float64, error) {
	i, ok := p.byID[id]
	if !ok {
		return 0, fmt.Errorf("account %d: %w", id, common.ErrNotFound)
	}
	return p.percentile[i], nil
}

// percentRank mirrors pandas Series.rank(pct=True) with the default
// "average" tie method.
func percentRank(accounts []model.Account) []float64 {
	n := len(accounts)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return accounts[order[a]].LimitBal < accounts[order[b]].LimitBal
	})

	for start := 0; start < n; {
		end := start + 1
		for end < n && accounts[order[end]].LimitBal == accounts[order[start]].LimitBal {
			end++
		}
		// 1-based ranks start+1..end average to (start+1+end)/2.
		avg := float64(start+1+end) / 2
		for k := start; k < end; k++ {
			out[order[k]] = avg / float64(n)
		}
		start = end
	}
	return out
}
