package narrative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/edrs/internal/common"
	"github.com/Veraticus/edrs/internal/llm"
	"github.com/Veraticus/edrs/internal/model"
	"github.com/Veraticus/edrs/internal/service"
)

const defaultConcurrency = 4

// Config tunes narrative generation.
type Config struct {
	PromptVersion string
	Concurrency   int
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		PromptVersion: DefaultPromptVersion,
		Concurrency:   defaultConcurrency,
	}
}

// Request identifies the account to narrate. Percentile is the account's
// LIMIT_BAL percentile rank; zero means unknown.
type Request struct {
	Account    model.ScoredAccount
	Percentile float64
}

// Result is a generated or cached conclusion.
type Result struct {
	Narrative *model.Narrative
	Insight   string
	// Conclusion is the sanitized text ready for display.
	Conclusion string
	Cached     bool
}

// ProgressFunc is called after each account of a batch completes.
type ProgressFunc func(done, total int)

// Generator produces legal-collection conclusions, reading and writing
// through a narrative store. A nil client always yields the fallback text;
// a nil store disables caching.
type Generator struct {
	client llm.Client
	store  service.NarrativeStore
	logger *slog.Logger
	cfg    Config
}

// NewGenerator creates a generator.
func NewGenerator(client llm.Client, store service.NarrativeStore, cfg Config, logger *slog.Logger) *Generator {
	if cfg.PromptVersion == "" {
		cfg.PromptVersion = DefaultPromptVersion
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		client: client,
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// Generate returns the conclusion for one account. A cached entry with a
// matching signature is reused unless refresh is set. LLM failures fall back
// to deterministic text; only cancellation is returned as an error.
func (g *Generator) Generate(ctx context.Context, req Request, refresh bool) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	insight := Insight(req.Account, req.Percentile)
	key := model.NarrativeKey{
		AccountID: req.Account.ID(),
		Signature: Signature(req.Account.ID(), insight, g.cfg.PromptVersion),
	}

	if !refresh && g.store != nil {
		cached, err := g.store.GetNarrative(ctx, key)
		switch {
		case err == nil:
			return &Result{
				Narrative:  cached,
				Insight:    insight,
				Conclusion: Sanitize(cached.Text),
				Cached:     true,
			}, nil
		case !errors.Is(err, common.ErrNotFound):
			g.logger.Warn("narrative cache read failed",
				"account_id", key.AccountID,
				"error", err)
		}
	}

	n := &model.Narrative{
		Key:           key,
		PromptVersion: g.cfg.PromptVersion,
		Source:        model.SourceLLM,
	}

	text, err := g.compose(ctx, req.Account, insight)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		g.logger.Warn("narrative generation failed, using fallback",
			"account_id", key.AccountID,
			"error", err)
		text = Fallback(req.Account)
		n.Source = model.SourceFallback
	}
	n.Text = text

	if g.store != nil {
		if err := g.store.PutNarrative(ctx, n); err != nil {
			g.logger.Warn("narrative cache write failed",
				"account_id", key.AccountID,
				"error", err)
		}
	}

	return &Result{
		Narrative:  n,
		Insight:    insight,
		Conclusion: Sanitize(n.Text),
	}, nil
}

// compose runs the two-stage prompt chain.
func (g *Generator) compose(ctx context.Context, s model.ScoredAccount, insight string) (string, error) {
	if g.client == nil {
		return "", llm.ErrNoClient
	}

	prompt, err := DraftPrompt(NewContext(s), insight)
	if err != nil {
		return "", err
	}
	draft, err := g.client.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("draft stage: %w", err)
	}
	if strings.TrimSpace(draft) == "" {
		return "", fmt.Errorf("draft stage: %w", llm.ErrEmptyResponse)
	}

	final, err := g.client.Generate(ctx, FinalPrompt(strings.TrimSpace(draft)))
	if err != nil {
		return "", fmt.Errorf("final stage: %w", err)
	}
	final = strings.TrimSpace(final)
	if final == "" {
		return "", fmt.Errorf("final stage: %w", llm.ErrEmptyResponse)
	}
	return final, nil
}

// GenerateBatch narrates every request with bounded parallelism. Results are
// returned in request order. progress may be nil.
func (g *Generator) GenerateBatch(ctx context.Context, reqs []Request, refresh bool, progress ProgressFunc) ([]*Result, error) {
	results := make([]*Result, len(reqs))
	if len(reqs) == 0 {
		return results, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Concurrency)

	var (
		mu   sync.Mutex
		done int
	)
	for i, req := range reqs {
		eg.Go(func() error {
			res, err := g.Generate(egCtx, req, refresh)
			if err != nil {
				return fmt.Errorf("account %d: %w", req.Account.ID(), err)
			}
			results[i] = res

			if progress != nil {
				mu.Lock()
				done++
				progress(done, len(reqs))
				mu.Unlock()
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	g.logger.Debug("narrated batch", "accounts", len(reqs))
	return results, nil
}
