package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/Veraticus/edrs/internal/common"
	"github.com/Veraticus/edrs/internal/config"
	"github.com/Veraticus/edrs/internal/loader"
	"github.com/Veraticus/edrs/internal/model"
	"github.com/Veraticus/edrs/internal/narrative"
	"github.com/Veraticus/edrs/internal/pipeline"
	"github.com/Veraticus/edrs/internal/service"
	"github.com/Veraticus/edrs/internal/storage"
)

// initStorage opens the narrative cache and brings its schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func pipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Logger = slog.Default()
	if viper.IsSet("pipeline.strict_recency") {
		cfg.StrictRecency = viper.GetBool("pipeline.strict_recency")
	}
	return cfg
}

// loadPortfolio resolves the input file (explicit, saved upload, then
// samples), decodes it and runs the scoring pipeline.
func loadPortfolio(ctx context.Context, file string) (*pipeline.Portfolio, error) {
	path, err := loader.NewStore(config.DataDir()).Resolve(file)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewUserError("no input data: pass --file or run 'edrs load <file>' first", err)
		}
		return nil, err
	}

	raw, err := loader.LoadFile(ctx, path)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("cannot read %s", path), err)
	}

	p, err := pipeline.Run(raw, pipelineConfig())
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("cannot score %s", path), err)
	}
	if p.Len() == 0 {
		return nil, common.NewUserError(fmt.Sprintf("%s has no account rows", path), common.ErrNoAccounts)
	}

	slog.Debug("Scored portfolio", "file", path, "accounts", p.Len())
	return p, nil
}

// parseBuckets turns --bucket values into buckets, keeping their order.
func parseBuckets(names []string) ([]model.Bucket, error) {
	buckets := make([]model.Bucket, 0, len(names))
	for _, name := range names {
		b, err := model.ParseBucket(name)
		if err != nil {
			return nil, common.NewUserError("invalid --bucket", err)
		}
		buckets = append(buckets, b)
	}
	return buckets, nil
}

func narrativeConfig() narrative.Config {
	cfg := narrative.DefaultConfig()
	if n := viper.GetInt("narrative.concurrency"); n > 0 {
		cfg.Concurrency = n
	}
	if v := viper.GetString("narrative.prompt_version"); v != "" {
		cfg.PromptVersion = v
	}
	return cfg
}

// newGenerator wires the LLM client and the narrative cache. The returned
// cleanup releases both.
func newGenerator(ctx context.Context) (*narrative.Generator, func(), error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open narrative cache: %w", err)
	}

	client, closeClient, err := createLLMClient()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	gen := narrative.NewGenerator(client, store, narrativeConfig(), slog.Default())
	cleanup := func() {
		closeClient()
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close narrative cache", "error", err)
		}
	}
	return gen, cleanup, nil
}

// request builds a narrative request with the account's limit percentile.
func request(p *pipeline.Portfolio, s model.ScoredAccount) narrative.Request {
	pct, _ := p.LimitPercentile(s.ID())
	return narrative.Request{Account: s, Percentile: pct}
}
