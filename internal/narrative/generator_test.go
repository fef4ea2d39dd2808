package narrative

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/edrs/internal/llm"
	"github.com/Veraticus/edrs/internal/model"
	"github.com/Veraticus/edrs/internal/testutil"
)

func TestGenerateTwoStages(t *testing.T) {
	store := testutil.SetupTestDB(t)
	client := &llm.MockClient{Replies: []string{"draf awal", "## Kesimpulan\n**Debitur** lalai; segera tagih."}}
	gen := NewGenerator(client, store, DefaultConfig(), nil)

	res, err := gen.Generate(context.Background(), Request{Account: riskyAccount(), Percentile: 0.8}, false)
	require.NoError(t, err)

	require.Len(t, client.Prompts, 2)
	assert.Contains(t, client.Prompts[0], "Ringkasan risiko:")
	assert.Contains(t, client.Prompts[1], "Draf Tahap 1:\ndraf awal")

	assert.False(t, res.Cached)
	assert.Equal(t, model.SourceLLM, res.Narrative.Source)
	assert.Equal(t, DefaultPromptVersion, res.Narrative.PromptVersion)
	assert.Equal(t, "Kesimpulan\nDebitur lalai, segera tagih.", res.Conclusion)
	assert.Equal(t, Insight(riskyAccount(), 0.8), res.Insight)

	stored, err := store.GetNarrative(context.Background(), res.Narrative.Key)
	require.NoError(t, err)
	assert.Equal(t, "## Kesimpulan\n**Debitur** lalai; segera tagih.", stored.Text)
}

func TestGenerateUsesCache(t *testing.T) {
	store := testutil.SetupTestDB(t)
	client := &llm.MockClient{Replies: []string{"draf", "final"}}
	gen := NewGenerator(client, store, DefaultConfig(), nil)
	req := Request{Account: riskyAccount(), Percentile: 0.8}

	_, err := gen.Generate(context.Background(), req, false)
	require.NoError(t, err)
	require.Equal(t, 2, client.Calls())

	res, err := gen.Generate(context.Background(), req, false)
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, "final", res.Conclusion)
	assert.Equal(t, 2, client.Calls())
}

func TestGenerateRefreshBypassesCache(t *testing.T) {
	store := testutil.SetupTestDB(t)
	client := &llm.MockClient{Replies: []string{"draf", "final"}}
	gen := NewGenerator(client, store, DefaultConfig(), nil)
	req := Request{Account: riskyAccount(), Percentile: 0.8}

	_, err := gen.Generate(context.Background(), req, false)
	require.NoError(t, err)

	res, err := gen.Generate(context.Background(), req, true)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 4, client.Calls())
}

func TestGenerateSignatureChangeMissesCache(t *testing.T) {
	store := testutil.SetupTestDB(t)
	client := &llm.MockClient{Replies: []string{"draf", "final"}}
	req := Request{Account: riskyAccount(), Percentile: 0.8}

	_, err := NewGenerator(client, store, DefaultConfig(), nil).Generate(context.Background(), req, false)
	require.NoError(t, err)

	// A new prompt version invalidates the entry.
	cfg := DefaultConfig()
	cfg.PromptVersion = "v6"
	res, err := NewGenerator(client, store, cfg, nil).Generate(context.Background(), req, false)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 4, client.Calls())

	// So does a changed insight.
	req.Percentile = 0.3
	res, err = NewGenerator(client, store, cfg, nil).Generate(context.Background(), req, false)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 6, client.Calls())
}

func TestGenerateFallback(t *testing.T) {
	tests := []struct {
		client llm.Client
		name   string
	}{
		{name: "no client", client: nil},
		{name: "provider error", client: &llm.MockClient{Err: errors.New("boom")}},
		{name: "empty draft", client: &llm.MockClient{Replies: []string{"  "}}},
		{name: "empty final", client: &llm.MockClient{Replies: []string{"draf", ""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.SetupTestDB(t)
			gen := NewGenerator(tt.client, store, DefaultConfig(), nil)

			res, err := gen.Generate(context.Background(), Request{Account: riskyAccount()}, false)
			require.NoError(t, err)
			assert.Equal(t, model.SourceFallback, res.Narrative.Source)
			assert.Equal(t, Sanitize(Fallback(riskyAccount())), res.Conclusion)

			// Fallbacks are cached like generated text.
			again, err := gen.Generate(context.Background(), Request{Account: riskyAccount()}, false)
			require.NoError(t, err)
			assert.True(t, again.Cached)
			assert.Equal(t, model.SourceFallback, again.Narrative.Source)
		})
	}
}

func TestGenerateWithoutStore(t *testing.T) {
	client := &llm.MockClient{Replies: []string{"draf", "final"}}
	gen := NewGenerator(client, nil, Config{}, nil)

	for range 2 {
		res, err := gen.Generate(context.Background(), Request{Account: safeAccount()}, false)
		require.NoError(t, err)
		assert.False(t, res.Cached)
	}
	assert.Equal(t, 4, client.Calls())
}

func TestGenerateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := NewGenerator(&llm.MockClient{Replies: []string{"x"}}, testutil.SetupTestDB(t), DefaultConfig(), nil)
	_, err := gen.Generate(ctx, Request{Account: riskyAccount()}, false)
	assert.ErrorIs(t, err, context.Canceled)
}

type failingStore struct{}

func (failingStore) GetNarrative(context.Context, model.NarrativeKey) (*model.Narrative, error) {
	return nil, errors.New("disk on fire")
}

func (failingStore) PutNarrative(context.Context, *model.Narrative) error {
	return errors.New("disk on fire")
}

func TestGenerateStoreErrorsAreNotFatal(t *testing.T) {
	client := &llm.MockClient{Replies: []string{"draf", "final"}}
	gen := NewGenerator(client, failingStore{}, DefaultConfig(), nil)

	res, err := gen.Generate(context.Background(), Request{Account: riskyAccount()}, false)
	require.NoError(t, err)
	assert.Equal(t, "final", res.Conclusion)
}

func TestGenerateBatch(t *testing.T) {
	store := testutil.SetupTestDB(t)
	client := &llm.MockClient{Respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "Draf Tahap 1:") {
			return "final", nil
		}
		return "draf", nil
	}}
	gen := NewGenerator(client, store, Config{Concurrency: 3}, nil)

	var reqs []Request
	for id := 1; id <= 10; id++ {
		acct := riskyAccount()
		acct.Account.ID = id
		reqs = append(reqs, Request{Account: acct})
	}

	var (
		mu       sync.Mutex
		progress []int
	)
	results, err := gen.GenerateBatch(context.Background(), reqs, false, func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 10, total)
		progress = append(progress, done)
	})
	require.NoError(t, err)

	require.Len(t, results, 10)
	for i, res := range results {
		assert.Equal(t, i+1, res.Narrative.Key.AccountID)
		assert.Equal(t, "final", res.Conclusion)
	}
	assert.Len(t, progress, 10)
	assert.Equal(t, 10, progress[len(progress)-1])
	assert.Equal(t, 20, client.Calls())

	stats, err := store.NarrativeStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Total)
}

func TestGenerateBatchEmpty(t *testing.T) {
	gen := NewGenerator(nil, nil, DefaultConfig(), nil)
	results, err := gen.GenerateBatch(context.Background(), nil, false, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGenerateBatchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := NewGenerator(nil, nil, DefaultConfig(), nil)
	_, err := gen.GenerateBatch(ctx, []Request{{Account: riskyAccount()}}, false, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
