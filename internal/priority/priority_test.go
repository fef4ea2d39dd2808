package priority

import (
	"testing"

	"github.com/Veraticus/edrs/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(id int, bucket model.Bucket, score, dpd int, ratio float64) model.ScoredAccount {
	return model.ScoredAccount{
		Account:  model.Account{ID: id},
		Features: model.Features{DPDProxyNow: dpd, RatioBayarLast: ratio},
		Score:    score,
		Bucket:   bucket,
	}
}

func ids(view []model.ScoredAccount) []int {
	out := make([]int, len(view))
	for i, s := range view {
		out[i] = s.ID()
	}
	return out
}

func fixture() []model.ScoredAccount {
	return []model.ScoredAccount{
		scored(1, model.BucketVeryLow, 0, 0, 1.0),
		scored(2, model.BucketHigh, 4, 0, 0.5),
		scored(3, model.BucketVeryHigh, 6, 1, 0.9),
		scored(4, model.BucketVeryHigh, 8, 0, 0.1),
		scored(5, model.BucketHigh, 5, 1, 0.2),
		scored(6, model.BucketMed, 2, 0, 0.3),
		scored(7, model.BucketVeryHigh, 6, 1, 0.4),
		scored(8, model.BucketLow, 1, 0, 0.8),
	}
}

func TestPrioritize_Order(t *testing.T) {
	views := Prioritize(fixture())

	assert.Equal(t, []int{4, 7, 3, 5, 2, 6, 8, 1}, ids(views.All))
	assert.Equal(t, []int{4, 7, 3, 5, 2}, ids(views.Top))
}

func TestPrioritize_TieBreaks(t *testing.T) {
	tests := []struct {
		name  string
		input []model.ScoredAccount
		want  []int
	}{
		{
			name: "higher score first within bucket",
			input: []model.ScoredAccount{
				scored(1, model.BucketVeryHigh, 6, 0, 0.5),
				scored(2, model.BucketVeryHigh, 9, 0, 0.5),
			},
			want: []int{2, 1},
		},
		{
			name: "dpd flag breaks score ties",
			input: []model.ScoredAccount{
				scored(1, model.BucketHigh, 4, 0, 0.5),
				scored(2, model.BucketHigh, 4, 1, 0.5),
			},
			want: []int{2, 1},
		},
		{
			name: "lower ratio breaks dpd ties",
			input: []model.ScoredAccount{
				scored(1, model.BucketMed, 3, 1, 0.6),
				scored(2, model.BucketMed, 3, 1, 0.1),
			},
			want: []int{2, 1},
		},
		{
			name: "full ties keep input order",
			input: []model.ScoredAccount{
				scored(9, model.BucketLow, 1, 0, 0.5),
				scored(3, model.BucketLow, 1, 0, 0.5),
				scored(5, model.BucketLow, 1, 0, 0.5),
			},
			want: []int{9, 3, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Prioritize(tt.input).All))
		})
	}
}

func TestPrioritize_Idempotent(t *testing.T) {
	first := Prioritize(fixture())
	second := Prioritize(first.All)

	assert.Equal(t, ids(first.All), ids(second.All))
	assert.Equal(t, ids(first.Top), ids(second.Top))
}

func TestPrioritize_TopIsOrderedSubsetOfAll(t *testing.T) {
	views := Prioritize(fixture())

	pos := make(map[int]int, len(views.All))
	for i, s := range views.All {
		pos[s.ID()] = i
	}

	last := -1
	for _, s := range views.Top {
		i, ok := pos[s.ID()]
		require.True(t, ok, "top account %d missing from all", s.ID())
		assert.Greater(t, i, last)
		assert.True(t, s.Bucket.Actionable())
		last = i
	}
}

func TestPrioritize_DoesNotMutateInput(t *testing.T) {
	input := fixture()
	before := ids(input)

	Prioritize(input)

	assert.Equal(t, before, ids(input))
}

func TestPrioritize_Empty(t *testing.T) {
	views := Prioritize(nil)

	assert.Empty(t, views.All)
	assert.Empty(t, views.Top)
}

func TestFilterBuckets(t *testing.T) {
	all := Prioritize(fixture()).All

	assert.Equal(t, []int{4, 7, 3}, ids(FilterBuckets(all, model.BucketVeryHigh)))
	assert.Equal(t, []int{6, 1}, ids(FilterBuckets(all, model.BucketVeryLow, model.BucketMed)))
	assert.Len(t, FilterBuckets(all), len(all))
}

func TestHead(t *testing.T) {
	all := Prioritize(fixture()).All

	assert.Equal(t, []int{4, 7}, ids(Head(all, 2)))
	assert.Len(t, Head(all, 0), len(all))
	assert.Len(t, Head(all, 100), len(all))
}

func TestSummarize(t *testing.T) {
	summary := Summarize(Prioritize(fixture()).All)

	require.Len(t, summary, 5)

	var order []model.Bucket
	for _, row := range summary {
		order = append(order, row.Bucket)
	}
	assert.Equal(t, model.AllBuckets(), order, "rows follow bucket rank, not bucket name")

	vh := summary[0]
	assert.Equal(t, model.BucketVeryHigh, vh.Bucket)
	assert.Equal(t, 3, vh.Count)
	assert.InDelta(t, 20.0/3.0, vh.AvgScore, 1e-9)
	assert.InDelta(t, 2.0/3.0, vh.ShareLowPayment, 1e-9)
	assert.InDelta(t, 2.0/3.0, vh.ShareDPD, 1e-9)

	high := summary[1]
	assert.Equal(t, model.BucketHigh, high.Bucket)
	assert.InDelta(t, 4.5, high.AvgScore, 1e-9)
	assert.InDelta(t, 1.0, high.ShareLowPayment, 1e-9)

	assert.Equal(t, model.BucketVeryLow, summary[4].Bucket)
	assert.InDelta(t, 0.0, summary[4].ShareLowPayment, 1e-9)
}

func TestSummarize_OmitsEmptyBuckets(t *testing.T) {
	summary := Summarize([]model.ScoredAccount{scored(1, model.BucketMed, 2, 0, 1)})

	require.Len(t, summary, 1)
	assert.Equal(t, model.BucketMed, summary[0].Bucket)
}
