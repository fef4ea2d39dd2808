// Package priority orders scored accounts into collection views.
package priority

import (
	"sort"

	"github.com/Veraticus/edrs/internal/model"
	"github.com/Veraticus/edrs/internal/scoring"
)

// Views holds the full ranking and the priority call list.
type Views struct {
	All []model.ScoredAccount
	Top []model.ScoredAccount
}

// Prioritize ranks accounts by bucket, then score, then the dpd flag, then
// the last-payment ratio. The input slice is not modified.
func Prioritize(scored []model.ScoredAccount) Views {
	all := make([]model.ScoredAccount, len(scored))
	copy(all, scored)
	sort.SliceStable(all, func(i, j int) bool {
		return less(all[i], all[j])
	})

	top := make([]model.ScoredAccount, 0, len(all))
	for _, s := range all {
		if s.Bucket.Actionable() {
			top = append(top, s)
		}
	}
	return Views{All: all, Top: top}
}

func less(a, b model.ScoredAccount) bool {
	if a.Bucket.Rank() != b.Bucket.Rank() {
		return a.Bucket.Rank() < b.Bucket.Rank()
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Features.DPDProxyNow != b.Features.DPDProxyNow {
		return a.Features.DPDProxyNow > b.Features.DPDProxyNow
	}
	return a.Features.RatioBayarLast < b.Features.RatioBayarLast
}

// FilterBuckets keeps accounts in any of the given buckets, preserving order.
// With no buckets the view is returned unchanged.
func FilterBuckets(view []model.ScoredAccount, buckets ...model.Bucket) []model.ScoredAccount {
	if len(buckets) == 0 {
		return view
	}
	want := make(map[model.Bucket]bool, len(buckets))
	for _, b := range buckets {
		want[b] = true
	}

	out := make([]model.ScoredAccount, 0, len(view))
	for _, s := range view {
		if want[s.Bucket] {
			out = append(out, s)
		}
	}
	return out
}

// Head returns at most the first n accounts. n <= 0 means no limit.
func Head(view []model.ScoredAccount, n int) []model.ScoredAccount {
	if n <= 0 || n >= len(view) {
		return view
	}
	return view[:n]
}

// BucketSummary aggregates one bucket of a view.
type BucketSummary struct {
	Bucket          model.Bucket `json:"bucket"`
	Count           int          `json:"n"`
	AvgScore        float64      `json:"avg_score"`
	ShareLowPayment float64      `json:"share_ratio_below_0_7"`
	ShareDPD        float64      `json:"share_dpd"`
}

// Summarize aggregates a view per bucket. Rows follow bucket rank, Very High
// first, not alphabetical bucket names. Buckets with no accounts are omitted.
func Summarize(view []model.ScoredAccount) []BucketSummary {
	type acc struct {
		n, score, low, dpd int
	}
	totals := make(map[model.Bucket]*acc)
	for _, s := range view {
		a, ok := totals[s.Bucket]
		if !ok {
			a = &acc{}
			totals[s.Bucket] = a
		}
		a.n++
		a.score += s.Score
		if s.Features.RatioBayarLast < scoring.PaymentRatioFloor {
			a.low++
		}
		if s.Features.DPDProxyNow >= 1 {
			a.dpd++
		}
	}

	var out []BucketSummary
	for _, b := range model.AllBuckets() {
		a, ok := totals[b]
		if !ok {
			continue
		}
		n := float64(a.n)
		out = append(out, BucketSummary{
			Bucket:          b,
			Count:           a.n,
			AvgScore:        float64(a.score) / n,
			ShareLowPayment: float64(a.low) / n,
			ShareDPD:        float64(a.dpd) / n,
		})
	}
	return out
}
