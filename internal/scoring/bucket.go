package scoring

import (
	"fmt"
	"sort"

	"github.com/Veraticus/edrs/internal/common"
	"github.com/Veraticus/edrs/internal/model"
)

// Tier assigns Bucket to every score at or above Min.
type Tier struct {
	Min    int
	Bucket model.Bucket
}

// Tiers is a step function from score to bucket.
type Tiers []Tier

// DefaultTiers returns the production thresholds.
func DefaultTiers() Tiers {
	return Tiers{
		{Min: 6, Bucket: model.BucketVeryHigh},
		{Min: 4, Bucket: model.BucketHigh},
		{Min: 2, Bucket: model.BucketMed},
		{Min: 1, Bucket: model.BucketLow},
	}
}

// Floor is the bucket for scores below every tier.
const Floor = model.BucketVeryLow

// Bucket scans tiers from the highest minimum down; the first tier whose
// minimum the score reaches wins.
func (t Tiers) Bucket(score int) model.Bucket {
	sorted := append(Tiers(nil), t...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min > sorted[j].Min })

	for _, tier := range sorted {
		if score >= tier.Min {
			return tier.Bucket
		}
	}
	return Floor
}

var actions = map[model.Bucket]string{
	model.BucketVeryHigh: "Telepon atau WA hari ini dan lakukan opsi reschedule bila diperlukan",
	model.BucketHigh:     "Telepon hari ini dan follow-up dengan WA dalam 2 hari",
	model.BucketMed:      "WA reminder dan follow-up dalam 2 hari",
	model.BucketLow:      "WA otomatis atau reminder mingguan",
	model.BucketVeryLow:  "Tidak ada tindakan atau mass reminder",
}

// NoAction is the recommendation for the lowest bucket.
var NoAction = actions[model.BucketVeryLow]

// NextBestAction returns the collection recommendation for a bucket.
func NextBestAction(b model.Bucket) (string, error) {
	action, ok := actions[b]
	if !ok {
		return "", &common.ComputationError{
			Op:     "next_best_action",
			Reason: fmt.Sprintf("bucket %s is outside the enumeration", b),
		}
	}
	return action, nil
}
