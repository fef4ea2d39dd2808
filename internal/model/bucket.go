package model

import (
	"fmt"
	"strings"
)

// Bucket is an ordinal risk tier. Lower values rank higher.
type Bucket int

// Risk buckets, highest risk first.
const (
	BucketVeryHigh Bucket = iota
	BucketHigh
	BucketMed
	BucketLow
	BucketVeryLow
)

var bucketNames = [...]string{
	BucketVeryHigh: "Very High",
	BucketHigh:     "High",
	BucketMed:      "Med",
	BucketLow:      "Low",
	BucketVeryLow:  "Very Low",
}

// AllBuckets returns every bucket in rank order.
func AllBuckets() []Bucket {
	return []Bucket{BucketVeryHigh, BucketHigh, BucketMed, BucketLow, BucketVeryLow}
}

// Valid reports whether b belongs to the enumeration.
func (b Bucket) Valid() bool {
	return b >= BucketVeryHigh && b <= BucketVeryLow
}

// Rank is the sort position of the bucket, 0 being the riskiest.
func (b Bucket) Rank() int {
	return int(b)
}

// Actionable reports whether the bucket belongs in the priority call list.
func (b Bucket) Actionable() bool {
	return b == BucketVeryHigh || b == BucketHigh
}

func (b Bucket) String() string {
	if !b.Valid() {
		return fmt.Sprintf("Bucket(%d)", int(b))
	}
	return bucketNames[b]
}

// MarshalText implements encoding.TextMarshaler.
func (b Bucket) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("invalid bucket %d", int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Bucket) UnmarshalText(text []byte) error {
	parsed, err := ParseBucket(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ParseBucket parses a bucket name. Matching ignores case, spaces and
// underscores, so "very_high" and "VeryHigh" are accepted.
func ParseBucket(s string) (Bucket, error) {
	key := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	for _, b := range AllBuckets() {
		if strings.ReplaceAll(strings.ToLower(b.String()), " ", "") == key {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown bucket %q", s)
}
