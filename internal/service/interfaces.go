// Package service defines the interfaces shared between the scoring core's
// collaborators: persistence, narrative generation and report output.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/edrs/internal/model"
	"github.com/Veraticus/edrs/internal/priority"
)

// NarrativeStore is a content-addressed cache of generated narratives.
type NarrativeStore interface {
	// GetNarrative returns the cached narrative for key, or
	// common.ErrNotFound when the account has no entry or its signature
	// differs.
	GetNarrative(ctx context.Context, key model.NarrativeKey) (*model.Narrative, error)
	// PutNarrative stores n under its key, replacing any entry for the account.
	PutNarrative(ctx context.Context, n *model.Narrative) error
}

// Storage is the full persistence layer.
type Storage interface {
	NarrativeStore
	NarrativeStats(ctx context.Context) (*model.NarrativeStats, error)
	ClearNarratives(ctx context.Context) (int, error)
	Migrate(ctx context.Context) error
	Close() error
}

// Report is the content of one collection-priority report.
type Report struct {
	GeneratedAt time.Time
	ID          string
	Category    string
	All         []model.ScoredAccount
	Summary     []priority.BucketSummary
	// TopVeryHigh and TopHigh are the head of each bucket's ranking.
	TopVeryHigh []model.ScoredAccount
	TopHigh     []model.ScoredAccount
}

// ReportWriter publishes a report to an output.
type ReportWriter interface {
	Write(ctx context.Context, report *Report) error
}
