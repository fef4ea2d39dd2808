package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/edrs/internal/common"
	"github.com/Veraticus/edrs/internal/model"
)

// GetNarrative returns the narrative cached for key. An entry whose
// signature differs from key.Signature is stale and reported as not found.
func (s *SQLiteStorage) GetNarrative(ctx context.Context, key model.NarrativeKey) (*model.Narrative, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateKey(key); err != nil {
		return nil, err
	}

	if n := s.getCachedNarrative(key.AccountID); n != nil {
		if n.Key.Signature == key.Signature {
			return n, nil
		}
		return nil, fmt.Errorf("narrative for account %d: %w", key.AccountID, common.ErrNotFound)
	}

	n, err := s.getNarrativeTx(ctx, s.db, key.AccountID)
	if err != nil {
		return nil, err
	}
	if n.Key.Signature != key.Signature {
		return nil, fmt.Errorf("narrative for account %d: %w", key.AccountID, common.ErrNotFound)
	}
	return n, nil
}

func (s *SQLiteStorage) getNarrativeTx(ctx context.Context, q queryable, accountID int) (*model.Narrative, error) {
	var n model.Narrative

	err := q.QueryRowContext(ctx, `
		SELECT account_id, signature, text, prompt_version, source, created_at
		FROM narratives
		WHERE account_id = ?
	`, accountID).Scan(
		&n.Key.AccountID,
		&n.Key.Signature,
		&n.Text,
		&n.PromptVersion,
		&n.Source,
		&n.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("narrative for account %d: %w", accountID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get narrative: %w", err)
	}

	s.cacheNarrative(&n)
	return &n, nil
}

// PutNarrative stores a narrative, replacing any previous entry for the
// same account.
func (s *SQLiteStorage) PutNarrative(ctx context.Context, n *model.Narrative) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateNarrative(n); err != nil {
		return err
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO narratives (account_id, signature, text, prompt_version, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET
			signature = excluded.signature,
			text = excluded.text,
			prompt_version = excluded.prompt_version,
			source = excluded.source,
			created_at = excluded.created_at
	`, n.Key.AccountID, n.Key.Signature, n.Text, n.PromptVersion, n.Source, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save narrative: %w", err)
	}

	stored := *n
	s.cacheNarrative(&stored)
	return nil
}

// NarrativeStats summarizes the cache contents.
func (s *SQLiteStorage) NarrativeStats(ctx context.Context) (*model.NarrativeStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	stats := &model.NarrativeStats{ByVersion: make(map[string]int)}

	rows, err := s.db.QueryContext(ctx, `
		SELECT prompt_version, source, COUNT(*)
		FROM narratives
		GROUP BY prompt_version, source
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query narrative stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var version, source string
		var count int
		if err := rows.Scan(&version, &source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan narrative stats: %w", err)
		}
		stats.Total += count
		stats.ByVersion[version] += count
		if source == model.SourceFallback {
			stats.Fallbacks += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating narrative stats: %w", err)
	}

	if stats.Total == 0 {
		return stats, nil
	}
	if stats.Oldest, err = s.boundary(ctx, "ASC"); err != nil {
		return nil, err
	}
	if stats.Newest, err = s.boundary(ctx, "DESC"); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *SQLiteStorage) boundary(ctx context.Context, order string) (*time.Time, error) {
	var t time.Time
	query := "SELECT created_at FROM narratives ORDER BY created_at " + order + " LIMIT 1"
	if err := s.db.QueryRowContext(ctx, query).Scan(&t); err != nil {
		return nil, fmt.Errorf("failed to read narrative timestamps: %w", err)
	}
	return &t, nil
}

// ClearNarratives deletes every cached narrative and returns how many were
// removed.
func (s *SQLiteStorage) ClearNarratives(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM narratives`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear narratives: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared narratives: %w", err)
	}

	s.cacheMutex.Lock()
	s.narrativeCache = make(map[int]*model.Narrative)
	s.cacheMutex.Unlock()

	return int(n), nil
}

// getCachedNarrative retrieves a narrative from the in-process cache.
func (s *SQLiteStorage) getCachedNarrative(accountID int) *model.Narrative {
	s.cacheMutex.RLock()

	if time.Now().After(s.cacheExpiry) {
		s.cacheMutex.RUnlock()
		s.cacheMutex.Lock()
		defer s.cacheMutex.Unlock()

		// Double-check after acquiring write lock
		if time.Now().After(s.cacheExpiry) {
			s.narrativeCache = make(map[int]*model.Narrative)
		}
		return nil
	}

	n := s.narrativeCache[accountID]
	s.cacheMutex.RUnlock()
	return n
}

// cacheNarrative adds a narrative to the in-process cache.
func (s *SQLiteStorage) cacheNarrative(n *model.Narrative) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	if len(s.narrativeCache) == 0 {
		s.cacheExpiry = time.Now().Add(cacheTTL)
	}
	s.narrativeCache[n.Key.AccountID] = n
}
