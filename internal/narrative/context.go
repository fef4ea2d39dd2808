// Package narrative builds per-account insight text and legal-collection
// conclusions, generated through an LLM in two stages with a cache and a
// deterministic fallback.
package narrative

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Veraticus/edrs/internal/model"
)

// Context is the flat fact sheet handed to the LLM. Field order is the
// serialized order.
type Context struct {
	ID             int     `json:"ID"`
	LimitBal       int64   `json:"LIMIT_BAL"`
	Bucket         string  `json:"bucket"`
	Score          int     `json:"edrs_score"`
	DPDProxyNow    int     `json:"dpd_proxy_now"`
	RatioBayarLast float64 `json:"ratio_bayar_last"`
	CountTelat3m   int     `json:"count_telat_3m"`
	CountTelat6m   int     `json:"count_telat_6m"`
	MaxTunggakan6m int     `json:"max_tunggakan_6m"`
	Action         string  `json:"next_best_action"`
}

// NewContext extracts the fact sheet of a scored account.
func NewContext(s model.ScoredAccount) Context {
	return Context{
		ID:             s.ID(),
		LimitBal:       int64(s.Account.LimitBal),
		Bucket:         s.Bucket.String(),
		Score:          s.Score,
		DPDProxyNow:    s.Features.DPDProxyNow,
		RatioBayarLast: s.Features.RatioBayarLast,
		CountTelat3m:   s.Features.CountTelat3m,
		CountTelat6m:   s.Features.CountTelat6m,
		MaxTunggakan6m: s.Features.MaxTunggakan6m,
		Action:         s.Action,
	}
}

// JSON renders the context without HTML escaping.
func (c Context) JSON() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return "", fmt.Errorf("failed to encode narrative context: %w", err)
	}
	return string(bytes.TrimSpace(buf.Bytes())), nil
}
