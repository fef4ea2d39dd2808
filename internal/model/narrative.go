package model

import "time"

// Narrative sources.
const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

// NarrativeKey addresses a cached narrative. Signature is a content hash of
// the account insight and the prompt version, so a changed account or prompt
// misses the cache.
type NarrativeKey struct {
	Signature string
	AccountID int
}

// Narrative is a generated legal-collection conclusion for one account.
type Narrative struct {
	CreatedAt     time.Time    `json:"created_at"`
	Text          string       `json:"text"`
	PromptVersion string       `json:"prompt_version"`
	Source        string       `json:"source"`
	Key           NarrativeKey `json:"-"`
}

// NarrativeStats summarizes the narrative cache.
type NarrativeStats struct {
	Oldest    *time.Time
	Newest    *time.Time
	ByVersion map[string]int
	Total     int
	Fallbacks int
}
