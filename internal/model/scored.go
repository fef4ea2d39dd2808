package model

// RuleContribution is the number of points one scoring rule added.
type RuleContribution struct {
	Rule   string `json:"rule"`
	Points int    `json:"points"`
}

// ScoredAccount joins an account with its features, score and classification.
type ScoredAccount struct {
	Action    string             `json:"next_best_action"`
	Breakdown []RuleContribution `json:"breakdown,omitempty"`
	Account   Account            `json:"-"`
	Features  Features           `json:"features"`
	Score     int                `json:"edrs_score"`
	Bucket    Bucket             `json:"bucket"`
}

// ID returns the account identifier.
func (s ScoredAccount) ID() int {
	return s.Account.ID
}
