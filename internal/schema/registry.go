// Package schema maps loosely named input columns onto the canonical EDRS
// schema, validates the result and decodes rows into typed accounts.
package schema

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Veraticus/edrs/internal/model"
)

// UnnamedPrefix marks auto-generated index columns, which are dropped.
const UnnamedPrefix = "Unnamed"

// Rule maps normalized column keys matching Pattern to a canonical name.
// Canonical may reference the pattern's capture groups ($1).
type Rule struct {
	Pattern   *regexp.Regexp
	Canonical string
}

// Rules is the ordered registry consulted by Canonicalize; the first
// matching rule wins.
var Rules = []Rule{
	{Pattern: regexp.MustCompile(`^id$`), Canonical: model.ColID},
	{Pattern: regexp.MustCompile(`^(?:limitbal|limitbalance|limitamount|limit)$`), Canonical: model.ColLimitBal},
	{Pattern: regexp.MustCompile(`^(?:defaultpaymentnextmonth|defaultpayment)$`), Canonical: model.ColDefault},
	{Pattern: regexp.MustCompile(`^pay([0-6])$`), Canonical: "PAY_${1}"},
	{Pattern: regexp.MustCompile(`^billamt([1-6])$`), Canonical: "BILL_AMT${1}"},
	{Pattern: regexp.MustCompile(`^payamt([1-6])$`), Canonical: "PAY_AMT${1}"},
}

// Key reduces a column name to its matching key: letters and digits only,
// lower-cased.
func Key(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Canonicalize returns the canonical name for a source column and whether a
// registry rule matched. Unmatched names come back trimmed.
func Canonicalize(name string) (string, bool) {
	key := Key(name)
	for _, rule := range Rules {
		if m := rule.Pattern.FindStringSubmatchIndex(key); m != nil {
			return string(rule.Pattern.ExpandString(nil, rule.Canonical, key, m)), true
		}
	}
	return strings.TrimSpace(name), false
}

// IsUnnamed reports whether a source column is an auto-generated index.
func IsUnnamed(name string) bool {
	return strings.HasPrefix(strings.TrimSpace(name), UnnamedPrefix)
}
