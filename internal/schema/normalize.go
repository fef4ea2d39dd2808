package schema

import (
	"fmt"

	"github.com/Veraticus/edrs/internal/common"
	"github.com/Veraticus/edrs/internal/model"
	"github.com/Veraticus/edrs/internal/table"
)

// Normalize renames every column through the registry and drops unnamed
// index columns. Two source columns resolving to the same name are a
// SchemaError. Normalize is idempotent.
func Normalize(t table.Table) (table.Table, error) {
	names := make([]string, len(t.Columns))
	drop := make(map[int]bool)
	seen := make(map[string]string, len(t.Columns))

	for i, col := range t.Columns {
		if IsUnnamed(col) {
			drop[i] = true
			continue
		}

		name, _ := Canonicalize(col)
		if prev, dup := seen[name]; dup {
			return table.Table{}, common.NewSchemaError(name,
				fmt.Sprintf("source columns %q and %q both map to it", prev, col))
		}
		seen[name] = col
		names[i] = name
	}

	renamed, err := t.Rename(names)
	if err != nil {
		return table.Table{}, err
	}
	return renamed.Drop(drop), nil
}

// NormalizeColumns applies the registry to a bare header.
func NormalizeColumns(columns []string) []string {
	out := make([]string, 0, len(columns))
	for _, col := range columns {
		if IsUnnamed(col) {
			continue
		}
		name, _ := Canonicalize(col)
		out = append(out, name)
	}
	return out
}

// HasIdentity is the header acceptance predicate for sources with an
// ambiguous header row: after normalization the header must contain both
// ID and LIMIT_BAL.
func HasIdentity(columns []string) bool {
	var hasID, hasLimit bool
	for _, c := range NormalizeColumns(columns) {
		switch c {
		case model.ColID:
			hasID = true
		case model.ColLimitBal:
			hasLimit = true
		}
	}
	return hasID && hasLimit
}
