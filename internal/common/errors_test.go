package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaError(t *testing.T) {
	tests := []struct {
		err  *SchemaError
		want string
	}{
		{err: &SchemaError{Column: "PAY_0", Row: 3, Reason: "not a number"}, want: `schema error: row 3, column "PAY_0": not a number`},
		{err: &SchemaError{Column: "label", Reason: "missing"}, want: `schema error: column "label": missing`},
		{err: &SchemaError{Reason: "no header row"}, want: "schema error: no header row"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
		assert.ErrorIs(t, tt.err, ErrSchema)
	}
}

func TestComputationError(t *testing.T) {
	err := &ComputationError{Op: "bucket", ID: 12, Reason: "score out of range"}
	assert.Equal(t, "computation error in bucket for account 12: score out of range", err.Error())
	assert.ErrorIs(t, err, ErrComputation)
	assert.NotErrorIs(t, err, ErrSchema)
}

func TestUserError(t *testing.T) {
	err := NewUserError("cannot read portfolio.csv", NewSchemaError("LIMIT_BAL", "missing"))
	assert.Equal(t, `cannot read portfolio.csv: schema error: column "LIMIT_BAL": missing`, err.Error())
	assert.ErrorIs(t, err, ErrSchema)

	var ue *UserError
	assert.True(t, errors.As(err, &ue))
	assert.Equal(t, "cannot read portfolio.csv", ue.UserMessage)

	assert.Equal(t, "nothing to do", NewUserError("nothing to do", nil).Error())
}
