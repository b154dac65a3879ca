package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPreconferenceFee(t *testing.T) {
	p := Default()

	tests := []struct {
		hours string
		want  string
	}{
		{"3", "6000"},
		{"4.5", "9000"},
		{"1", "6000"}, // clamped to the three-hour minimum
	}

	for _, tt := range tests {
		t.Run(tt.hours, func(t *testing.T) {
			got := p.PreconferenceFee(decimal.RequireFromString(tt.hours))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestTable_Lookup(t *testing.T) {
	p := Default()

	fee, ok := p.Registration.Lookup("local")
	assert.True(t, ok)
	assert.Equal(t, "100", fee.String())

	_, ok = p.Sponsorship.Lookup("diamond")
	assert.False(t, ok)

	assert.Equal(t, []string{"premium-booth", "standard-booth", "table-top"}, p.Exhibitor.Keys())
}
