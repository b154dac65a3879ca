// Package pricing holds the fee tables used when a submission is received.
// Amounts are captured on the row at submission; later table edits do not change them.
package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"confhub/internal/core/types"
)

const Currency = "USD"

// Table maps a registration type or package key to its fee.
type Table map[string]types.Money

// Lookup returns the fee for key.
func (t Table) Lookup(key string) (types.Money, bool) {
	m, ok := t[key]
	return m, ok
}

// Keys returns the sorted keys, used in validation messages.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Prices is the complete fee schedule.
type Prices struct {
	Registration Table
	Sponsorship  Table
	Exhibitor    Table

	PreconferenceHourly   types.Money
	PreconferenceMinHours decimal.Decimal
}

// Default returns the published fee schedule.
func Default() Prices {
	return Prices{
		Registration: Table{
			"local":         types.NewMoney(100),
			"international": types.NewMoney(300),
			"student":       types.NewMoney(50),
			"virtual":       types.NewMoney(75),
		},
		Sponsorship: Table{
			"platinum": types.NewMoney(10000),
			"gold":     types.NewMoney(7500),
			"silver":   types.NewMoney(5000),
			"bronze":   types.NewMoney(2500),
		},
		Exhibitor: Table{
			"premium-booth":  types.NewMoney(3000),
			"standard-booth": types.NewMoney(2000),
			"table-top":      types.NewMoney(1000),
		},
		PreconferenceHourly:   types.NewMoney(2000),
		PreconferenceMinHours: decimal.NewFromInt(3),
	}
}

// PreconferenceFee is max(hours, minimum) times the hourly rate.
func (p Prices) PreconferenceFee(hours decimal.Decimal) types.Money {
	if hours.LessThan(p.PreconferenceMinHours) {
		hours = p.PreconferenceMinHours
	}
	return hours.Mul(p.PreconferenceHourly).Round(2)
}
