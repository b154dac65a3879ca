// Package numerator defines the contract for human-readable reference numbers
// such as REG-2026-00042 or GRN-2026-00007.
package numerator

import (
	"context"
	"time"
)

// Reference prefixes.
const (
	PrefixRegistration  = "REG"
	PrefixAbstract      = "ABS"
	PrefixSponsorship   = "SPN"
	PrefixExhibitor     = "EXH"
	PrefixPreconference = "PCM"
	PrefixGRN           = "GRN"
	PrefixIssuance      = "SIV"
)

// Reset periods.
const (
	ResetNever = ""
	ResetYear  = "year"
	ResetMonth = "month"
)

// Config describes one numbering series.
type Config struct {
	Prefix      string
	IncludeYear bool
	PadWidth    int
	ResetPeriod string
}

// DefaultConfig is PREFIX-YYYY-NNNNN, restarting every calendar year.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: ResetYear,
	}
}

// Generator hands out the next number of a series. Called inside the
// caller's transaction, a rolled back submission gives its number back.
type Generator interface {
	Next(ctx context.Context, cfg Config, at time.Time) (string, error)
}
