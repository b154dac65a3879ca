package stores_repo

import (
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// GRN lines may record a zero delivery; only delivered > 0 reaches the ledger.
func TestSchema_GRNLinesAllowZeroDelivery(t *testing.T) {
	raw, err := os.ReadFile("../../../../../migrations/0001_init.sql")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`quantity_delivered\s+BIGINT NOT NULL CHECK \(quantity_delivered >= 0\)`), string(raw))
	assert.NotRegexp(t, regexp.MustCompile(`quantity_delivered > 0`), string(raw))
}
