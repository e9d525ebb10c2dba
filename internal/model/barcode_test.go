package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBarcode(t *testing.T) {
	assert.Equal(t, "000000000001", FormatBarcode(1, 12))
	assert.Equal(t, "000042", FormatBarcode(42, 6))
	assert.Equal(t, "999999", FormatBarcode(999999, 6))
	// Ids wider than the pad are kept intact rather than truncated.
	assert.Equal(t, "1234567", FormatBarcode(1234567, 6))
}
