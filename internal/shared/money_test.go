package shared

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestLineTotal(t *testing.T) {
	price := decimal.RequireFromString("12.50")
	require.True(t, LineTotal(20, price).Equal(decimal.RequireFromString("250.00")))
	require.True(t, LineTotal(0, price).Equal(decimal.Zero))
}

func TestFormatMoney(t *testing.T) {
	require.Equal(t, "$1,234.50", FormatMoney(decimal.RequireFromString("1234.499")))
	require.Equal(t, "$0.00", FormatMoney(decimal.Zero))
}

func TestFormatNumber(t *testing.T) {
	require.Equal(t, "RO-2024-001", FormatNumber("RO", 2024, 1))
	require.Equal(t, "PO-2024-042", FormatNumber("PO", 2024, 42))
}
