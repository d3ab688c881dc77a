package money

import (
	"testing"

	"github.com/calebreyes/tradepost-backend/pkg/enums"
	"github.com/stretchr/testify/require"
)

func TestFromCents(t *testing.T) {
	d := FromCents(2000, enums.CurrencyUSD)
	require.Equal(t, "20", d.String())
	require.Equal(t, "20.00", d.StringFixed(2))
}

func TestLineTotalCents(t *testing.T) {
	require.Equal(t, int64(2000), LineTotalCents(1000, 2))
	require.Equal(t, int64(0), LineTotalCents(599, 0))
}

func TestFormat(t *testing.T) {
	require.Equal(t, "20.00", Format(2000, enums.CurrencyUSD))
	require.Equal(t, "5.99", Format(599, enums.CurrencyUSD))
	require.Equal(t, "0.00", Format(0, enums.CurrencyUSD))
}
