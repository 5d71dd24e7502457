package fee

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	got, err := Compute("20000000000", "21000", decimal.NewFromInt(1000))
	require.NoError(t, err)
	require.Equal(t, "0.00042", got.Native.String())
	require.Equal(t, "0.42", got.Quote.String())
}

func TestComputeKeepsPrecision(t *testing.T) {
	got, err := Compute("1", "1", decimal.RequireFromString("3456.789"))
	require.NoError(t, err)
	require.Equal(t, "0.000000000000000001", got.Native.String())
	require.Equal(t, "0.000000000000003456789", got.Quote.String())
}

func TestComputeRejectsBadInput(t *testing.T) {
	cases := []struct {
		name     string
		gasPrice string
		gasUsed  string
	}{
		{"empty price", "", "21000"},
		{"garbage used", "1", "abc"},
		{"negative price", "-5", "21000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compute(tc.gasPrice, tc.gasUsed, decimal.NewFromInt(1))
			require.True(t, errors.Is(err, ErrInvalidAmount))
		})
	}
}
