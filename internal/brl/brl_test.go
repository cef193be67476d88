package brl

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1.234,56", "1234.56"},
		{"-12,00", "-12"},
		{"", "0"},
		{"0,01", "0.01"},
		{"1.000.000,99", "1000000.99"},
		{"  7,50  ", "7.5"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseAmount(tt.raw)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", got, tt.want)
		})
	}
}

func TestParseAmountInvalid(t *testing.T) {
	_, err := ParseAmount("abc")
	assert.Error(t, err)
}

func TestParseOptionalAmount(t *testing.T) {
	got, err := ParseOptionalAmount("")
	require.NoError(t, err)
	assert.Nil(t, got, "empty input must stay absent on the statement path")

	got, err = ParseOptionalAmount("-1.500,25")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(decimal.RequireFromString("-1500.25")))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("05-03-2025")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("2025-03-05")
	assert.Error(t, err)

	_, err = ParseDate("31-02-2025")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234.56", "R$ 1.234,56"},
		{"0", "R$ 0,00"},
		{"-12", "R$ -12,00"},
		{"1000000.5", "R$ 1.000.000,50"},
		{"999.999", "R$ 1.000,00"},
		{"0.125", "R$ 0,12"}, // banker's rounding
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(decimal.RequireFromString(tt.in)))
		})
	}
}
