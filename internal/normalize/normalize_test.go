package normalize

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"1.234.567,89", "1234567.89", true},
		{"1.000.000", "1000000", true},
		{"Rp 5.500.000,00", "5500000", true},
		{"12,5", "12.5", true},
		{"", "0", false},
		{"abc", "0", false},
		{"1,234,567", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
			assert.True(t, Amount(tt.in).Equal(got))
		})
	}
}

func TestName(t *testing.T) {
	got := Name("Nama: PT Sukses Makmur Tbk")
	assert.Equal(t, "SUKSES MAKMUR", got)
	for _, tok := range strings.Fields(got) {
		assert.NotEqual(t, "PT", tok)
		assert.NotEqual(t, "TBK", tok)
		assert.Greater(t, len(tok), 2)
	}

	assert.Equal(t, "MAJU JAYA", Name("CV. Maju Jaya (Persero) 99"))
	assert.Equal(t, "KOPERASI SEJAHTERA", Name("Koperasi Séjahtera"))
	assert.Equal(t, "", Name("PT AB"))
}

func TestNumberTokens(t *testing.T) {
	assert.Equal(t, []string{"100.000.000", "11"}, NumberTokens("DPP 100.000.000, tarif 11 %"))
	assert.Empty(t, NumberTokens("Dasar Pengenaan Pajak ..."))
}

func TestFormatRupiah(t *testing.T) {
	assert.Equal(t, "Rp 1.234.567,89", FormatRupiah(decimal.RequireFromString("1234567.89")))
	assert.Equal(t, "Rp 0,00", FormatRupiah(decimal.Zero))
	assert.Equal(t, "Rp 999,50", FormatRupiah(decimal.RequireFromString("999.5")))
}
