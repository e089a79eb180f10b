package buktisetor

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractNTPNReceipt(t *testing.T) {
	text := "BUKTI PENERIMAAN NEGARA\nNTPN : 0A1B2C3D4E5F6G7H\nTanggal 12 Nopember 2024\nJumlah Setor Rp 1.500.000,00"
	slip := Extract(2, text)

	assert.Equal(t, 2, slip.PageIndex)
	assert.Equal(t, "0A1B2C3D4E5F6G7H", slip.PaymentCode)
	assert.Equal(t, "ntpn", slip.PaymentCodeKind)
	require.NotNil(t, slip.Date)
	assert.Equal(t, time.Date(2024, time.November, 12, 0, 0, 0, 0, time.UTC), *slip.Date)
	assert.True(t, slip.AmountFound)
	assert.True(t, slip.Amount.Equal(decimal.NewFromInt(1500000)), "amount %s", slip.Amount)
	assert.False(t, slip.NeedsManualEntry)
	assert.Equal(t, text, slip.RawText)
}

func TestExtractEmptyPageNeedsManualEntry(t *testing.T) {
	slip := Extract(0, "~~\n..")

	assert.Empty(t, slip.PaymentCode)
	assert.Nil(t, slip.Date)
	assert.False(t, slip.AmountFound)
	assert.True(t, slip.NeedsManualEntry)
}

func TestPaymentCodeAccountNumber(t *testing.T) {
	code, kind := PaymentCode("debet dari rek 123-456-7890 12")
	assert.Equal(t, "123456789012", code)
	assert.Equal(t, "rekening", kind)
}

func TestMatchMonth(t *testing.T) {
	tests := map[string]time.Month{
		"nopember": time.November,
		"november": time.November,
		"juli":     time.July,
		"juni":     time.June,
		"mei":      time.May,
		"agt":      time.August,
		"Maret":    time.March,
		"xyz":      0,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, MatchMonth(in))
		})
	}
}

func TestDateSlashFormat(t *testing.T) {
	d, ok := Date([]string{"tgl 05/03/2024"})
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), d)

	_, ok = Date([]string{"tgl 31/02/2024"})
	assert.False(t, ok)
}

func TestTransactionValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1.500.000,00", "1500000", true},
		{"1,500,000.50", "1500000", true},
		{"25,000", "25000", true},
		{"12.345,7", "12345", true},
		{"2.500", "0", false},
		{"999", "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := TransactionValue(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestAmountPrefersKeywordLines(t *testing.T) {
	blocks := Blocks("Saldo 99.000.000,00\nTotal 2.750.000,00")
	v, ok := Amount(blocks)
	require.True(t, ok)
	assert.True(t, v.Equal(decimal.NewFromInt(2750000)))
}
