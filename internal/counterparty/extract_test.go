package counterparty

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
)

func TestExtractName(t *testing.T) {
	tests := []struct {
		name      string
		block     string
		want      string
		wantFound bool
	}{
		{
			name:      "labelled upper-case name",
			block:     "Nama : JOHN DOE TRADING",
			want:      "JOHN DOE TRADING",
			wantFound: true,
		},
		{
			name:      "trailing ocr noise trimmed",
			block:     "25 Nama: PT MITRA SENTOSA abc 12",
			want:      "PT MITRA SENTOSA",
			wantFound: true,
		},
		{
			name:      "table header skipped",
			block:     "Nama Barang Kena Pajak / Jasa Kena Pajak\nNama : CV KARYA BERSAMA",
			want:      "CV KARYA BERSAMA",
			wantFound: true,
		},
		{
			name:      "too short falls through to later line",
			block:     "Nama : PT\nNama : PT MAJU JAYA",
			want:      "PT MAJU JAYA",
			wantFound: true,
		},
		{
			name:      "first success wins",
			block:     "Nama : PT SATU DUA\nNama : PT TIGA EMPAT",
			want:      "PT SATU DUA",
			wantFound: true,
		},
		{
			name:  "no name line",
			block: "Alamat : Jl. Sudirman 1",
			want:  entity.NotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.block)
			assert.Equal(t, tt.want, got.Name)
			assert.Equal(t, tt.wantFound, got.NameFound)
		})
	}
}

func TestExtractTaxID(t *testing.T) {
	got := Extract("NPWP : 01.234.567.8-901.234")
	assert.Equal(t, "01.234.567.8-901.234", got.TaxID)
	assert.True(t, got.TaxIDFound)

	got = Extract("NPWP : 123456789012345")
	assert.Equal(t, "12.345.678.9-012.345", got.TaxID)

	// 14 digits is never formatted partially
	got = Extract("NPWP : 12.345.678.9-012.34")
	assert.Equal(t, entity.NotFound, got.TaxID)
	assert.False(t, got.TaxIDFound)

	// digits on non-npwp lines are ignored
	got = Extract("Telp 123456789012345")
	assert.Equal(t, entity.NotFound, got.TaxID)
}

func TestExtractFirstTaxIDLineWins(t *testing.T) {
	block := `Nama : PT MITRA SENTOSA ABADI
NPWP : 01.234.567.8-901.000
NPWP Pusat : 09.876.543.2-109.000`

	got := Extract(block)
	assert.Equal(t, "01.234.567.8-901.000", got.TaxID)
	assert.True(t, got.TaxIDFound)

	// a short first line does not block a later valid one
	got = Extract("NPWP : 01.234\nNPWP : 09.876.543.2-109.000")
	assert.Equal(t, "09.876.543.2-109.000", got.TaxID)
}

func TestFormatTaxIDKeepsFirstFifteen(t *testing.T) {
	id, ok := FormatTaxID("NPWP 0123456789012345678")
	assert.True(t, ok)
	assert.Equal(t, "01.234.567.8-901.234", id)
}
