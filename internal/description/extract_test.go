package description

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
)

func TestExtract(t *testing.T) {
	text := `Kode dan Nomor Seri Faktur Pajak : 010.000-24.00000001
No. Nama Barang Kena Pajak / Jasa Kena Pajak
1 Jasa pemasangan DECA R unit 2 Rp 10.000.000,00
1 Jasa pemasangan DECA R unit 2 Rp 10.000.000,00
ikurangi potongan harga ~ | oh
Dasar Pengenaan Pajak 10.000.000,00`

	got := Extract(text)

	assert.Equal(t, "/ Jasa Kena Pajak || 1 Jasa pemasangan DECANTER unit Rp 10.000.000,00 || Dikurangi potongan harga", got)
	assert.Equal(t, 1, strings.Count(got, "DECANTER"))
}

func TestExtractNotFound(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "no start anchor", text: "Dasar Pengenaan Pajak 10.000.000"},
		{name: "no end anchor", text: "Nama Barang Kena Pajak\nSemen 50 sak"},
		{name: "end before start", text: "Dasar Pengenaan Pajak 1\nNama Barang Kena Pajak\nSemen"},
		{name: "only noise between anchors", text: "Nama Barang Kena Pajak\noh ka\n~~\nDasar Pengenaan Pajak"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, entity.NotFound, Extract(tt.text))
		})
	}
}

func TestCleanLine(t *testing.T) {
	assert.Equal(t, "MATERIAL INSTALASI (pipa)", CleanLine("MATER INSTALASI (pipa) ©"))
	assert.Equal(t, "Rp 1.000", CleanLine("Rp 1.000 5"))
}
