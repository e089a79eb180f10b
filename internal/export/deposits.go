package export

import (
	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
)

var depositHeaders = []string{"Halaman", "Kode Setor", "Jenis Kode", "Tanggal", "Jumlah", "Perlu Input Manual", "Preview"}

// DepositsWorkbook lists deposit slips; missing fields stay blank for manual entry.
func DepositsWorkbook(slips []*entity.DepositSlip) ([]byte, error) {
	s, err := newSheet("Bukti Setor", depositHeaders)
	if err != nil {
		return nil, err
	}
	for _, d := range slips {
		if d.PageIndex > 0 {
			s.set(1, d.PageIndex)
		}
		s.set(2, d.PaymentCode)
		s.set(3, d.PaymentCodeKind)
		if d.Date != nil {
			s.set(4, d.Date.Format(dateFormat))
		}
		if d.AmountFound {
			s.setMoney(5, d.Amount.InexactFloat64())
		}
		if d.NeedsManualEntry {
			s.set(6, "YA")
		}
		s.set(7, d.PreviewKey)
		s.next()
	}
	return s.bytes(map[string]float64{"B": 24, "C": 12, "D": 12, "E": 18, "F": 18, "G": 40})
}
