package export

import (
	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
)

// RecapHeaders are the columns of the PPN recap sheet.
var RecapHeaders = []string{
	"Tanggal", "Jenis", "Keterangan", "NPWP Rekanan", "Nama Rekanan", "No Faktur", "DPP", "PPN", "Jumlah",
}

// InvoicesWorkbook lays out confirmed invoices in the recap format.
func InvoicesWorkbook(invs []*entity.Invoice) ([]byte, error) {
	s, err := newSheet("Rekap PPN", RecapHeaders)
	if err != nil {
		return nil, err
	}
	for _, inv := range invs {
		s.set(1, inv.Date.Format(dateFormat))
		s.set(2, inv.Direction.Label())
		s.set(3, truncate(inv.Description, maxCellLen))
		s.set(4, inv.TaxID)
		s.set(5, inv.Name)
		s.set(6, inv.Serial)
		s.setMoney(7, inv.TaxBase.InexactFloat64())
		s.setMoney(8, inv.VAT.InexactFloat64())
		s.setMoney(9, inv.Total().InexactFloat64())
		s.next()
	}
	return s.bytes(map[string]float64{"A": 12, "B": 14, "C": 60, "D": 22, "E": 32, "F": 22, "G": 16, "H": 16, "I": 16})
}
