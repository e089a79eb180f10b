package export

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
	"github.com/joseph-ayodele/faktur-tracker/internal/identity"
	"github.com/joseph-ayodele/faktur-tracker/internal/normalize"
)

var reviewHeaders = []string{
	"Dokumen", "Halaman", "Status", "Jenis", "Nama Rekanan", "NPWP Rekanan", "No Faktur",
	"Tanggal", "Bulan", "DPP", "PPN", "Sumber DPP", "Sumber PPN", "Keterangan",
	"Peringatan", "Kandidat", "Preview", "Teks OCR",
}

// ReviewWorkbook lists every page of every document, successful or not,
// with the numeric candidates and raw OCR text for a human check.
func ReviewWorkbook(docs []entity.DocumentResult) ([]byte, error) {
	s, err := newSheet("Review", reviewHeaders)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		for _, p := range doc.Pages {
			s.set(1, doc.SourcePath)
			s.set(2, p.PageIndex)
			switch {
			case p.Record != nil:
				writeRecord(s, p.Record)
			case p.Error != nil:
				s.set(3, "ERROR: "+p.Error.Message)
				s.set(17, p.Error.PreviewKey)
				s.set(18, truncate(p.Error.RawText, maxCellLen))
			}
			s.next()
		}
	}
	return s.bytes(map[string]float64{"A": 30, "C": 24, "E": 32, "F": 22, "G": 22, "N": 60, "O": 48, "P": 48, "R": 80})
}

func writeRecord(s *sheet, r *entity.PageRecord) {
	status := "OK"
	if r.NeedsReview {
		status = "REVIEW"
	}
	s.set(3, status)
	s.set(4, r.Direction.Label())
	s.set(5, r.Counterparty.Name)
	s.set(6, r.Counterparty.TaxID)
	s.set(7, r.Identity.Serial)
	s.set(8, r.Identity.IssuedOn.Format(dateFormat))
	month := r.Month
	if month == "" {
		month = identity.MonthName(r.Identity.IssuedOn.Month())
	}
	s.set(9, month)
	s.setMoney(10, r.Amounts.TaxBase.InexactFloat64())
	s.setMoney(11, r.Amounts.VAT.InexactFloat64())
	s.set(12, r.Amounts.TaxBaseSource)
	s.set(13, r.Amounts.VATSource)
	s.set(14, truncate(r.Description, maxCellLen))
	s.set(15, strings.Join(r.Warnings, "; "))
	s.set(16, candidates(r.Amounts.Candidates))
	s.set(17, r.PreviewKey)
	s.set(18, truncate(r.RawText, maxCellLen))
}

func candidates(cs []entity.Candidate) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = fmt.Sprintf("%s=%s", c.Source, normalize.FormatRupiah(c.Value))
	}
	return strings.Join(parts, "; ")
}
