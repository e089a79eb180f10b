// Package export writes recap and review workbooks.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
	"github.com/joseph-ayodele/faktur-tracker/internal/repository"
)

const (
	moneyFormat = "#,##0.00"
	dateFormat  = "02/01/2006"
	// Excel rejects cells longer than 32767 characters
	maxCellLen = 32000
)

// Service produces XLSX bytes from stored records.
type Service struct {
	invoices repository.InvoiceRepository
	deposits repository.DepositRepository
	logger   *slog.Logger
}

func NewService(invoices repository.InvoiceRepository, deposits repository.DepositRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{invoices: invoices, deposits: deposits, logger: logger}
}

// ExportInvoicesXLSX returns the recap workbook for the stored invoices matching filter.
func (s *Service) ExportInvoicesXLSX(ctx context.Context, filter entity.InvoiceFilter) ([]byte, error) {
	start := time.Now()
	invs, err := s.invoices.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	b, err := InvoicesWorkbook(invs)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok", "kind", "invoices", "direction", filter.Direction, "rows", len(invs), "elapsed_ms", time.Since(start).Milliseconds())
	return b, nil
}

// ExportDepositsXLSX returns the stored deposit slips as a workbook.
func (s *Service) ExportDepositsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()
	slips, err := s.deposits.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("query deposits: %w", err)
	}
	b, err := DepositsWorkbook(slips)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok", "kind", "deposits", "rows", len(slips), "elapsed_ms", time.Since(start).Milliseconds())
	return b, nil
}

// sheet wraps a single-sheet workbook with a money style.
type sheet struct {
	f     *excelize.File
	name  string
	money int
	row   int
}

func newSheet(name string, headers []string) (*sheet, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, err
	}
	numFmt := moneyFormat
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	s := &sheet{f: f, name: name, money: money, row: 1}
	for i, h := range headers {
		s.set(i+1, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(name, "A1", last, bold)
	_ = f.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	s.row = 2
	return s, nil
}

func (s *sheet) set(col int, v any) {
	cell, _ := excelize.CoordinatesToCellName(col, s.row)
	_ = s.f.SetCellValue(s.name, cell, v)
}

func (s *sheet) setMoney(col int, v float64) {
	cell, _ := excelize.CoordinatesToCellName(col, s.row)
	_ = s.f.SetCellValue(s.name, cell, v)
	_ = s.f.SetCellStyle(s.name, cell, cell, s.money)
}

func (s *sheet) next() { s.row++ }

func (s *sheet) bytes(widths map[string]float64) ([]byte, error) {
	for col, w := range widths {
		_ = s.f.SetColWidth(s.name, col, col, w)
	}
	buf, err := s.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	_ = s.f.Close()
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
