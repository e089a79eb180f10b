package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/faktur-tracker/constants"
	"github.com/joseph-ayodele/faktur-tracker/internal/common"
	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
)

const dateLayout = "2006-01-02"

type InvoiceRepository interface {
	Save(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error)
	List(ctx context.Context, filter entity.InvoiceFilter) ([]*entity.Invoice, error)
	Delete(ctx context.Context, direction constants.Direction, id uuid.UUID) error
}

type invoiceRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewInvoiceRepository(db *DB, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepository{db: db, logger: logger}
}

// ValidateInvoice checks what a confirmed invoice must carry before it is stored.
func ValidateInvoice(inv *entity.Invoice) error {
	v := common.NewValidator().
		Field("tanggal", inv.Date, common.Required).
		Field("no_faktur", inv.Serial, common.Required, common.SerialNumber).
		Field("npwp", inv.TaxID, common.TaxID).
		Field("nama", inv.Name, common.MaxLength(255))
	if inv.Direction != constants.Inbound && inv.Direction != constants.Outbound {
		v.Field("jenis", string(inv.Direction), func(field string, value interface{}) *common.ValidationError {
			return &common.ValidationError{Field: field, Value: value, Message: "must be INBOUND or OUTBOUND"}
		})
	}
	if inv.TaxBase.IsNegative() || inv.VAT.IsNegative() {
		v.Field("dpp", inv.TaxBase.String(), func(field string, value interface{}) *common.ValidationError {
			return &common.ValidationError{Field: field, Value: value, Message: "amounts must not be negative"}
		})
	}
	return v.Error()
}

// Save inserts inv into its direction's table. A serial already present in
// that table is rejected with common.ErrDuplicate.
func (r *invoiceRepository) Save(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error) {
	if err := ValidateInvoice(inv); err != nil {
		return nil, err
	}
	table := inv.Direction.Table()

	var one int
	err := r.db.queryRow(ctx, `SELECT 1 FROM `+table+` WHERE no_faktur = ?`, inv.Serial).Scan(&one)
	switch {
	case err == nil:
		r.logger.Warn("duplicate invoice rejected", "table", table, "serial", inv.Serial)
		return nil, fmt.Errorf("%w: no faktur %s already recorded in %s", common.ErrDuplicate, inv.Serial, inv.Direction.Label())
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}

	out := *inv
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	out.CreatedAt = time.Now().UTC()

	_, err = r.db.exec(ctx,
		`INSERT INTO `+table+` (id, tanggal, keterangan, npwp, nama, no_faktur, dpp, ppn, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		out.ID.String(), out.Date.Format(dateLayout), out.Description, out.TaxID, out.Name,
		out.Serial, out.TaxBase.String(), out.VAT.String(), out.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: no faktur %s already recorded in %s", common.ErrDuplicate, inv.Serial, inv.Direction.Label())
		}
		r.logger.Error("failed to save invoice", "table", table, "serial", inv.Serial, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	r.logger.Info("invoice saved", "table", table, "id", out.ID, "serial", out.Serial)
	return &out, nil
}

// List returns invoices ordered by date, newest first. An empty direction lists both tables.
func (r *invoiceRepository) List(ctx context.Context, filter entity.InvoiceFilter) ([]*entity.Invoice, error) {
	directions := []constants.Direction{constants.Inbound, constants.Outbound}
	if filter.Direction != "" {
		if filter.Direction != constants.Inbound && filter.Direction != constants.Outbound {
			return nil, fmt.Errorf("%w: unknown direction %q", common.ErrInvalidInput, filter.Direction)
		}
		directions = []constants.Direction{filter.Direction}
	}

	var where []string
	var args []any
	if filter.From != nil {
		where = append(where, "tanggal >= ?")
		args = append(args, filter.From.Format(dateLayout))
	}
	if filter.To != nil {
		where = append(where, "tanggal <= ?")
		args = append(args, filter.To.Format(dateLayout))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var out []*entity.Invoice
	for _, d := range directions {
		rows, err := r.db.query(ctx,
			`SELECT id, tanggal, keterangan, npwp, nama, no_faktur, dpp, ppn, created_at FROM `+d.Table()+cond+` ORDER BY tanggal DESC, no_faktur`,
			args...)
		if err != nil {
			r.logger.Error("failed to list invoices", "table", d.Table(), "error", err)
			return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
		}
		invs, err := scanInvoices(rows, d)
		if err != nil {
			return nil, err
		}
		out = append(out, invs...)
	}
	return out, nil
}

func (r *invoiceRepository) Delete(ctx context.Context, direction constants.Direction, id uuid.UUID) error {
	if direction != constants.Inbound && direction != constants.Outbound {
		return fmt.Errorf("%w: unknown direction %q", common.ErrInvalidInput, direction)
	}
	res, err := r.db.exec(ctx, `DELETE FROM `+direction.Table()+` WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: invoice %s", common.ErrNotFound, id)
	}
	r.logger.Info("invoice deleted", "table", direction.Table(), "id", id)
	return nil
}

func scanInvoices(rows *sql.Rows, d constants.Direction) ([]*entity.Invoice, error) {
	defer rows.Close()
	var out []*entity.Invoice
	for rows.Next() {
		var (
			id, tanggal, dpp, ppn, created string
			inv                            = entity.Invoice{Direction: d}
		)
		if err := rows.Scan(&id, &tanggal, &inv.Description, &inv.TaxID, &inv.Name, &inv.Serial, &dpp, &ppn, &created); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
		}
		var err error
		if inv.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%w: bad id %q", common.ErrDatabase, id)
		}
		if inv.Date, err = time.Parse(dateLayout, tanggal); err != nil {
			return nil, fmt.Errorf("%w: bad date %q", common.ErrDatabase, tanggal)
		}
		if inv.TaxBase, err = decimal.NewFromString(dpp); err != nil {
			return nil, fmt.Errorf("%w: bad dpp %q", common.ErrDatabase, dpp)
		}
		if inv.VAT, err = decimal.NewFromString(ppn); err != nil {
			return nil, fmt.Errorf("%w: bad ppn %q", common.ErrDatabase, ppn)
		}
		inv.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, &inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return out, nil
}

// isUniqueViolation recognizes unique-key errors from either backend.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
