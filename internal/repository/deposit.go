package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/faktur-tracker/internal/common"
	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
)

type DepositRepository interface {
	Save(ctx context.Context, slip *entity.DepositSlip) (*entity.DepositSlip, error)
	List(ctx context.Context) ([]*entity.DepositSlip, error)
}

type depositRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewDepositRepository(db *DB, logger *slog.Logger) DepositRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &depositRepository{db: db, logger: logger}
}

// Save requires the payment code, date and amount; slips are not deduplicated.
func (r *depositRepository) Save(ctx context.Context, slip *entity.DepositSlip) (*entity.DepositSlip, error) {
	v := common.NewValidator().
		Field("kode_setor", slip.PaymentCode, common.Required, common.MaxLength(64)).
		Field("tanggal", slip.Date, common.Required)
	if !slip.Amount.IsPositive() {
		v.Field("jumlah", slip.Amount.String(), func(field string, value interface{}) *common.ValidationError {
			return &common.ValidationError{Field: field, Value: value, Message: "must be positive"}
		})
	}
	if err := v.Error(); err != nil {
		return nil, err
	}

	out := *slip
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	out.CreatedAt = time.Now().UTC()
	_, err := r.db.exec(ctx,
		`INSERT INTO bukti_setor (id, kode_setor, jenis_kode, tanggal, jumlah, preview_key, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		out.ID.String(), out.PaymentCode, out.PaymentCodeKind, out.Date.Format(dateLayout),
		out.Amount.String(), out.PreviewKey, out.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		r.logger.Error("failed to save deposit slip", "kode_setor", out.PaymentCode, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	r.logger.Info("deposit slip saved", "id", out.ID, "kode_setor", out.PaymentCode)
	return &out, nil
}

// List returns slips newest first.
func (r *depositRepository) List(ctx context.Context) ([]*entity.DepositSlip, error) {
	rows, err := r.db.query(ctx,
		`SELECT id, kode_setor, jenis_kode, tanggal, jumlah, preview_key, created_at FROM bukti_setor ORDER BY tanggal DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.DepositSlip
	for rows.Next() {
		var (
			id, tanggal, jumlah, created string
			slip                         entity.DepositSlip
		)
		if err := rows.Scan(&id, &slip.PaymentCode, &slip.PaymentCodeKind, &tanggal, &jumlah, &slip.PreviewKey, &created); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
		}
		slip.ID, _ = uuid.Parse(id)
		if d, err := time.Parse(dateLayout, tanggal); err == nil {
			slip.Date = &d
		}
		if slip.Amount, err = decimal.NewFromString(jumlah); err != nil {
			return nil, fmt.Errorf("%w: bad jumlah %q", common.ErrDatabase, jumlah)
		}
		slip.AmountFound = true
		slip.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, &slip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return out, nil
}
