package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/faktur-tracker/constants"
	"github.com/joseph-ayodele/faktur-tracker/internal/common"
	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{Driver: DriverSQLite}, nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(db.Close)
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func invoice(dir constants.Direction, serial string, date time.Time) *entity.Invoice {
	return &entity.Invoice{
		Direction:   dir,
		Date:        date,
		Description: "Jasa pemasangan",
		TaxID:       "01.234.567.8-901.000",
		Name:        "PT MITRA SENTOSA",
		Serial:      serial,
		TaxBase:     decimal.RequireFromString("20000000"),
		VAT:         decimal.RequireFromString("2200000.50"),
	}
}

func TestRebind(t *testing.T) {
	pg := &DB{driver: DriverPostgres}
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b = $2", pg.rebind("SELECT 1 WHERE a = ? AND b = ?"))

	lite := &DB{driver: DriverSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	assert.NoError(t, db.Migrate(context.Background()))
	assert.NoError(t, db.HealthCheck(context.Background(), time.Second))
}

func TestInvoiceSaveAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepository(openTestDB(t), nil)

	saved, err := repo.Save(ctx, invoice(constants.Inbound, "010.000-24.00000001", day(2024, 3, 15)))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	_, err = repo.Save(ctx, invoice(constants.Inbound, "010.000-24.00000002", day(2024, 4, 1)))
	require.NoError(t, err)
	_, err = repo.Save(ctx, invoice(constants.Outbound, "010.000-24.00000003", day(2024, 2, 1)))
	require.NoError(t, err)

	inbound, err := repo.List(ctx, entity.InvoiceFilter{Direction: constants.Inbound})
	require.NoError(t, err)
	require.Len(t, inbound, 2)
	assert.Equal(t, "010.000-24.00000002", inbound[0].Serial)
	assert.True(t, inbound[1].VAT.Equal(decimal.RequireFromString("2200000.5")))
	assert.Equal(t, day(2024, 3, 15), inbound[1].Date)

	from := day(2024, 3, 1)
	filtered, err := repo.List(ctx, entity.InvoiceFilter{From: &from})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	all, err := repo.List(ctx, entity.InvoiceFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestInvoiceListOrdersGeneratedLedger(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepository(openTestDB(t), nil)
	fake := gofakeit.New(42)

	counts := map[constants.Direction]int{}
	for i := 1; i <= 30; i++ {
		dir := constants.Inbound
		if fake.Bool() {
			dir = constants.Outbound
		}
		inv := invoice(dir, fmt.Sprintf("010.000-24.%08d", i), fake.DateRange(day(2024, 1, 1), day(2024, 12, 31)))
		inv.Name = fake.Company()
		inv.TaxBase = decimal.NewFromInt(int64(fake.Number(1_000_000, 500_000_000)))
		_, err := repo.Save(ctx, inv)
		require.NoError(t, err)
		counts[dir]++
	}

	for dir, n := range counts {
		got, err := repo.List(ctx, entity.InvoiceFilter{Direction: dir})
		require.NoError(t, err)
		require.Len(t, got, n)
		for i := 1; i < len(got); i++ {
			assert.False(t, got[i].Date.After(got[i-1].Date), "rows must be newest first")
		}
	}
}

func TestInvoiceDuplicateSerialPerDirection(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepository(openTestDB(t), nil)
	serial := "010.000-24.00000001"

	_, err := repo.Save(ctx, invoice(constants.Inbound, serial, day(2024, 3, 15)))
	require.NoError(t, err)

	_, err = repo.Save(ctx, invoice(constants.Inbound, serial, day(2024, 3, 16)))
	assert.ErrorIs(t, err, common.ErrDuplicate)

	// the other direction is a separate ledger
	_, err = repo.Save(ctx, invoice(constants.Outbound, serial, day(2024, 3, 15)))
	assert.NoError(t, err)
}

func TestInvoiceSaveValidation(t *testing.T) {
	repo := NewInvoiceRepository(openTestDB(t), nil)

	tests := map[string]*entity.Invoice{
		"unresolved direction": invoice(constants.Unresolved, "010.000-24.00000001", day(2024, 1, 1)),
		"missing date":         invoice(constants.Inbound, "010.000-24.00000001", time.Time{}),
		"malformed serial":     invoice(constants.Inbound, "not found", day(2024, 1, 1)),
	}
	for name, inv := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Save(context.Background(), inv)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestInvoiceDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepository(openTestDB(t), nil)

	saved, err := repo.Save(ctx, invoice(constants.Outbound, "010.000-24.00000009", day(2024, 5, 5)))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, constants.Outbound, saved.ID))
	assert.ErrorIs(t, repo.Delete(ctx, constants.Outbound, saved.ID), common.ErrNotFound)
}

func TestDepositSaveAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewDepositRepository(openTestDB(t), nil)
	d := day(2024, 11, 12)

	_, err := repo.Save(ctx, &entity.DepositSlip{PaymentCode: "0A1B2C3D4E5F6G7H", PaymentCodeKind: "ntpn", Date: &d, Amount: decimal.NewFromInt(1500000), AmountFound: true})
	require.NoError(t, err)

	_, err = repo.Save(ctx, &entity.DepositSlip{PaymentCode: "X", Amount: decimal.NewFromInt(5000)})
	assert.ErrorIs(t, err, common.ErrValidation)

	slips, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, slips, 1)
	assert.Equal(t, "ntpn", slips[0].PaymentCodeKind)
	assert.True(t, slips[0].Amount.Equal(decimal.NewFromInt(1500000)))
	require.NotNil(t, slips[0].Date)
	assert.Equal(t, d, *slips[0].Date)
}

func TestExtractJobLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewExtractJobRepository(openTestDB(t), nil)
	id := uuid.New()

	job, err := repo.Create(ctx, id, "/in/a.pdf", constants.KindFaktur, constants.PDF)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusQueued), job.Status)

	require.NoError(t, repo.Start(ctx, id))
	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusRunning), got.Status)
	assert.Nil(t, got.FinishedAt)

	require.NoError(t, repo.FinishSuccess(ctx, id, JobOutcome{PageCount: 3, FailedPages: 1, Result: map[string]int{"records": 2}}))
	got, err = repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusPartial), got.Status)
	assert.Equal(t, 3, got.PageCount)
	assert.JSONEq(t, `{"records":2}`, string(got.ResultJSON))
	assert.NotNil(t, got.FinishedAt)
}

func TestExtractJobFailureAndMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewExtractJobRepository(openTestDB(t), nil)
	id := uuid.New()

	_, err := repo.Create(ctx, id, "/in/b.png", constants.KindBuktiSetor, constants.IMAGE)
	require.NoError(t, err)
	require.NoError(t, repo.FinishFailure(ctx, id, "ocr failed"))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusFailed), got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "ocr failed", *got.ErrorMessage)

	_, err = repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, repo.Start(ctx, uuid.New()), common.ErrNotFound)
}
