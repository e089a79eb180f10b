package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/faktur-tracker/constants"
)

func TestValidateInvoiceJSON(t *testing.T) {
	valid := Invoice{
		Direction: constants.Inbound,
		Date:      time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Serial:    "010.000-24.00000001",
		TaxID:     "01.234.567.8-901.234",
		TaxBase:   decimal.NewFromInt(100000000),
		VAT:       decimal.NewFromInt(11000000),
	}

	tests := []struct {
		name    string
		mutate  func(*Invoice)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Invoice) {}},
		{name: "empty tax id allowed", mutate: func(i *Invoice) { i.TaxID = "" }},
		{name: "unresolved direction", mutate: func(i *Invoice) { i.Direction = constants.Unresolved }, wantErr: true},
		{name: "malformed serial", mutate: func(i *Invoice) { i.Serial = "0100002400000001" }, wantErr: true},
		{name: "partial tax id", mutate: func(i *Invoice) { i.TaxID = "01.234.567" }, wantErr: true},
		{name: "negative vat", mutate: func(i *Invoice) { i.VAT = decimal.NewFromInt(-1) }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := valid
			tt.mutate(&inv)
			b, err := json.Marshal(inv)
			require.NoError(t, err)

			err = ValidateInvoiceJSON(b)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInvoiceFromRecordDropsSentinels(t *testing.T) {
	rec := PageRecord{
		Direction:    constants.Outbound,
		Counterparty: Counterparty{Name: NotFound, TaxID: NotFound},
		Identity:     InvoiceIdentity{Serial: "010.000-24.00000001"},
		Description:  NotFound,
		Amounts:      MonetaryAmounts{TaxBase: decimal.NewFromInt(10), VAT: decimal.NewFromInt(1)},
	}

	inv := InvoiceFromRecord(rec)
	assert.Empty(t, inv.Name)
	assert.Empty(t, inv.TaxID)
	assert.Empty(t, inv.Description)
	assert.True(t, inv.Total().Equal(decimal.NewFromInt(11)))
}
