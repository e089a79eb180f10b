package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DepositSlip is a tax payment receipt ("bukti setor") page.
// Every page yields one, possibly with empty fields for manual entry.
type DepositSlip struct {
	ID               uuid.UUID       `json:"id"`
	PageIndex        int             `json:"page_index"`
	PaymentCode      string          `json:"payment_code"`
	PaymentCodeKind  string          `json:"payment_code_kind"`
	Date             *time.Time      `json:"date,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	AmountFound      bool            `json:"amount_found"`
	NeedsManualEntry bool            `json:"needs_manual_entry"`
	PreviewKey       string          `json:"preview_key,omitempty"`
	RawText          string          `json:"raw_text"`
	CreatedAt        time.Time       `json:"created_at"`
}
