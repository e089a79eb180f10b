package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/faktur-tracker/constants"
)

// Counterparty is the other party on the invoice.
type Counterparty struct {
	Name       string `json:"name"`
	TaxID      string `json:"tax_id"`
	NameFound  bool   `json:"name_found"`
	TaxIDFound bool   `json:"tax_id_found"`
}

// InvoiceIdentity is the faktur serial number and transaction date.
type InvoiceIdentity struct {
	Serial   string    `json:"serial"`
	IssuedOn time.Time `json:"issued_on"`
}

// Candidate is one numeric reading produced while resolving amounts.
type Candidate struct {
	Source string          `json:"source"`
	Value  decimal.Decimal `json:"value"`
}

// MonetaryAmounts holds the tax base (DPP) and VAT (PPN).
// TaxBaseFound is false when TaxBase is zero because nothing was found,
// as opposed to a genuine zero on the document.
type MonetaryAmounts struct {
	TaxBase          decimal.Decimal `json:"tax_base"`
	VAT              decimal.Decimal `json:"vat"`
	VATWasOverridden bool            `json:"vat_was_overridden"`
	TaxBaseFound     bool            `json:"tax_base_found"`
	TaxBaseSource    string          `json:"tax_base_source"`
	VATSource        string          `json:"vat_source"`
	Candidates       []Candidate     `json:"candidates,omitempty"`
}

// Total is DPP plus PPN.
func (m MonetaryAmounts) Total() decimal.Decimal {
	return m.TaxBase.Add(m.VAT)
}

// Invoice is a confirmed faktur ready for persistence and recap export.
type Invoice struct {
	ID          uuid.UUID           `json:"id"`
	Direction   constants.Direction `json:"direction"`
	Date        time.Time           `json:"date"`
	Description string              `json:"description"`
	TaxID       string              `json:"tax_id"`
	Name        string              `json:"name"`
	Serial      string              `json:"serial"`
	TaxBase     decimal.Decimal     `json:"tax_base"`
	VAT         decimal.Decimal     `json:"vat"`
	CreatedAt   time.Time           `json:"created_at"`
}

// Total is DPP plus PPN.
func (i Invoice) Total() decimal.Decimal {
	return i.TaxBase.Add(i.VAT)
}

// InvoiceFromRecord converts a reviewed page record into a confirmed invoice.
// Sentinel "not found" fields become empty strings.
func InvoiceFromRecord(r PageRecord) Invoice {
	inv := Invoice{
		Direction:   r.Direction,
		Date:        r.Identity.IssuedOn,
		Description: r.Description,
		Serial:      r.Identity.Serial,
		TaxBase:     r.Amounts.TaxBase,
		VAT:         r.Amounts.VAT,
	}
	if r.Counterparty.NameFound {
		inv.Name = r.Counterparty.Name
	}
	if r.Counterparty.TaxIDFound {
		inv.TaxID = r.Counterparty.TaxID
	}
	if inv.Description == NotFound {
		inv.Description = ""
	}
	return inv
}

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	Direction constants.Direction
	From      *time.Time
	To        *time.Time
}
