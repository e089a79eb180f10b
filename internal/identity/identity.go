package identity

import (
	"github.com/joseph-ayodele/faktur-tracker/internal/common"
	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
)

// Extract finds both identity fields. A page missing either is unusable,
// so the error names the first missing one.
func Extract(text string) (entity.InvoiceIdentity, error) {
	serial, _ := Serial(text)
	date, _, dateOK := Date(text)

	id := entity.InvoiceIdentity{Serial: serial}
	if dateOK {
		id.IssuedOn = date
	}
	if serial == "" {
		return id, common.ErrSerialMissing
	}
	if !dateOK {
		return id, common.ErrDateMissing
	}
	return id, nil
}
