package constants

import (
	"strings"
)

// Direction is the VAT direction of an invoice page relative to the operator's company.
type Direction string

const (
	// Inbound is "PPN Masukan": the operator is the buyer.
	Inbound Direction = "INBOUND"
	// Outbound is "PPN Keluaran": the operator is the seller.
	Outbound   Direction = "OUTBOUND"
	Unresolved Direction = "UNRESOLVED"
)

var allDirections = []Direction{Inbound, Outbound, Unresolved}

// Label returns the Indonesian label used on recap sheets.
func (d Direction) Label() string {
	switch d {
	case Inbound:
		return "PPN Masukan"
	case Outbound:
		return "PPN Keluaran"
	default:
		return ""
	}
}

// Table returns the storage table for confirmed records of this direction.
func (d Direction) Table() string {
	switch d {
	case Inbound:
		return "ppn_masukan"
	case Outbound:
		return "ppn_keluaran"
	default:
		return ""
	}
}

// Canonicalize maps user supplied direction labels onto a Direction.
func Canonicalize(input string) (Direction, bool) {
	if input == "" {
		return Unresolved, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]Direction{
		"ppn masukan":  Inbound,
		"ppn_masukan":  Inbound,
		"masukan":      Inbound,
		"input":        Inbound,
		"ppn keluaran": Outbound,
		"ppn_keluaran": Outbound,
		"keluaran":     Outbound,
		"output":       Outbound,
	}

	if d, ok := synonyms[normalized]; ok {
		return d, true
	}

	for _, d := range allDirections {
		if normalized == strings.ToLower(string(d)) {
			return d, d != Unresolved
		}
	}

	return Unresolved, false
}
