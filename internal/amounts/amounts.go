// Package amounts resolves the tax base (DPP) and VAT (PPN) of a faktur page
// through ordered fallbacks that always end in a number.
package amounts

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
)

// Sources recorded on entity.MonetaryAmounts.
const (
	SourceAnchor       = "anchor"
	SourceMaxCandidate = "max_candidate"
	SourceSwapped      = "swapped"
	SourceNone         = "none"

	SourceOverride     = "override"
	SourceTotalPPN     = "total_ppn"
	SourcePPNLine      = "ppn_line"
	SourceSellingPrice = "selling_price"
	SourceMaxGross     = "max_gross"
	SourceEstimate     = "estimate"
)

type Config struct {
	// OutlierRatio: a large amount more than this many times the anchored DPP is ignored.
	OutlierRatio float64
	// SwapRatio enables promoting a larger amount up to this many times the
	// anchored DPP to DPP, with the anchored value reused as PPN. 0 disables.
	SwapRatio float64
	// VATRate is the statutory PPN rate.
	VATRate float64
	// LargeAmountFloor is the exclusive lower bound of the large amount detector.
	LargeAmountFloor int64
}

func DefaultConfig() Config {
	return Config{
		OutlierRatio:     5,
		VATRate:          0.11,
		LargeAmountFloor: 10_000_000,
	}
}

// Extractor holds the tuning as decimals.
type Extractor struct {
	outlierRatio decimal.Decimal
	swapRatio    decimal.Decimal
	vatRate      decimal.Decimal
	tolerance    decimal.Decimal
	floor        decimal.Decimal
}

func New(cfg Config) *Extractor {
	def := DefaultConfig()
	if cfg.OutlierRatio <= 0 {
		cfg.OutlierRatio = def.OutlierRatio
	}
	if cfg.VATRate <= 0 {
		cfg.VATRate = def.VATRate
	}
	if cfg.LargeAmountFloor <= 0 {
		cfg.LargeAmountFloor = def.LargeAmountFloor
	}
	if cfg.SwapRatio < 0 {
		cfg.SwapRatio = 0
	}
	return &Extractor{
		outlierRatio: decimal.NewFromFloat(cfg.OutlierRatio),
		swapRatio:    decimal.NewFromFloat(cfg.SwapRatio),
		vatRate:      decimal.NewFromFloat(cfg.VATRate),
		tolerance:    decimal.NewFromFloat(0.01),
		floor:        decimal.NewFromInt(cfg.LargeAmountFloor),
	}
}

// TaxBase is the outcome of the DPP stage.
// Override is set only when a larger amount was promoted over the anchored DPP.
type TaxBase struct {
	Value    decimal.Decimal
	Found    bool
	Source   string
	Override *decimal.Decimal
}

// TaxBase reads the anchored DPP and cross-checks it against the largest amount on the page.
func (e *Extractor) TaxBase(text string) TaxBase {
	lines := strings.Split(text, "\n")
	anchor, anchorOK := anchorTaxBase(lines)
	maxCandidate, maxOK := maxOf(largeAmounts(text, e.floor))

	if anchorOK && anchor.IsPositive() {
		if maxOK && maxCandidate.GreaterThan(anchor.Mul(e.outlierRatio)) {
			return TaxBase{Value: anchor, Found: true, Source: SourceAnchor}
		}
		if e.swapRatio.IsPositive() && maxOK &&
			maxCandidate.GreaterThan(anchor) &&
			maxCandidate.LessThanOrEqual(anchor.Mul(e.swapRatio)) {
			override := anchor
			return TaxBase{Value: maxCandidate, Found: true, Source: SourceSwapped, Override: &override}
		}
		return TaxBase{Value: anchor, Found: true, Source: SourceAnchor}
	}
	if maxOK {
		return TaxBase{Value: maxCandidate, Found: true, Source: SourceMaxCandidate}
	}
	return TaxBase{Value: decimal.Zero, Source: SourceNone}
}

type vatInput struct {
	text     string
	lines    []string
	taxBase  decimal.Decimal
	override *decimal.Decimal
}

// VATStrategy yields a PPN value or declines.
type VATStrategy struct {
	Name string
	Find func(e *Extractor, in vatInput) (decimal.Decimal, bool)
}

// VATStrategies run in order; the first that yields a value wins. The last never declines.
var VATStrategies = []VATStrategy{
	{Name: SourceOverride, Find: func(_ *Extractor, in vatInput) (decimal.Decimal, bool) {
		if in.override == nil {
			return decimal.Zero, false
		}
		return *in.override, true
	}},
	{Name: SourceTotalPPN, Find: func(_ *Extractor, in vatInput) (decimal.Decimal, bool) {
		return totalPPN(in.text)
	}},
	{Name: SourcePPNLine, Find: func(_ *Extractor, in vatInput) (decimal.Decimal, bool) {
		return ppnLine(in.lines)
	}},
	{Name: SourceSellingPrice, Find: func(e *Extractor, in vatInput) (decimal.Decimal, bool) {
		gross, ok := sellingPrice(in.lines)
		if !ok {
			return decimal.Zero, false
		}
		return e.vatFromGross(gross, in.taxBase)
	}},
	{Name: SourceMaxGross, Find: func(e *Extractor, in vatInput) (decimal.Decimal, bool) {
		gross, ok := maxLongNumber(in.lines)
		if !ok {
			return decimal.Zero, false
		}
		return e.vatFromGross(gross, in.taxBase)
	}},
	{Name: SourceEstimate, Find: func(e *Extractor, in vatInput) (decimal.Decimal, bool) {
		return e.Estimate(in.taxBase), true
	}},
}

// VAT runs the PPN cascade against a resolved tax base.
func (e *Extractor) VAT(text string, taxBase decimal.Decimal, override *decimal.Decimal) (decimal.Decimal, string) {
	in := vatInput{text: text, lines: strings.Split(text, "\n"), taxBase: taxBase, override: override}
	for _, s := range VATStrategies {
		if v, ok := s.Find(e, in); ok {
			return v, s.Name
		}
	}
	return e.Estimate(taxBase), SourceEstimate
}

// Estimate is round(taxBase * rate), half to even.
func (e *Extractor) Estimate(taxBase decimal.Decimal) decimal.Decimal {
	return taxBase.Mul(e.vatRate).RoundBank(0)
}

// OffRate reports a read VAT outside half to double the statutory PPN of the
// tax base. Estimated and overridden values are not judged.
func (e *Extractor) OffRate(m entity.MonetaryAmounts) bool {
	if m.VATSource == SourceEstimate || m.VATSource == SourceOverride || !m.TaxBase.IsPositive() {
		return false
	}
	expected := m.TaxBase.Mul(e.vatRate)
	return m.VAT.LessThan(expected.Div(decimal.NewFromInt(2))) || m.VAT.GreaterThan(expected.Mul(decimal.NewFromInt(2)))
}

// vatFromGross accepts gross - DPP only when it lands within 1% of DPP of the statutory PPN.
func (e *Extractor) vatFromGross(gross, taxBase decimal.Decimal) (decimal.Decimal, bool) {
	if !taxBase.IsPositive() || !gross.GreaterThan(taxBase) {
		return decimal.Zero, false
	}
	vat := gross.Sub(taxBase).RoundBank(0)
	if vat.Sub(taxBase.Mul(e.vatRate)).Abs().LessThan(taxBase.Mul(e.tolerance)) {
		return vat, true
	}
	return decimal.Zero, false
}

// Extract resolves both amounts and lists every numeric reading for review.
func (e *Extractor) Extract(text string) entity.MonetaryAmounts {
	tb := e.TaxBase(text)
	vat, vatSource := e.VAT(text, tb.Value, tb.Override)

	return entity.MonetaryAmounts{
		TaxBase:          tb.Value,
		VAT:              vat,
		VATWasOverridden: tb.Override != nil,
		TaxBaseFound:     tb.Found,
		TaxBaseSource:    tb.Source,
		VATSource:        vatSource,
		Candidates:       e.Candidates(text),
	}
}

// Candidates lists the raw readings each strategy saw, chosen or not.
func (e *Extractor) Candidates(text string) []entity.Candidate {
	lines := strings.Split(text, "\n")
	var out []entity.Candidate
	add := func(source string, v decimal.Decimal, ok bool) {
		if ok {
			out = append(out, entity.Candidate{Source: source, Value: v})
		}
	}

	v, ok := anchorTaxBase(lines)
	add("dpp_anchor", v, ok)
	for _, la := range largeAmounts(text, e.floor) {
		add("large_amount", la, true)
	}
	v, ok = totalPPN(text)
	add(SourceTotalPPN, v, ok)
	v, ok = ppnLine(lines)
	add(SourcePPNLine, v, ok)
	v, ok = sellingPrice(lines)
	add("gross_selling_price", v, ok)
	v, ok = maxLongNumber(lines)
	add("gross_max", v, ok)
	return out
}
