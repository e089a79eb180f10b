// Package classify decides whether a faktur page is input VAT (the operator
// bought) or output VAT (the operator sold) by locating the operator's own
// company name relative to the buyer section.
package classify

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/faktur-tracker/constants"
	"github.com/joseph-ayodele/faktur-tracker/internal/fuzzy"
	"github.com/joseph-ayodele/faktur-tracker/internal/normalize"
)

var reBuyerAnchor = regexp.MustCompile(`(?i)Pembeli\s+(?:Barang\s+)?Kena\s+Pajak`)

// Result is the classification of one page.
// CounterpartyBlock is empty with WholeDocument set when the buyer anchor
// was missing or the counterparty side of it was blank; downstream stages
// then search the full page text.
type Result struct {
	Direction         constants.Direction
	CounterpartyBlock string
	SelfBlock         string
	WholeDocument     bool
	MatchedLine       string
	Score             int
}

// Resolved reports whether a direction was decided.
func (r Result) Resolved() bool {
	return r.Direction == constants.Inbound || r.Direction == constants.Outbound
}

type Config struct {
	// AnchoredThreshold applies to lines inside a seller/buyer block.
	AnchoredThreshold int
	// FallbackThreshold applies when the whole page is scanned.
	FallbackThreshold int
}

func DefaultConfig() Config {
	return Config{AnchoredThreshold: 70, FallbackThreshold: 80}
}

// Classifier is bound to one reference company name.
type Classifier struct {
	cfg       Config
	reference string
}

func New(referenceName string, cfg Config) *Classifier {
	if cfg.AnchoredThreshold <= 0 {
		cfg.AnchoredThreshold = DefaultConfig().AnchoredThreshold
	}
	if cfg.FallbackThreshold <= 0 {
		cfg.FallbackThreshold = DefaultConfig().FallbackThreshold
	}
	return &Classifier{cfg: cfg, reference: normalize.Name(referenceName)}
}

// Reference returns the normalized reference name.
func (c *Classifier) Reference() string {
	return c.reference
}

// Classify splits text at the first buyer anchor and looks for the reference
// company first in the buyer block, then in the seller block.
func (c *Classifier) Classify(text string) Result {
	unresolved := Result{Direction: constants.Unresolved}
	if c.reference == "" {
		return unresolved
	}

	loc := reBuyerAnchor.FindStringIndex(text)
	if loc == nil {
		if line, score, ok := c.bestLine(text, c.cfg.FallbackThreshold); ok {
			return Result{
				Direction:     constants.Inbound,
				WholeDocument: true,
				MatchedLine:   line,
				Score:         score,
			}
		}
		return unresolved
	}

	seller := text[:loc[0]]
	buyer := text[loc[1]:]

	if line, score, ok := c.bestLine(buyer, c.cfg.AnchoredThreshold); ok {
		return blankFallback(Result{
			Direction:         constants.Inbound,
			CounterpartyBlock: seller,
			SelfBlock:         buyer,
			MatchedLine:       line,
			Score:             score,
		})
	}
	if line, score, ok := c.bestLine(seller, c.cfg.AnchoredThreshold); ok {
		return blankFallback(Result{
			Direction:         constants.Outbound,
			CounterpartyBlock: buyer,
			SelfBlock:         seller,
			MatchedLine:       line,
			Score:             score,
		})
	}
	return unresolved
}

// blankFallback falls back to the whole page when the counterparty side of the
// anchor is blank, so an empty block always comes with WholeDocument set.
func blankFallback(r Result) Result {
	if strings.TrimSpace(r.CounterpartyBlock) == "" {
		r.CounterpartyBlock = ""
		r.WholeDocument = true
	}
	return r
}

// bestLine returns the first line of block whose normalized form scores at least threshold.
func (c *Classifier) bestLine(block string, threshold int) (string, int, bool) {
	for _, line := range strings.Split(block, "\n") {
		score := fuzzy.Ratio(normalize.Name(line), c.reference)
		if score >= threshold {
			return strings.TrimSpace(line), score, true
		}
	}
	return "", 0, false
}
