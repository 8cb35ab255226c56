// Package score groups extracted rumors into status bins and ranks them by certainty.
package score

import (
	"strings"
)

// Bin names
const (
	BinConfirmed  = "Confirmed"
	BinDealAgreed = "Deal Agreed"
	BinAdvanced   = "Advanced Talks"
	BinLinked     = "Linked / Interest"
	BinRejected   = "Rejected / Off"
	BinManager    = "Manager Related"
	BinOther      = "Other / Ambiguous"
)

// BinRule assigns Bin to any status containing one of Keywords
type BinRule struct {
	Bin      string
	Keywords []string
}

// DefaultBinRules is evaluated top to bottom; the first matching rule wins.
var DefaultBinRules = []BinRule{
	{BinConfirmed, []string{"here we go", "confirmed", "official"}},
	{BinDealAgreed, []string{"deal agreed", "agreement", "contract signed"}},
	{BinAdvanced, []string{"advanced", "closing in", "personal terms"}},
	{BinLinked, []string{"interest", "targeted", "monitoring", "keen", "approached", "link", "contact", "bid"}},
	{BinRejected, []string{"rejected", "deal off", "collapsed"}},
	{BinManager, []string{"appointment", "manager", "not staying"}},
}

// Binner maps free-form status strings onto a fixed set of bins
type Binner struct {
	rules []BinRule
}

// NewBinner creates a binner; no rules means DefaultBinRules
func NewBinner(rules ...BinRule) *Binner {
	if len(rules) == 0 {
		rules = DefaultBinRules
	}
	normalized := make([]BinRule, len(rules))
	for i, r := range rules {
		kw := make([]string, len(r.Keywords))
		for j, k := range r.Keywords {
			kw[j] = strings.ToLower(k)
		}
		normalized[i] = BinRule{Bin: r.Bin, Keywords: kw}
	}
	return &Binner{rules: normalized}
}

// Bin returns the bin for status, or BinOther
func (b *Binner) Bin(status string) string {
	s := strings.ToLower(status)
	if s == "" {
		return BinOther
	}
	for _, r := range b.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(s, kw) {
				return r.Bin
			}
		}
	}
	return BinOther
}

// Bins lists every bin name in rule order, ending with BinOther
func (b *Binner) Bins() []string {
	out := make([]string, 0, len(b.rules)+1)
	seen := make(map[string]bool)
	for _, r := range b.rules {
		if !seen[r.Bin] {
			seen[r.Bin] = true
			out = append(out, r.Bin)
		}
	}
	if !seen[BinOther] {
		out = append(out, BinOther)
	}
	return out
}
