// Package extractor finds box/label amounts in normalized tax-form text,
// whatever layout the producer used.
package extractor

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Aashish23092/tax-form-engine/dto"
	"github.com/Aashish23092/tax-form-engine/utils"
)

// Confidence ranks how tightly a label and its amount are bound.
type Confidence int

const (
	ConfidenceLookahead Confidence = iota + 1
	ConfidenceSameLine
	ConfidenceColonPair
	ConfidenceTableCell
)

// DefaultLookaheadChars bounds how far past a bare label the lookahead
// matcher searches for its amount.
const DefaultLookaheadChars = 120

// labelMergeThreshold is the similarity above which two box-less labels
// are taken to name the same box.
const labelMergeThreshold = 0.9

// Candidate is one (box, label, amount) binding found in the text.
type Candidate struct {
	Box        string               `json:"box,omitempty"`
	Label      string               `json:"label"`
	Amount     decimal.Decimal      `json:"amount"`
	Blank      bool                 `json:"blank,omitempty"`
	Confidence Confidence           `json:"confidence"`
	Method     dto.ExtractionMethod `json:"method"`
	Line       int                  `json:"line"`
	Offset     int                  `json:"offset"`
}

// Result is the resolved mapping, one entry per distinct box or label in
// document order.
type Result struct {
	Entries []Candidate `json:"entries"`
}

// Box returns the entry bound to a box identifier such as "1" or "1a".
func (r Result) Box(box string) (Candidate, bool) {
	box = strings.ToLower(box)
	for _, e := range r.Entries {
		if e.Box == box {
			return e, true
		}
	}
	return Candidate{}, false
}

// Empty reports whether nothing numeric was found.
func (r Result) Empty() bool {
	return len(r.Entries) == 0
}

type Extractor struct {
	lookahead int
}

// New builds an extractor. A non-positive lookahead uses
// DefaultLookaheadChars.
func New(lookaheadChars int) *Extractor {
	if lookaheadChars <= 0 {
		lookaheadChars = DefaultLookaheadChars
	}
	return &Extractor{lookahead: lookaheadChars}
}

// Extract runs every layout matcher over normalized text and resolves
// competing bindings. It never fails; unreadable text yields an empty Result.
func (e *Extractor) Extract(text string) Result {
	lines := strings.Split(text, "\n")

	var (
		candidates []Candidate
		header     []string
	)
	for i, line := range lines {
		if isTableLine(line) {
			found := matchTableRow(line, i)
			if len(found) > 0 {
				header = nil
			} else if header != nil {
				found = matchColumnRow(header, line, i)
			}
			candidates = append(candidates, found...)

			// a header of box labels binds the amount rows under it
			if len(found) == 0 && !isSeparator(tableCells(line)) {
				header = headerCells(line)
			}
			continue
		}
		header = nil
		candidates = append(candidates, matchColonPairs(line, i)...)
		candidates = append(candidates, matchSameLine(line, i)...)
	}
	candidates = append(candidates, matchLookahead(lines, e.lookahead)...)

	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].Line != candidates[b].Line {
			return candidates[a].Line < candidates[b].Line
		}
		return candidates[a].Offset < candidates[b].Offset
	})

	return Result{Entries: resolve(candidates)}
}

// resolve keeps one candidate per box. A real amount beats a blank one,
// then higher confidence wins, and equal confidence keeps the earlier
// occurrence.
func resolve(candidates []Candidate) []Candidate {
	var entries []Candidate
	for _, c := range candidates {
		idx := -1
		for i := range entries {
			if sameBox(entries[i], c) {
				idx = i
				break
			}
		}
		if idx < 0 {
			entries = append(entries, c)
			continue
		}

		old := entries[idx]
		if !outranks(c, old) {
			if old.Box == "" && c.Box != "" {
				entries[idx].Box = c.Box
			}
			continue
		}
		if c.Box == "" {
			c.Box = old.Box
		}
		if c.Label == "" {
			c.Label = old.Label
		}
		c.Line, c.Offset = old.Line, old.Offset
		entries[idx] = c
	}
	return entries
}

func sameBox(a, b Candidate) bool {
	if a.Box != "" && b.Box != "" {
		return a.Box == b.Box
	}
	if a.Label == "" || b.Label == "" {
		return false
	}
	return utils.LabelSimilarity(a.Label, b.Label) >= labelMergeThreshold
}

func outranks(c, old Candidate) bool {
	if c.Blank != old.Blank {
		return !c.Blank
	}
	return c.Confidence > old.Confidence
}
