package extractor

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/Aashish23092/tax-form-engine/dto"
)

var (
	boxPrefix    = regexp.MustCompile(`(?i)^box\s*([1-9]\d?[a-z]?)\b[\s.:)\-]*(.*)$`)
	numPrefix    = regexp.MustCompile(`(?i)^([1-9]\d?[a-z]?)(?:[\s.)]+(.*))?$`)
	boxOnly      = regexp.MustCompile(`(?i)^(?:box\s*)?([1-9]\d?[a-z]?)$`)
	separatorRow = regexp.MustCompile(`^[\s:\-]*$`)
	nextBox      = regexp.MustCompile(`(?i)^(?:box\s*)?[1-9]\d?[a-z]?[\s.:)]+[a-z]`)
)

// splitBox separates a leading box identifier ("Box 1", "1a", "12") from
// the label text that follows it.
func splitBox(s string) (box, label string) {
	s = strings.TrimSpace(s)
	if m := boxPrefix.FindStringSubmatch(s); m != nil {
		return strings.ToLower(m[1]), cleanLabel(m[2])
	}
	if m := numPrefix.FindStringSubmatch(s); m != nil {
		return strings.ToLower(m[1]), cleanLabel(m[2])
	}
	return "", cleanLabel(s)
}

func cleanLabel(s string) string {
	return strings.Trim(strings.TrimSpace(s), " :|$\t-(")
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func isTableLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "|")
}

// cellAmount reads a cell or value that is nothing but an amount.
// Negative amounts ("-500.00", "(500.00)") are accepted and reported blank.
func cellAmount(s string) (amount decimal.Decimal, blank, ok bool) {
	t := strings.TrimSpace(s)
	if d, good := ParseAmount(t); good {
		return d, false, true
	}

	var inner string
	switch {
	case strings.HasPrefix(t, "(") && strings.HasSuffix(t, ")"):
		inner = t[1 : len(t)-1]
	case strings.HasPrefix(t, "-"):
		inner = t[1:]
	case strings.HasPrefix(t, "$-"):
		inner = t[2:]
	default:
		return decimal.Zero, false, false
	}
	if _, good := ParseAmount(inner); good {
		return decimal.Zero, true, true
	}
	return decimal.Zero, false, false
}

// matchTableRow reads a pipe-delimited row. HTML tables reach here too,
// since the normalizer renders them in the same shape.
func matchTableRow(line string, lineNo int) []Candidate {
	cells := tableCells(line)
	if isSeparator(cells) {
		return nil
	}

	var (
		out    []Candidate
		box    string
		label  string
		offset int
	)
	emit := func(amount decimal.Decimal, blank bool, at int) {
		out = append(out, Candidate{
			Box:        box,
			Label:      label,
			Amount:     amount,
			Blank:      blank,
			Confidence: ConfidenceTableCell,
			Method:     dto.MethodTableCell,
			Line:       lineNo,
			Offset:     at,
		})
		box, label = "", ""
	}

	for i, cell := range cells {
		at := offset
		offset += len(cell) + 1
		c := strings.TrimSpace(cell)

		if m := boxOnly.FindStringSubmatch(c); m != nil && box == "" && (label == "" || restHasAmount(cells[i+1:])) {
			box = strings.ToLower(m[1])
			continue
		}
		if label != "" || box != "" {
			if amount, blank, ok := cellAmount(c); ok {
				emit(amount, blank, at)
				continue
			}
			if label != "" && IsBlankMarker(c) {
				emit(decimal.Zero, true, at)
				continue
			}
		}
		if !hasLetter(c) {
			continue
		}

		if inline := matchSameLine(c, lineNo); len(inline) > 0 {
			for _, cand := range inline {
				if cand.Box == "" {
					cand.Box = box
				}
				if label != "" {
					cand.Label = strings.TrimSpace(label + " " + cand.Label)
				}
				cand.Confidence = ConfidenceTableCell
				cand.Method = dto.MethodTableCell
				cand.Offset += at
				out = append(out, cand)
			}
			box, label = "", ""
			continue
		}

		b, l := splitBox(c)
		if b != "" && box == "" {
			box = b
		}
		label = strings.TrimSpace(label + " " + l)
	}
	return out
}

func tableCells(line string) []string {
	t := strings.TrimSpace(line)
	t = strings.TrimPrefix(t, "|")
	t = strings.TrimSuffix(t, "|")
	return strings.Split(t, "|")
}

func isSeparator(cells []string) bool {
	for _, c := range cells {
		if !separatorRow.MatchString(c) {
			return false
		}
	}
	return true
}

// headerCells returns the cells of a row whose every cell is a box label,
// nil otherwise.
func headerCells(line string) []string {
	cells := tableCells(line)
	for _, c := range cells {
		if !hasLetter(c) {
			return nil
		}
	}
	return cells
}

// matchColumnRow binds a row of bare amounts to the box labels of the
// header row above it, column by column.
func matchColumnRow(header []string, line string, lineNo int) []Candidate {
	cells := tableCells(line)
	if len(cells) != len(header) {
		return nil
	}

	var (
		out    []Candidate
		offset int
		amount bool
	)
	for i, cell := range cells {
		at := offset
		offset += len(cell) + 1

		value, blank, ok := cellAmount(cell)
		if !ok {
			if !IsBlankMarker(cell) {
				return nil
			}
			value, blank = decimal.Zero, true
		}
		amount = amount || !blank

		box, label := splitBox(header[i])
		if box == "" && !hasLetter(label) {
			continue
		}
		out = append(out, Candidate{
			Box:        box,
			Label:      label,
			Amount:     value,
			Blank:      blank,
			Confidence: ConfidenceTableCell,
			Method:     dto.MethodTableCell,
			Line:       lineNo,
			Offset:     at,
		})
	}
	if !amount {
		return nil
	}
	return out
}

func restHasAmount(cells []string) bool {
	for _, c := range cells {
		if _, _, ok := cellAmount(c); ok {
			return true
		}
	}
	return false
}

// matchColonPairs reads "Box 1: Wages: $23,500.00" and "Wages: 500.00"
// shapes, including several pairs on one line.
func matchColonPairs(line string, lineNo int) []Candidate {
	if isTableLine(line) || !strings.Contains(line, ":") {
		return nil
	}
	parts := strings.Split(line, ":")

	var out []Candidate
	key := parts[0]
	offset := len(parts[0]) + 1
	emit := func(amount decimal.Decimal, blank bool, at int) {
		box, label := splitBox(key)
		if box == "" && !hasLetter(label) {
			return
		}
		// a bare number before a colon is a clock time, not a box
		if label == "" && !boxPrefix.MatchString(strings.TrimSpace(key)) {
			return
		}
		out = append(out, Candidate{
			Box:        box,
			Label:      label,
			Amount:     amount,
			Blank:      blank,
			Confidence: ConfidenceColonPair,
			Method:     dto.MethodColonPair,
			Line:       lineNo,
			Offset:     at,
		})
	}

	for j := 1; j < len(parts); j++ {
		value := parts[j]
		at := offset
		offset += len(value) + 1

		if toks := scanNumbers(value); len(toks) > 0 {
			tok := toks[0]
			lead := strings.TrimSpace(value[:tok.start])
			rest := value[tok.end:]
			if (lead == "" || lead == "-" || lead == "(" || lead == "$-" || lead == "-$") &&
				(tok.money || strings.TrimSpace(rest) == "") {
				emit(tok.value(), tok.negative, at+tok.start)
				key = strings.TrimPrefix(strings.TrimSpace(rest), ")")
				continue
			}
		}
		if IsBlankMarker(value) {
			if j == len(parts)-1 {
				emit(decimal.Zero, true, at)
			}
			continue
		}
		key = key + " " + value
	}
	return out
}

// matchSameLine reads "[box] label amount" segments. A line may carry
// several segments ("1 Wages 500.00 2 Federal income tax withheld 50.00").
func matchSameLine(line string, lineNo int) []Candidate {
	if isTableLine(line) {
		return nil
	}
	var out []Candidate
	segStart := 0
	for _, tok := range scanNumbers(line) {
		if tok.start < segStart {
			continue
		}
		atEnd := strings.TrimSpace(strings.TrimLeft(line[tok.end:], ")")) == ""
		box, label := splitBox(line[segStart:tok.start])
		if box == "" && !hasLetter(label) {
			if tok.money {
				segStart = tok.end
			}
			continue
		}
		if !tok.money && (boxOnly.MatchString(strings.TrimSpace(line[segStart:tok.end])) ||
			!plainAmountFits(tok, box, atEnd, line[tok.end:])) {
			continue
		}
		out = append(out, Candidate{
			Box:        box,
			Label:      label,
			Amount:     tok.value(),
			Blank:      tok.negative,
			Confidence: ConfidenceSameLine,
			Method:     dto.MethodSameLine,
			Line:       lineNo,
			Offset:     tok.start,
		})
		segStart = tok.end
	}

	// "3 Other income $" prints an unused box
	rest := strings.TrimSpace(line[segStart:])
	if strings.HasSuffix(rest, "$") {
		box, label := splitBox(strings.TrimSuffix(rest, "$"))
		if box != "" || hasLetter(label) {
			out = append(out, Candidate{
				Box:        box,
				Label:      label,
				Amount:     decimal.Zero,
				Blank:      true,
				Confidence: ConfidenceSameLine,
				Method:     dto.MethodSameLine,
				Line:       lineNo,
				Offset:     segStart,
			})
		}
	}
	return out
}

// plainAmountFits decides whether a bare integer is a box amount. It must
// end the line or be followed by the next box, and an unboxed label never
// takes a number that reads as a year.
func plainAmountFits(tok numToken, box string, atEnd bool, rest string) bool {
	if !atEnd && !nextBox.MatchString(strings.TrimSpace(rest)) {
		return false
	}
	return box != "" || !plausibleYear(tok)
}

func plausibleYear(tok numToken) bool {
	if len(tok.text) != 4 {
		return false
	}
	y := tok.amount.IntPart()
	return y >= 1900 && y <= 2100
}

// pureAmount reports whether a whole line is a single amount.
func pureAmount(line string) (amount decimal.Decimal, blank, ok bool) {
	t := strings.TrimSpace(line)
	if boxOnly.MatchString(t) {
		return decimal.Zero, false, false
	}
	return cellAmount(t)
}

func hasMoney(line string) bool {
	for _, tok := range scanNumbers(line) {
		if tok.money {
			return true
		}
	}
	return false
}

const maxLabelContinuation = 2

// matchLookahead binds a label line with no amount of its own to the first
// amount-only line that follows within window characters.
func matchLookahead(lines []string, window int) []Candidate {
	var out []Candidate
	used := make([]bool, len(lines))

	for i, line := range lines {
		t := strings.TrimSpace(line)
		if used[i] || t == "" || isTableLine(t) || hasMoney(t) || len(matchSameLine(t, i)) > 0 {
			continue
		}
		if _, _, ok := pureAmount(t); ok {
			continue
		}
		box, label := splitBox(t)
		if box == "" && !hasLetter(label) {
			continue
		}

		seen := 0
		continued := 0
		for j := i + 1; j < len(lines) && seen <= window; j++ {
			next := strings.TrimSpace(lines[j])
			seen += len(next) + 1
			if next == "" {
				continue
			}
			if amount, blank, ok := pureAmount(next); ok {
				out = append(out, Candidate{
					Box:        box,
					Label:      label,
					Amount:     amount,
					Blank:      blank,
					Confidence: ConfidenceLookahead,
					Method:     dto.MethodLookahead,
					Line:       i,
				})
				used[j] = true
				break
			}
			if next == "$" || next == "-" {
				out = append(out, Candidate{
					Box:        box,
					Label:      label,
					Blank:      true,
					Confidence: ConfidenceLookahead,
					Method:     dto.MethodLookahead,
					Line:       i,
				})
				used[j] = true
				break
			}
			if isTableLine(next) || hasMoney(next) || continued >= maxLabelContinuation {
				break
			}
			// only a box number alone or a label cut at a comma wraps onto the next line
			if label != "" && !strings.HasSuffix(strings.TrimSpace(t), ",") {
				break
			}
			if b, _ := splitBox(next); b != "" {
				break
			}
			label = strings.TrimSpace(label + " " + cleanLabel(next))
			used[j] = true
			continued++
		}
	}
	return out
}
