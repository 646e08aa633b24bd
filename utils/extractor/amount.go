package extractor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	groupedAmount = regexp.MustCompile(`^\d{1,3}(,\d{3})+(\.\d+)?$`)
	plainAmount   = regexp.MustCompile(`^(\d+(\.\d+)?|\.\d+)$`)
	numberToken   = regexp.MustCompile(`\$\s?\d[\d,]*(\.\d+)?|\d[\d,]*(\.\d+)?`)
	blankMarker   = regexp.MustCompile(`(?i)^([\s$\-]*|\$?\s*(n/?a|none))$`)
)

// ParseAmount parses a well-formed, non-negative currency token such as
// "$23,500.00", "23500" or "$ 1,200". Currency symbols, spaces and
// thousands separators are stripped; misplaced separators are rejected.
func ParseAmount(token string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(token)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, false
	}
	if !groupedAmount.MatchString(s) && !plainAmount.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseBoxValue interprets the value printed after a box label. Empty,
// "$"-only, negative or non-numeric values read as zero and are reported
// blank.
func ParseBoxValue(value string) (amount decimal.Decimal, blank bool) {
	v := strings.TrimSpace(value)
	if d, ok := ParseAmount(v); ok {
		return d, false
	}
	return decimal.Zero, true
}

// IsBlankMarker reports whether a value cell is one of the placeholders
// forms print for unused boxes.
func IsBlankMarker(value string) bool {
	return blankMarker.MatchString(strings.TrimSpace(value))
}

type numToken struct {
	start, end int
	text       string
	amount     decimal.Decimal
	money      bool // carries a currency symbol, separator or decimals
	negative   bool
}

// scanNumbers finds standalone numeric tokens in a line. Numbers glued to
// letters, slashes, hyphens or percent signs (form codes, SSNs, dates,
// rates) are skipped.
func scanNumbers(line string) []numToken {
	var out []numToken
	for _, loc := range numberToken.FindAllStringIndex(line, -1) {
		start, end := loc[0], loc[1]
		for end > start && line[end-1] == ',' {
			end--
		}
		text := line[start:end]

		negative := false
		if start > 0 {
			prev, _ := utf8.DecodeLastRuneInString(line[:start])
			switch {
			case unicode.IsLetter(prev) || unicode.IsDigit(prev) || prev == '/' || prev == '.':
				continue
			case prev == '-' || prev == '(':
				before := line[:start-1]
				if before == "" || strings.HasSuffix(before, " ") || strings.HasSuffix(before, "$") {
					negative = true
				} else {
					continue
				}
			}
		}
		if end < len(line) {
			next, _ := utf8.DecodeRuneInString(line[end:])
			if unicode.IsLetter(next) || unicode.IsDigit(next) || next == '/' || next == '%' || next == '-' {
				continue
			}
		}

		amount, ok := ParseAmount(text)
		if !ok {
			continue
		}
		out = append(out, numToken{
			start:    start,
			end:      end,
			text:     text,
			amount:   amount,
			money:    strings.ContainsAny(text, "$,."),
			negative: negative,
		})
	}
	return out
}

// value is the amount a token contributes; negatives read as zero.
func (t numToken) value() decimal.Decimal {
	if t.negative {
		return decimal.Zero
	}
	return t.amount
}
