package textnorm

import (
	"regexp"
	"strings"
	"unicode"
)

// ocrDigit maps letters that OCR commonly confuses with digits.
var ocrDigit = map[rune]rune{
	'O': '0', 'o': '0',
	'I': '1', 'l': '1',
	'S': '5', 's': '5',
}

// ocrLetter maps digits OCR commonly puts inside letter runs.
var ocrLetter = strings.NewReplacer("0", "o", "1", "i", "l", "i", "5", "s")

var (
	formSuffix    = regexp.MustCompile(`1099([-\s]?)([a-z0-9]{1,4})\b`)
	knownSuffixes = map[string]bool{"nec": true, "int": true, "div": true, "misc": true, "b": true, "k": true, "oid": true}
)

func isDigitLike(r rune) bool {
	if r >= '0' && r <= '9' {
		return true
	}
	_, ok := ocrDigit[r]
	return ok
}

// FoldOCR lower-cases text and repairs digit runs where OCR swapped digits
// for look-alike letters, so "1O99-MISC" reads "1099-misc". A run is only
// repaired when it is bounded by non-letters and holds at least one real
// digit; plain words are never touched.
func FoldOCR(text string) string {
	runes := []rune(text)
	out := make([]rune, len(runes))
	copy(out, runes)

	for i := 0; i < len(runes); {
		if !isDigitLike(runes[i]) {
			i++
			continue
		}
		j := i
		hasDigit := false
		for j < len(runes) && isDigitLike(runes[j]) {
			if unicode.IsDigit(runes[j]) {
				hasDigit = true
			}
			j++
		}
		boundedLeft := i == 0 || !unicode.IsLetter(runes[i-1])
		boundedRight := j == len(runes) || !unicode.IsLetter(runes[j])
		end := j
		// "1099s" is a plural, not "10995"
		if j-i > 1 && runes[j-1] == 's' && unicode.IsDigit(runes[j-2]) {
			end--
		}
		if hasDigit && boundedLeft && boundedRight {
			for k := i; k < end; k++ {
				if d, ok := ocrDigit[runes[k]]; ok {
					out[k] = d
				}
			}
		}
		i = j
	}
	return repairFormSuffix(strings.ToLower(string(out)))
}

// repairFormSuffix fixes digit-for-letter swaps in the suffix after
// "1099", so "1099-m1sc" reads "1099-misc". Only known suffixes are
// rewritten.
func repairFormSuffix(text string) string {
	return formSuffix.ReplaceAllStringFunc(text, func(match string) string {
		m := formSuffix.FindStringSubmatch(match)
		if knownSuffixes[m[2]] {
			return match
		}
		if fixed := ocrLetter.Replace(m[2]); knownSuffixes[fixed] {
			return "1099" + m[1] + fixed
		}
		return match
	})
}
