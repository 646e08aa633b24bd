// Package textnorm turns arbitrary markup (HTML, markdown, OCR text) into the
// plain text every later stage works on.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t\f\v]+`)
	blankLines      = regexp.MustCompile(`\n{2,}`)
	spaceAroundNL   = regexp.MustCompile(` *\n *`)
)

// dashVariants are folded to an ASCII hyphen. Producers encode form codes
// like "1099-MISC" with any of these.
var dashVariants = strings.NewReplacer(
	"‐", "-", // hyphen
	"‑", "-", // non-breaking hyphen
	"‒", "-", // figure dash
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
	"−", "-", // minus sign
	"﹘", "-",
	"﹣", "-",
	"－", "-",
	"_", "-",
)

// blockTags end a line of text.
var blockTags = map[string]bool{
	"tr": true, "br": true, "p": true, "div": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"table": true, "thead": true, "tbody": true, "tfoot": true,
	"ul": true, "ol": true, "section": true, "article": true, "caption": true,
}

// Normalize strips markup, decodes entities, folds dash variants and
// collapses whitespace. Table cells survive as pipe-delimited rows so that
// "<tr><td>1</td><td>Wages</td><td>100</td></tr>" and "| 1 | Wages | 100 |"
// look the same downstream. Line breaks are kept.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	text := stripMarkup(raw)
	text = norm.NFKC.String(text)
	text = dashVariants.Replace(text)
	text = strings.Map(func(r rune) rune {
		switch {
		case r == '\r':
			return '\n'
		case r == '\n':
			return r
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, text)

	text = horizontalSpace.ReplaceAllString(text, " ")
	text = spaceAroundNL.ReplaceAllString(text, "\n")
	text = blankLines.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// stripMarkup walks the input with the html tokenizer, which tolerates
// unbalanced and unknown tags. Text tokens come back entity-decoded.
func stripMarkup(raw string) string {
	z := html.NewTokenizer(strings.NewReader(raw))
	var b strings.Builder
	b.Grow(len(raw))

	skipDepth := 0
	inRow := false
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if inRow {
				b.WriteString(" |")
			}
			return b.String()

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			t := string(z.Text())
			if inRow {
				// cell contents stay on the row's line
				t = strings.ReplaceAll(t, "\n", " ")
			}
			b.WriteString(t)

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tag == "script" || tag == "style":
				if tt == html.StartTagToken {
					skipDepth++
				}
			case tag == "td" || tag == "th":
				if !inRow {
					b.WriteString("\n|")
					inRow = true
				}
				b.WriteString(" ")
			case tag == "tr":
				if inRow {
					b.WriteString(" |")
				}
				b.WriteString("\n|")
				inRow = true
			case blockTags[tag]:
				b.WriteString("\n")
			default:
				b.WriteString(" ")
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tag == "script" || tag == "style":
				if skipDepth > 0 {
					skipDepth--
				}
			case tag == "td" || tag == "th":
				b.WriteString(" |")
			case tag == "tr":
				b.WriteString("\n")
				inRow = false
			case blockTags[tag]:
				if inRow {
					b.WriteString(" |")
					inRow = false
				}
				b.WriteString("\n")
			default:
				b.WriteString(" ")
			}
		}
	}
}
