package service

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Aashish23092/tax-form-engine/dto"
)

// ErrTooManyPages is returned for PDFs longer than the configured limit.
var ErrTooManyPages = errors.New("pdf exceeds page limit")

// PDFProcessor reads the text layer of an uploaded PDF. Scanned PDFs
// without a text layer come back empty; OCR is not attempted.
type PDFProcessor interface {
	ExtractText(pdfData []byte, password string) (string, error)
}

type pdfProcessor struct {
	maxPages int
}

// NewPDFProcessor returns a processor that rejects PDFs with more than
// maxPages pages. A non-positive maxPages disables the limit.
func NewPDFProcessor(maxPages int) PDFProcessor {
	return &pdfProcessor{maxPages: maxPages}
}

func (p *pdfProcessor) ExtractText(pdfData []byte, password string) (string, error) {
	if err := p.validate(pdfData, password); err != nil {
		return "", err
	}

	r, err := p.open(pdfData, password)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", pageIndex, err)
		}
		for _, row := range rows {
			textBuilder.WriteString(joinRow(row.Content))
			textBuilder.WriteString("\n")
		}
	}
	return textBuilder.String(), nil
}

// validate parses the document with pdfcpu, which also decrypts it when a
// password is given, and enforces the page limit.
func (p *pdfProcessor) validate(pdfData []byte, password string) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if password != "" {
		conf.UserPW = password
	}

	ctx, err := api.ReadContext(bytes.NewReader(pdfData), conf)
	if err != nil {
		return fmt.Errorf("%w: invalid pdf: %v", dto.ErrUnsupportedFile, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return fmt.Errorf("%w: invalid pdf: %v", dto.ErrUnsupportedFile, err)
	}
	if p.maxPages > 0 && ctx.PageCount > p.maxPages {
		return fmt.Errorf("%w: %d pages, limit is %d", ErrTooManyPages, ctx.PageCount, p.maxPages)
	}
	return nil
}

func (p *pdfProcessor) open(pdfData []byte, password string) (*pdf.Reader, error) {
	if password == "" {
		return pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	}
	// the reader keeps asking until it gets an empty password
	tried := false
	return pdf.NewReaderEncrypted(bytes.NewReader(pdfData), int64(len(pdfData)), func() string {
		if tried {
			return ""
		}
		tried = true
		return password
	})
}

// joinRow concatenates the glyph runs of one row, inserting a space where
// the horizontal gap is wider than a fraction of the font size.
func joinRow(texts pdf.TextHorizontal) string {
	var sb strings.Builder
	for i, t := range texts {
		if i > 0 {
			prev := texts[i-1]
			gap := t.X - (prev.X + prev.W)
			if gap > prev.FontSize*0.2 && !strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(t.S, " ") {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(t.S)
	}
	return sb.String()
}
