package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Aashish23092/tax-form-engine/dto"
)

const (
	SummarySheet   = "Summary"
	DocumentsSheet = "Documents"
)

// amountFormat is excelize's built-in "#,##0.00".
const amountFormat = 4

// ExportWorkbook renders a calculation as an XLSX workbook: the tax
// result and totals on one sheet, one row per document on the other.
func ExportWorkbook(resp *dto.CalculationResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(DocumentsSheet); err != nil {
		return nil, err
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: amountFormat})
	if err != nil {
		return nil, err
	}

	if err := writeSummary(f, resp, amountStyle); err != nil {
		return nil, err
	}
	if err := writeDocuments(f, resp.Documents, amountStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

type summaryRow struct {
	label  string
	value  any
	amount bool
}

func writeSummary(f *excelize.File, resp *dto.CalculationResponse, amountStyle int) error {
	r := resp.TaxResult
	t := resp.Totals
	rows := []summaryRow{
		{"Request ID", resp.RequestID, false},
		{"Tax year", r.TaxYear, false},
		{"Filing status", string(r.FilingStatus), false},
		{"Dependents", r.NumDependents, false},
		{"Documents", t.DocumentCount, false},
		{"Wages", t.Wages, true},
		{"Nonemployee compensation", t.NonemployeeCompensation, true},
		{"Self-employment income", t.SelfEmploymentIncome, true},
		{"Interest income", t.InterestIncome, true},
		{"Dividend income", t.DividendIncome, true},
		{"Capital gains", t.CapitalGains, true},
		{"Other income", t.OtherIncome, true},
		{"Rents", t.Rents, true},
		{"Royalties", t.Royalties, true},
		{"Total income", r.TotalIncome, true},
		{"Standard deduction", r.DeductionAmount, true},
		{"Taxable income", r.TaxableIncome, true},
		{"Federal income tax", r.FederalIncomeTax, true},
		{"Self-employment tax", r.SelfEmploymentTax, true},
		{"Child tax credit", r.ChildTaxCredit, true},
		{"Total credits", r.TotalCredits, true},
		{"Total tax liability", r.TotalTaxLiability, true},
		{"Total withheld", r.TotalWithheld, true},
		{"Refund or amount due", r.RefundOrDue, true},
		{"Result", r.ResultStatus, false},
	}

	for i, row := range rows {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		if err := f.SetCellValue(SummarySheet, labelCell, row.label); err != nil {
			return err
		}
		value := row.value
		if d, ok := value.(decimal.Decimal); ok {
			value = d.Round(2).InexactFloat64()
		}
		if err := f.SetCellValue(SummarySheet, valueCell, value); err != nil {
			return err
		}
		if row.amount {
			if err := f.SetCellStyle(SummarySheet, valueCell, valueCell, amountStyle); err != nil {
				return err
			}
		}
	}

	_ = f.SetColWidth(SummarySheet, "A", "A", 28)
	_ = f.SetColWidth(SummarySheet, "B", "B", 40)
	return nil
}

func writeDocuments(f *excelize.File, records []dto.CanonicalRecord, amountStyle int) error {
	headers := []string{"Filename", "Document type", "Extraction method", "Completeness", "Low confidence"}
	headers = append(headers, dto.CanonicalFields...)
	headers = append(headers, "Warnings")

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(DocumentsSheet, cell, h); err != nil {
			return err
		}
	}

	firstAmountCol := 6
	for i, rec := range records {
		row := i + 2
		write := func(col int, v any) error {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			return f.SetCellValue(DocumentsSheet, cell, v)
		}

		values := []any{rec.Filename, string(rec.DocumentType), string(rec.ExtractionMethod), rec.Completeness, rec.LowConfidence}
		for _, name := range dto.CanonicalFields {
			values = append(values, rec.Amount(name).Round(2).InexactFloat64())
		}
		values = append(values, strings.Join(rec.Warnings, "; "))

		for col, v := range values {
			if err := write(col+1, v); err != nil {
				return err
			}
		}

		from, _ := excelize.CoordinatesToCellName(firstAmountCol, row)
		to, _ := excelize.CoordinatesToCellName(firstAmountCol+len(dto.CanonicalFields)-1, row)
		if err := f.SetCellStyle(DocumentsSheet, from, to, amountStyle); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(DocumentsSheet, "A", "A", 24)
	_ = f.SetColWidth(DocumentsSheet, "B", "C", 18)
	return nil
}
