package mapper

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Aashish23092/tax-form-engine/dto"
	"github.com/Aashish23092/tax-form-engine/utils/extractor"
)

var (
	socialSecurityRate      = decimal.RequireFromString("0.062")
	medicareRate            = decimal.RequireFromString("0.0145")
	socialSecurityTolerance = decimal.NewFromInt(50)
	medicareTolerance       = decimal.NewFromInt(10)
)

// warn records data-quality problems. None of them stops the pipeline.
func (m *mapping) warn(doc dto.RawDocument) {
	rec := m.rec

	if rec.DocumentType == dto.DocTypeUnknown {
		rec.Warnings = append(rec.Warnings, "document type could not be determined; amounts attributed by generic label matching")
	}
	if !m.anyFound() {
		rec.Warnings = append(rec.Warnings, "no amounts could be extracted")
	}

	for idx, rule := range m.rules {
		if rule.Required && !m.found[idx] {
			rec.Warnings = append(rec.Warnings, fmt.Sprintf(
				"missing required field %s (box %s) on %s; recorded as zero", rule.Field, rule.Box, rec.DocumentType))
		}
	}

	switch rec.DocumentType {
	case dto.DocTypeW2:
		m.checkW2()
	case dto.DocType1099NEC:
		comp := rec.Amount(dto.FieldNonemployeeCompensation)
		withheld := rec.Amount(dto.FieldFederalIncomeTaxWithheld)
		if withheld.GreaterThan(comp) {
			rec.Warnings = append(rec.Warnings, fmt.Sprintf(
				"federal income tax withheld %s exceeds nonemployee compensation %s", withheld.StringFixed(2), comp.StringFixed(2)))
		}
	}

	m.crossCheckTokens(doc.NumericTokens)
}

func (m *mapping) checkW2() {
	rec := m.rec

	wages := rec.Amount(dto.FieldWages)
	withheld := rec.Amount(dto.FieldFederalIncomeTaxWithheld)
	if wages.IsPositive() && withheld.GreaterThan(wages) {
		rec.Warnings = append(rec.Warnings, fmt.Sprintf(
			"federal income tax withheld %s exceeds wages %s", withheld.StringFixed(2), wages.StringFixed(2)))
	}

	ssWages := rec.Amount(dto.FieldSocialSecurityWages)
	if _, ok := rec.Fields[dto.FieldSocialSecurityTaxWithheld]; ok && ssWages.IsPositive() {
		expected := ssWages.Mul(socialSecurityRate)
		actual := rec.Amount(dto.FieldSocialSecurityTaxWithheld)
		if actual.Sub(expected).Abs().GreaterThan(socialSecurityTolerance) {
			rec.Warnings = append(rec.Warnings, fmt.Sprintf(
				"social security tax withheld %s differs from 6.2%% of social security wages (%s)",
				actual.StringFixed(2), expected.StringFixed(2)))
		}
	}

	medWages := rec.Amount(dto.FieldMedicareWages)
	if _, ok := rec.Fields[dto.FieldMedicareTaxWithheld]; ok && medWages.IsPositive() {
		expected := medWages.Mul(medicareRate)
		actual := rec.Amount(dto.FieldMedicareTaxWithheld)
		if actual.Sub(expected).Abs().GreaterThan(medicareTolerance) {
			rec.Warnings = append(rec.Warnings, fmt.Sprintf(
				"medicare tax withheld %s differs from 1.45%% of medicare wages (%s)",
				actual.StringFixed(2), expected.StringFixed(2)))
		}
	}
}

// crossCheckTokens flags mapped amounts that the upstream numeric token
// list never saw.
func (m *mapping) crossCheckTokens(tokens []string) {
	if len(tokens) == 0 {
		return
	}
	var known []decimal.Decimal
	for _, t := range tokens {
		if d, ok := extractor.ParseAmount(strings.TrimSpace(t)); ok {
			known = append(known, d)
		}
	}

	for _, name := range dto.CanonicalFields {
		fv, ok := m.rec.Fields[name]
		if !ok || fv.Method == dto.MethodDerived || fv.Method == dto.MethodKeyValue || fv.Amount.IsZero() {
			continue
		}
		seen := false
		for _, k := range known {
			if k.Equal(fv.Amount) {
				seen = true
				break
			}
		}
		if !seen {
			m.rec.Warnings = append(m.rec.Warnings, fmt.Sprintf(
				"%s amount %s not found among extracted numeric tokens", name, fv.Amount.StringFixed(2)))
		}
	}
}
