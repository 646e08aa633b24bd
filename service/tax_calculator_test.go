package service

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/tax-form-engine/dto"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func record(docType dto.DocumentType, fields ...dto.FieldValue) dto.CanonicalRecord {
	rec := dto.NewCanonicalRecord(docType)
	for _, fv := range fields {
		rec.Fields[fv.Name] = fv
	}
	return rec
}

func field(name, amount string) dto.FieldValue {
	return dto.FieldValue{Name: name, Amount: dec(amount), Method: dto.MethodTableCell}
}

func calculator(t *testing.T) *TaxCalculator {
	t.Helper()
	calc, err := NewTaxCalculator(dto.DefaultTaxYear)
	require.NoError(t, err)
	return calc
}

func single() dto.TaxpayerInput {
	return dto.TaxpayerInput{FilingStatus: dto.FilingSingle}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestAggregateSumsCategories(t *testing.T) {
	w2 := record(dto.DocTypeW2,
		field(dto.FieldWages, "60250"),
		field(dto.FieldFederalIncomeTaxWithheld, "7200"),
		field(dto.FieldSocialSecurityWages, "60250"),
	)
	nec := record(dto.DocType1099NEC, dto.FieldValue{
		Name: dto.FieldNonemployeeCompensation, Amount: dec("1000"), SelfEmployment: true,
	})
	misc := record(dto.DocType1099MISC,
		field(dto.FieldNonemployeeCompensation, "5623.24"),
		field(dto.FieldRents, "100"),
	)
	intr := record(dto.DocType1099INT, field(dto.FieldInterestIncome, "12.34"))

	totals := Aggregate([]dto.CanonicalRecord{w2, nec, misc, intr})

	assert.Equal(t, 4, totals.DocumentCount)
	assertDecimal(t, "60250", totals.Wages)
	assertDecimal(t, "6623.24", totals.NonemployeeCompensation)
	assertDecimal(t, "1000", totals.SelfEmploymentIncome)
	assertDecimal(t, "12.34", totals.InterestIncome)
	assertDecimal(t, "100", totals.Rents)
	assertDecimal(t, "7200", totals.FederalIncomeTaxWithheld)
	assertDecimal(t, "66985.58", totals.TotalIncome())
	assertDecimal(t, "7200", totals.TotalWithheld())
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	a := record(dto.DocTypeW2, field(dto.FieldWages, "0.10"), field(dto.FieldFederalIncomeTaxWithheld, "0.20"))
	b := record(dto.DocType1099DIV, field(dto.FieldDividendIncome, "0.30"), field(dto.FieldWages, "0.001"))
	c := record(dto.DocType1099K, field(dto.FieldOtherIncome, "99999999.99"))

	ab := Aggregate([]dto.CanonicalRecord{a, b, c})
	ba := Aggregate([]dto.CanonicalRecord{c, b, a})

	assert.True(t, cmp.Equal(ab, ba, decimalComparer), cmp.Diff(ab, ba, decimalComparer))
}

func TestAggregateEmpty(t *testing.T) {
	totals := Aggregate(nil)

	assert.Equal(t, 0, totals.DocumentCount)
	assert.True(t, totals.TotalIncome().IsZero())
}

func TestCalculateExample3(t *testing.T) {
	totals := Aggregate([]dto.CanonicalRecord{record(dto.DocTypeW2,
		field(dto.FieldWages, "60250.00"),
		field(dto.FieldFederalIncomeTaxWithheld, "7200.00"),
	)})

	res, err := calculator(t).Calculate(totals, single())
	require.NoError(t, err)

	assert.Equal(t, 2024, res.TaxYear)
	assertDecimal(t, "60250", res.TotalIncome)
	assertDecimal(t, "14600", res.DeductionAmount)
	assertDecimal(t, "45650", res.TaxableIncome)
	assertDecimal(t, "5246", res.FederalIncomeTax)
	assert.True(t, res.SelfEmploymentTax.IsZero())
	assertDecimal(t, "5246", res.TotalTaxLiability)
	assertDecimal(t, "7200", res.TotalWithheld)
	assertDecimal(t, "1954", res.RefundOrDue)
	assert.Equal(t, dto.ResultRefund, res.ResultStatus)
	assert.Equal(t, "1954.00", res.RefundOrDue.StringFixed(2))
}

func TestCalculateBracketSchedules(t *testing.T) {
	tests := []struct {
		name   string
		status dto.FilingStatus
		wages  string
		tax    string
	}{
		{"below deduction", dto.FilingSingle, "10000", "0"},
		{"first bracket edge", dto.FilingSingle, "26200", "1160"},
		{"top bracket", dto.FilingSingle, "714600", "217187.75"},
		{"married joint", dto.FilingMarriedJoint, "100000", "8032"},
		{"surviving spouse uses joint table", dto.FilingQualifyingSurvivingSpouse, "100000", "8032"},
		{"head of household", dto.FilingHeadOfHousehold, "50000", "3041"},
		{"married separate", dto.FilingMarriedSeparate, "60250", "5246"},
	}

	calc := calculator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := Aggregate([]dto.CanonicalRecord{record(dto.DocTypeW2, field(dto.FieldWages, tt.wages))})

			res, err := calc.Calculate(totals, dto.TaxpayerInput{FilingStatus: tt.status})
			require.NoError(t, err)
			assertDecimal(t, tt.tax, res.FederalIncomeTax)
		})
	}
}

func TestCalculateSelfEmploymentTax(t *testing.T) {
	calc := calculator(t)
	nec := func(amount string) dto.CanonicalRecord {
		return record(dto.DocType1099NEC, dto.FieldValue{
			Name: dto.FieldNonemployeeCompensation, Amount: dec(amount), SelfEmployment: true,
		})
	}

	res, err := calc.Calculate(Aggregate([]dto.CanonicalRecord{nec("10000")}), single())
	require.NoError(t, err)
	assert.True(t, res.FederalIncomeTax.IsZero())
	assertDecimal(t, "1412.96", res.SelfEmploymentTax)
	assertDecimal(t, "1412.96", res.TotalTaxLiability)
	assertDecimal(t, "-1412.96", res.RefundOrDue)
	assert.Equal(t, dto.ResultAmountDue, res.ResultStatus)

	// W-2 Social Security wages at the wage base leave only Medicare
	capped := Aggregate([]dto.CanonicalRecord{
		nec("10000"),
		record(dto.DocTypeW2, field(dto.FieldSocialSecurityWages, "168600")),
	})
	res, err = calc.Calculate(capped, single())
	require.NoError(t, err)
	assertDecimal(t, "267.82", res.SelfEmploymentTax)

	res, err = calc.Calculate(Aggregate([]dto.CanonicalRecord{nec("400")}), single())
	require.NoError(t, err)
	assert.True(t, res.SelfEmploymentTax.IsZero())
}

func TestCalculateExample4MiscBox7HasNoSelfEmploymentTax(t *testing.T) {
	misc := record(dto.DocType1099MISC, field(dto.FieldNonemployeeCompensation, "5623.24"))

	res, err := calculator(t).Calculate(Aggregate([]dto.CanonicalRecord{misc}), single())
	require.NoError(t, err)

	assert.True(t, res.SelfEmploymentTax.IsZero())
	assertDecimal(t, "5623.24", res.TotalIncome)
}

func TestCalculateCredits(t *testing.T) {
	calc := calculator(t)
	totals := Aggregate([]dto.CanonicalRecord{record(dto.DocTypeW2,
		field(dto.FieldWages, "60250"),
		field(dto.FieldFederalIncomeTaxWithheld, "7200"),
	)})

	res, err := calc.Calculate(totals, dto.TaxpayerInput{
		FilingStatus:     dto.FilingSingle,
		NumDependents:    2,
		EducationCredits: dec("100"),
	})
	require.NoError(t, err)
	assertDecimal(t, "4000", res.ChildTaxCredit)
	assertDecimal(t, "4100", res.TotalCredits)
	assertDecimal(t, "1146", res.TotalTaxLiability)
	assertDecimal(t, "6054", res.RefundOrDue)

	res, err = calc.Calculate(totals, dto.TaxpayerInput{FilingStatus: dto.FilingSingle, NumDependents: 5})
	require.NoError(t, err)
	assert.True(t, res.TotalTaxLiability.IsZero())
	assertDecimal(t, "7200", res.RefundOrDue)
}

func TestCalculateBreakEven(t *testing.T) {
	totals := Aggregate([]dto.CanonicalRecord{record(dto.DocTypeW2,
		field(dto.FieldWages, "60250"),
		field(dto.FieldFederalIncomeTaxWithheld, "5246"),
	)})

	res, err := calculator(t).Calculate(totals, single())
	require.NoError(t, err)

	assert.True(t, res.RefundOrDue.IsZero())
	assert.Equal(t, dto.ResultBreakEven, res.ResultStatus)
}

func TestCalculateRejectsInvalidInput(t *testing.T) {
	calc := calculator(t)
	totals := Aggregate(nil)

	_, err := calc.Calculate(totals, dto.TaxpayerInput{FilingStatus: "widowed"})
	assert.ErrorIs(t, err, dto.ErrUnsupportedFilingStatus)

	_, err = calc.Calculate(totals, dto.TaxpayerInput{FilingStatus: dto.FilingSingle, NumDependents: -1})
	assert.ErrorIs(t, err, dto.ErrInvalidInput)

	_, err = calc.Calculate(totals, dto.TaxpayerInput{FilingStatus: dto.FilingSingle, OtherCredits: dec("-1")})
	assert.ErrorIs(t, err, dto.ErrInvalidInput)

	negative := totals
	negative.InterestIncome = dec("-5")
	_, err = calc.Calculate(negative, single())
	assert.ErrorIs(t, err, dto.ErrNegativeTotals)

	_, err = NewTaxCalculator(2019)
	assert.ErrorIs(t, err, dto.ErrInvalidInput)
}

func TestParseFilingStatus(t *testing.T) {
	status, err := ParseFilingStatus("head_of_household")
	require.NoError(t, err)
	assert.Equal(t, dto.FilingHeadOfHousehold, status)

	_, err = ParseFilingStatus("Single")
	assert.ErrorIs(t, err, dto.ErrUnsupportedFilingStatus)
}
