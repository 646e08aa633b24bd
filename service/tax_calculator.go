package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Aashish23092/tax-form-engine/dto"
)

// TaxCalculator turns aggregate totals into a federal tax result for one
// tax year.
type TaxCalculator struct {
	table taxYearTable
}

// NewTaxCalculator returns a calculator for the given tax year.
func NewTaxCalculator(year int) (*TaxCalculator, error) {
	table, ok := taxTables[year]
	if !ok {
		return nil, fmt.Errorf("%w: tax year %d is not supported", dto.ErrInvalidInput, year)
	}
	return &TaxCalculator{table: table}, nil
}

// Year returns the tax year the calculator applies.
func (c *TaxCalculator) Year() int {
	return c.table.year
}

// ParseFilingStatus resolves a filing status string.
func ParseFilingStatus(s string) (dto.FilingStatus, error) {
	status := dto.FilingStatus(s)
	if _, ok := table2024.standardDeduction[status]; !ok {
		return "", fmt.Errorf("%w: %q", dto.ErrUnsupportedFilingStatus, s)
	}
	return status, nil
}

// Calculate applies the standard deduction, the bracket schedule,
// self-employment tax and credits. Amounts are kept exact until the result
// is reported, then rounded to cents.
func (c *TaxCalculator) Calculate(totals dto.AggregateTotals, taxpayer dto.TaxpayerInput) (dto.TaxResult, error) {
	deduction, ok := c.table.standardDeduction[taxpayer.FilingStatus]
	if !ok {
		return dto.TaxResult{}, fmt.Errorf("%w: %q", dto.ErrUnsupportedFilingStatus, taxpayer.FilingStatus)
	}
	if err := validateTaxpayer(taxpayer); err != nil {
		return dto.TaxResult{}, err
	}
	if err := validateTotals(totals); err != nil {
		return dto.TaxResult{}, err
	}

	totalIncome := totals.TotalIncome()
	taxable := nonNegative(totalIncome.Sub(deduction))
	federal := bracketTax(taxable, c.table.brackets[taxpayer.FilingStatus])
	seTax := c.selfEmploymentTax(totals.SelfEmploymentIncome, totals.SocialSecurityWages)

	childCredit := c.table.childTaxCredit.Mul(decimal.NewFromInt(int64(taxpayer.NumDependents)))
	credits := decimal.Sum(childCredit,
		taxpayer.EducationCredits,
		taxpayer.EarnedIncomeCredit,
		taxpayer.OtherCredits,
	)
	liability := nonNegative(federal.Add(seTax).Sub(credits)).Round(2)
	withheld := totals.TotalWithheld().Round(2)
	refund := withheld.Sub(liability)

	return dto.TaxResult{
		TaxYear:           c.table.year,
		FilingStatus:      taxpayer.FilingStatus,
		NumDependents:     taxpayer.NumDependents,
		TotalIncome:       totalIncome.Round(2),
		DeductionAmount:   deduction.Round(2),
		TaxableIncome:     taxable.Round(2),
		FederalIncomeTax:  federal.Round(2),
		SelfEmploymentTax: seTax.Round(2),
		ChildTaxCredit:    childCredit.Round(2),
		TotalCredits:      credits.Round(2),
		TotalTaxLiability: liability,
		TotalWithheld:     withheld,
		RefundOrDue:       refund,
		ResultStatus:      resultStatus(refund),
	}, nil
}

// bracketTax taxes each slice of income at its own bracket rate.
func bracketTax(taxable decimal.Decimal, brackets []bracket) decimal.Decimal {
	tax := decimal.Zero
	lower := decimal.Zero
	for _, b := range brackets {
		if !taxable.GreaterThan(lower) {
			break
		}
		upper := taxable
		if !b.open && b.ceiling.LessThan(taxable) {
			upper = b.ceiling
		}
		tax = tax.Add(upper.Sub(lower).Mul(b.rate))
		lower = b.ceiling
	}
	return tax
}

// selfEmploymentTax applies the Social Security and Medicare components to
// 92.35% of self-employment income. The Social Security part stops at the
// wage base, which W-2 Social Security wages already use up.
func (c *TaxCalculator) selfEmploymentTax(seIncome, ssWages decimal.Decimal) decimal.Decimal {
	net := seIncome.Mul(c.table.seEarningsFactor)
	if net.LessThan(c.table.seMinimumNetEarnings) {
		return decimal.Zero
	}
	ssBase := decimal.Min(net, nonNegative(c.table.socialSecurityWageBase.Sub(ssWages)))
	return ssBase.Mul(c.table.seSocialSecurityRate).Add(net.Mul(c.table.seMedicareRate))
}

func validateTaxpayer(t dto.TaxpayerInput) error {
	if t.NumDependents < 0 {
		return fmt.Errorf("%w: num_dependents must not be negative", dto.ErrInvalidInput)
	}
	credits := []struct {
		name  string
		value decimal.Decimal
	}{
		{"education_credits", t.EducationCredits},
		{"earned_income_credit", t.EarnedIncomeCredit},
		{"other_credits", t.OtherCredits},
	}
	for _, c := range credits {
		if c.value.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", dto.ErrInvalidInput, c.name)
		}
	}
	return nil
}

func validateTotals(t dto.AggregateTotals) error {
	categories := []struct {
		name  string
		value decimal.Decimal
	}{
		{dto.FieldWages, t.Wages},
		{dto.FieldNonemployeeCompensation, t.NonemployeeCompensation},
		{"self_employment_income", t.SelfEmploymentIncome},
		{dto.FieldInterestIncome, t.InterestIncome},
		{dto.FieldDividendIncome, t.DividendIncome},
		{dto.FieldCapitalGains, t.CapitalGains},
		{dto.FieldOtherIncome, t.OtherIncome},
		{dto.FieldRents, t.Rents},
		{dto.FieldRoyalties, t.Royalties},
		{dto.FieldSocialSecurityWages, t.SocialSecurityWages},
		{dto.FieldMedicareWages, t.MedicareWages},
		{dto.FieldFederalIncomeTaxWithheld, t.FederalIncomeTaxWithheld},
		{dto.FieldSocialSecurityTaxWithheld, t.SocialSecurityTaxWithheld},
		{dto.FieldMedicareTaxWithheld, t.MedicareTaxWithheld},
	}
	for _, c := range categories {
		if c.value.IsNegative() {
			return fmt.Errorf("%w: %s is %s", dto.ErrNegativeTotals, c.name, c.value.String())
		}
	}
	return nil
}

func resultStatus(refund decimal.Decimal) string {
	switch refund.Sign() {
	case 1:
		return dto.ResultRefund
	case -1:
		return dto.ResultAmountDue
	default:
		return dto.ResultBreakEven
	}
}

func nonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
