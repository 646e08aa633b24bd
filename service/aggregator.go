package service

import (
	"github.com/shopspring/decimal"

	"github.com/Aashish23092/tax-form-engine/dto"
)

// Aggregate sums every record into per-category totals. Each record is
// treated as a distinct income source and the order of records does not
// affect the result.
func Aggregate(records []dto.CanonicalRecord) dto.AggregateTotals {
	totals := dto.AggregateTotals{
		DocumentCount:             len(records),
		Wages:                     decimal.Zero,
		NonemployeeCompensation:   decimal.Zero,
		SelfEmploymentIncome:      decimal.Zero,
		InterestIncome:            decimal.Zero,
		DividendIncome:            decimal.Zero,
		CapitalGains:              decimal.Zero,
		OtherIncome:               decimal.Zero,
		Rents:                     decimal.Zero,
		Royalties:                 decimal.Zero,
		SocialSecurityWages:       decimal.Zero,
		MedicareWages:             decimal.Zero,
		FederalIncomeTaxWithheld:  decimal.Zero,
		SocialSecurityTaxWithheld: decimal.Zero,
		MedicareTaxWithheld:       decimal.Zero,
	}

	for _, rec := range records {
		totals.Wages = totals.Wages.Add(rec.Amount(dto.FieldWages))
		totals.NonemployeeCompensation = totals.NonemployeeCompensation.Add(rec.Amount(dto.FieldNonemployeeCompensation))
		totals.SelfEmploymentIncome = totals.SelfEmploymentIncome.Add(rec.SelfEmploymentAmount())
		totals.InterestIncome = totals.InterestIncome.Add(rec.Amount(dto.FieldInterestIncome))
		totals.DividendIncome = totals.DividendIncome.Add(rec.Amount(dto.FieldDividendIncome))
		totals.CapitalGains = totals.CapitalGains.Add(rec.Amount(dto.FieldCapitalGains))
		totals.OtherIncome = totals.OtherIncome.Add(rec.Amount(dto.FieldOtherIncome))
		totals.Rents = totals.Rents.Add(rec.Amount(dto.FieldRents))
		totals.Royalties = totals.Royalties.Add(rec.Amount(dto.FieldRoyalties))
		totals.SocialSecurityWages = totals.SocialSecurityWages.Add(rec.Amount(dto.FieldSocialSecurityWages))
		totals.MedicareWages = totals.MedicareWages.Add(rec.Amount(dto.FieldMedicareWages))
		totals.FederalIncomeTaxWithheld = totals.FederalIncomeTaxWithheld.Add(rec.Amount(dto.FieldFederalIncomeTaxWithheld))
		totals.SocialSecurityTaxWithheld = totals.SocialSecurityTaxWithheld.Add(rec.Amount(dto.FieldSocialSecurityTaxWithheld))
		totals.MedicareTaxWithheld = totals.MedicareTaxWithheld.Add(rec.Amount(dto.FieldMedicareTaxWithheld))
	}
	return totals
}
