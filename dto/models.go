package dto

import "github.com/shopspring/decimal"

type DocumentType string

const (
	DocTypeW2       DocumentType = "W-2"
	DocType1099NEC  DocumentType = "1099-NEC"
	DocType1099INT  DocumentType = "1099-INT"
	DocType1099DIV  DocumentType = "1099-DIV"
	DocType1099MISC DocumentType = "1099-MISC"
	DocType1099B    DocumentType = "1099-B"
	DocType1099K    DocumentType = "1099-K"
	DocType1099OID  DocumentType = "1099-OID"
	DocTypeUnknown  DocumentType = "UNKNOWN"
)

// SupportedDocumentTypes lists every classifiable form, W-2 first.
func SupportedDocumentTypes() []DocumentType {
	return []DocumentType{
		DocTypeW2,
		DocType1099NEC,
		DocType1099INT,
		DocType1099DIV,
		DocType1099MISC,
		DocType1099B,
		DocType1099K,
		DocType1099OID,
	}
}

// Canonical field names.
const (
	FieldWages                     = "wages"
	FieldFederalIncomeTaxWithheld  = "federal_income_tax_withheld"
	FieldSocialSecurityWages       = "social_security_wages"
	FieldSocialSecurityTaxWithheld = "social_security_tax_withheld"
	FieldMedicareWages             = "medicare_wages"
	FieldMedicareTaxWithheld       = "medicare_tax_withheld"
	FieldNonemployeeCompensation   = "nonemployee_compensation"
	FieldInterestIncome            = "interest_income"
	FieldDividendIncome            = "dividend_income"
	FieldCapitalGains              = "capital_gains"
	FieldOtherIncome               = "other_income"
	FieldRents                     = "rents"
	FieldRoyalties                 = "royalties"
	FieldProceeds                  = "proceeds"
	FieldCostBasis                 = "cost_basis"
)

// CanonicalFields is every field a CanonicalRecord carries; fields a form
// does not define are present with a zero amount.
var CanonicalFields = []string{
	FieldWages,
	FieldFederalIncomeTaxWithheld,
	FieldSocialSecurityWages,
	FieldSocialSecurityTaxWithheld,
	FieldMedicareWages,
	FieldMedicareTaxWithheld,
	FieldNonemployeeCompensation,
	FieldInterestIncome,
	FieldDividendIncome,
	FieldCapitalGains,
	FieldOtherIncome,
	FieldRents,
	FieldRoyalties,
	FieldProceeds,
	FieldCostBasis,
}

type ExtractionMethod string

const (
	MethodKeyValue    ExtractionMethod = "key_value"
	MethodTableCell   ExtractionMethod = "table_cell"
	MethodColonPair   ExtractionMethod = "colon_pair"
	MethodSameLine    ExtractionMethod = "same_line"
	MethodLookahead   ExtractionMethod = "lookahead"
	MethodDerived     ExtractionMethod = "derived"
	MethodGeneric     ExtractionMethod = "generic_low_confidence"
	MethodNone        ExtractionMethod = "none"
	MethodFormMatched ExtractionMethod = "form_specific"
)

// RawDocument is one tax document as handed over by the conversion layer.
type RawDocument struct {
	Filename      string            `json:"filename,omitempty"`
	Text          string            `json:"text"`
	KeyValues     map[string]string `json:"key_values,omitempty"`
	NumericTokens []string          `json:"numeric_tokens,omitempty"`
}

// FieldValue is one attributed amount. SelfEmployment marks amounts that
// carry self-employment tax (1099-NEC box 1 only).
type FieldValue struct {
	Name           string           `json:"name"`
	Amount         decimal.Decimal  `json:"amount"`
	Box            string           `json:"box,omitempty"`
	Method         ExtractionMethod `json:"method"`
	SelfEmployment bool             `json:"self_employment,omitempty"`
}

type CanonicalRecord struct {
	Filename         string                `json:"filename,omitempty"`
	DocumentType     DocumentType          `json:"document_type"`
	ExtractionMethod ExtractionMethod      `json:"extraction_method"`
	Fields           map[string]FieldValue `json:"fields"`
	Completeness     float64               `json:"completeness"`
	LowConfidence    bool                  `json:"low_confidence"`
	Warnings         []string              `json:"warnings"`
}

// NewCanonicalRecord returns an empty record with all maps initialised.
func NewCanonicalRecord(docType DocumentType) CanonicalRecord {
	return CanonicalRecord{
		DocumentType:     docType,
		ExtractionMethod: MethodNone,
		Fields:           make(map[string]FieldValue),
		Warnings:         []string{},
	}
}

// Amount returns the value of a field, zero when absent.
func (r CanonicalRecord) Amount(name string) decimal.Decimal {
	if fv, ok := r.Fields[name]; ok {
		return fv.Amount
	}
	return decimal.Zero
}

// SelfEmploymentAmount sums the fields tagged as self-employment bearing.
func (r CanonicalRecord) SelfEmploymentAmount() decimal.Decimal {
	total := decimal.Zero
	for _, fv := range r.Fields {
		if fv.SelfEmployment {
			total = total.Add(fv.Amount)
		}
	}
	return total
}

// AggregateTotals holds per-category sums for one calculation request.
type AggregateTotals struct {
	DocumentCount             int             `json:"document_count"`
	Wages                     decimal.Decimal `json:"wages"`
	NonemployeeCompensation   decimal.Decimal `json:"nonemployee_compensation"`
	SelfEmploymentIncome      decimal.Decimal `json:"self_employment_income"`
	InterestIncome            decimal.Decimal `json:"interest_income"`
	DividendIncome            decimal.Decimal `json:"dividend_income"`
	CapitalGains              decimal.Decimal `json:"capital_gains"`
	OtherIncome               decimal.Decimal `json:"other_income"`
	Rents                     decimal.Decimal `json:"rents"`
	Royalties                 decimal.Decimal `json:"royalties"`
	SocialSecurityWages       decimal.Decimal `json:"social_security_wages"`
	MedicareWages             decimal.Decimal `json:"medicare_wages"`
	FederalIncomeTaxWithheld  decimal.Decimal `json:"federal_income_tax_withheld"`
	SocialSecurityTaxWithheld decimal.Decimal `json:"social_security_tax_withheld"`
	MedicareTaxWithheld       decimal.Decimal `json:"medicare_tax_withheld"`
}

// TotalIncome is the sum of every income category.
func (t AggregateTotals) TotalIncome() decimal.Decimal {
	return decimal.Sum(t.Wages,
		t.NonemployeeCompensation,
		t.InterestIncome,
		t.DividendIncome,
		t.CapitalGains,
		t.OtherIncome,
		t.Rents,
		t.Royalties,
	)
}

// TotalWithheld is the withholding credited against income tax. Social
// Security and Medicare withholding are payroll taxes and are reported
// separately.
func (t AggregateTotals) TotalWithheld() decimal.Decimal {
	return t.FederalIncomeTaxWithheld
}

type FilingStatus string

const (
	FilingSingle                    FilingStatus = "single"
	FilingMarriedJoint              FilingStatus = "married_joint"
	FilingMarriedSeparate           FilingStatus = "married_separate"
	FilingHeadOfHousehold           FilingStatus = "head_of_household"
	FilingQualifyingSurvivingSpouse FilingStatus = "qualifying_surviving_spouse"
)

// TaxpayerInput carries the filing parameters supplied alongside documents.
type TaxpayerInput struct {
	FilingStatus       FilingStatus    `json:"filing_status"`
	NumDependents      int             `json:"num_dependents"`
	EducationCredits   decimal.Decimal `json:"education_credits"`
	EarnedIncomeCredit decimal.Decimal `json:"earned_income_credit"`
	OtherCredits       decimal.Decimal `json:"other_credits"`
}

const (
	ResultRefund    = "Refund"
	ResultAmountDue = "Amount Due"
	ResultBreakEven = "Break Even"
	DefaultTaxYear  = 2024
)

type TaxResult struct {
	TaxYear           int             `json:"tax_year"`
	FilingStatus      FilingStatus    `json:"filing_status"`
	NumDependents     int             `json:"num_dependents"`
	TotalIncome       decimal.Decimal `json:"total_income"`
	DeductionAmount   decimal.Decimal `json:"deduction_amount"`
	TaxableIncome     decimal.Decimal `json:"taxable_income"`
	FederalIncomeTax  decimal.Decimal `json:"taxes_federal_income_tax"`
	SelfEmploymentTax decimal.Decimal `json:"taxes_self_employment_tax"`
	ChildTaxCredit    decimal.Decimal `json:"child_tax_credit"`
	TotalCredits      decimal.Decimal `json:"total_credits"`
	TotalTaxLiability decimal.Decimal `json:"total_tax_liability"`
	TotalWithheld     decimal.Decimal `json:"total_withheld"`
	RefundOrDue       decimal.Decimal `json:"refund_or_due"`
	ResultStatus      string          `json:"result_status"`
}
