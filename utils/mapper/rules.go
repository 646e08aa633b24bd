package mapper

import "github.com/Aashish23092/tax-form-engine/dto"

// BoxRule attributes one printed box to a canonical field. Keywords are
// matched against normalized labels when the box number itself is missing.
type BoxRule struct {
	Box            string
	Field          string
	Keywords       []string
	Exclude        []string
	SelfEmployment bool
	Required       bool
}

// withheldKeywords name federal withholding the way forms and converters
// print it.
var withheldKeywords = []string{"federal income tax withheld", "federal tax withheld", "tax withheld"}

// payrollExclude keeps payroll, state and local lines off the federal
// wage and withholding boxes.
var payrollExclude = []string{"social security", "medicare", "state", "local"}

var boxRules = map[dto.DocumentType][]BoxRule{
	dto.DocTypeW2: {
		{Box: "1", Field: dto.FieldWages, Keywords: []string{"wages tips other comp", "wages tips and other comp", "wages tips", "wages"}, Exclude: payrollExclude, Required: true},
		{Box: "2", Field: dto.FieldFederalIncomeTaxWithheld, Keywords: append([]string{"federal income tax", "federal withholding"}, withheldKeywords...), Exclude: payrollExclude},
		{Box: "3", Field: dto.FieldSocialSecurityWages, Keywords: []string{"social security wages"}},
		{Box: "4", Field: dto.FieldSocialSecurityTaxWithheld, Keywords: []string{"social security tax withheld", "social security tax"}},
		{Box: "5", Field: dto.FieldMedicareWages, Keywords: []string{"medicare wages and tips", "medicare wages"}},
		{Box: "6", Field: dto.FieldMedicareTaxWithheld, Keywords: []string{"medicare tax withheld", "medicare tax"}},
	},
	dto.DocType1099NEC: {
		{Box: "1", Field: dto.FieldNonemployeeCompensation, Keywords: []string{"nonemployee compensation", "non employee compensation"}, SelfEmployment: true, Required: true},
		{Box: "4", Field: dto.FieldFederalIncomeTaxWithheld, Keywords: withheldKeywords, Exclude: payrollExclude},
	},
	dto.DocType1099INT: {
		{Box: "1", Field: dto.FieldInterestIncome, Keywords: []string{"interest income"}, Exclude: []string{"tax exempt"}, Required: true},
		{Box: "3", Field: dto.FieldInterestIncome, Keywords: []string{"interest on u s savings bonds", "treasury obligations"}},
		{Box: "4", Field: dto.FieldFederalIncomeTaxWithheld, Keywords: withheldKeywords, Exclude: payrollExclude},
	},
	dto.DocType1099DIV: {
		{Box: "1a", Field: dto.FieldDividendIncome, Keywords: []string{"total ordinary dividends", "ordinary dividends"}, Required: true},
		{Box: "2a", Field: dto.FieldCapitalGains, Keywords: []string{"total capital gain distr", "capital gain distributions"}},
		{Box: "4", Field: dto.FieldFederalIncomeTaxWithheld, Keywords: withheldKeywords, Exclude: payrollExclude},
	},
	dto.DocType1099MISC: {
		{Box: "1", Field: dto.FieldRents, Keywords: []string{"rents"}},
		{Box: "2", Field: dto.FieldRoyalties, Keywords: []string{"royalties"}},
		{Box: "3", Field: dto.FieldOtherIncome, Keywords: []string{"other income"}},
		{Box: "4", Field: dto.FieldFederalIncomeTaxWithheld, Keywords: withheldKeywords, Exclude: payrollExclude},
		// box 7 on this era's 1099-MISC is ordinary income
		{Box: "7", Field: dto.FieldNonemployeeCompensation, Keywords: []string{"nonemployee compensation", "non employee compensation"}},
	},
	dto.DocType1099B: {
		{Box: "1d", Field: dto.FieldProceeds, Keywords: []string{"proceeds"}, Exclude: []string{"fishing"}, Required: true},
		{Box: "1e", Field: dto.FieldCostBasis, Keywords: []string{"cost or other basis", "cost basis"}},
		{Box: "4", Field: dto.FieldFederalIncomeTaxWithheld, Keywords: withheldKeywords, Exclude: payrollExclude},
	},
	dto.DocType1099K: {
		{Box: "1a", Field: dto.FieldOtherIncome, Keywords: []string{"gross amount of payment card", "gross amount"}, Required: true},
		{Box: "4", Field: dto.FieldFederalIncomeTaxWithheld, Keywords: withheldKeywords, Exclude: payrollExclude},
	},
	dto.DocType1099OID: {
		{Box: "1", Field: dto.FieldInterestIncome, Keywords: []string{"original issue discount"}, Exclude: []string{"tax exempt"}, Required: true},
		{Box: "2", Field: dto.FieldInterestIncome, Keywords: []string{"other periodic interest"}},
		{Box: "4", Field: dto.FieldFederalIncomeTaxWithheld, Keywords: withheldKeywords, Exclude: payrollExclude},
	},
}

// Rules returns the box table of a document type, nil for UNKNOWN.
func Rules(docType dto.DocumentType) []BoxRule {
	return boxRules[docType]
}

// genericRule drives best-effort attribution for UNKNOWN documents. Order
// matters: specific phrases come before the words they contain.
type genericRule struct {
	field    string
	keywords []string
	exclude  []string
}

var genericRules = []genericRule{
	{field: dto.FieldFederalIncomeTaxWithheld, keywords: []string{"federal income tax withheld", "federal withholding", "federal tax withheld"}},
	{field: dto.FieldSocialSecurityTaxWithheld, keywords: []string{"social security tax"}},
	{field: dto.FieldSocialSecurityWages, keywords: []string{"social security wages"}},
	{field: dto.FieldMedicareTaxWithheld, keywords: []string{"medicare tax"}},
	{field: dto.FieldMedicareWages, keywords: []string{"medicare wages"}},
	{field: dto.FieldNonemployeeCompensation, keywords: []string{"nonemployee compensation", "non employee compensation"}},
	{field: dto.FieldInterestIncome, keywords: []string{"interest income", "interest earned", "interest paid", "original issue discount"}},
	{field: dto.FieldDividendIncome, keywords: []string{"ordinary dividends", "dividend income", "dividends"}},
	{field: dto.FieldCapitalGains, keywords: []string{"capital gain"}},
	{field: dto.FieldRents, keywords: []string{"rents", "rental income"}},
	{field: dto.FieldRoyalties, keywords: []string{"royalties"}},
	{field: dto.FieldOtherIncome, keywords: []string{"other income"}},
	{field: dto.FieldProceeds, keywords: []string{"proceeds"}},
	{field: dto.FieldCostBasis, keywords: []string{"cost basis", "cost or other basis"}},
	{field: dto.FieldWages, keywords: []string{"wages tips", "wages", "salary"}, exclude: []string{"social security", "medicare", "state", "local"}},
}

// keyAliases maps normalized key/value keys from upstream structured
// extraction to canonical fields.
var keyAliases = map[string]string{
	"wages":                                dto.FieldWages,
	"wages tips other compensation":        dto.FieldWages,
	"wages tips and other compensation":    dto.FieldWages,
	"federal income tax withheld":          dto.FieldFederalIncomeTaxWithheld,
	"federal withholding":                  dto.FieldFederalIncomeTaxWithheld,
	"federal tax withheld":                 dto.FieldFederalIncomeTaxWithheld,
	"federal withheld":                     dto.FieldFederalIncomeTaxWithheld,
	"social security wages":                dto.FieldSocialSecurityWages,
	"social security tax withheld":         dto.FieldSocialSecurityTaxWithheld,
	"social security tax":                  dto.FieldSocialSecurityTaxWithheld,
	"medicare wages":                       dto.FieldMedicareWages,
	"medicare wages and tips":              dto.FieldMedicareWages,
	"medicare tax withheld":                dto.FieldMedicareTaxWithheld,
	"medicare tax":                         dto.FieldMedicareTaxWithheld,
	"nonemployee compensation":             dto.FieldNonemployeeCompensation,
	"non employee compensation":            dto.FieldNonemployeeCompensation,
	"interest income":                      dto.FieldInterestIncome,
	"interest":                             dto.FieldInterestIncome,
	"dividend income":                      dto.FieldDividendIncome,
	"ordinary dividends":                   dto.FieldDividendIncome,
	"total ordinary dividends":             dto.FieldDividendIncome,
	"capital gains":                        dto.FieldCapitalGains,
	"capital gain distributions":           dto.FieldCapitalGains,
	"total capital gain distributions":     dto.FieldCapitalGains,
	"other income":                         dto.FieldOtherIncome,
	"gross amount":                         dto.FieldOtherIncome,
	"rents":                                dto.FieldRents,
	"royalties":                            dto.FieldRoyalties,
	"proceeds":                             dto.FieldProceeds,
	"cost basis":                           dto.FieldCostBasis,
	"cost or other basis":                  dto.FieldCostBasis,
	"original issue discount":              dto.FieldInterestIncome,
	"gross amount of payment card":         dto.FieldOtherIncome,
	"payment card and third party network": dto.FieldOtherIncome,
}
