package service

import (
	"github.com/shopspring/decimal"

	"github.com/Aashish23092/tax-form-engine/dto"
)

// bracket taxes income above the previous ceiling up to its own ceiling.
// The top bracket has no ceiling.
type bracket struct {
	ceiling decimal.Decimal
	open    bool
	rate    decimal.Decimal
}

type taxYearTable struct {
	year                   int
	standardDeduction      map[dto.FilingStatus]decimal.Decimal
	brackets               map[dto.FilingStatus][]bracket
	childTaxCredit         decimal.Decimal
	seEarningsFactor       decimal.Decimal
	seSocialSecurityRate   decimal.Decimal
	seMedicareRate         decimal.Decimal
	seMinimumNetEarnings   decimal.Decimal
	socialSecurityWageBase decimal.Decimal
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func schedule(ceilings []string, rates []string) []bracket {
	out := make([]bracket, 0, len(rates))
	for i, r := range rates {
		b := bracket{rate: d(r)}
		if i < len(ceilings) {
			b.ceiling = d(ceilings[i])
		} else {
			b.open = true
		}
		out = append(out, b)
	}
	return out
}

var rates2024 = []string{"0.10", "0.12", "0.22", "0.24", "0.32", "0.35", "0.37"}

var table2024 = taxYearTable{
	year: 2024,
	standardDeduction: map[dto.FilingStatus]decimal.Decimal{
		dto.FilingSingle:                    d("14600"),
		dto.FilingMarriedJoint:              d("29200"),
		dto.FilingMarriedSeparate:           d("14600"),
		dto.FilingHeadOfHousehold:           d("21900"),
		dto.FilingQualifyingSurvivingSpouse: d("29200"),
	},
	brackets: map[dto.FilingStatus][]bracket{
		dto.FilingSingle:                    schedule([]string{"11600", "47150", "100525", "191950", "243725", "609350"}, rates2024),
		dto.FilingMarriedJoint:              schedule([]string{"23200", "94300", "201050", "383900", "487450", "731200"}, rates2024),
		dto.FilingMarriedSeparate:           schedule([]string{"11600", "47150", "100525", "191950", "243725", "365600"}, rates2024),
		dto.FilingHeadOfHousehold:           schedule([]string{"16550", "63100", "100500", "191950", "243700", "609350"}, rates2024),
		dto.FilingQualifyingSurvivingSpouse: schedule([]string{"23200", "94300", "201050", "383900", "487450", "731200"}, rates2024),
	},
	childTaxCredit:         d("2000"),
	seEarningsFactor:       d("0.9235"),
	seSocialSecurityRate:   d("0.124"),
	seMedicareRate:         d("0.029"),
	seMinimumNetEarnings:   d("400"),
	socialSecurityWageBase: d("168600"),
}

var taxTables = map[int]taxYearTable{
	2024: table2024,
}
