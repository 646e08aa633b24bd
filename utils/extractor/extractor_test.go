package extractor

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/tax-form-engine/dto"
	"github.com/Aashish23092/tax-form-engine/utils/textnorm"
)

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func extract(raw string) Result {
	return New(0).Extract(textnorm.Normalize(raw))
}

func TestExtractMarkdownTableRow(t *testing.T) {
	res := extract("| 1 | Wages, tips, other compensation | $23,500.00 |")

	c, ok := res.Box("1")
	require.True(t, ok)
	assertAmount(t, "23500.00", c.Amount)
	assert.Equal(t, "Wages, tips, other compensation", c.Label)
	assert.Equal(t, dto.MethodTableCell, c.Method)
	assert.Equal(t, ConfidenceTableCell, c.Confidence)
}

func TestExtractHTMLTableRow(t *testing.T) {
	res := extract("<table><tr><td>1</td><td>Wages, tips, other comp.</td><td>23500.00</td></tr></table>")

	c, ok := res.Box("1")
	require.True(t, ok)
	assertAmount(t, "23500.00", c.Amount)
	assert.Equal(t, dto.MethodTableCell, c.Method)
}

func TestExtractTableSkipsHeaderAndSeparator(t *testing.T) {
	text := "| Box | Description | Amount |\n|---|---|---|\n| 2 | Federal income tax withheld | 7,200.00 |"

	res := New(0).Extract(text)

	require.Len(t, res.Entries, 1)
	assert.Equal(t, "2", res.Entries[0].Box)
	assertAmount(t, "7200", res.Entries[0].Amount)
}

func TestExtractTableRowWithSeveralBoxes(t *testing.T) {
	res := New(0).Extract("| 1 | Wages | 500.00 | 2 | Federal income tax withheld | 50.00 |")

	wages, ok := res.Box("1")
	require.True(t, ok)
	assertAmount(t, "500", wages.Amount)

	withheld, ok := res.Box("2")
	require.True(t, ok)
	assertAmount(t, "50", withheld.Amount)
}

func TestExtractTableHeaderColumns(t *testing.T) {
	text := "| 1 Wages, tips, other compensation | 2 Federal income tax withheld | 3 Social security wages |\n" +
		"|---|---|---|\n" +
		"| 60,250.00 | 7200.00 | |"

	res := New(0).Extract(text)

	wages, ok := res.Box("1")
	require.True(t, ok)
	assert.Equal(t, "Wages, tips, other compensation", wages.Label)
	assertAmount(t, "60250", wages.Amount)
	assert.Equal(t, dto.MethodTableCell, wages.Method)

	withheld, ok := res.Box("2")
	require.True(t, ok)
	assertAmount(t, "7200", withheld.Amount)

	ss, ok := res.Box("3")
	require.True(t, ok)
	assert.True(t, ss.Blank)
}

func TestExtractTableHeaderColumnsNeedMatchingWidth(t *testing.T) {
	text := "| 1 Wages | 2 Federal income tax withheld |\n| 60250.00 |"

	assert.True(t, New(0).Extract(text).Empty())
}

func TestExtractSameLine(t *testing.T) {
	res := extract("1 Wages, tips, other comp. 23500.00")

	require.Len(t, res.Entries, 1)
	c := res.Entries[0]
	assert.Equal(t, "1", c.Box)
	assert.Equal(t, "Wages, tips, other comp.", c.Label)
	assertAmount(t, "23500", c.Amount)
	assert.Equal(t, dto.MethodSameLine, c.Method)
}

func TestExtractSameLineTwoColumns(t *testing.T) {
	res := extract("1 Wages, tips, other comp. 23500.00 2 Federal income tax withheld 2100.00")

	wages, ok := res.Box("1")
	require.True(t, ok)
	assertAmount(t, "23500", wages.Amount)

	withheld, ok := res.Box("2")
	require.True(t, ok)
	assert.Equal(t, "Federal income tax withheld", withheld.Label)
	assertAmount(t, "2100", withheld.Amount)
}

func TestExtractSameLinePlainIntegerNeedsBox(t *testing.T) {
	res := extract("Box 1 Nonemployee compensation 5000")
	c, ok := res.Box("1")
	require.True(t, ok)
	assertAmount(t, "5000", c.Amount)

	res = extract("Form W-2 Wage and Tax Statement 2024")
	assert.True(t, res.Empty())
}

func TestExtractSameLineWholeDollarBoxes(t *testing.T) {
	res := extract("1 Wages, tips, other compensation 23500 2 Federal income tax withheld 1500")

	wages, ok := res.Box("1")
	require.True(t, ok)
	assert.Equal(t, "Wages, tips, other compensation", wages.Label)
	assertAmount(t, "23500", wages.Amount)

	withheld, ok := res.Box("2")
	require.True(t, ok)
	assert.Equal(t, "Federal income tax withheld", withheld.Label)
	assertAmount(t, "1500", withheld.Amount)
}

func TestExtractSameLineUnboxedWholeDollar(t *testing.T) {
	res := extract("Wages, tips, other compensation 23500\nFederal income tax withheld 1500")

	require.Len(t, res.Entries, 2)
	assert.Equal(t, "Wages, tips, other compensation", res.Entries[0].Label)
	assertAmount(t, "23500", res.Entries[0].Amount)
	assert.Equal(t, "Federal income tax withheld", res.Entries[1].Label)
	assertAmount(t, "1500", res.Entries[1].Amount)

	res = extract("Wages 23500\n5000.00")
	require.NotEmpty(t, res.Entries)
	assert.Equal(t, "Wages", res.Entries[0].Label)
	assertAmount(t, "23500", res.Entries[0].Amount)

	// a trailing year is not an amount unless a box claims it
	assert.True(t, extract("Tax year 2024").Empty())
	assert.True(t, extract("Statement 2024 for recipient").Empty())
}

func TestExtractColonPair(t *testing.T) {
	res := extract("Box 1: Wages: $23,500.00")

	require.Len(t, res.Entries, 1)
	c := res.Entries[0]
	assert.Equal(t, "1", c.Box)
	assert.Equal(t, "Wages", c.Label)
	assertAmount(t, "23500", c.Amount)
	assert.Equal(t, dto.MethodColonPair, c.Method)
}

func TestExtractSeveralColonPairsOnOneLine(t *testing.T) {
	res := extract("Wages: 500.00 Federal income tax withheld: 50.00")

	require.Len(t, res.Entries, 2)
	assert.Equal(t, "Wages", res.Entries[0].Label)
	assertAmount(t, "500", res.Entries[0].Amount)
	assert.Equal(t, "Federal income tax withheld", res.Entries[1].Label)
	assertAmount(t, "50", res.Entries[1].Amount)
	assert.Equal(t, dto.MethodColonPair, res.Entries[1].Method)
}

func TestExtractIgnoresClockTimes(t *testing.T) {
	assert.True(t, extract("10:30").Empty())
}

func TestExtractLookahead(t *testing.T) {
	res := extract("Nonemployee compensation\n5000.00")

	require.Len(t, res.Entries, 1)
	c := res.Entries[0]
	assert.Equal(t, "Nonemployee compensation", c.Label)
	assertAmount(t, "5000", c.Amount)
	assert.Equal(t, dto.MethodLookahead, c.Method)
}

func TestExtractLookaheadBoxOnOwnLine(t *testing.T) {
	res := extract("<p>Box 1</p><p>Nonemployee compensation</p><p>5000</p>")

	c, ok := res.Box("1")
	require.True(t, ok)
	assert.Equal(t, "Nonemployee compensation", c.Label)
	assertAmount(t, "5000", c.Amount)
}

func TestExtractLookaheadWindow(t *testing.T) {
	text := "Box 1\nNonemployee compensation received during the year\n5000.00"

	assert.True(t, New(20).Extract(text).Empty())

	c, ok := New(0).Extract(text).Box("1")
	require.True(t, ok)
	assertAmount(t, "5000", c.Amount)
}

func TestExtractBlankBoxes(t *testing.T) {
	cases := []string{
		"| 3 | Other income | |",
		"| 3 | Other income | $ |",
		"3 Other income $",
		"Box 3: Other income: $",
		"Box 3: Other income: N/A",
	}
	for _, text := range cases {
		res := New(0).Extract(text)
		c, ok := res.Box("3")
		require.True(t, ok, text)
		assert.True(t, c.Blank, text)
		assert.True(t, c.Amount.IsZero(), text)
	}
}

func TestExtractNegativeReadsAsZero(t *testing.T) {
	res := extract("Wages -500.00")

	require.Len(t, res.Entries, 1)
	assert.True(t, res.Entries[0].Amount.IsZero())
	assert.True(t, res.Entries[0].Blank)
}

func TestExtractGarbledInput(t *testing.T) {
	for _, text := range []string{"", "@@##!! $$ %%% ^^^", "|||", "\n\n\n", "Lorem ipsum dolor sit amet"} {
		assert.NotPanics(t, func() {
			assert.True(t, extract(text).Empty(), text)
		})
	}
}

func TestResolveHigherConfidenceWins(t *testing.T) {
	res := New(0).Extract("1 Wages 600.00\n| 1 | Wages | 500.00 |")

	c, ok := res.Box("1")
	require.True(t, ok)
	assertAmount(t, "500", c.Amount)
	assert.Equal(t, dto.MethodTableCell, c.Method)
	assert.Equal(t, 0, c.Line)
}

func TestResolveEqualConfidenceKeepsFirst(t *testing.T) {
	res := New(0).Extract("1 Wages 100.00\n1 Wages 200.00")

	require.Len(t, res.Entries, 1)
	assertAmount(t, "100", res.Entries[0].Amount)
}

func TestResolveAmountBeatsBlank(t *testing.T) {
	res := New(0).Extract("| 1 | Wages | |\n1 Wages 300.00")

	c, ok := res.Box("1")
	require.True(t, ok)
	assert.False(t, c.Blank)
	assertAmount(t, "300", c.Amount)
}

func TestResolveMergesNearIdenticalLabels(t *testing.T) {
	res := New(0).Extract("Nonemployee compensation 100.00\nNonemployee compensatlon: 250.00")

	require.Len(t, res.Entries, 1)
	assertAmount(t, "250", res.Entries[0].Amount)
	assert.Equal(t, dto.MethodColonPair, res.Entries[0].Method)
}

func TestResultBoxCaseInsensitive(t *testing.T) {
	res := New(0).Extract("| 1a | Total ordinary dividends | 1,000.00 |")

	c, ok := res.Box("1A")
	require.True(t, ok)
	assertAmount(t, "1000", c.Amount)
}
