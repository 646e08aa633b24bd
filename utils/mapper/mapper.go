// Package mapper attributes extracted amounts to the canonical fields of a
// classified tax form.
package mapper

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Aashish23092/tax-form-engine/dto"
	"github.com/Aashish23092/tax-form-engine/utils"
	"github.com/Aashish23092/tax-form-engine/utils/extractor"
)

// LowCompletenessThreshold is the completeness percentage under which a
// record is flagged low confidence.
const LowCompletenessThreshold = 50.0

var kvBoxKey = regexp.MustCompile(`^box ?([1-9]\d?[a-z]?)$`)

type mapping struct {
	rec      *dto.CanonicalRecord
	rules    []BoxRule
	found    map[int]bool
	used     map[int]bool
	keyValue bool
}

// Map builds the CanonicalRecord of one document. Pre-extracted key/value
// pairs win over anything found in the text; box numbers win over label
// wording. UNKNOWN documents get generic label attribution only.
func Map(docType dto.DocumentType, res extractor.Result, doc dto.RawDocument) dto.CanonicalRecord {
	rec := dto.NewCanonicalRecord(docType)
	rec.Filename = doc.Filename

	m := &mapping{
		rec:   &rec,
		rules: Rules(docType),
		found: make(map[int]bool),
		used:  make(map[int]bool),
	}

	if len(m.rules) == 0 {
		m.mapGeneric(res, doc.KeyValues)
	} else {
		m.applyKeyValues(doc.KeyValues)
		m.applyBoxAnchors(res)
		m.applyLabels(res)
		m.derive()
		m.rec.Completeness = percent(len(m.found), len(m.rules))
		switch {
		case m.keyValue:
			m.rec.ExtractionMethod = dto.MethodKeyValue
		case len(m.found) > 0:
			m.rec.ExtractionMethod = dto.MethodFormMatched
		}
	}

	m.warn(doc)
	zeroFill(m.rec)

	m.rec.LowConfidence = docType == dto.DocTypeUnknown ||
		m.rec.Completeness < LowCompletenessThreshold ||
		!m.anyFound()
	return rec
}

func (m *mapping) anyFound() bool {
	for _, fv := range m.rec.Fields {
		if fv.Method != dto.MethodNone {
			return true
		}
	}
	return false
}

func (m *mapping) set(idx int, amount decimal.Decimal, box string, method dto.ExtractionMethod) {
	rule := m.rules[idx]
	m.found[idx] = true

	fv, ok := m.rec.Fields[rule.Field]
	if ok {
		// two boxes feed the same field (1099-INT 1+3, 1099-OID 1+2)
		fv.Amount = fv.Amount.Add(amount)
		if box != "" {
			fv.Box = strings.TrimPrefix(fv.Box+","+box, ",")
		}
		m.rec.Fields[rule.Field] = fv
		return
	}
	m.rec.Fields[rule.Field] = dto.FieldValue{
		Name:           rule.Field,
		Amount:         amount,
		Box:            box,
		Method:         method,
		SelfEmployment: rule.SelfEmployment,
	}
}

func (m *mapping) applyKeyValues(kv map[string]string) {
	for _, key := range sortedKeys(kv) {
		nk := utils.NormalizeLabel(key)
		idx := -1

		if sub := kvBoxKey.FindStringSubmatch(nk); sub != nil {
			idx = m.ruleForBox(sub[1])
		} else if field, ok := keyAliases[nk]; ok {
			idx = m.ruleForField(field)
			if idx < 0 {
				m.rec.Warnings = append(m.rec.Warnings, fmt.Sprintf(
					"key/value %q maps to %s, which %s does not report; ignored", key, field, m.rec.DocumentType))
				continue
			}
		} else {
			idx = m.ruleForLabel(nk)
		}
		if idx < 0 || m.found[idx] {
			continue
		}

		amount, _ := extractor.ParseBoxValue(kv[key])
		m.set(idx, amount, m.rules[idx].Box, dto.MethodKeyValue)
		m.keyValue = true
	}
}

func (m *mapping) applyBoxAnchors(res extractor.Result) {
	for idx, rule := range m.rules {
		if m.found[idx] {
			continue
		}
		for i, e := range res.Entries {
			if m.used[i] || e.Box != rule.Box {
				continue
			}
			m.set(idx, e.Amount, e.Box, e.Method)
			m.used[i] = true
			break
		}
	}
}

func (m *mapping) applyLabels(res extractor.Result) {
	for idx, rule := range m.rules {
		if m.found[idx] {
			continue
		}
		for i, e := range res.Entries {
			if m.used[i] {
				continue
			}
			// an entry anchored to another box of this form belongs there
			if e.Box != "" && e.Box != rule.Box && m.ruleForBox(e.Box) >= 0 {
				continue
			}
			if !matchesRule(utils.NormalizeLabel(e.Label), rule.Keywords, rule.Exclude) {
				continue
			}
			m.set(idx, e.Amount, rule.Box, e.Method)
			m.used[i] = true
			break
		}
	}
}

// derive fills fields computed from other boxes.
func (m *mapping) derive() {
	if m.rec.DocumentType != dto.DocType1099B {
		return
	}
	proceeds, ok := m.rec.Fields[dto.FieldProceeds]
	if !ok {
		return
	}
	gain := proceeds.Amount.Sub(m.rec.Amount(dto.FieldCostBasis))
	if gain.IsNegative() {
		gain = decimal.Zero
	}
	m.rec.Fields[dto.FieldCapitalGains] = dto.FieldValue{
		Name:   dto.FieldCapitalGains,
		Amount: gain,
		Method: dto.MethodDerived,
	}
}

func (m *mapping) mapGeneric(res extractor.Result, kv map[string]string) {
	m.rec.ExtractionMethod = dto.MethodGeneric

	for _, key := range sortedKeys(kv) {
		field, ok := keyAliases[utils.NormalizeLabel(key)]
		if !ok {
			continue
		}
		if _, taken := m.rec.Fields[field]; taken {
			continue
		}
		amount, _ := extractor.ParseBoxValue(kv[key])
		m.rec.Fields[field] = dto.FieldValue{Name: field, Amount: amount, Method: dto.MethodKeyValue}
	}

	for _, e := range res.Entries {
		if e.Blank {
			continue
		}
		label := utils.NormalizeLabel(e.Label)
		for _, g := range genericRules {
			if _, taken := m.rec.Fields[g.field]; taken {
				continue
			}
			if !matchesRule(label, g.keywords, g.exclude) {
				continue
			}
			m.rec.Fields[g.field] = dto.FieldValue{
				Name:   g.field,
				Amount: e.Amount,
				Box:    e.Box,
				Method: dto.MethodGeneric,
			}
			break
		}
	}
	m.rec.Completeness = percent(len(m.rec.Fields), len(genericRules))
}

func (m *mapping) ruleForBox(box string) int {
	for idx, rule := range m.rules {
		if rule.Box == box {
			return idx
		}
	}
	return -1
}

func (m *mapping) ruleForField(field string) int {
	first := -1
	for idx, rule := range m.rules {
		if rule.Field != field {
			continue
		}
		if !m.found[idx] {
			return idx
		}
		if first < 0 {
			first = idx
		}
	}
	return first
}

func (m *mapping) ruleForLabel(label string) int {
	for idx, rule := range m.rules {
		if matchesRule(label, rule.Keywords, rule.Exclude) {
			return idx
		}
	}
	return -1
}

// matchesRule reports whether a normalized label contains one of the
// keywords at a word start and none of the exclusions.
func matchesRule(label string, keywords, exclude []string) bool {
	if label == "" {
		return false
	}
	for _, x := range exclude {
		if containsPhrase(label, x) {
			return false
		}
	}
	for _, k := range keywords {
		if containsPhrase(label, k) {
			return true
		}
	}
	return false
}

func containsPhrase(label, phrase string) bool {
	for from := 0; from <= len(label); {
		i := strings.Index(label[from:], phrase)
		if i < 0 {
			return false
		}
		at := from + i
		if at == 0 || label[at-1] == ' ' {
			return true
		}
		from = at + 1
	}
	return false
}

func zeroFill(rec *dto.CanonicalRecord) {
	for _, name := range dto.CanonicalFields {
		if _, ok := rec.Fields[name]; !ok {
			rec.Fields[name] = dto.FieldValue{Name: name, Amount: decimal.Zero, Method: dto.MethodNone}
		}
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)*10000/float64(total)) / 100
}

func sortedKeys(kv map[string]string) []string {
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
