// Package classifier decides which tax form a normalized text blob represents.
package classifier

import (
	"regexp"
	"sync"

	"github.com/Aashish23092/tax-form-engine/dto"
	"github.com/Aashish23092/tax-form-engine/utils/textnorm"
)

// Rule names the precedence step that produced a classification.
type Rule string

const (
	RuleExplicitName    Rule = "explicit_form_name"
	RuleGenericFallback Rule = "generic_1099_fallback"
	RuleGenericDefault  Rule = "generic_1099_default"
	RuleSignatureScore  Rule = "signature_score"
	RuleNoSignal        Rule = "no_signal"
)

// Explanation is the audit trail of one classification.
type Explanation struct {
	DocumentType dto.DocumentType              `json:"document_type"`
	Rule         Rule                          `json:"rule"`
	Scores       map[dto.DocumentType]int      `json:"scores"`
	Matched      map[dto.DocumentType][]string `json:"matched"`
}

type compiledSignature struct {
	re     *regexp.Regexp
	source string
	weight int
}

type compiledForm struct {
	docType    dto.DocumentType
	names      []*regexp.Regexp
	signatures []compiledSignature
}

type compiledFallback struct {
	docType dto.DocumentType
	re      *regexp.Regexp
}

type Classifier struct {
	nameWeight     int
	forms          []compiledForm
	genericName    *regexp.Regexp
	fallbacks      []compiledFallback
	genericDefault dto.DocumentType
}

// New compiles a validated signature table.
func New(t *Table) (*Classifier, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	c := &Classifier{
		nameWeight:     t.NameWeight,
		genericDefault: t.GenericDefault,
	}
	for _, f := range t.Forms {
		cf := compiledForm{docType: f.Type}
		for _, n := range f.Names {
			cf.names = append(cf.names, regexp.MustCompile(n))
		}
		for _, s := range f.Signatures {
			cf.signatures = append(cf.signatures, compiledSignature{
				re:     regexp.MustCompile(s.Pattern),
				source: s.Pattern,
				weight: s.Weight,
			})
		}
		c.forms = append(c.forms, cf)
	}
	if t.GenericName != "" {
		c.genericName = regexp.MustCompile(t.GenericName)
	}
	for _, fb := range t.GenericFallback {
		c.fallbacks = append(c.fallbacks, compiledFallback{docType: fb.Type, re: regexp.MustCompile(fb.Pattern)})
	}
	return c, nil
}

var defaultClassifier = sync.OnceValue(func() *Classifier {
	t, err := DefaultTable()
	if err != nil {
		panic("classifier: embedded signature table: " + err.Error())
	}
	c, err := New(t)
	if err != nil {
		panic("classifier: embedded signature table: " + err.Error())
	}
	return c
})

// Default returns the classifier built from the embedded signature table.
func Default() *Classifier {
	return defaultClassifier()
}

// Classify returns the document type of normalized text. It never fails;
// text with no signal is UNKNOWN.
func (c *Classifier) Classify(text string) dto.DocumentType {
	return c.Explain(text).DocumentType
}

// Explain classifies text and reports the scores and the deciding rule.
func (c *Classifier) Explain(text string) Explanation {
	folded := textnorm.FoldOCR(text)

	exp := Explanation{
		DocumentType: dto.DocTypeUnknown,
		Rule:         RuleNoSignal,
		Scores:       make(map[dto.DocumentType]int),
		Matched:      make(map[dto.DocumentType][]string),
	}

	// 1. explicit form names
	var (
		bestExplicit dto.DocumentType
		bestScore    int
		bestPos      = -1
	)
	signatureBest := dto.DocTypeUnknown
	signatureScore := 0

	for _, f := range c.forms {
		score := 0
		firstName := -1
		for _, re := range f.names {
			loc := re.FindStringIndex(folded)
			if loc == nil {
				continue
			}
			score += c.nameWeight
			exp.Matched[f.docType] = append(exp.Matched[f.docType], re.String())
			if firstName < 0 || loc[0] < firstName {
				firstName = loc[0]
			}
		}
		for _, s := range f.signatures {
			if s.re.MatchString(folded) {
				score += s.weight
				exp.Matched[f.docType] = append(exp.Matched[f.docType], s.source)
			}
		}
		if score == 0 {
			continue
		}
		exp.Scores[f.docType] = score

		if firstName >= 0 {
			if bestPos < 0 || score > bestScore || (score == bestScore && firstName < bestPos) {
				bestExplicit, bestScore, bestPos = f.docType, score, firstName
			}
		}
		if score > signatureScore {
			signatureBest, signatureScore = f.docType, score
		}
	}

	if bestPos >= 0 {
		exp.DocumentType = bestExplicit
		exp.Rule = RuleExplicitName
		return exp
	}

	// 2. bare "1099"
	if c.genericName != nil && c.genericName.MatchString(folded) {
		for _, fb := range c.fallbacks {
			if fb.re.MatchString(folded) {
				exp.DocumentType = fb.docType
				exp.Rule = RuleGenericFallback
				return exp
			}
		}
		exp.DocumentType = c.genericDefault
		exp.Rule = RuleGenericDefault
		return exp
	}

	// 3. strongest phrase evidence; ties keep table order
	if signatureScore > 0 {
		exp.DocumentType = signatureBest
		exp.Rule = RuleSignatureScore
	}
	return exp
}
