package classifier

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/Aashish23092/tax-form-engine/dto"
)

//go:embed signatures.yaml
var defaultSignatures []byte

// Signature is one weighted phrase pattern.
type Signature struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Weight  int    `yaml:"weight" json:"weight"`
}

// FormSignatures holds the explicit names and phrase signatures of one form.
type FormSignatures struct {
	Type       dto.DocumentType `yaml:"type" json:"type"`
	Names      []string         `yaml:"names" json:"names"`
	Signatures []Signature      `yaml:"signatures" json:"signatures"`
}

// Fallback maps a keyword pattern to a form when only a bare "1099" is present.
type Fallback struct {
	Type    dto.DocumentType `yaml:"type" json:"type"`
	Pattern string           `yaml:"pattern" json:"pattern"`
}

// Table is the full, inspectable signature configuration.
type Table struct {
	NameWeight      int              `yaml:"name_weight" json:"name_weight"`
	Forms           []FormSignatures `yaml:"forms" json:"forms"`
	GenericName     string           `yaml:"generic_name" json:"generic_name"`
	GenericFallback []Fallback       `yaml:"generic_fallback" json:"generic_fallback"`
	GenericDefault  dto.DocumentType `yaml:"generic_default" json:"generic_default"`
}

// DefaultTable returns the signature table compiled into the binary.
func DefaultTable() (*Table, error) {
	return ParseTable(defaultSignatures)
}

// LoadTable reads a signature table from a YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signatures file: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes and validates a YAML signature table.
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse signatures: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Table) Validate() error {
	if t.NameWeight <= 0 {
		return fmt.Errorf("name_weight must be positive, got %d", t.NameWeight)
	}
	if len(t.Forms) == 0 {
		return fmt.Errorf("signature table has no forms")
	}

	seen := make(map[dto.DocumentType]bool)
	for _, f := range t.Forms {
		if !isSupported(f.Type) {
			return fmt.Errorf("unsupported document type %q", f.Type)
		}
		if seen[f.Type] {
			return fmt.Errorf("document type %q listed twice", f.Type)
		}
		seen[f.Type] = true

		for _, n := range f.Names {
			if _, err := regexp.Compile(n); err != nil {
				return fmt.Errorf("%s: bad name pattern %q: %w", f.Type, n, err)
			}
		}
		for _, s := range f.Signatures {
			if s.Weight <= 0 {
				return fmt.Errorf("%s: signature %q has non-positive weight", f.Type, s.Pattern)
			}
			if _, err := regexp.Compile(s.Pattern); err != nil {
				return fmt.Errorf("%s: bad signature pattern %q: %w", f.Type, s.Pattern, err)
			}
		}
	}

	if t.GenericName != "" {
		if _, err := regexp.Compile(t.GenericName); err != nil {
			return fmt.Errorf("bad generic_name pattern: %w", err)
		}
		if !isSupported(t.GenericDefault) {
			return fmt.Errorf("unsupported generic_default %q", t.GenericDefault)
		}
	}
	for _, fb := range t.GenericFallback {
		if !isSupported(fb.Type) {
			return fmt.Errorf("unsupported fallback type %q", fb.Type)
		}
		if _, err := regexp.Compile(fb.Pattern); err != nil {
			return fmt.Errorf("%s: bad fallback pattern: %w", fb.Type, err)
		}
	}
	return nil
}

func isSupported(dt dto.DocumentType) bool {
	for _, s := range dto.SupportedDocumentTypes() {
		if s == dt {
			return true
		}
	}
	return false
}
