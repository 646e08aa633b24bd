package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Aashish23092/tax-form-engine/config"
	"github.com/Aashish23092/tax-form-engine/utils/classifier"
	"github.com/Aashish23092/tax-form-engine/utils/extractor"
)

// NewFromConfig wires the pipeline service and the upload loader.
func NewFromConfig(cfg *config.Config, log *zap.Logger) (*TaxService, *DocumentLoader, error) {
	cls := classifier.Default()
	if cfg.SignaturesFile != "" {
		table, err := classifier.LoadTable(cfg.SignaturesFile)
		if err != nil {
			return nil, nil, fmt.Errorf("load signatures: %w", err)
		}
		if cls, err = classifier.New(table); err != nil {
			return nil, nil, fmt.Errorf("load signatures: %w", err)
		}
	}

	calc, err := NewTaxCalculator(cfg.TaxYear)
	if err != nil {
		return nil, nil, err
	}

	svc := NewTaxService(cls, extractor.New(cfg.LookaheadChars), calc, cfg.Workers, log)
	loader := NewDocumentLoader(NewPDFProcessor(cfg.MaxPDFPages), cfg.MaxFileSize)
	return svc, loader, nil
}
