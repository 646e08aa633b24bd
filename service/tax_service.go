package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Aashish23092/tax-form-engine/dto"
	"github.com/Aashish23092/tax-form-engine/logger"
	"github.com/Aashish23092/tax-form-engine/utils/classifier"
	"github.com/Aashish23092/tax-form-engine/utils/extractor"
	"github.com/Aashish23092/tax-form-engine/utils/mapper"
	"github.com/Aashish23092/tax-form-engine/utils/textnorm"
)

// TaxService runs documents through normalize, classify, extract and map,
// then aggregates the records and computes the tax result.
type TaxService struct {
	classifier *classifier.Classifier
	extractor  *extractor.Extractor
	calculator *TaxCalculator
	workers    int
	logger     *zap.Logger
}

func NewTaxService(
	cls *classifier.Classifier,
	ext *extractor.Extractor,
	calc *TaxCalculator,
	workers int,
	log *zap.Logger,
) *TaxService {
	if workers < 1 {
		workers = 1
	}
	return &TaxService{
		classifier: cls,
		extractor:  ext,
		calculator: calc,
		workers:    workers,
		logger:     logger.OrNop(log),
	}
}

// Classify explains how the document's text is classified.
func (s *TaxService) Classify(doc dto.RawDocument) classifier.Explanation {
	return s.classifier.Explain(textnorm.Normalize(doc.Text))
}

// ProcessDocument builds the canonical record of one document. It never
// fails: unreadable content yields a zero-filled, low-confidence record.
func (s *TaxService) ProcessDocument(doc dto.RawDocument) dto.CanonicalRecord {
	text := textnorm.Normalize(doc.Text)
	docType := s.classifier.Classify(text)
	res := s.extractor.Extract(text)
	return mapper.Map(docType, res, doc)
}

// ExtractDocuments processes documents in parallel, at most workers at a
// time. Records come back in input order.
func (s *TaxService) ExtractDocuments(ctx context.Context, docs []dto.RawDocument) ([]dto.CanonicalRecord, error) {
	if len(docs) == 0 {
		return nil, dto.ErrNoDocuments
	}

	records := make([]dto.CanonicalRecord, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec := s.ProcessDocument(doc)
			s.logger.Info("document processed",
				zap.Int("index", i),
				zap.String("filename", rec.Filename),
				zap.String("document_type", string(rec.DocumentType)),
				zap.String("extraction_method", string(rec.ExtractionMethod)),
				zap.Float64("completeness", rec.Completeness),
				zap.Bool("low_confidence", rec.LowConfidence),
				zap.Int("warnings", len(rec.Warnings)),
			)
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// Extract handles an extraction-only request.
func (s *TaxService) Extract(ctx context.Context, req *dto.ExtractionRequest) (*dto.ExtractionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	records, err := s.ExtractDocuments(ctx, req.Documents)
	if err != nil {
		return nil, err
	}
	return &dto.ExtractionResponse{
		Records:     records,
		ProcessedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// Calculate extracts every document, aggregates the records and computes
// the tax result for the request's filing parameters.
func (s *TaxService) Calculate(ctx context.Context, req *dto.CalculationRequest) (*dto.CalculationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	status, err := ParseFilingStatus(req.FilingStatus)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	log := s.logger.With(zap.String("request_id", requestID))

	records, err := s.ExtractDocuments(ctx, req.Documents)
	if err != nil {
		return nil, err
	}

	totals := Aggregate(records)
	result, err := s.calculator.Calculate(totals, req.Taxpayer(status))
	if err != nil {
		log.Warn("calculation rejected", zap.Error(err))
		return nil, fmt.Errorf("calculate tax: %w", err)
	}

	log.Info("tax calculated",
		zap.Int("documents", len(records)),
		zap.String("filing_status", string(status)),
		zap.String("total_income", result.TotalIncome.StringFixed(2)),
		zap.String("total_tax_liability", result.TotalTaxLiability.StringFixed(2)),
		zap.String("refund_or_due", result.RefundOrDue.StringFixed(2)),
		zap.String("result_status", result.ResultStatus),
	)

	return &dto.CalculationResponse{
		RequestID:   requestID,
		Documents:   records,
		Totals:      totals,
		TaxResult:   result,
		ProcessedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}
