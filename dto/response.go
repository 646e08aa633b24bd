package dto

import "errors"

// Custom errors
var (
	ErrNoDocuments             = errors.New("at least one document is required")
	ErrUnsupportedFilingStatus = errors.New("unsupported filing status")
	ErrInvalidInput            = errors.New("invalid input")
	ErrNegativeTotals          = errors.New("aggregate totals must not be negative")
	ErrUnsupportedFile         = errors.New("unsupported file type")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ExtractionResponse lists one canonical record per submitted document
type ExtractionResponse struct {
	Records     []CanonicalRecord `json:"records"`
	ProcessedAt string            `json:"processed_at"`
}

// CalculationResponse is the final response structure
type CalculationResponse struct {
	RequestID   string            `json:"request_id"`
	Documents   []CanonicalRecord `json:"documents"`
	Totals      AggregateTotals   `json:"totals"`
	TaxResult
	ProcessedAt string `json:"processed_at"`
}
