package dto

import (
	"mime/multipart"
	"strings"

	"github.com/shopspring/decimal"
)

// CalculationRequest is the JSON body of a calculation call
type CalculationRequest struct {
	Documents          []RawDocument   `json:"documents"`
	FilingStatus       string          `json:"filing_status"`
	NumDependents      int             `json:"num_dependents"`
	EducationCredits   decimal.Decimal `json:"education_credits"`
	EarnedIncomeCredit decimal.Decimal `json:"earned_income_credit"`
	OtherCredits       decimal.Decimal `json:"other_credits"`
}

// ExtractionRequest is the JSON body of an extraction-only call
type ExtractionRequest struct {
	Documents []RawDocument `json:"documents"`
}

// UploadRequest represents a multipart upload of document files
type UploadRequest struct {
	Files         []*multipart.FileHeader `form:"files[]" binding:"required"`
	Metadata      string                  `form:"metadata"`
	FilingStatus  string                  `form:"filing_status"`
	NumDependents int                     `form:"num_dependents"`
	Password      string                  `form:"password"`
}

// UploadMetadata carries pre-extracted values for uploaded files, matched
// by filename
type UploadMetadata struct {
	Documents []RawDocument `json:"documents"`
}

// Validate performs basic validation on the request
func (r *CalculationRequest) Validate() error {
	if len(r.Documents) == 0 {
		return ErrNoDocuments
	}
	if strings.TrimSpace(r.FilingStatus) == "" {
		return ErrUnsupportedFilingStatus
	}
	if r.NumDependents < 0 {
		return ErrInvalidInput
	}
	return nil
}

// Validate performs basic validation on the request
func (r *ExtractionRequest) Validate() error {
	if len(r.Documents) == 0 {
		return ErrNoDocuments
	}
	return nil
}

// Validate performs basic validation on the request
func (r *UploadRequest) Validate() error {
	if len(r.Files) == 0 {
		return ErrNoDocuments
	}
	if r.NumDependents < 0 {
		return ErrInvalidInput
	}
	return nil
}

// Taxpayer converts the request's filing parameters. The filing status is
// resolved later by the calculator, which owns the list of supported values.
func (r *CalculationRequest) Taxpayer(status FilingStatus) TaxpayerInput {
	return TaxpayerInput{
		FilingStatus:       status,
		NumDependents:      r.NumDependents,
		EducationCredits:   r.EducationCredits,
		EarnedIncomeCredit: r.EarnedIncomeCredit,
		OtherCredits:       r.OtherCredits,
	}
}
