package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Aashish23092/tax-form-engine/dto"
	"github.com/Aashish23092/tax-form-engine/logger"
	"github.com/Aashish23092/tax-form-engine/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type TaxHandler struct {
	taxService *service.TaxService
	loader     *service.DocumentLoader
	maxBody    int64
	logger     *zap.Logger
}

func NewTaxHandler(taxService *service.TaxService, loader *service.DocumentLoader, maxBody int64, log *zap.Logger) *TaxHandler {
	return &TaxHandler{
		taxService: taxService,
		loader:     loader,
		maxBody:    maxBody,
		logger:     logger.OrNop(log),
	}
}

// RegisterRoutes mounts the document and tax endpoints on an /api/v1 group.
func (h *TaxHandler) RegisterRoutes(api *gin.RouterGroup) {
	documents := api.Group("/documents")
	{
		documents.POST("/extract", h.ExtractDocuments)
	}
	tax := api.Group("/tax")
	{
		tax.POST("/calculate", h.CalculateTax)
		tax.POST("/export", h.ExportTax)
	}
}

// ExtractDocuments handles the POST /documents/extract endpoint
func (h *TaxHandler) ExtractDocuments(c *gin.Context) {
	var req *dto.ExtractionRequest
	if isMultipart(c) {
		upload, err := h.bindUpload(c)
		if err != nil {
			h.sendError(c, statusFor(err), "Failed to read uploaded documents", err)
			return
		}
		docs, err := h.loader.LoadUpload(upload)
		if err != nil {
			h.sendError(c, statusFor(err), "Failed to read uploaded documents", err)
			return
		}
		req = &dto.ExtractionRequest{Documents: docs}
	} else {
		body, err := h.readBody(c)
		if err != nil {
			h.sendError(c, statusFor(err), "Failed to read request body", err)
			return
		}
		if req, err = service.ParseExtractionRequest(body); err != nil {
			h.sendError(c, http.StatusBadRequest, "Invalid extraction request", err)
			return
		}
	}

	h.logger.Info("extraction request", zap.Int("documents", len(req.Documents)))

	response, err := h.taxService.Extract(c.Request.Context(), req)
	if err != nil {
		h.sendError(c, statusFor(err), "Failed to extract documents", err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// CalculateTax handles the POST /tax/calculate endpoint
func (h *TaxHandler) CalculateTax(c *gin.Context) {
	response, ok := h.calculate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, response)
}

// ExportTax handles the POST /tax/export endpoint
func (h *TaxHandler) ExportTax(c *gin.Context) {
	response, ok := h.calculate(c)
	if !ok {
		return
	}

	data, err := service.ExportWorkbook(response)
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to build workbook", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="tax-summary-%s.xlsx"`, response.RequestID))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *TaxHandler) calculate(c *gin.Context) (*dto.CalculationResponse, bool) {
	req, err := h.calculationRequest(c)
	if err != nil {
		h.sendError(c, statusFor(err), "Invalid calculation request", err)
		return nil, false
	}

	h.logger.Info("calculation request",
		zap.Int("documents", len(req.Documents)),
		zap.String("filing_status", req.FilingStatus),
	)

	response, err := h.taxService.Calculate(c.Request.Context(), req)
	if err != nil {
		h.sendError(c, statusFor(err), "Failed to calculate tax", err)
		return nil, false
	}
	return response, true
}

func (h *TaxHandler) calculationRequest(c *gin.Context) (*dto.CalculationRequest, error) {
	if !isMultipart(c) {
		body, err := h.readBody(c)
		if err != nil {
			return nil, err
		}
		return service.ParseCalculationRequest(body)
	}

	upload, err := h.bindUpload(c)
	if err != nil {
		return nil, err
	}
	docs, err := h.loader.LoadUpload(upload)
	if err != nil {
		return nil, err
	}

	req := &dto.CalculationRequest{
		Documents:     docs,
		FilingStatus:  upload.FilingStatus,
		NumDependents: upload.NumDependents,
	}
	credits := map[string]*decimal.Decimal{
		"education_credits":    &req.EducationCredits,
		"earned_income_credit": &req.EarnedIncomeCredit,
		"other_credits":        &req.OtherCredits,
	}
	for field, dst := range credits {
		raw := strings.TrimSpace(c.PostForm(field))
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", dto.ErrInvalidInput, field, err)
		}
		*dst = v
	}
	return req, nil
}

// bindUpload reads the multipart form the way the upload endpoints share.
func (h *TaxHandler) bindUpload(c *gin.Context) (*dto.UploadRequest, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse multipart form: %v", dto.ErrInvalidInput, err)
	}

	request := &dto.UploadRequest{
		Files:        form.File["files[]"],
		Metadata:     c.PostForm("metadata"),
		FilingStatus: c.PostForm("filing_status"),
		Password:     c.PostForm("password"),
	}
	if raw := strings.TrimSpace(c.PostForm("num_dependents")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: num_dependents: %v", dto.ErrInvalidInput, err)
		}
		request.NumDependents = n
	}

	if err := request.Validate(); err != nil {
		return nil, err
	}
	return request, nil
}

func (h *TaxHandler) readBody(c *gin.Context) ([]byte, error) {
	body := c.Request.Body
	if h.maxBody > 0 {
		body = http.MaxBytesReader(c.Writer, body, h.maxBody)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: request body exceeds %d bytes", service.ErrFileTooLarge, h.maxBody)
		}
		return nil, err
	}
	return data, nil
}

func isMultipart(c *gin.Context) bool {
	return c.ContentType() == gin.MIMEMultipartPOSTForm
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrFileTooLarge), errors.Is(err, service.ErrTooManyPages):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, dto.ErrInvalidInput),
		errors.Is(err, dto.ErrUnsupportedFilingStatus),
		errors.Is(err, dto.ErrNegativeTotals),
		errors.Is(err, dto.ErrNoDocuments),
		errors.Is(err, dto.ErrUnsupportedFile):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return 499
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return "INVALID_REQUEST"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	default:
		return "PROCESSING_FAILED"
	}
}

// sendError sends a structured error response
func (h *TaxHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		h.logger.Warn(message, zap.Int("status", statusCode), zap.Error(err))
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   errorCode(statusCode),
		Message: errorMsg,
		Code:    statusCode,
	})
}
