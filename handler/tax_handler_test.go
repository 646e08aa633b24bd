package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/tax-form-engine/config"
	"github.com/Aashish23092/tax-form-engine/dto"
	"github.com/Aashish23092/tax-form-engine/service"
)

const w2Text = "Form W-2 Wage and Tax Statement\n" +
	"| 1 | Wages, tips, other compensation | $60,250.00 |\n" +
	"| 2 | Federal income tax withheld | $7,200.00 |"

func newRouter(t *testing.T, maxBody int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultConfig()
	cfg.MaxFileSize = maxBody
	svc, loader, err := service.NewFromConfig(cfg, nil)
	require.NoError(t, err)

	router := gin.New()
	NewTaxHandler(svc, loader, maxBody, nil).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postMultipart(t *testing.T, router *gin.Engine, path string, files map[string]string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := mw.CreateFormFile("files[]", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeFlat(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCalculateJSON(t *testing.T) {
	router := newRouter(t, 1<<20)

	w := postJSON(router, "/api/v1/tax/calculate", map[string]any{
		"documents":     []map[string]any{{"filename": "w2.md", "text": w2Text}},
		"filing_status": "single",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := decodeFlat(t, w)
	assert.Equal(t, "45650", out["taxable_income"])
	assert.Equal(t, "5246", out["taxes_federal_income_tax"])
	assert.Equal(t, "1954", out["refund_or_due"])
	assert.Equal(t, dto.ResultRefund, out["result_status"])
	assert.NotEmpty(t, out["request_id"])

	docs, ok := out["documents"].([]any)
	require.True(t, ok)
	require.Len(t, docs, 1)
	assert.Equal(t, "W-2", docs[0].(map[string]any)["document_type"])
}

func TestCalculateJSONRejectsBadInput(t *testing.T) {
	router := newRouter(t, 1<<20)

	w := postJSON(router, "/api/v1/tax/calculate", map[string]any{
		"documents":     []map[string]any{{"text": w2Text}},
		"filing_status": "jointly",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errResp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "INVALID_REQUEST", errResp.Error)
	assert.Equal(t, http.StatusBadRequest, errResp.Code)
	assert.Contains(t, errResp.Message, "unsupported filing status")

	w = postJSON(router, "/api/v1/tax/calculate", map[string]any{"filing_status": "single"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalculateJSONBodyTooLarge(t *testing.T) {
	router := newRouter(t, 64)

	w := postJSON(router, "/api/v1/tax/calculate", map[string]any{
		"documents":     []map[string]any{{"text": w2Text}},
		"filing_status": "single",
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestCalculateMultipart(t *testing.T) {
	router := newRouter(t, 1<<20)

	w := postMultipart(t, router, "/api/v1/tax/calculate",
		map[string]string{"w2.txt": w2Text},
		map[string]string{"filing_status": "single", "num_dependents": "1", "other_credits": "46"},
	)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := decodeFlat(t, w)
	assert.Equal(t, "3200", out["total_tax_liability"])
	assert.Equal(t, "4000", out["refund_or_due"])
}

func TestCalculateMultipartRejects(t *testing.T) {
	router := newRouter(t, 1<<20)

	w := postMultipart(t, router, "/api/v1/tax/calculate",
		map[string]string{"scan.png": "not text"},
		map[string]string{"filing_status": "single"},
	)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postMultipart(t, router, "/api/v1/tax/calculate",
		map[string]string{"w2.txt": w2Text},
		map[string]string{"filing_status": "single", "num_dependents": "many"},
	)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postMultipart(t, router, "/api/v1/tax/calculate", nil, map[string]string{"filing_status": "single"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractJSONAndMultipart(t *testing.T) {
	router := newRouter(t, 1<<20)

	w := postJSON(router, "/api/v1/documents/extract", map[string]any{
		"documents": []map[string]any{{"text": "Form 1099-NEC\n| 1 | Nonemployee compensation | 5,000.00 |"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.ExtractionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Records, 1)
	assert.Equal(t, dto.DocType1099NEC, resp.Records[0].DocumentType)
	assert.Equal(t, "5000", resp.Records[0].Amount(dto.FieldNonemployeeCompensation).String())

	w = postMultipart(t, router, "/api/v1/documents/extract",
		map[string]string{"w2.html": "<p>Form W-2</p><table><tr><td>1</td><td>Wages</td><td>100.00</td></tr></table>"},
		map[string]string{"metadata": `{"documents":[{"filename":"w2.html","key_values":{"box 2":"10.00"}}]}`},
	)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "100", resp.Records[0].Amount(dto.FieldWages).String())
	assert.Equal(t, "10", resp.Records[0].Amount(dto.FieldFederalIncomeTaxWithheld).String())
}

func TestExportReturnsWorkbook(t *testing.T) {
	router := newRouter(t, 1<<20)

	w := postJSON(router, "/api/v1/tax/export", map[string]any{
		"documents":     []map[string]any{{"text": w2Text}},
		"filing_status": "single",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment;"))
	// xlsx is a zip archive
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}
