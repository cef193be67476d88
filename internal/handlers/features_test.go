package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgu1lherme/crm-alternativa/internal/converter"
	"github.com/jgu1lherme/crm-alternativa/internal/invoice"
	"github.com/jgu1lherme/crm-alternativa/internal/models"
	"github.com/jgu1lherme/crm-alternativa/internal/services"
	"github.com/jgu1lherme/crm-alternativa/internal/utils"
)

// stubService records the arguments the handler forwards.
type stubService struct {
	convertTarget string
	goalDeadline  time.Time
}

func (s *stubService) RenameInvoices(_ context.Context, _ string, _ []models.RawDocument, _ invoice.NameStyle) (*services.RenameResponse, error) {
	return &services.RenameResponse{}, nil
}

func (s *stubService) ParseStatement(_ context.Context, _ string, _ models.RawDocument) (*services.StatementResponse, error) {
	return &services.StatementResponse{}, nil
}

func (s *stubService) ProcessLedger(_ context.Context, _ string, _ *models.RawDocument) (*services.LedgerResponse, error) {
	return &services.LedgerResponse{LedgerResult: &models.LedgerResult{}}, nil
}

func (s *stubService) ClientActivity(_ context.Context, _ string, _ *models.RawDocument, _ string) (*models.CRMResult, error) {
	return &models.CRMResult{}, nil
}

func (s *stubService) GoalProgress(_ context.Context, _ string, _ *models.RawDocument, deadline time.Time) (*models.GoalProgress, error) {
	s.goalDeadline = deadline
	return &models.GoalProgress{}, nil
}

func (s *stubService) ConvertImage(_ context.Context, _ models.RawDocument, target string) (*converter.Result, error) {
	s.convertTarget = target
	return &converter.Result{Content: []byte("img"), ContentType: "image/jpeg", Extension: "jpg"}, nil
}

func (s *stubService) GetArtifact(_ context.Context, _ string) (*models.StoredFile, []byte, error) {
	return nil, nil, utils.NewNotFoundError("File not found")
}

func (s *stubService) ResetSession(_ context.Context, _ string) error {
	return nil
}

func newTestHandler() (*FeatureHandler, *stubService) {
	stub := &stubService{}
	return NewFeatureHandler(stub, utils.NewLogger("error", "text"), 1<<20), stub
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func TestConvertImageDefaultsToJPEG(t *testing.T) {
	handler, stub := newTestHandler()

	body, contentType := multipartUpload(t, "file", "foto.png", []byte("bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/convert/image", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	handler.ConvertImage(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "jpeg", stub.convertTarget)
	assert.Equal(t, "image/jpeg", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "foto_convertido.jpg")
}

func TestGoalProgressOmittedDeadlinePassesZeroTime(t *testing.T) {
	handler, stub := newTestHandler()

	body, contentType := multipartUpload(t, "file", "cnpjs.xlsx", []byte("bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/goals/cnpj", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	handler.GoalProgress(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, stub.goalDeadline.IsZero(), "defaulting happens in the service, on its clock")
}

func TestGoalProgressRejectsMalformedDeadline(t *testing.T) {
	handler, _ := newTestHandler()

	body, contentType := multipartUpload(t, "file", "cnpjs.xlsx", []byte("bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/goals/cnpj?deadline=31-12-2025", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	handler.GoalProgress(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSessionHeaderMintedAndEchoed(t *testing.T) {
	handler, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/session", nil)
	rr := httptest.NewRecorder()

	handler.ResetSession(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(SessionHeader))

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/session", nil)
	req.Header.Set(SessionHeader, "existing-session")
	rr = httptest.NewRecorder()

	handler.ResetSession(rr, req)
	assert.Equal(t, "existing-session", rr.Header().Get(SessionHeader))
}
