package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/jgu1lherme/crm-alternativa/internal/converter"
	"github.com/jgu1lherme/crm-alternativa/internal/extractor"
	"github.com/jgu1lherme/crm-alternativa/internal/invoice"
	"github.com/jgu1lherme/crm-alternativa/internal/models"
	"github.com/jgu1lherme/crm-alternativa/internal/services"
	"github.com/jgu1lherme/crm-alternativa/internal/utils"
)

// SessionHeader carries the per-session key; the server mints one when the
// client does not send it, and echoes it back on every response.
const SessionHeader = "X-Session-ID"

type FeatureHandler struct {
	service     services.FeatureService
	logger      *utils.Logger
	maxFileSize int64
}

func NewFeatureHandler(service services.FeatureService, logger *utils.Logger, maxFileSize int64) *FeatureHandler {
	return &FeatureHandler{
		service:     service,
		logger:      logger,
		maxFileSize: maxFileSize,
	}
}

func (h *FeatureHandler) sessionID(w http.ResponseWriter, r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(SessionHeader))
	if id == "" {
		id = utils.GenerateID()
	}
	w.Header().Set(SessionHeader, id)
	return id
}

// parseForm applies the upload size limit before touching the body.
func (h *FeatureHandler) parseForm(w http.ResponseWriter, r *http.Request) error {
	if r.ContentLength > h.maxFileSize {
		return utils.NewBadRequestError("File size exceeds the upload limit")
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			return utils.NewBadRequestError("File size exceeds the upload limit")
		}
		return utils.NewBadRequestError("Invalid form data")
	}

	return nil
}

func readUpload(header *multipart.FileHeader) (models.RawDocument, error) {
	file, err := header.Open()
	if err != nil {
		return models.RawDocument{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return models.RawDocument{}, err
	}

	return models.RawDocument{Filename: header.Filename, Content: data}, nil
}

// optionalUpload returns nil when no file came with the request, letting the
// service fall back to the session's stored upload.
func (h *FeatureHandler) optionalUpload(r *http.Request, field string) (*models.RawDocument, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, nil
	}

	doc, err := readUpload(headers[0])
	if err != nil {
		return nil, utils.NewInternalError("Failed to read the uploaded file")
	}
	if len(doc.Content) == 0 {
		return nil, utils.NewBadRequestError("Uploaded file is empty")
	}
	return &doc, nil
}

func (h *FeatureHandler) requiredUpload(r *http.Request, field string) (models.RawDocument, error) {
	doc, err := h.optionalUpload(r, field)
	if err != nil {
		return models.RawDocument{}, err
	}
	if doc == nil {
		return models.RawDocument{}, utils.NewBadRequestError("No file provided")
	}
	return *doc, nil
}

// RenameInvoices accepts either individual PDFs ("files") or a ZIP of PDFs
// ("archive"), renames what it can and reports the rest.
func (h *FeatureHandler) RenameInvoices(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)

	if err := h.parseForm(w, r); err != nil {
		h.respondError(w, err)
		return
	}

	style, err := invoice.ParseNameStyle(r.URL.Query().Get("style"))
	if err != nil {
		h.respondError(w, utils.NewBadRequestError(err.Error()))
		return
	}

	docs, err := h.collectPDFs(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	resp, err := h.service.RenameInvoices(r.Context(), sessionID, docs, style)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *FeatureHandler) collectPDFs(r *http.Request) ([]models.RawDocument, error) {
	if r.MultipartForm == nil {
		return nil, utils.NewBadRequestError("No file provided")
	}

	if archives := r.MultipartForm.File["archive"]; len(archives) > 0 {
		doc, err := readUpload(archives[0])
		if err != nil {
			return nil, utils.NewInternalError("Failed to read the uploaded archive")
		}

		docs, err := extractor.ExtractArchive(doc.Content, ".pdf")
		if err != nil {
			return nil, utils.NewBadRequestError("The file could not be read as a ZIP archive")
		}
		return docs, nil
	}

	var docs []models.RawDocument
	for _, header := range r.MultipartForm.File["files"] {
		doc, err := readUpload(header)
		if err != nil {
			return nil, utils.NewInternalError("Failed to read an uploaded file")
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// ParseStatement extracts ML statement transactions from an uploaded PDF.
func (h *FeatureHandler) ParseStatement(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)

	if err := h.parseForm(w, r); err != nil {
		h.respondError(w, err)
		return
	}

	doc, err := h.requiredUpload(r, "file")
	if err != nil {
		h.respondError(w, err)
		return
	}

	resp, err := h.service.ParseStatement(r.Context(), sessionID, doc)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// ProcessLedger normalizes a bank spreadsheet; without a fresh file the
// session's stored one is reused.
func (h *FeatureHandler) ProcessLedger(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)

	if err := h.parseForm(w, r); err != nil {
		h.respondError(w, err)
		return
	}

	input, err := h.optionalUpload(r, "file")
	if err != nil {
		h.respondError(w, err)
		return
	}

	resp, err := h.service.ProcessLedger(r.Context(), sessionID, input)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// ClientActivity builds the CRM active/inactive report.
func (h *FeatureHandler) ClientActivity(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)

	if err := h.parseForm(w, r); err != nil {
		h.respondError(w, err)
		return
	}

	input, err := h.optionalUpload(r, "file")
	if err != nil {
		h.respondError(w, err)
		return
	}

	vendor := r.URL.Query().Get("vendor")

	resp, err := h.service.ClientActivity(r.Context(), sessionID, input, vendor)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// GoalProgress reports CNPJ positivação pacing against a deadline.
func (h *FeatureHandler) GoalProgress(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)

	if err := h.parseForm(w, r); err != nil {
		h.respondError(w, err)
		return
	}

	input, err := h.optionalUpload(r, "file")
	if err != nil {
		h.respondError(w, err)
		return
	}

	deadline, err := parseDeadline(r.URL.Query().Get("deadline"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	resp, err := h.service.GoalProgress(r.Context(), sessionID, input, deadline)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// parseDeadline returns the zero time when no deadline was sent; the service
// substitutes its thirty-day default.
func parseDeadline(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}

	deadline, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, utils.NewBadRequestError("Invalid deadline, expected YYYY-MM-DD")
	}
	return deadline, nil
}

// ConvertImage streams the converted file straight back.
func (h *FeatureHandler) ConvertImage(w http.ResponseWriter, r *http.Request) {
	h.sessionID(w, r)

	if err := h.parseForm(w, r); err != nil {
		h.respondError(w, err)
		return
	}

	doc, err := h.requiredUpload(r, "file")
	if err != nil {
		h.respondError(w, err)
		return
	}

	// JPEG is the first choice of the dashboard's format selector.
	target := r.URL.Query().Get("target")
	if target == "" {
		target = converter.TargetJPEG
	}

	result, err := h.service.ConvertImage(r.Context(), doc, target)
	if err != nil {
		h.respondError(w, err)
		return
	}

	filename := fmt.Sprintf("%s_convertido.%s", baseName(doc.Filename), result.Extension)

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Content)
}

func baseName(filename string) string {
	if i := strings.LastIndex(filename, "."); i > 0 {
		return filename[:i]
	}
	return filename
}

// DownloadArtifact serves a previously produced file.
func (h *FeatureHandler) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		h.respondError(w, utils.NewBadRequestError("File ID is required"))
		return
	}

	file, data, err := h.service.GetArtifact(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ResetSession clears the session's stored uploads and artifacts.
func (h *FeatureHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)

	if err := h.service.ResetSession(r.Context(), sessionID); err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Session cleared"})
}

func (h *FeatureHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (h *FeatureHandler) respondError(w http.ResponseWriter, err error) {
	var status int
	var message string

	switch e := err.(type) {
	case *utils.AppError:
		status = e.StatusCode
		message = e.Message
	default:
		status = http.StatusInternalServerError
		message = "Internal server error"
	}

	h.logger.Error("Request error", "status", status, "error", message)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
