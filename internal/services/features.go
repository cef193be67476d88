package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jgu1lherme/crm-alternativa/internal/brl"
	"github.com/jgu1lherme/crm-alternativa/internal/config"
	"github.com/jgu1lherme/crm-alternativa/internal/converter"
	"github.com/jgu1lherme/crm-alternativa/internal/crm"
	"github.com/jgu1lherme/crm-alternativa/internal/extractor"
	"github.com/jgu1lherme/crm-alternativa/internal/goals"
	"github.com/jgu1lherme/crm-alternativa/internal/invoice"
	"github.com/jgu1lherme/crm-alternativa/internal/ledger"
	"github.com/jgu1lherme/crm-alternativa/internal/models"
	"github.com/jgu1lherme/crm-alternativa/internal/repository"
	"github.com/jgu1lherme/crm-alternativa/internal/statement"
	"github.com/jgu1lherme/crm-alternativa/internal/storage"
	"github.com/jgu1lherme/crm-alternativa/internal/utils"
)

// RenamedEntry is one renamed invoice offered for individual download.
type RenamedEntry struct {
	Filename   string `json:"filename"`
	ArtifactID string `json:"artifact_id"`
	Size       int64  `json:"size"`
}

// RenameResponse lists successes before the combined-download affordance;
// the archive artifact only exists when at least one invoice was renamed.
type RenameResponse struct {
	Renamed           []RenamedEntry       `json:"renamed"`
	Failures          []models.ItemFailure `json:"failures"`
	ArchiveArtifactID string               `json:"archive_artifact_id,omitempty"`
}

// StatementResponse carries the parsed ML transactions plus the XLSX export.
type StatementResponse struct {
	Transactions []models.Transaction `json:"transactions"`
	Warnings     []models.ItemFailure `json:"warnings,omitempty"`
	ArtifactID   string               `json:"artifact_id,omitempty"`
}

// LedgerResponse adds the display-formatted totals the dashboard metrics use.
type LedgerResponse struct {
	*models.LedgerResult
	FormattedCredit     string `json:"formatted_credit"`
	FormattedDebit      string `json:"formatted_debit"`
	FormattedDifference string `json:"formatted_difference"`
	ArtifactID          string `json:"artifact_id"`
}

type FeatureService interface {
	RenameInvoices(ctx context.Context, sessionID string, docs []models.RawDocument, style invoice.NameStyle) (*RenameResponse, error)
	ParseStatement(ctx context.Context, sessionID string, doc models.RawDocument) (*StatementResponse, error)
	ProcessLedger(ctx context.Context, sessionID string, input *models.RawDocument) (*LedgerResponse, error)
	ClientActivity(ctx context.Context, sessionID string, input *models.RawDocument, vendor string) (*models.CRMResult, error)
	GoalProgress(ctx context.Context, sessionID string, input *models.RawDocument, deadline time.Time) (*models.GoalProgress, error)
	ConvertImage(ctx context.Context, doc models.RawDocument, target string) (*converter.Result, error)
	GetArtifact(ctx context.Context, id string) (*models.StoredFile, []byte, error)
	ResetSession(ctx context.Context, sessionID string) error
}

type featureService struct {
	repo    repository.FileRepository
	storage storage.Storage
	renamer *invoice.Renamer
	cfg     *config.Config
	logger  *utils.Logger
	now     func() time.Time
}

func NewFeatureService(repo repository.FileRepository, store storage.Storage, cfg *config.Config, logger *utils.Logger) FeatureService {
	return &featureService{
		repo:    repo,
		storage: store,
		renamer: invoice.NewRenamer(logger),
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *featureService) RenameInvoices(ctx context.Context, sessionID string, docs []models.RawDocument, style invoice.NameStyle) (*RenameResponse, error) {
	if len(docs) == 0 {
		return nil, utils.NewBadRequestError("No PDF files to process")
	}

	result := s.renamer.RenameBatch(docs, style)

	resp := &RenameResponse{Failures: result.Failures}

	for _, renamed := range result.Renamed {
		id, err := s.saveArtifact(ctx, sessionID, models.FeatureInvoices, renamed.Filename, "application/pdf", renamed.Content)
		if err != nil {
			return nil, err
		}
		resp.Renamed = append(resp.Renamed, RenamedEntry{
			Filename:   renamed.Filename,
			ArtifactID: id,
			Size:       int64(len(renamed.Content)),
		})
	}

	// Combined download only when something succeeded.
	if len(result.Renamed) > 0 {
		archive, err := extractor.BuildArchive(result.Renamed)
		if err != nil {
			s.logger.Error("failed to build combined archive", "error", err)
			return nil, utils.NewInternalError("Failed to build the combined archive")
		}

		id, err := s.saveArtifact(ctx, sessionID, models.FeatureInvoices, "Notas_Renomeadas.zip", "application/zip", archive)
		if err != nil {
			return nil, err
		}
		resp.ArchiveArtifactID = id
	}

	s.logger.Info("invoice batch processed",
		"session_id", sessionID,
		"renamed", len(resp.Renamed),
		"failed", len(resp.Failures))

	return resp, nil
}

func (s *featureService) ParseStatement(ctx context.Context, sessionID string, doc models.RawDocument) (*StatementResponse, error) {
	text, err := extractor.ExtractPDF(doc.Content)
	if err != nil {
		s.logger.Error("failed to extract statement text", "filename", doc.Filename, "error", err)
		return nil, utils.NewBadRequestError("The file could not be read as a PDF")
	}

	txs, warnings := statement.Parse(text, s.logger)

	resp := &StatementResponse{Transactions: txs, Warnings: warnings}

	if len(txs) > 0 {
		export, err := statement.ExportXLSX(txs)
		if err != nil {
			s.logger.Error("failed to export statement", "error", err)
			return nil, utils.NewInternalError("Failed to build the Excel export")
		}

		id, err := s.saveArtifact(ctx, sessionID, models.FeatureStatement, "extrato_mercado_livre.xlsx", xlsxContentType, export)
		if err != nil {
			return nil, err
		}
		resp.ArtifactID = id
	}

	s.logger.Info("statement parsed",
		"session_id", sessionID,
		"transactions", len(txs),
		"warnings", len(warnings))

	return resp, nil
}

func (s *featureService) ProcessLedger(ctx context.Context, sessionID string, input *models.RawDocument) (*LedgerResponse, error) {
	doc, err := s.resolveUpload(ctx, sessionID, models.FeatureLedger, input)
	if err != nil {
		return nil, err
	}

	result, err := ledger.Process(bytes.NewReader(doc.Content))
	if err != nil {
		return nil, err
	}

	export, err := ledger.ExportXLSX(result)
	if err != nil {
		s.logger.Error("failed to export ledger", "error", err)
		return nil, utils.NewInternalError("Failed to build the Excel export")
	}

	id, err := s.saveArtifact(ctx, sessionID, models.FeatureLedger, "Planilha_Bancaria_Processada.xlsx", xlsxContentType, export)
	if err != nil {
		return nil, err
	}

	return &LedgerResponse{
		LedgerResult:        result,
		FormattedCredit:     brl.Format(result.TotalCredit),
		FormattedDebit:      brl.Format(result.TotalDebit),
		FormattedDifference: brl.Format(result.Difference),
		ArtifactID:          id,
	}, nil
}

func (s *featureService) ClientActivity(ctx context.Context, sessionID string, input *models.RawDocument, vendor string) (*models.CRMResult, error) {
	doc, err := s.resolveUpload(ctx, sessionID, models.FeatureCRM, input)
	if err != nil {
		return nil, err
	}

	sales, err := crm.ReadSales(bytes.NewReader(doc.Content))
	if err != nil {
		return nil, err
	}

	return crm.BuildSummaries(sales, vendor, s.cfg.ActiveWindowDays, s.now()), nil
}

func (s *featureService) GoalProgress(ctx context.Context, sessionID string, input *models.RawDocument, deadline time.Time) (*models.GoalProgress, error) {
	if deadline.IsZero() {
		// Same default as the dashboard's date input.
		deadline = s.now().AddDate(0, 0, 30)
	}

	doc, err := s.resolveUpload(ctx, sessionID, models.FeatureGoals, input)
	if err != nil {
		return nil, err
	}

	ids, err := goals.ReadTaxIDs(bytes.NewReader(doc.Content))
	if err != nil {
		return nil, err
	}

	progress := goals.Progress(ids, s.cfg.CNPJGoal, deadline, s.now())
	return &progress, nil
}

func (s *featureService) ConvertImage(ctx context.Context, doc models.RawDocument, target string) (*converter.Result, error) {
	result, err := converter.Convert(doc.Content, target)
	if err != nil {
		s.logger.Warn("conversion failed", "filename", doc.Filename, "target", target, "error", err)
		return nil, err
	}

	return result, nil
}

func (s *featureService) GetArtifact(ctx context.Context, id string) (*models.StoredFile, []byte, error) {
	file, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to look up artifact", "id", id, "error", err)
		return nil, nil, utils.NewInternalError("Failed to retrieve file")
	}
	if file == nil {
		return nil, nil, utils.NewNotFoundError("File not found")
	}

	data, err := s.storage.Download(ctx, file.ObjectKey)
	if err != nil {
		s.logger.Error("failed to download artifact bytes", "id", id, "error", err)
		return nil, nil, utils.NewInternalError("Failed to retrieve file")
	}

	return file, data, nil
}

// ResetSession clears every upload and artifact the session accumulated.
func (s *featureService) ResetSession(ctx context.Context, sessionID string) error {
	files, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		s.logger.Error("failed to list session files", "session_id", sessionID, "error", err)
		return utils.NewInternalError("Failed to reset session")
	}

	for _, file := range files {
		if err := s.storage.Delete(ctx, file.ObjectKey); err != nil {
			// Orphaned objects are tolerable, the handle still goes away.
			s.logger.Warn("failed to delete stored object", "key", file.ObjectKey, "error", err)
		}
	}

	if err := s.repo.DeleteBySession(ctx, sessionID); err != nil {
		s.logger.Error("failed to delete session rows", "session_id", sessionID, "error", err)
		return utils.NewInternalError("Failed to reset session")
	}

	s.logger.Info("session reset", "session_id", sessionID, "files", len(files))
	return nil
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// resolveUpload implements the per-feature "last uploaded file" behavior:
// a fresh upload replaces the stored handle, a request without a file reuses
// the previous one.
func (s *featureService) resolveUpload(ctx context.Context, sessionID string, feature models.Feature, input *models.RawDocument) (*models.RawDocument, error) {
	if input != nil {
		if err := s.saveUpload(ctx, sessionID, feature, input); err != nil {
			return nil, err
		}
		return input, nil
	}

	stored, err := s.repo.LatestUpload(ctx, sessionID, feature)
	if err != nil {
		s.logger.Error("failed to look up session upload", "session_id", sessionID, "feature", feature, "error", err)
		return nil, utils.NewInternalError("Failed to retrieve the stored upload")
	}
	if stored == nil {
		return nil, utils.NewBadRequestError("No file uploaded for this feature yet")
	}

	data, err := s.storage.Download(ctx, stored.ObjectKey)
	if err != nil {
		s.logger.Error("failed to download session upload", "key", stored.ObjectKey, "error", err)
		return nil, utils.NewInternalError("Failed to retrieve the stored upload")
	}

	return &models.RawDocument{Filename: stored.Filename, Content: data}, nil
}

func (s *featureService) saveUpload(ctx context.Context, sessionID string, feature models.Feature, doc *models.RawDocument) error {
	id := utils.GenerateID()
	key := fmt.Sprintf("sessions/%s/%s/%s", sessionID, feature, doc.Filename)

	if err := s.storage.Upload(ctx, key, doc.Content, "application/octet-stream"); err != nil {
		s.logger.Error("failed to store upload", "key", key, "error", err)
		return utils.NewInternalError("Failed to store the uploaded file")
	}

	file := &models.StoredFile{
		ID:          id,
		SessionID:   sessionID,
		Feature:     string(feature),
		Kind:        models.KindUpload,
		Filename:    doc.Filename,
		ObjectKey:   key,
		ContentType: "application/octet-stream",
		Size:        int64(len(doc.Content)),
		CreatedAt:   s.now(),
	}

	if err := s.repo.Save(ctx, file); err != nil {
		s.logger.Error("failed to save upload handle", "id", id, "error", err)
		_ = s.storage.Delete(ctx, key)
		return utils.NewInternalError("Failed to store the uploaded file")
	}

	return nil
}

func (s *featureService) saveArtifact(ctx context.Context, sessionID string, feature models.Feature, filename, contentType string, data []byte) (string, error) {
	id := utils.GenerateID()
	key := fmt.Sprintf("artifacts/%s/%s", id, filename)

	if err := s.storage.Upload(ctx, key, data, contentType); err != nil {
		s.logger.Error("failed to store artifact", "key", key, "error", err)
		return "", utils.NewInternalError("Failed to store the generated file")
	}

	file := &models.StoredFile{
		ID:          id,
		SessionID:   sessionID,
		Feature:     string(feature),
		Kind:        models.KindArtifact,
		Filename:    filename,
		ObjectKey:   key,
		ContentType: contentType,
		Size:        int64(len(data)),
		CreatedAt:   s.now(),
	}

	if err := s.repo.Save(ctx, file); err != nil {
		s.logger.Error("failed to save artifact handle", "id", id, "error", err)
		_ = s.storage.Delete(ctx, key)
		return "", utils.NewInternalError("Failed to store the generated file")
	}

	return id, nil
}
