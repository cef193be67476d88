package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/jgu1lherme/crm-alternativa/internal/models"
)

// FileRepository tracks stored-file handles: the session's last upload per
// feature, and produced artifacts awaiting download.
type FileRepository interface {
	Save(ctx context.Context, file *models.StoredFile) error
	GetByID(ctx context.Context, id string) (*models.StoredFile, error)
	LatestUpload(ctx context.Context, sessionID string, feature models.Feature) (*models.StoredFile, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.StoredFile, error)
	DeleteBySession(ctx context.Context, sessionID string) error
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Save(ctx context.Context, file *models.StoredFile) error {
	query := `
		INSERT INTO files (id, session_id, feature, kind, filename, object_key, content_type, size, created_at)
		VALUES (:id, :session_id, :feature, :kind, :filename, :object_key, :content_type, :size, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, file)
	return err
}

func (r *fileRepository) GetByID(ctx context.Context, id string) (*models.StoredFile, error) {
	var file models.StoredFile

	query := `
		SELECT id, session_id, feature, kind, filename, object_key, content_type, size, created_at
		FROM files
		WHERE id = ?
	`

	err := r.db.GetContext(ctx, &file, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &file, nil
}

// LatestUpload returns the session's most recent upload for a feature, or nil
// when the session never uploaded one.
func (r *fileRepository) LatestUpload(ctx context.Context, sessionID string, feature models.Feature) (*models.StoredFile, error) {
	var file models.StoredFile

	query := `
		SELECT id, session_id, feature, kind, filename, object_key, content_type, size, created_at
		FROM files
		WHERE session_id = ? AND feature = ? AND kind = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &file, query, sessionID, string(feature), models.KindUpload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &file, nil
}

func (r *fileRepository) ListBySession(ctx context.Context, sessionID string) ([]models.StoredFile, error) {
	var files []models.StoredFile

	query := `
		SELECT id, session_id, feature, kind, filename, object_key, content_type, size, created_at
		FROM files
		WHERE session_id = ?
		ORDER BY created_at
	`

	if err := r.db.SelectContext(ctx, &files, query, sessionID); err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE session_id = ?`, sessionID)
	return err
}
