package invoice

import (
	"github.com/jgu1lherme/crm-alternativa/internal/extractor"
	"github.com/jgu1lherme/crm-alternativa/internal/models"
	"github.com/jgu1lherme/crm-alternativa/internal/utils"
)

// Renamer runs the extract → parse → rename pipeline over a batch of PDFs.
// One bad document never aborts the rest; every failure is reported with the
// original filename.
type Renamer struct {
	logger      *utils.Logger
	extractText func([]byte) (string, error)
}

func NewRenamer(logger *utils.Logger) *Renamer {
	return &Renamer{
		logger:      logger,
		extractText: extractor.ExtractPDF,
	}
}

// RenameBatch processes documents independently and in input order. The
// result is a pure function of the input contents.
func (r *Renamer) RenameBatch(docs []models.RawDocument, style NameStyle) models.BatchResult {
	result := models.BatchResult{}

	for _, doc := range docs {
		text, err := r.extractText(doc.Content)
		if err != nil {
			r.logger.Warn("could not extract text", "filename", doc.Filename, "error", err)
			result.Failures = append(result.Failures, models.ItemFailure{
				Filename: doc.Filename,
				Reason:   "could not be read as a PDF",
			})
			continue
		}

		fields, ok := ParseFields(text)
		if !ok {
			r.logger.Warn("could not parse invoice fields", "filename", doc.Filename)
			result.Failures = append(result.Failures, models.ItemFailure{
				Filename: doc.Filename,
				Reason:   "could not be processed: issuer or document number not found",
			})
			continue
		}

		result.Renamed = append(result.Renamed, models.RenamedFile{
			Filename: fields.Filename(style),
			Content:  doc.Content,
		})
	}

	return result
}
