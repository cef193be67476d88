package extractor

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/jgu1lherme/crm-alternativa/internal/models"
)

// ExtractArchive reads a ZIP upload and returns the entries whose name ends
// with ext (case-insensitive, e.g. ".pdf"), each fully loaded into memory.
// Entry order follows the archive directory.
func ExtractArchive(data []byte, ext string) ([]models.RawDocument, error) {
	reader := bytes.NewReader(data)

	zipReader, err := zip.NewReader(reader, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}

	ext = strings.ToLower(ext)

	var docs []models.RawDocument
	for _, file := range zipReader.File {
		if !strings.HasSuffix(strings.ToLower(file.Name), ext) {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open archive entry %s: %w", file.Name, err)
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read archive entry %s: %w", file.Name, err)
		}

		docs = append(docs, models.RawDocument{Filename: file.Name, Content: content})
	}

	return docs, nil
}

// BuildArchive writes named byte buffers into one ZIP. When two entries carry
// the same name the later one replaces the earlier, matching the collision
// behavior of the combined-download feature.
func BuildArchive(files []models.RenamedFile) ([]byte, error) {
	names := make([]string, 0, len(files))
	content := make(map[string][]byte, len(files))

	for _, f := range files {
		if _, seen := content[f.Filename]; !seen {
			names = append(names, f.Filename)
		}
		content[f.Filename] = f.Content
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for _, name := range names {
		entry, err := w.Create(name)
		if err != nil {
			return nil, fmt.Errorf("failed to create archive entry %s: %w", name, err)
		}
		if _, err := entry.Write(content[name]); err != nil {
			return nil, fmt.Errorf("failed to write archive entry %s: %w", name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	return buf.Bytes(), nil
}
