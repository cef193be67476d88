// Package converter re-encodes uploaded images into other formats. Each call
// converts a single file; failures surface once, there is no batch to keep
// alive around them.
package converter

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/jgu1lherme/crm-alternativa/internal/utils"
)

// Target formats.
const (
	TargetJPEG = "jpeg"
	TargetPNG  = "png"
	TargetPDF  = "pdf"
)

// Result carries the converted bytes and the download metadata.
type Result struct {
	Content     []byte
	ContentType string
	Extension   string
}

// Convert decodes a PNG or JPEG upload and re-encodes it as the target
// format. JPEG output uses quality 95; PDF output wraps the image into a
// single-page document.
func Convert(data []byte, target string) (*Result, error) {
	target = strings.ToLower(target)

	switch target {
	case TargetJPEG, TargetPNG:
		return convertImage(data, target)
	case TargetPDF:
		return convertToPDF(data)
	default:
		return nil, utils.NewBadRequestError(fmt.Sprintf("unsupported target format '%s'", target))
	}
}

func convertImage(data []byte, target string) (*Result, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, utils.NewBadRequestError("the file could not be decoded as an image")
	}

	var buf bytes.Buffer

	switch target {
	case TargetJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
		return &Result{Content: buf.Bytes(), ContentType: "image/jpeg", Extension: "jpg"}, nil
	default:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
		return &Result{Content: buf.Bytes(), ContentType: "image/png", Extension: "png"}, nil
	}
}

func convertToPDF(data []byte) (*Result, error) {
	// Validate it decodes before handing it to the PDF importer.
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return nil, utils.NewBadRequestError("the file could not be decoded as an image")
	}

	var buf bytes.Buffer
	imp, err := api.Import("form:A4, pos:c", types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("configure PDF import: %w", err)
	}

	if err := api.ImportImages(nil, &buf, []io.Reader{bytes.NewReader(data)}, imp, nil); err != nil {
		return nil, fmt.Errorf("build PDF: %w", err)
	}

	return &Result{Content: buf.Bytes(), ContentType: "application/pdf", Extension: "pdf"}, nil
}
