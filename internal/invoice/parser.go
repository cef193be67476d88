// Package invoice recovers issuer and document number from nota fiscal PDFs
// and renames the files after them.
package invoice

import (
	"fmt"
	"regexp"
	"strings"
)

// The two labels a DANFE carries. Both searches are independent and take the
// first occurrence in document order; there is no fuzzy fallback, a malformed
// label rejects the whole document.
var (
	issuerPattern = regexp.MustCompile(`IDENTIFICAÇÃO DO EMITENTE\s*([\wÀ-ÿ\-.,& ]+)`)
	numberPattern = regexp.MustCompile(`Nº\.:\s*(\d{3}\.\d{3}\.\d{3})`)
)

// Fields holds the two values required to rename an invoice.
type Fields struct {
	IssuerName     string
	DocumentNumber string
}

// ParseFields searches the extracted text for the issuer and document-number
// labels. Both must match or nothing is returned; a partial record is never
// emitted.
func ParseFields(text string) (*Fields, bool) {
	issuer := issuerPattern.FindStringSubmatch(text)
	number := numberPattern.FindStringSubmatch(text)

	if issuer == nil || number == nil {
		return nil, false
	}

	fields := &Fields{
		IssuerName:     strings.TrimSpace(issuer[1]),
		DocumentNumber: strings.TrimSpace(number[1]),
	}
	if fields.IssuerName == "" || fields.DocumentNumber == "" {
		return nil, false
	}

	return fields, true
}

// NameStyle selects which filename convention to derive. The two orderings
// both exist in production exports, so they are kept as distinct behaviors.
type NameStyle string

const (
	// StyleNumberFirst derives "NNN.NNN.NNN - ISSUER.pdf".
	StyleNumberFirst NameStyle = "number-first"
	// StyleNameFirst derives "ISSUER - NNN.NNN.NNN.pdf".
	StyleNameFirst NameStyle = "name-first"
)

// ParseNameStyle validates a user-supplied style, defaulting to name-first.
func ParseNameStyle(raw string) (NameStyle, error) {
	switch raw {
	case "", string(StyleNameFirst):
		return StyleNameFirst, nil
	case string(StyleNumberFirst):
		return StyleNumberFirst, nil
	default:
		return "", fmt.Errorf("unknown name style %q", raw)
	}
}

// Filename derives the output name for the given style.
func (f *Fields) Filename(style NameStyle) string {
	if style == StyleNumberFirst {
		return fmt.Sprintf("%s - %s.pdf", f.DocumentNumber, f.IssuerName)
	}
	return fmt.Sprintf("%s - %s.pdf", f.IssuerName, f.DocumentNumber)
}
