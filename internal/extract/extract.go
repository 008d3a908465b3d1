// Package extract turns uploaded documents into plain text sentences for
// the question-generation pipeline.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"
)

var (
	ErrUnsupportedType  = errors.New("unsupported file type")
	ErrUnreadable       = errors.New("could not parse this format")
	ErrInsufficientText = errors.New("document has insufficient readable text")
)

// SupportedExt reports whether the extension can be decoded. Checked before
// any parsing is attempted.
func SupportedExt(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".markdown", ".pdf", ".docx":
		return true
	}
	return false
}

// Text decodes an upload into plain text, dispatching on file extension.
func Text(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".markdown":
		// Invalid byte sequences are replaced, never fatal.
		return strings.ToValidUTF8(string(data), "�"), nil
	case ".pdf":
		return pdfText(data)
	case ".docx":
		return docxText(data)
	default:
		return "", ErrUnsupportedType
	}
}

func pdfText(data []byte) (text string, err error) {
	// The pdf package panics on some malformed files; fold that into the
	// user-facing parse error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		// A page that fails extraction contributes an empty string rather
		// than aborting the whole document.
		if s, perr := p.GetPlainText(nil); perr == nil {
			sb.WriteString(s)
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	parts := []string{}
	for _, it := range doc.Document.Body.Items {
		if p, ok := it.(*docx.Paragraph); ok {
			if s := strings.TrimSpace(p.String()); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, "\n"), nil
}
