// Package document turns uploaded files into the plain text the extractor
// works on.
package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ReadText returns the text of a PDF or plain-text file, trimmed.
func ReadText(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return ReadPDFText(path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}
	if bytes.HasPrefix(raw, []byte("%PDF-")) {
		return ReadPDFBytes(raw)
	}
	return strings.TrimSpace(string(raw)), nil
}

// ReadPDFText extracts the plain text of every page, joined by newlines.
func ReadPDFText(path string) (text string, err error) {
	defer recoverPDF(&err)

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	return pagesText(reader)
}

// ReadPDFBytes is ReadPDFText for an in-memory upload.
func ReadPDFBytes(data []byte) (text string, err error) {
	defer recoverPDF(&err)

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	return pagesText(reader)
}

// recoverPDF turns the parser's panics on malformed input into errors.
func recoverPDF(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("reading PDF: %v", r)
	}
}

func pagesText(reader *pdf.Reader) (text string, err error) {
	defer recoverPDF(&err)

	chunks := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("reading PDF page %d: %w", i, err)
		}
		chunks = append(chunks, pageText)
	}
	return strings.TrimSpace(strings.Join(chunks, "\n")), nil
}
