// Package extract converts uploaded documents into plain text for auditing.
package extract

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Status reports whether extraction succeeded for a given file type.
type Status string

const (
	StatusOK          Status = "ok"
	StatusEmpty       Status = "empty"
	StatusUnsupported Status = "unsupported"
)

// Metadata describes the extracted document.
type Metadata struct {
	Filename  string `json:"filename"`
	Extension string `json:"extension"`
	Bytes     int    `json:"bytes"`
	Chars     int    `json:"chars"`
}

// Extractor turns raw file bytes into audit-ready text. Only plain-text
// formats are handled; binary formats such as PDF and DOCX are reported as
// unsupported rather than partially decoded.
type Extractor struct{}

// New returns a document extractor.
func New() *Extractor {
	return &Extractor{}
}

var supportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".text":     true,
}

// Extract decodes data into text. The filename's extension decides the
// format; unknown extensions yield StatusUnsupported with empty text.
func (e *Extractor) Extract(data []byte, filename string) (string, Metadata, Status) {
	ext := strings.ToLower(filepath.Ext(filename))
	meta := Metadata{
		Filename:  filename,
		Extension: ext,
		Bytes:     len(data),
	}

	if !supportedExtensions[ext] {
		return "", meta, StatusUnsupported
	}

	text := sanitize(string(data))
	meta.Chars = utf8.RuneCountInString(text)
	if strings.TrimSpace(text) == "" {
		return "", meta, StatusEmpty
	}
	return text, meta, StatusOK
}

// sanitize strips a UTF-8 BOM, drops invalid byte sequences, and
// normalizes line endings.
func sanitize(text string) string {
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ToValidUTF8(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
