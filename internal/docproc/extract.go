package docproc

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extractor produces the header+body text the Chunker consumes from a
// source file. PDF and DOCX extraction are external collaborators; this
// interface is their seam.
type Extractor interface {
	// Supports reports whether the extractor can handle the file.
	Supports(path string) bool

	// Extract returns the raw text of the file.
	Extract(path string) (io.ReadCloser, error)
}

// TextExtractor reads plain-text course scripts (.txt, .md).
type TextExtractor struct{}

// Supports reports whether path has a plain-text extension.
func (TextExtractor) Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return true
	default:
		return false
	}
}

// Extract opens the file for reading.
func (TextExtractor) Extract(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening course document: %w", err)
	}
	return f, nil
}
