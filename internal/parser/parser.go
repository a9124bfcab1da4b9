// Package parser turns uploaded documents into plain text.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docxmerge/internal/extract"
)

// Options tune a single Parse call.
type Options struct {
	// StripFieldInstructions drops field codes such as HYPERLINK
	// instructions. Only .docx sources have them.
	StripFieldInstructions bool
}

// Parser converts raw document bytes into plain text.
type Parser interface {
	Parse(r io.Reader, filename string, opts Options) (string, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".docx":     true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
}

// Registry picks a Parser by file extension.
type Registry struct {
	// PDFFallback lets PDF parsers shell out to pdftotext when the
	// native reader fails.
	PDFFallback bool

	// Stats, when set, is handed to every DOCX parser.
	Stats *extract.LatencyStats
}

// ForFile returns the appropriate parser for a filename using a zero Registry.
func ForFile(filename string) (Parser, error) {
	return Registry{}.ForFile(filename)
}

// ForFile returns the appropriate parser for a filename.
func (reg Registry) ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".docx":
		return &DOCXParser{Stats: reg.Stats}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: reg.PDFFallback}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// joinBlocks trims each block, drops empty ones and separates the rest
// with a blank line.
func joinBlocks(blocks []string) string {
	kept := blocks[:0:0]
	for _, b := range blocks {
		if b = strings.TrimSpace(b); b != "" {
			kept = append(kept, b)
		}
	}
	return strings.Join(kept, "\n\n")
}
