package parser

import (
	"fmt"
	"io"
	"time"

	"github.com/dgallion1/docxmerge/internal/docx"
	"github.com/dgallion1/docxmerge/internal/extract"
)

// DOCXParser handles .docx files through the streaming extractor.
type DOCXParser struct {
	// Stats, when set, receives one observation per successful parse.
	Stats *extract.LatencyStats
}

func (p *DOCXParser) Parse(r io.Reader, filename string, opts Options) (string, error) {
	// The archive needs random access, so the package is read fully first.
	pkg, err := io.ReadAll(r)
	if err != nil {
		return "", extract.NewError(extract.KindIO, filename, fmt.Errorf("read package: %w", err))
	}

	start := time.Now()
	text, err := docx.ExtractBytes(pkg, opts.StripFieldInstructions)
	if err != nil {
		return "", extract.WithSource(err, filename)
	}
	p.Stats.Observe(start, int64(len(pkg)))
	return text, nil
}
