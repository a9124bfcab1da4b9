package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TextParser handles plain text files. Paragraphs are separated by blank
// lines; runs of blank lines collapse into one.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string, _ Options) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}

	return joinBlocks(paragraphs), nil
}
