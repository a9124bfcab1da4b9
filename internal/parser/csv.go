package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVParser handles CSV files. The first row is treated as headers and
// every following row becomes one "header: value" line.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string, _ Options) (string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv %s: %w", filename, err)
	}
	if len(records) == 0 {
		return "", nil
	}

	headers := records[0]
	lines := make([]string, 0, len(records)-1)
	for _, row := range records[1:] {
		cells := make([]string, 0, len(row))
		for j, cell := range row {
			if j < len(headers) && headers[j] != "" {
				cells = append(cells, headers[j]+": "+cell)
			} else {
				cells = append(cells, cell)
			}
		}
		lines = append(lines, strings.Join(cells, ", "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
