package services

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

const utf8BOM = "\ufeff"

// csvRow is one data row keyed by header name. Values are already trimmed.
type csvRow map[string]string

// get reports a field as present only when it holds a non-empty value.
func (r csvRow) get(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// rowStream reads data rows lazily from a CSV source. It is single pass and
// not restartable.
type rowStream struct {
	reader *csv.Reader
	header []string
}

// newRowStream consumes the header row. An input without one is malformed.
func newRowStream(r io.Reader) (*rowStream, error) {
	reader := csv.NewReader(r)
	// rows may be shorter or longer than the header
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Err: errors.New("missing header row")}
	}
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	names := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		names[i] = strings.TrimSpace(h)
	}
	return &rowStream{reader: reader, header: names}, nil
}

// Next returns the next row that has at least one non-empty value. It returns
// io.EOF once the input is exhausted and a *ParseError for malformed CSV.
func (s *rowStream) Next() (csvRow, error) {
	for {
		record, err := s.reader.Read()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}

		blank := true
		for _, v := range record {
			if strings.TrimSpace(v) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}

		row := make(csvRow, len(s.header))
		for i, name := range s.header {
			if i >= len(record) {
				break
			}
			if name == "" {
				continue
			}
			if _, seen := row[name]; seen {
				continue
			}
			row[name] = strings.TrimSpace(record[i])
		}
		return row, nil
	}
}
