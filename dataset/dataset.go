package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hupe1980/dedupe/record"
)

// Load reads a tab-separated dataset file into a record set.
func Load(path string) (*record.Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	set, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Read parses a tab-separated dataset from r. The first row is the
// header and must contain an "id" column; every following row becomes
// one record. A blank or repeated id is an error, since duplicate pairs
// are reported in terms of ids.
func Read(r io.Reader) (*record.Set, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	// Bibliographic titles routinely contain unbalanced quotes.
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("dataset is empty: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idCol := -1
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
		if header[i] == record.IDField {
			idCol = i
		}
	}
	if idCol < 0 {
		return nil, fmt.Errorf("header has no %q column", record.IDField)
	}

	var records []record.Record
	seen := make(map[string]int)
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		id := strings.TrimSpace(fields[idCol])
		if id == "" {
			return nil, fmt.Errorf("row %d: blank id", row)
		}
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("row %d: duplicate id %q (first seen in row %d)", row, id, prev)
		}
		seen[id] = row

		rec := make(record.Record, len(header))
		for i, name := range header {
			rec[name] = fields[i]
		}
		rec[record.IDField] = id

		records = append(records, rec)
	}

	return record.NewSet(records), nil
}
