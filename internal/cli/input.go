package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/textflow/pkg/textflow/dataset"
	"github.com/cognicore/textflow/pkg/textflow/internalerr"
)

// readRecords loads records from a CSV file (header with text and optional
// label columns), a JSONL file of {"text", "label"} objects or a text file
// with one record per line. "-" reads the lines of stdin.
func readRecords(path string, stdin io.Reader) ([]dataset.Record, error) {
	if path == "" {
		return nil, fmt.Errorf("input file required: %w", internalerr.ErrInvalidInput)
	}
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return dataset.ParseCSVRecords(r)
	case ".jsonl", ".ndjson":
		return dataset.ParseJSONLRecords(r)
	}
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return dataset.NormalizeRecords(lines)
}

func texts(records []dataset.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Text
	}
	return out
}
