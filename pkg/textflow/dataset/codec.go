package dataset

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cognicore/textflow/pkg/textflow/internalerr"
)

// EncodeJSON writes the dataset as a single JSON document.
func EncodeJSON(w io.Writer, d Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// DecodeJSON reads a dataset written by EncodeJSON.
func DecodeJSON(r io.Reader) (Dataset, error) {
	var d Dataset
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}
	if d.Records == nil {
		d.Records = []Record{}
	}
	return d, nil
}

var csvHeader = []string{"id", "name", "type", "parent_id", "created_at", "metadata", "index", "text", "label", "vector"}

// WriteCSV writes the dataset in row-oriented form: one row per record, with
// the dataset fields repeated on every row. A dataset without records is
// written as a single row with an empty index.
func WriteCSV(w io.Writer, d Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	meta := ""
	if len(d.Metadata) > 0 {
		b, err := json.Marshal(d.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		meta = string(b)
	}
	created := ""
	if !d.CreatedAt.IsZero() {
		created = d.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	prefix := []string{d.ID, d.Name, d.Type.String(), d.ParentID, created, meta}

	if len(d.Records) == 0 {
		if err := cw.Write(append(prefix, "", "", "", "")); err != nil {
			return err
		}
	}
	for i, rec := range d.Records {
		row := append(append([]string{}, prefix...),
			strconv.Itoa(i), rec.Text, rec.LabelValue(), formatVector(rec.Vector))
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a dataset written by WriteCSV.
func ReadCSV(r io.Reader) (Dataset, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return Dataset{}, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(csvHeader) {
		return Dataset{}, fmt.Errorf("csv header has %d columns, want %d: %w", len(header), len(csvHeader), internalerr.ErrInvalidInput)
	}

	d := Dataset{Records: []Record{}}
	first := true
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Dataset{}, fmt.Errorf("read row: %w", err)
		}
		if first {
			if err := d.fillFromRow(row); err != nil {
				return Dataset{}, err
			}
			first = false
		}
		if row[6] == "" {
			continue
		}
		rec := Record{Text: row[7]}
		if row[8] != "" {
			l := row[8]
			rec.Label = &l
		}
		if rec.Vector, err = parseVector(row[9]); err != nil {
			return Dataset{}, err
		}
		d.Records = append(d.Records, rec)
	}
	if first {
		return Dataset{}, fmt.Errorf("csv has no dataset rows: %w", internalerr.ErrInvalidInput)
	}
	return d, nil
}

func (d *Dataset) fillFromRow(row []string) error {
	typ, err := ParseType(row[2])
	if err != nil {
		return err
	}
	d.ID, d.Name, d.Type, d.ParentID = row[0], row[1], typ, row[3]
	if row[4] != "" {
		if d.CreatedAt, err = time.Parse(time.RFC3339Nano, row[4]); err != nil {
			return fmt.Errorf("parse created_at: %w", err)
		}
	}
	if row[5] != "" {
		if err := json.Unmarshal([]byte(row[5]), &d.Metadata); err != nil {
			return fmt.Errorf("decode metadata: %w", err)
		}
	}
	return nil
}

// ParseCSVRecords reads user-supplied tabular data. The header row selects
// a "text" column and an optional "label" column (case-insensitive); when no
// "text" header exists the first column is used.
func ParseCSVRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	textCol, labelCol := 0, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "text":
			textCol = i
		case "label":
			labelCol = i
		}
	}

	out := []Record{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if textCol >= len(row) {
			continue
		}
		var label *string
		if labelCol >= 0 && labelCol < len(row) {
			l := strings.TrimSpace(row[labelCol])
			label = &l
		}
		out = appendRecord(out, strings.TrimSpace(row[textCol]), label)
	}
	return out, nil
}

func formatVector(v []float64) string {
	if len(v) == 0 {
		return ""
	}
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

func parseVector(s string) ([]float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("parse vector component %d: %w", i, internalerr.ErrInvalidInput)
		}
		out[i] = v
	}
	return out, nil
}
