package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cognicore/textflow/pkg/textflow/internalerr"
)

// ParseJSONLRecords reads one JSON object per line. Each object needs a
// "text" field and may carry a "label"; other fields (url, title, ...) are
// ignored. Blank lines and blank texts are skipped.
func ParseJSONLRecords(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16<<20)

	out := []Record{}
	for line := 1; sc.Scan(); line++ {
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			return nil, fmt.Errorf("line %d: %v: %w", line, err, internalerr.ErrInvalidInput)
		}
		rec, ok, err := fromMap(obj)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if ok {
			out = append(out, rec)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
