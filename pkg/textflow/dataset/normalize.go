package dataset

import (
	"fmt"
	"strings"

	"github.com/cognicore/textflow/pkg/textflow/internalerr"
)

// NormalizeRecords converts loosely typed record payloads into Records.
//
// Accepted shapes, per item:
//   - string: the text
//   - map[string]any / map[string]string with a "text" key and optional "label"
//   - []any or []string: first element is the text, optional second the label
//   - Record
//
// A bare string or []string is also accepted for data. Items whose text is
// blank are skipped. Any other shape is rejected with ErrInvalidInput.
func NormalizeRecords(data any) ([]Record, error) {
	switch v := data.(type) {
	case nil:
		return []Record{}, nil
	case []Record:
		out := make([]Record, 0, len(v))
		for _, r := range v {
			if rec, ok := fromRecord(r); ok {
				out = append(out, rec)
			}
		}
		return out, nil
	case string:
		return appendRecord(nil, v, nil), nil
	case []string:
		out := make([]Record, 0, len(v))
		for _, s := range v {
			out = appendRecord(out, s, nil)
		}
		return out, nil
	case []map[string]any:
		out := make([]Record, 0, len(v))
		for i, m := range v {
			rec, ok, err := fromMap(m)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			if ok {
				out = append(out, rec)
			}
		}
		return out, nil
	case []any:
		out := make([]Record, 0, len(v))
		for i, item := range v {
			rec, ok, err := normalizeItem(item)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			if ok {
				out = append(out, rec)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("records of type %T: %w", data, internalerr.ErrInvalidInput)
	}
}

func normalizeItem(item any) (Record, bool, error) {
	switch v := item.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return Record{}, false, nil
		}
		return Record{Text: v}, true, nil
	case Record:
		rec, ok := fromRecord(v)
		return rec, ok, nil
	case map[string]any:
		return fromMap(v)
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return fromMap(m)
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return fromSlice(items)
	case []any:
		return fromSlice(v)
	default:
		return Record{}, false, fmt.Errorf("item of type %T: %w", item, internalerr.ErrInvalidInput)
	}
}

// fromRecord applies the boundary rules to an already typed record: blank
// text is skipped, an empty label becomes no label, the vector is kept.
func fromRecord(r Record) (Record, bool) {
	if strings.TrimSpace(r.Text) == "" {
		return Record{}, false
	}
	out := r.Clone()
	if out.Label != nil && *out.Label == "" {
		out.Label = nil
	}
	return out, true
}

func fromMap(m map[string]any) (Record, bool, error) {
	raw, ok := m["text"]
	if !ok {
		return Record{}, false, fmt.Errorf("missing text field: %w", internalerr.ErrInvalidInput)
	}
	text, ok := raw.(string)
	if !ok {
		return Record{}, false, fmt.Errorf("text field of type %T: %w", raw, internalerr.ErrInvalidInput)
	}
	var label *string
	if l, ok := m["label"]; ok && l != nil {
		s := fmt.Sprint(l)
		label = &s
	}
	out := appendRecord(nil, text, label)
	if len(out) == 0 {
		return Record{}, false, nil
	}
	return out[0], true, nil
}

func fromSlice(items []any) (Record, bool, error) {
	if len(items) == 0 {
		return Record{}, false, nil
	}
	text, ok := items[0].(string)
	if !ok {
		return Record{}, false, fmt.Errorf("first element of type %T: %w", items[0], internalerr.ErrInvalidInput)
	}
	var label *string
	if len(items) > 1 && items[1] != nil {
		s := fmt.Sprint(items[1])
		label = &s
	}
	out := appendRecord(nil, text, label)
	if len(out) == 0 {
		return Record{}, false, nil
	}
	return out[0], true, nil
}

// appendRecord skips blank text and drops empty labels, so "" and "no label"
// are the same thing at the boundary.
func appendRecord(out []Record, text string, label *string) []Record {
	if strings.TrimSpace(text) == "" {
		return out
	}
	rec := Record{Text: text}
	if label != nil && *label != "" {
		l := *label
		rec.Label = &l
	}
	return append(out, rec)
}
