// Package dataset defines the immutable dataset snapshots that flow through
// the pipeline, their record shape and the codecs used to move them across
// process boundaries.
package dataset

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/textflow/pkg/textflow/internalerr"
)

// Type tags how far a dataset has progressed through the pipeline.
// The zero value is Raw; types are ordered from least to most processed.
type Type int

const (
	Raw Type = iota
	Augmented
	Cleaned
	Preprocessed
	Represented
	Classified
)

var typeNames = [...]string{"raw", "augmented", "cleaned", "preprocessed", "represented", "classified"}

// Types returns every dataset type in pipeline order.
func Types() []Type {
	return []Type{Raw, Augmented, Cleaned, Preprocessed, Represented, Classified}
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("type(%d)", int(t))
	}
	return typeNames[t]
}

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	return t >= Raw && t <= Classified
}

// ParseType converts a type name into a Type.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range typeNames {
		if name == s {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("dataset type %q: %w", s, internalerr.ErrInvalidInput)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("dataset type %d: %w", int(t), internalerr.ErrInvalidInput)
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Record is one row of a dataset.
type Record struct {
	Text   string    `json:"text"`
	Label  *string   `json:"label,omitempty"`
	Vector []float64 `json:"vector,omitempty"`
}

// Labeled returns a record carrying the given label.
func Labeled(text, label string) Record {
	return Record{Text: text, Label: &label}
}

// LabelValue returns the label, or "" when the record is unlabeled.
func (r Record) LabelValue() string {
	if r.Label == nil {
		return ""
	}
	return *r.Label
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := Record{Text: r.Text}
	if r.Label != nil {
		l := *r.Label
		out.Label = &l
	}
	if r.Vector != nil {
		out.Vector = make([]float64, len(r.Vector))
		copy(out.Vector, r.Vector)
	}
	return out
}

// Dataset is an immutable snapshot produced by exactly one stage completion.
// Callers must treat datasets returned by a store as read-only.
type Dataset struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Type      Type              `json:"type"`
	Records   []Record          `json:"records"`
	ParentID  string            `json:"parent_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// HasParent reports whether the dataset was derived from another dataset.
func (d Dataset) HasParent() bool {
	return d.ParentID != ""
}

// Texts returns the text of every record, in order.
func (d Dataset) Texts() []string {
	out := make([]string, len(d.Records))
	for i, r := range d.Records {
		out[i] = r.Text
	}
	return out
}

// Clone returns a deep copy of the dataset.
func (d Dataset) Clone() Dataset {
	out := d
	out.Records = CloneRecords(d.Records)
	if d.Metadata != nil {
		out.Metadata = make(map[string]string, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// CloneRecords deep-copies a record slice.
func CloneRecords(in []Record) []Record {
	if in == nil {
		return nil
	}
	out := make([]Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a fresh, never reused dataset identifier. IDs sort by
// creation time and are unique across concurrent callers.
func NewID() string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), idEntropy).String()
}
