package dataset

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cognicore/textflow/pkg/textflow/internalerr"
)

func sampleDataset() Dataset {
	return Dataset{
		ID:       NewID(),
		Name:     "Cleaned: reviews",
		Type:     Cleaned,
		ParentID: NewID(),
		Records: []Record{
			Labeled("great movie", "pos"),
			{Text: "unlabeled, with a comma"},
			{Text: "vectorized \"quoted\"", Vector: []float64{0.1, 2, -3.25, 1e-9}},
		},
		Metadata:  map[string]string{"source": "upload", "method": "tfidf"},
		CreatedAt: time.Date(2025, 4, 2, 9, 30, 0, 123, time.UTC),
	}
}

func assertSameLineage(t *testing.T, got, want Dataset) {
	t.Helper()
	if got.ID != want.ID || got.Type != want.Type || got.ParentID != want.ParentID || got.Name != want.Name {
		t.Fatalf("header mismatch: got %+v, want %+v", got, want)
	}
	if len(got.Records) != len(want.Records) {
		t.Fatalf("got %d records, want %d", len(got.Records), len(want.Records))
	}
	for i := range want.Records {
		g, w := got.Records[i], want.Records[i]
		if g.Text != w.Text {
			t.Errorf("record %d text = %q, want %q", i, g.Text, w.Text)
		}
		if (g.Label == nil) != (w.Label == nil) || g.LabelValue() != w.LabelValue() {
			t.Errorf("record %d label = %v, want %v", i, g.Label, w.Label)
		}
		if len(g.Vector) != len(w.Vector) {
			t.Fatalf("record %d vector len = %d, want %d", i, len(g.Vector), len(w.Vector))
		}
		for j := range w.Vector {
			if g.Vector[j] != w.Vector[j] {
				t.Errorf("record %d vector[%d] = %v, want %v", i, j, g.Vector[j], w.Vector[j])
			}
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	want := sampleDataset()
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, want); err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"type": "cleaned"`) {
		t.Errorf("type should serialize by name, got %s", buf.String())
	}
	got, err := DecodeJSON(&buf)
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	assertSameLineage(t, got, want)
	if got.Metadata["method"] != "tfidf" {
		t.Errorf("metadata lost: %v", got.Metadata)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	want := sampleDataset()
	var buf bytes.Buffer
	if err := WriteCSV(&buf, want); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	assertSameLineage(t, got, want)
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
}

func TestCSVRoundTripEmptyDataset(t *testing.T) {
	want := Dataset{ID: NewID(), Name: "empty", Type: Raw, Records: []Record{}}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, want); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	assertSameLineage(t, got, want)
	if got.HasParent() {
		t.Error("root dataset should have no parent")
	}
}

func TestParseType(t *testing.T) {
	for _, typ := range Types() {
		got, err := ParseType(strings.ToUpper(typ.String()))
		if err != nil || got != typ {
			t.Errorf("ParseType(%q) = %v, %v", typ.String(), got, err)
		}
	}
	if _, err := ParseType("vectorized"); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("unknown type should be ErrInvalidInput, got %v", err)
	}
	if !(Raw < Augmented && Augmented < Cleaned && Cleaned < Preprocessed && Preprocessed < Represented && Represented < Classified) {
		t.Error("types must be ordered by processing depth")
	}
}

func TestNormalizeRecordsShapes(t *testing.T) {
	data := []any{
		"plain string",
		map[string]any{"text": "with label", "label": "spam"},
		map[string]any{"text": "blank label", "label": ""},
		[]any{"from array", 3},
		"   ",
		map[string]string{"text": "string map"},
	}
	recs, err := NormalizeRecords(data)
	if err != nil {
		t.Fatalf("NormalizeRecords: %v", err)
	}
	want := []struct{ text, label string }{
		{"plain string", ""},
		{"with label", "spam"},
		{"blank label", ""},
		{"from array", "3"},
		{"string map", ""},
	}
	if len(recs) != len(want) {
		t.Fatalf("got %d records, want %d: %+v", len(recs), len(want), recs)
	}
	for i, w := range want {
		if recs[i].Text != w.text || recs[i].LabelValue() != w.label {
			t.Errorf("record %d = %+v, want %+v", i, recs[i], w)
		}
	}
	if recs[2].Label != nil {
		t.Error("empty label should normalize to no label")
	}
}

func TestNormalizeRecordsRejectsMalformed(t *testing.T) {
	cases := []any{
		42,
		[]any{map[string]any{"label": "x"}},
		[]any{map[string]any{"text": 7}},
		[]any{[]any{1, 2}},
		[]any{3.5},
	}
	for _, c := range cases {
		if _, err := NormalizeRecords(c); !errors.Is(err, internalerr.ErrInvalidInput) {
			t.Errorf("NormalizeRecords(%v) error = %v, want ErrInvalidInput", c, err)
		}
	}
}

func TestParseCSVRecords(t *testing.T) {
	in := "id,Label,Text\n1,pos,\"good, really good\"\n2,,meh\n3,neg,\n"
	recs, err := ParseCSVRecords(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseCSVRecords: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2: %+v", len(recs), recs)
	}
	if recs[0].Text != "good, really good" || recs[0].LabelValue() != "pos" {
		t.Errorf("record 0 = %+v", recs[0])
	}
	if recs[1].Label != nil {
		t.Errorf("record 1 should be unlabeled, got %q", recs[1].LabelValue())
	}
}

func TestParseCSVRecordsFirstColumnFallback(t *testing.T) {
	recs, err := ParseCSVRecords(strings.NewReader("review\nfirst\nsecond\n"))
	if err != nil {
		t.Fatalf("ParseCSVRecords: %v", err)
	}
	if len(recs) != 2 || recs[0].Text != "first" || recs[1].Text != "second" {
		t.Errorf("unexpected records: %+v", recs)
	}
}

func TestCloneIsDeep(t *testing.T) {
	d := sampleDataset()
	c := d.Clone()
	c.Records[0].Text = "changed"
	*c.Records[0].Label = "changed"
	c.Records[2].Vector[0] = 99
	c.Metadata["source"] = "changed"
	if d.Records[0].Text == "changed" || d.Records[0].LabelValue() == "changed" ||
		d.Records[2].Vector[0] == 99 || d.Metadata["source"] == "changed" {
		t.Error("Clone must not share state with the original")
	}
}

func TestNewIDUniqueUnderConcurrency(t *testing.T) {
	const n = 500
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- NewID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, n)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestParseJSONLRecords(t *testing.T) {
	in := `{"url":"https://news.ycombinator.com/item?id=1","title":"t","text":"first story body","source_cats":["ai"]}

{"text":"second","label":"pos"}
{"text":"   "}
`
	got, err := ParseJSONLRecords(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseJSONLRecords: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Text != "first story body" || got[0].Label != nil {
		t.Errorf("record 0 = %+v", got[0])
	}
	if got[1].LabelValue() != "pos" {
		t.Errorf("record 1 label = %q, want pos", got[1].LabelValue())
	}
}

func TestParseJSONLRecordsMalformed(t *testing.T) {
	for _, in := range []string{"{\"text\":\"ok\"}\n{broken", `{"title":"no text"}`} {
		if _, err := ParseJSONLRecords(strings.NewReader(in)); !errors.Is(err, internalerr.ErrInvalidInput) {
			t.Errorf("%q: err = %v, want ErrInvalidInput", in, err)
		}
	}
}

func TestNormalizeTypedRecords(t *testing.T) {
	empty := ""
	in := []Record{
		{Text: "  "},
		{Text: "a", Label: &empty, Vector: []float64{1, 2}},
		Labeled("b", "x"),
	}
	recs, err := NormalizeRecords(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want blank text skipped: %+v", len(recs), recs)
	}
	if recs[0].Text != "a" || recs[0].Label != nil || len(recs[0].Vector) != 2 {
		t.Errorf("record 0 = %+v, want text a, no label, vector kept", recs[0])
	}
	if recs[1].LabelValue() != "x" {
		t.Errorf("record 1 label = %q, want x", recs[1].LabelValue())
	}

	recs, err = NormalizeRecords([]any{Record{Text: " "}, Record{Text: "c"}})
	if err != nil || len(recs) != 1 || recs[0].Text != "c" {
		t.Errorf("[]any of Record: %+v, %v", recs, err)
	}
}
