package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cognicore/textflow/pkg/textflow/dataset"
	"github.com/cognicore/textflow/pkg/textflow/internalerr"
)

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := New()
	d, err := s.Create(ctx, nil, dataset.Raw, "upload", []dataset.Record{dataset.Labeled("hello", "greeting")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "upload" || len(got.Records) != 1 || got.Records[0].LabelValue() != "greeting" {
		t.Errorf("Get = %+v", got)
	}
	if got.HasParent() {
		t.Error("root dataset should have no parent")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	d, _ := s.Create(ctx, nil, dataset.Raw, "r", []dataset.Record{{Text: "a"}}, nil)
	got, _ := s.Get(ctx, d.ID)
	got.Records[0].Text = "changed"
	got.Metadata["size"] = "99"

	again, _ := s.Get(ctx, d.ID)
	if again.Records[0].Text != "a" || again.Metadata["size"] != "1" {
		t.Error("stored dataset was mutated through a returned copy")
	}
}

func TestGetUnknown(t *testing.T) {
	if _, err := New().Get(context.Background(), "nope"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateUnknownParent(t *testing.T) {
	ghost := dataset.Dataset{ID: "ghost"}
	_, err := New().Create(context.Background(), &ghost, dataset.Cleaned, "c", nil, nil)
	if !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListByTypeAndOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, _ := s.Create(ctx, nil, dataset.Raw, "a", nil, nil)
	b, _ := s.Create(ctx, &a, dataset.Cleaned, "b", nil, nil)
	c, _ := s.Create(ctx, nil, dataset.Raw, "c", nil, nil)

	raws, err := s.ListByType(ctx, dataset.Raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(raws) != 2 || raws[0].ID != a.ID || raws[1].ID != c.ID {
		t.Errorf("ListByType(raw) = %v", ids(raws))
	}
	all, _ := s.List(ctx)
	if len(all) != 3 || all[1].ID != b.ID {
		t.Errorf("List = %v", ids(all))
	}
	if none, _ := s.ListByType(ctx, dataset.Classified); len(none) != 0 {
		t.Errorf("ListByType(classified) = %v", ids(none))
	}
}

func TestConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	s := New()
	const n = 64
	var wg sync.WaitGroup
	idCh := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := s.Create(ctx, nil, dataset.Raw, "r", []dataset.Record{{Text: "x"}}, nil)
			if err != nil {
				t.Error(err)
				return
			}
			idCh <- d.ID
		}()
	}
	wg.Wait()
	close(idCh)

	seen := make(map[string]bool)
	for id := range idCh {
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
	if len(seen) != n || s.Len() != n {
		t.Errorf("created %d ids, store holds %d, want %d", len(seen), s.Len(), n)
	}
}

func TestLineageMethod(t *testing.T) {
	ctx := context.Background()
	s := New()
	raw, _ := s.Create(ctx, nil, dataset.Raw, "raw", nil, nil)
	aug, _ := s.Create(ctx, &raw, dataset.Augmented, "aug", nil, nil)
	chain, err := s.Lineage(ctx, aug.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(chain) != 2 || chain[0].ID != aug.ID || chain[1].ID != raw.ID {
		t.Errorf("Lineage = %v", ids(chain))
	}
}

func ids(ds []dataset.Dataset) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.ID
	}
	return out
}
