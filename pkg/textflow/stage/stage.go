// Package stage models the fixed pipeline order and decides which dataset
// each stage may consume.
package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/cognicore/textflow/pkg/textflow/dataset"
	"github.com/cognicore/textflow/pkg/textflow/internalerr"
	"github.com/cognicore/textflow/pkg/textflow/store"
)

// Stage is one step of the pipeline, in execution order.
type Stage int

const (
	Collection Stage = iota
	Augmentation
	Cleaning
	Preprocessing
	Representation
	Classification
)

var stageNames = [...]string{"collection", "augmentation", "cleaning", "preprocessing", "representation", "classification"}

// Stages returns every stage in pipeline order.
func Stages() []Stage {
	return []Stage{Collection, Augmentation, Cleaning, Preprocessing, Representation, Classification}
}

func (s Stage) String() string {
	if !s.Valid() {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	return s >= Collection && s <= Classification
}

// ParseStage resolves a stage name.
func ParseStage(name string) (Stage, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range stageNames {
		if n == name {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("stage %q: %w", name, internalerr.ErrInvalidInput)
}

// Output is the dataset type a stage produces.
func (s Stage) Output() dataset.Type {
	switch s {
	case Augmentation:
		return dataset.Augmented
	case Cleaning:
		return dataset.Cleaned
	case Preprocessing:
		return dataset.Preprocessed
	case Representation:
		return dataset.Represented
	case Classification:
		return dataset.Classified
	}
	return dataset.Raw
}

// Allowed lists the dataset types a stage accepts as input: every type
// produced before it. Collection accepts none.
func (s Stage) Allowed() []dataset.Type {
	if !s.Valid() || s == Collection {
		return nil
	}
	out := make([]dataset.Type, 0, int(s))
	for _, prev := range Stages()[:s] {
		out = append(out, prev.Output())
	}
	return out
}

// Accepts reports whether a dataset of type t may feed stage s.
func (s Stage) Accepts(t dataset.Type) bool {
	for _, a := range s.Allowed() {
		if a == t {
			return true
		}
	}
	return false
}

// Next returns the following stage; the last stage returns itself.
func (s Stage) Next() Stage {
	if s >= Classification {
		return Classification
	}
	return s + 1
}

// Terminal reports whether s is the last stage.
func (s Stage) Terminal() bool { return s == Classification }

// State is the controller state. It is passed and returned by value; the
// controller keeps none of its own.
type State struct {
	Stage    Stage  `json:"stage"`
	ActiveID string `json:"active_id,omitempty"`
}

// Controller validates stage transitions against the datasets in a store.
type Controller struct {
	datasets store.Reader
}

// NewController creates a controller reading from r.
func NewController(r store.Reader) *Controller {
	return &Controller{datasets: r}
}

// Advance moves to the next stage, checking its precondition. At the
// terminal stage the state is returned unchanged.
func (c *Controller) Advance(ctx context.Context, st State) (State, error) {
	if st.Stage.Terminal() {
		return st, nil
	}
	return c.JumpTo(ctx, st, st.Stage.Next())
}

// JumpTo enters target directly. Entering any stage but collection requires
// an active dataset whose type the target accepts.
func (c *Controller) JumpTo(ctx context.Context, st State, target Stage) (State, error) {
	if !target.Valid() {
		return st, fmt.Errorf("stage %d: %w", int(target), internalerr.ErrInvalidInput)
	}
	if err := c.Check(ctx, target, st.ActiveID); err != nil {
		return st, err
	}
	st.Stage = target
	return st, nil
}

// Select makes id the active dataset without changing stage. The dataset
// must exist and be acceptable to the current stage (collection accepts
// anything, since it only produces).
func (c *Controller) Select(ctx context.Context, st State, id string) (State, error) {
	d, err := c.datasets.Get(ctx, id)
	if err != nil {
		return st, err
	}
	if st.Stage != Collection && !st.Stage.Accepts(d.Type) {
		return st, fmt.Errorf("%s stage cannot consume %s dataset %s: %w", st.Stage, d.Type, id, internalerr.ErrPreconditionFailed)
	}
	st.ActiveID = id
	return st, nil
}

// Complete records that the current stage produced d: d becomes the active
// dataset. The stage does not move; call Advance for that.
func (c *Controller) Complete(st State, d dataset.Dataset) (State, error) {
	if d.Type != st.Stage.Output() {
		return st, fmt.Errorf("%s stage produced %s dataset: %w", st.Stage, d.Type, internalerr.ErrInvalidInput)
	}
	st.ActiveID = d.ID
	return st, nil
}

// Input resolves the dataset the stage in st should read. It fails with
// ErrPreconditionFailed when there is no acceptable active dataset.
func (c *Controller) Input(ctx context.Context, st State) (dataset.Dataset, error) {
	if err := c.Check(ctx, st.Stage, st.ActiveID); err != nil {
		return dataset.Dataset{}, err
	}
	return c.datasets.Get(ctx, st.ActiveID)
}

// Check verifies that stage s may run with activeID as input.
func (c *Controller) Check(ctx context.Context, s Stage, activeID string) error {
	if s == Collection {
		return nil
	}
	if activeID == "" {
		return fmt.Errorf("%s stage needs an active dataset: %w", s, internalerr.ErrPreconditionFailed)
	}
	d, err := c.datasets.Get(ctx, activeID)
	if err != nil {
		return fmt.Errorf("%s stage input %s: %v: %w", s, activeID, err, internalerr.ErrPreconditionFailed)
	}
	if !s.Accepts(d.Type) {
		return fmt.Errorf("%s stage cannot consume %s dataset %s: %w", s, d.Type, activeID, internalerr.ErrPreconditionFailed)
	}
	return nil
}

// Eligible lists the stored datasets stage s may consume, grouped by type
// in pipeline order.
func (c *Controller) Eligible(ctx context.Context, s Stage) ([]dataset.Dataset, error) {
	var out []dataset.Dataset
	for _, t := range s.Allowed() {
		ds, err := c.datasets.ListByType(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, ds...)
	}
	return out, nil
}
