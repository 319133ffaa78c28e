// Package catalog holds the read-only exercise catalog. Entries are enriched
// with a MET value once at load and never change afterwards.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sync"

	"github.com/meltforce/fittrack/internal/energy"
	"github.com/meltforce/fittrack/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed exercises.yaml
var builtin []byte

type file struct {
	Exercises []models.Exercise `yaml:"exercises"`
}

// Catalog is an immutable, MET-enriched list of exercises.
type Catalog struct {
	exercises []models.Exercise
	byID      map[string]int
}

// Compile-time check: the catalog is the estimator's MET lookup tier.
var _ energy.METLookup = (*Catalog)(nil)

// Load parses a YAML catalog and assigns every entry its MET value.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	c := &Catalog{
		exercises: make([]models.Exercise, 0, len(f.Exercises)),
		byID:      make(map[string]int, len(f.Exercises)),
	}
	for i, ex := range f.Exercises {
		if ex.ID == "" || ex.Name == "" {
			return nil, fmt.Errorf("catalog entry %d: id and name are required", i)
		}
		if _, dup := c.byID[ex.ID]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, ex.ID)
		}
		if len(ex.PrimaryMuscles) == 0 {
			return nil, fmt.Errorf("catalog entry %q: no primary muscles", ex.ID)
		}
		for _, m := range append(append([]models.MuscleGroup{}, ex.PrimaryMuscles...), ex.SecondaryMuscles...) {
			if !m.IsValid() {
				return nil, fmt.Errorf("catalog entry %q: unknown muscle group %q", ex.ID, m)
			}
		}

		met := energy.AssignMET(ex.PrimaryMuscles, ex.ID)
		ex.MET = &met
		ex.CaloriesBurned = nil

		c.byID[ex.ID] = len(c.exercises)
		c.exercises = append(c.exercises, ex)
	}
	return c, nil
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return Load(bytes.NewReader(builtin))
})

// Default returns the built-in catalog, loaded on first use.
func Default() *Catalog {
	c, err := defaultCatalog()
	if err != nil {
		panic("catalog: built-in catalog is invalid: " + err.Error())
	}
	return c
}

// Len returns the number of exercises.
func (c *Catalog) Len() int { return len(c.exercises) }

// All returns a copy of every exercise in catalog order.
func (c *Catalog) All() []models.Exercise {
	out := make([]models.Exercise, len(c.exercises))
	for i, ex := range c.exercises {
		out[i] = clone(ex)
	}
	return out
}

// Get returns a copy of the exercise with the given id.
func (c *Catalog) Get(id string) (models.Exercise, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Exercise{}, false
	}
	return clone(c.exercises[i]), true
}

// ByMuscle returns exercises that work any of the groups, as either a
// primary or a secondary muscle.
func (c *Catalog) ByMuscle(groups ...models.MuscleGroup) []models.Exercise {
	var out []models.Exercise
	for _, ex := range c.exercises {
		if ex.HasPrimary(groups...) || hasSecondary(ex, groups) {
			out = append(out, clone(ex))
		}
	}
	return out
}

// METByID implements energy.METLookup.
func (c *Catalog) METByID(id string) (float64, bool) {
	i, ok := c.byID[id]
	if !ok || c.exercises[i].MET == nil {
		return 0, false
	}
	return *c.exercises[i].MET, true
}

func hasSecondary(ex models.Exercise, groups []models.MuscleGroup) bool {
	for _, s := range ex.SecondaryMuscles {
		for _, g := range groups {
			if s == g {
				return true
			}
		}
	}
	return false
}

// clone copies the slices and pointers so callers cannot mutate the catalog.
func clone(ex models.Exercise) models.Exercise {
	ex.PrimaryMuscles = append([]models.MuscleGroup(nil), ex.PrimaryMuscles...)
	ex.SecondaryMuscles = append([]models.MuscleGroup(nil), ex.SecondaryMuscles...)
	if ex.MET != nil {
		met := *ex.MET
		ex.MET = &met
	}
	return ex
}
