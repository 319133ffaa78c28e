package energy

import "github.com/meltforce/fittrack/internal/models"

// DefaultMET is used when neither the exercise nor the catalog supplies one.
const DefaultMET = 4.0

// METSource records which tier of resolution produced a MET value.
type METSource int

const (
	METExplicit METSource = iota
	METCatalog
	METDefault
)

func (s METSource) String() string {
	switch s {
	case METExplicit:
		return "explicit"
	case METCatalog:
		return "catalog"
	default:
		return "default"
	}
}

// METLookup finds the catalog MET value for an exercise id.
type METLookup interface {
	METByID(id string) (float64, bool)
}

// METLookupFunc adapts a function to METLookup.
type METLookupFunc func(id string) (float64, bool)

func (f METLookupFunc) METByID(id string) (float64, bool) { return f(id) }

// ResolveMET picks the exercise's own MET, then the catalog's, then
// DefaultMET. An explicit value is returned as-is even when it is not
// positive; the estimator skips such exercises.
func ResolveMET(ex models.Exercise, lookup METLookup) (float64, METSource) {
	if ex.MET != nil {
		return *ex.MET, METExplicit
	}
	if lookup != nil {
		if met, ok := lookup.METByID(ex.ID); ok {
			return met, METCatalog
		}
	}
	return DefaultMET, METDefault
}

var metOverrides = map[string]float64{
	"deadlifts": 8.0,
	"push-ups":  3.8,
	"pull-ups":  8.0,
	"plank":     3.5,
}

// AssignMET classifies a catalog exercise. Muscle rules are checked first in
// fixed priority order; id overrides only apply when no muscle rule matched.
func AssignMET(primary []models.MuscleGroup, id string) float64 {
	ex := models.Exercise{PrimaryMuscles: primary}
	switch {
	case ex.HasPrimary(models.Chest):
		return 5.0
	case ex.HasPrimary(models.Lats, models.UpperTraps, models.LowerTraps):
		return 6.0
	case ex.HasPrimary(models.Biceps, models.Triceps):
		return 4.0
	case ex.HasPrimary(models.Deltoids):
		return 4.5
	case ex.HasPrimary(models.Quadriceps, models.Hamstrings, models.Glutes):
		return 6.5
	case ex.HasPrimary(models.Abs):
		return 3.8
	case ex.HasPrimary(models.Calves):
		return 4.0
	}
	if met, ok := metOverrides[id]; ok {
		return met
	}
	return DefaultMET
}
