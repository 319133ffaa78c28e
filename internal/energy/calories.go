// Package energy estimates workout energy expenditure and daily nutrition
// targets. Every function is pure; invalid numeric input yields zero
// instead of an error so aggregates are never corrupted.
package energy

import (
	"math"
	"strconv"
	"strings"
)

const (
	kgPerPound = 0.45359237

	// DefaultReps is used when a reps string cannot be parsed.
	DefaultReps = 10.0
)

// PoundsToKilograms converts a body weight. Non-positive or NaN input returns 0.
func PoundsToKilograms(lbs float64) float64 {
	if !positive(lbs) {
		return 0
	}
	return lbs * kgPerPound
}

// ParseReps turns "10" or "8-12" into a representative rep count. Ranges use
// the mean of their bounds. Anything unparseable or non-positive becomes
// DefaultReps.
func ParseReps(reps string) float64 {
	s := strings.TrimSpace(reps)
	if lo, hi, ok := strings.Cut(s, "-"); ok && lo != "" {
		a, errA := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		b, errB := strconv.ParseFloat(strings.TrimSpace(hi), 64)
		if errA == nil && errB == nil {
			if mean := (a + b) / 2; positive(mean) && !math.IsInf(mean, 0) {
				return mean
			}
		}
		return DefaultReps
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || !positive(n) || math.IsInf(n, 0) {
		return DefaultReps
	}
	return n
}

// EstimateExerciseDuration returns minutes spent on an exercise: active time
// for every rep plus rest between sets, with no rest after the last set.
// The result is always finite and non-negative.
func EstimateExerciseDuration(sets int, reps string, secondsPerRep, restSeconds float64) float64 {
	if sets <= 0 {
		return 0
	}
	secondsPerRep = nonNegative(secondsPerRep)
	restSeconds = nonNegative(restSeconds)

	active := float64(sets) * ParseReps(reps) * secondsPerRep
	rest := float64(sets-1) * restSeconds
	minutes := (active + rest) / 60
	if math.IsInf(minutes, 0) || math.IsNaN(minutes) {
		return 0
	}
	return minutes
}

// CalculateCaloriesBurned applies kcal = MET × 3.5 × kg / 200 × minutes.
// Returns 0 if any argument is non-positive or NaN.
func CalculateCaloriesBurned(met, weightKg, minutes float64) float64 {
	if !positive(met) || !positive(weightKg) || !positive(minutes) {
		return 0
	}
	kcal := met * 3.5 * weightKg / 200 * minutes
	if math.IsInf(kcal, 0) {
		return 0
	}
	return kcal
}

func positive(v float64) bool {
	return v > 0 && !math.IsNaN(v)
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 || math.IsInf(v, 1) {
		return 0
	}
	return v
}

// Round rounds to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
