package energy

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoundsToKilograms(t *testing.T) {
	assert.InDelta(t, 81.6466, PoundsToKilograms(180), 0.0001)
	assert.Zero(t, PoundsToKilograms(0))
	assert.Zero(t, PoundsToKilograms(-10))
	assert.Zero(t, PoundsToKilograms(math.NaN()))
}

func TestParseReps(t *testing.T) {
	cases := map[string]float64{
		"10":     10,
		"8-12":   10,
		"6 - 9":  7.5,
		" 15 ":   15,
		"":       DefaultReps,
		"AMRAP":  DefaultReps,
		"0":      DefaultReps,
		"-5":     DefaultReps,
		"8-x":    DefaultReps,
		"30 sec": DefaultReps,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseReps(in), "ParseReps(%q)", in)
	}
}

func TestEstimateExerciseDuration(t *testing.T) {
	assert.InDelta(t, 4.0, EstimateExerciseDuration(3, "10", 4, 60), 1e-9)
	// single set has no trailing rest
	assert.InDelta(t, 40.0/60, EstimateExerciseDuration(1, "10", 4, 60), 1e-9)
	// range uses the mean
	assert.InDelta(t, 4.0, EstimateExerciseDuration(3, "8-12", 4, 60), 1e-9)

	assert.Zero(t, EstimateExerciseDuration(0, "10", 4, 60))
	assert.Zero(t, EstimateExerciseDuration(-2, "10", 4, 60))

	got := EstimateExerciseDuration(3, "10", math.NaN(), -30)
	assert.False(t, math.IsNaN(got))
	assert.GreaterOrEqual(t, got, 0.0)
}

func TestEstimateExerciseDurationMonotonic(t *testing.T) {
	base := EstimateExerciseDuration(3, "10", 4, 60)
	for i := 1; i <= 10; i++ {
		f := float64(i)
		assert.GreaterOrEqual(t, EstimateExerciseDuration(3+i, "10", 4, 60), base)
		assert.GreaterOrEqual(t, EstimateExerciseDuration(3, "10", 4+f, 60), base)
		assert.GreaterOrEqual(t, EstimateExerciseDuration(3, "10", 4, 60+f*10), base)
	}
}

func TestCalculateCaloriesBurned(t *testing.T) {
	got := CalculateCaloriesBurned(8.0, PoundsToKilograms(180), 10)
	assert.InDelta(t, 114.3, got, 0.5)
}

func TestCalculateCaloriesBurnedNonPositive(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 500; i++ {
		args := [3]float64{r.Float64() * 12, r.Float64() * 150, r.Float64() * 90}
		bad := r.IntN(3)
		switch r.IntN(3) {
		case 0:
			args[bad] = 0
		case 1:
			args[bad] = -r.Float64() * 100
		default:
			args[bad] = math.NaN()
		}
		require.Zero(t, CalculateCaloriesBurned(args[0], args[1], args[2]), "args %v", args)
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 12.35, Round(12.3456, 2))
	assert.Equal(t, 200.1, Round(200.08, 1))
}
