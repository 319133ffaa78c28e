// Command fittrack-estimate prints the calories a workout plan file burns
// per training day and per week.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/meltforce/fittrack/internal/catalog"
	"github.com/meltforce/fittrack/internal/energy"
	"github.com/meltforce/fittrack/internal/logging"
	"github.com/meltforce/fittrack/internal/models"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "fittrack-estimate:", err)
		os.Exit(1)
	}
}

type report struct {
	Plan      string                    `json:"plan"`
	WeightLbs float64                   `json:"weightLbs"`
	Pace      energy.Options            `json:"pace"`
	Exercises []energy.ExerciseEstimate `json:"exercises"`
	ByDay     map[string]float64        `json:"byDay"`
	Total     float64                   `json:"total"`
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("fittrack-estimate", flag.ContinueOnError)
	planPath := fs.String("plan", "", "path to a YAML plan file (required)")
	weight := fs.Float64("weight", 0, "body weight in pounds; overrides the plan's")
	preset := fs.Bool("preset", false, "use the pace preset for the plan's goal")
	asJSON := fs.Bool("json", false, "print JSON instead of a table")
	level := fs.String("log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *planPath == "" {
		fs.Usage()
		return errors.New("-plan is required")
	}

	log, closer := logging.New(logging.Params{Level: *level, Console: os.Stderr})
	defer closer.Close()

	plan, err := loadPlan(*planPath)
	if err != nil {
		return err
	}

	lbs := *weight
	if lbs <= 0 && plan.UserWeightLbs != nil {
		lbs = *plan.UserWeightLbs
	}
	kg := energy.PoundsToKilograms(lbs)
	if kg == 0 {
		return errors.New("a body weight is required: set user_weight_lbs in the plan or pass -weight")
	}

	opts := energy.DefaultOptions()
	if *preset {
		opts, _ = energy.PresetForGoal(plan.Goal)
	}
	est := energy.NewEstimator(catalog.Default(), opts, log)

	r := report{Plan: plan.Name, WeightLbs: lbs, Pace: est.Options, ByDay: map[string]float64{}}
	weekly := est.EstimateWeekly(plan, kg)
	for day, kcal := range weekly.ByDay {
		r.ByDay[day.String()] = energy.Round(kcal, 2)
	}
	r.Total = energy.Round(weekly.Total, 2)
	for _, ex := range plan.Flatten() {
		e := est.Explain(ex, kg)
		e.Minutes = energy.Round(e.Minutes, 2)
		e.Calories = energy.Round(e.Calories, 2)
		r.Exercises = append(r.Exercises, e)
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	return printTable(out, plan, r)
}

func loadPlan(path string) (*models.WorkoutPlan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening plan: %w", err)
	}
	defer f.Close()

	var p models.WorkoutPlan
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parsing plan %s: %w", path, err)
	}
	p.Prune()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("plan %s: %w", path, err)
	}
	return &p, nil
}

func printTable(out io.Writer, plan *models.WorkoutPlan, r report) error {
	days := make([]models.DayOfWeek, 0, len(plan.Schedules))
	for _, s := range plan.Schedules {
		days = append(days, s.Day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s (%.0f lbs, %gs/rep, %gs rest)\n", r.Plan, r.WeightLbs, r.Pace.SecondsPerRep, r.Pace.RestBetweenSetsSeconds)
	fmt.Fprintln(tw, "EXERCISE\tMET\tMINUTES\tKCAL")
	for _, e := range r.Exercises {
		fmt.Fprintf(tw, "%s\t%.1f\t%.2f\t%.2f\n", e.ExerciseID, e.MET, e.Minutes, e.Calories)
	}
	fmt.Fprintln(tw, "\tDAY\t\tKCAL")
	for _, d := range days {
		fmt.Fprintf(tw, "\t%s\t\t%.2f\n", d, r.ByDay[d.String()])
	}
	fmt.Fprintf(tw, "\tWEEK\t\t%.2f\n", r.Total)
	return tw.Flush()
}
