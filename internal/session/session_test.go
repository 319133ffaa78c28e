package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/meltforce/fittrack/internal/energy"
	"github.com/meltforce/fittrack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain will run goleak after all tests have been run in the package
// to detect any ticker goroutines left behind
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeStore struct {
	mu      sync.Mutex
	plans   map[string]*models.WorkoutPlan
	today   []models.CompletedWorkout
	saved   []models.CompletedWorkout
	saveErr error
	lookups int
	nextID  int

	// when set, saves block until release is closed
	release chan struct{}
	entered chan struct{}
}

func newFakeStore(plans ...*models.WorkoutPlan) *fakeStore {
	s := &fakeStore{plans: map[string]*models.WorkoutPlan{}}
	for _, p := range plans {
		s.plans[p.Name] = p
	}
	return s
}

func (s *fakeStore) FindPlanByName(_ context.Context, _ int, name string) (*models.WorkoutPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[name]
	if !ok {
		return nil, fmt.Errorf("plan %q: %w", name, models.ErrNotFound)
	}
	return p, nil
}

func (s *fakeStore) SaveCompletedWorkout(_ context.Context, w *models.CompletedWorkout) (string, error) {
	s.mu.Lock()
	release, entered := s.release, s.entered
	s.mu.Unlock()
	if release != nil {
		entered <- struct{}{}
		<-release
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return "", s.saveErr
	}
	rec := *w
	if rec.ID == "" {
		s.nextID++
		rec.ID = fmt.Sprintf("rec-%d", s.nextID)
	}
	s.saved = append(s.saved, rec)
	return rec.ID, nil
}

func (s *fakeStore) GetCompletedWorkoutsForDate(_ context.Context, _ int, _ time.Time) ([]models.CompletedWorkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	return s.today, nil
}

func (s *fakeStore) block() {
	s.mu.Lock()
	s.release = make(chan struct{})
	s.entered = make(chan struct{}, 4)
	s.mu.Unlock()
}

func (s *fakeStore) unblock() {
	s.mu.Lock()
	close(s.release)
	s.release = nil
	s.mu.Unlock()
}

func (s *fakeStore) savedRecords() []models.CompletedWorkout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CompletedWorkout(nil), s.saved...)
}

type fakeDiag struct {
	mu       sync.Mutex
	events   []string
	failures []error
}

func (d *fakeDiag) add(ev string) {
	d.mu.Lock()
	d.events = append(d.events, ev)
	d.mu.Unlock()
}

func (d *fakeDiag) SessionStarted(string, bool)        { d.add("started") }
func (d *fakeDiag) SessionFinished(string, bool)       { d.add("finished") }
func (d *fakeDiag) CheckpointSaved(_, reason string)   { d.add("saved:" + reason) }
func (d *fakeDiag) CheckpointSkipped(_, reason string) { d.add("skipped:" + reason) }
func (d *fakeDiag) RestTimerExpired(_, id string)      { d.add("expired:" + id) }
func (d *fakeDiag) CheckpointFailed(_, reason string, err error) {
	d.mu.Lock()
	d.failures = append(d.failures, err)
	d.mu.Unlock()
	d.add("failed:" + reason)
}

func (d *fakeDiag) count(ev string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, e := range d.events {
		if e == ev {
			n++
		}
	}
	return n
}

type fakeHaptics struct {
	mu       sync.Mutex
	patterns []Pattern
}

func (h *fakeHaptics) Vibrate(p Pattern) {
	h.mu.Lock()
	h.patterns = append(h.patterns, p)
	h.mu.Unlock()
}

func (h *fakeHaptics) played() []Pattern {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Pattern(nil), h.patterns...)
}

func weight(lbs float64) *float64 { return &lbs }

func twoExercisePlan() *models.WorkoutPlan {
	return &models.WorkoutPlan{
		Name:          "Upper",
		Goal:          models.GoalMaintain,
		UserWeightLbs: weight(180),
		Schedules: []models.DailySchedule{
			{Day: 1, Exercises: []models.Exercise{{ID: "a", Name: "A", Sets: 3, Reps: "10"}}},
			{Day: 3, Exercises: []models.Exercise{{ID: "b", Name: "B", Sets: 3, Reps: "8-12"}}},
		},
	}
}

type harness struct {
	store   *fakeStore
	sched   *ManualScheduler
	diag    *fakeDiag
	haptics *fakeHaptics
	deps    Deps
}

func newHarness(plans ...*models.WorkoutPlan) *harness {
	h := &harness{
		store:   newFakeStore(plans...),
		sched:   NewManualScheduler(),
		diag:    &fakeDiag{},
		haptics: &fakeHaptics{},
	}
	h.deps = Deps{
		Plans:       h.store,
		History:     h.store,
		Estimator:   energy.NewEstimator(nil, energy.DefaultOptions(), nil),
		Scheduler:   h.sched,
		Haptics:     h.haptics,
		Diagnostics: h.diag,
		Now:         func() time.Time { return time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC) },
	}
	return h
}

func (h *harness) start(t *testing.T, p Params) *Controller {
	t.Helper()
	c, err := Start(context.Background(), h.deps, p)
	require.NoError(t, err)
	t.Cleanup(func() {
		c.Close()
		c.Wait()
	})
	return c
}

func timer(t *testing.T, c *Controller, id string) TimerState {
	t.Helper()
	ts, ok := c.Timer(id)
	require.True(t, ok)
	return ts
}

func TestStartPlanNotFound(t *testing.T) {
	h := newHarness()
	_, err := Start(context.Background(), h.deps, Params{UserID: 1, PlanName: "missing"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPlanNotFound)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Zero(t, h.sched.Active())
}

func TestStartRequiresStores(t *testing.T) {
	_, err := Start(context.Background(), Deps{}, Params{PlanName: "x"})
	assert.Error(t, err)
}

func TestStartFlattensWholePlan(t *testing.T) {
	p := twoExercisePlan()
	p.Schedules = append(p.Schedules, models.DailySchedule{Day: 5, Exercises: []models.Exercise{{ID: "a", Name: "A again"}}})
	h := newHarness(p)
	c := h.start(t, Params{UserID: 1, PlanName: "Upper"})

	s := c.Snapshot()
	assert.Equal(t, StateActive, s.State)
	require.Len(t, s.Exercises, 2)
	assert.Equal(t, "A", s.Exercises[0].Name, "first occurrence wins")
	assert.Equal(t, "b", s.Exercises[1].ID)
	assert.False(t, s.Resuming)
	assert.Equal(t, 1, h.store.lookups, "looks for today's partial record")
	assert.Equal(t, 1, h.sched.Active(), "only the elapsed clock runs")

	h.sched.Advance(3 * time.Second)
	assert.Equal(t, 3*time.Second, c.Elapsed())
}

func TestTimerCountsDownToZero(t *testing.T) {
	h := newHarness(twoExercisePlan())
	c := h.start(t, Params{UserID: 1, PlanName: "Upper"})

	done, err := c.ToggleExercise("a")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, TimerState{Remaining: 60, Running: true}, timer(t, c, "a"))
	assert.Equal(t, 2, h.sched.Active())

	h.sched.Advance(30 * time.Second)
	assert.Equal(t, 30, timer(t, c, "a").Remaining)

	h.sched.Advance(31 * time.Second)
	assert.Equal(t, TimerState{Remaining: 0, Running: false}, timer(t, c, "a"))
	assert.Equal(t, 1, h.sched.Active(), "expired countdown is cancelled")

	c.Wait()
	assert.Equal(t, []Pattern{PulseExerciseDone, PatternRestComplete}, h.haptics.played())
	assert.Equal(t, 1, h.diag.count("expired:a"))
	assert.Equal(t, 1, h.diag.count("saved:exercise-completed"))
}

func TestUncheckResetsTimer(t *testing.T) {
	h := newHarness(twoExercisePlan())
	c := h.start(t, Params{UserID: 1, PlanName: "Upper"})

	_, err := c.ToggleExercise("a")
	require.NoError(t, err)
	h.sched.Advance(10 * time.Second)
	assert.Equal(t, 50, timer(t, c, "a").Remaining)

	done, err := c.ToggleExercise("a")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, TimerState{Remaining: 60}, timer(t, c, "a"))

	h.sched.Advance(5 * time.Second)
	assert.Equal(t, 60, timer(t, c, "a").Remaining, "no decrements after cancel")
	assert.Equal(t, 1, h.sched.Active())
	c.Wait()
}

func TestPauseAndResumeKeepRemaining(t *testing.T) {
	h := newHarness(twoExercisePlan())
	c := h.start(t, Params{UserID: 1, PlanName: "Upper"})

	_, err := c.ToggleExercise("a")
	require.NoError(t, err)
	c.Wait()
	h.sched.Advance(15 * time.Second)
	require.Equal(t, 45, timer(t, c, "a").Remaining)

	require.NoError(t, c.Pause())
	assert.Equal(t, StatePaused, c.State())
	assert.Zero(t, h.sched.Active(), "every ticker is stopped on pause")

	h.sched.Advance(10 * time.Second)
	assert.Equal(t, TimerState{Remaining: 45, Running: true}, timer(t, c, "a"))
	assert.Equal(t, 15*time.Second, c.Elapsed())

	_, err = c.ToggleExercise("b")
	assert.ErrorIs(t, err, ErrSessionPaused)
	_, err = c.ToggleTimer("a")
	assert.ErrorIs(t, err, ErrSessionPaused)
	_, err = c.ResetTimer("a")
	assert.ErrorIs(t, err, ErrSessionPaused)
	assert.ErrorIs(t, c.Pause(), ErrSessionPaused)

	c.Wait()
	assert.Equal(t, 1, h.diag.count("saved:paused"))

	require.NoError(t, c.Resume())
	h.sched.Advance(5 * time.Second)
	assert.Equal(t, 40, timer(t, c, "a").Remaining, "resumes from 45, not 60")
	assert.Equal(t, 20*time.Second, c.Elapsed())
	assert.ErrorIs(t, c.Resume(), ErrSessionNotPaused)
}

func TestResumeSkipsExpiredAndStoppedTimers(t *testing.T) {
	p := twoExercisePlan()
	p.Schedules[0].Exercises = append(p.Schedules[0].Exercises, models.Exercise{ID: "c", Name: "C", Sets: 2, Reps: "10"})
	h := newHarness(p)
	c := h.start(t, Params{UserID: 1, PlanName: "Upper"})

	_, err := c.ToggleExercise("a")
	require.NoError(t, err)
	c.Wait()
	h.sched.Advance(61 * time.Second) // a expires

	_, err = c.ToggleExercise("b")
	require.NoError(t, err)
	c.Wait()
	_, err = c.ToggleExercise("c")
	require.NoError(t, err)
	c.Wait()
	h.sched.Advance(10 * time.Second)
	ts, err := c.ToggleTimer("c") // c stopped at 50
	require.NoError(t, err)
	assert.Equal(t, TimerState{Remaining: 50}, ts)

	require.NoError(t, c.Pause())
	c.Wait()
	require.NoError(t, c.Resume())

	// the clock and b only
	assert.Equal(t, 2, h.sched.Active())
	h.sched.Advance(time.Second)
	assert.Equal(t, TimerState{Remaining: 0}, timer(t, c, "a"))
	assert.Equal(t, TimerState{Remaining: 49, Running: true}, timer(t, c, "b"))
	assert.Equal(t, TimerState{Remaining: 50}, timer(t, c, "c"))
}

func TestToggleTimer(t *testing.T) {
	h := newHarness(twoExercisePlan())
	c := h.start(t, Params{UserID: 1, PlanName: "Upper"})

	_, err := c.ToggleTimer("a")
	assert.ErrorIs(t, err, ErrExerciseNotCompleted)
	_, err = c.ToggleTimer("zzz")
	assert.ErrorIs(t, err, ErrUnknownExercise)

	_, err = c.ToggleExercise("a")
	require.NoError(t, err)
	h.sched.Advance(5 * time.Second)

	ts, err := c.ToggleTimer("a")
	require.NoError(t, err)
	assert.Equal(t, TimerState{Remaining: 55}, ts)
	h.sched.Advance(5 * time.Second)
	assert.Equal(t, 55, timer(t, c, "a").Remaining)

	ts, err = c.ToggleTimer("a")
	require.NoError(t, err)
	assert.True(t, ts.Running)
	h.sched.Advance(5 * time.Second)
	assert.Equal(t, 50, timer(t, c, "a").Remaining)

	ts, err = c.ResetTimer("a")
	require.NoError(t, err)
	assert.Equal(t, TimerState{Remaining: 60}, ts)
	assert.Equal(t, 1, h.sched.Active())
	c.Wait()
}

func TestStaleTickIgnored(t *testing.T) {
	h := newHarness(twoExercisePlan())
	c := h.start(t, Params{UserID: 1, PlanName: "Upper"})

	_, err := c.ToggleExercise("a")
	require.NoError(t, err)
	c.Wait()

	c.mu.Lock()
	stale := c.timers["a"]
	c.mu.Unlock()

	_, err = c.ToggleTimer("a") // pause
	require.NoError(t, err)
	_, err = c.ToggleTimer("a") // resume with a new ticker
	require.NoError(t, err)

	c.onTimerTick("a", stale)
	assert.Equal(t, 60, timer(t, c, "a").Remaining, "tick from a cancelled ticker is ignored")
}

func TestFinishIncomplete(t *testing.T) {
	h := newHarness(twoExercisePlan())
	c := h.start(t, Params{UserID: 7, PlanName: "Upper"})

	_, err := c.ToggleExercise("a")
	require.NoError(t, err)
	c.Wait()
	h.sched.Advance(90 * time.Second)

	var prompt FinishPrompt
	rec, err := c.Finish(context.Background(), func(p FinishPrompt) bool {
		prompt = p
		return true
	})
	require.NoError(t, err)
	assert.False(t, prompt.Complete)
	assert.Equal(t, "Workout Incomplete", prompt.Title)

	assert.False(t, rec.Completed)
	assert.Equal(t, []string{"a"}, rec.CompletedExercises)
	assert.Equal(t, 7, rec.UserID)
	assert.Equal(t, 90, rec.DurationSec)
	assert.Equal(t, "rec-1", rec.ID, "finish overwrites the checkpoint record")

	assert.Equal(t, StateFinished, c.State())
	assert.Zero(t, h.sched.Active())
	_, err = c.ToggleExercise("b")
	assert.ErrorIs(t, err, ErrSessionFinished)
	_, err = c.Finish(context.Background(), nil)
	assert.ErrorIs(t, err, ErrSessionFinished)
	assert.Equal(t, 1, h.diag.count("finished"))
}

func TestFinishComplete(t *testing.T) {
	h := newHarness(twoExercisePlan())
	c := h.start(t, Params{UserID: 1, PlanName: "Upper"})

	require.NoError(t, c.CompleteAll())
	assert.True(t, c.IsComplete())
	assert.Equal(t, 100.0, c.Progress())
	h.sched.Advance(125 * time.Second)

	prompt := c.Prompt()
	assert.True(t, prompt.Complete)
	assert.Equal(t, `Great job! You completed "Upper" in 02:05.`, prompt.Message)

	rec, err := c.Finish(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, rec.Completed)
	assert.Equal(t, []string{"a", "b"}, rec.CompletedExercises)

	kg := energy.PoundsToKilograms(180)
	want := energy.CalculateCaloriesBurned(4, kg, 4) + energy.CalculateCaloriesBurned(4, kg, energy.EstimateExerciseDuration(3, "8-12", 4, 60))
	assert.InDelta(t, want, rec.CaloriesBurned, 0.01)
}

func TestFinishDeclined(t *testing.T) {
	h := newHarness(twoExercisePlan())
	c := h.start(t, Params{UserID: 1, PlanName: "Upper"})

	_, err := c.Finish(context.Background(), func(FinishPrompt) bool { return false })
	assert.ErrorIs(t, err, ErrFinishDeclined)
	assert.Equal(t, StateActive, c.State())
	assert.Empty(t, h.store.savedRecords())
}

func TestFinishFailureKinds(t *testing.T) {
	cases := []struct {
		err  error
		kind FailureKind
		msg  string
	}{
		{fmt.Errorf("write: %w", models.ErrPermissionDenied), FailurePermissionDenied, "You do not have permission to save this workout."},
		{fmt.Errorf("dial: %w", models.ErrUnavailable), FailureUnavailable, "Network error. Please check your connection and try again."},
		{errors.New("boom"), FailureGeneric, "Failed to save workout. Please try again."},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			h := newHarness(twoExercisePlan())
			c := h.start(t, Params{UserID: 1, PlanName: "Upper"})
			h.store.saveErr = tc.err

			_, err := c.Finish(context.Background(), nil)
			var fe *FinishError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tc.kind, fe.Kind)
			assert.Equal(t, tc.msg, fe.UserMessage())
			assert.ErrorIs(t, err, tc.err)

			// state is preserved and the finish can be retried
			assert.Equal(t, StateActive, c.State())
			assert.Equal(t, 1, h.sched.Active())
			h.store.mu.Lock()
			h.store.saveErr = nil
			h.store.mu.Unlock()
			rec, err := c.Finish(context.Background(), nil)
			require.NoError(t, err)
			assert.False(t, rec.Completed)
		})
	}
}

func TestConcurrentSavesDropped(t *testing.T) {
	h := newHarness(twoExercisePlan())
	c := h.start(t, Params{UserID: 1, PlanName: "Upper"})
	h.store.block()

	_, err := c.ToggleExercise("a")
	require.NoError(t, err)
	<-h.store.entered
	assert.True(t, c.Snapshot().Saving)

	_, err = c.ToggleExercise("b")
	require.NoError(t, err)
	assert.Equal(t, 1, h.diag.count("skipped:exercise-completed"))

	_, err = c.Finish(context.Background(), nil)
	assert.ErrorIs(t, err, ErrSaveInProgress)

	h.store.unblock()
	c.Wait()
	assert.Len(t, h.store.savedRecords(), 1)
	assert.Equal(t, []string{"a"}, h.store.savedRecords()[0].CompletedExercises)
	assert.False(t, c.Snapshot().Saving)
}

func TestCheckpointFailureIsSilent(t *testing.T) {
	h := newHarness(twoExercisePlan())
	c := h.start(t, Params{UserID: 1, PlanName: "Upper"})
	h.store.saveErr = fmt.Errorf("offline: %w", models.ErrUnavailable)

	_, err := c.ToggleExercise("a")
	require.NoError(t, err)
	c.Wait()

	assert.Equal(t, 1, h.diag.count("failed:exercise-completed"))
	h.diag.mu.Lock()
	assert.ErrorIs(t, h.diag.failures[0], models.ErrUnavailable)
	h.diag.mu.Unlock()
	assert.Equal(t, StateActive, c.State())
}

func TestCloseCancelsTimersAndDiscardsSaves(t *testing.T) {
	h := newHarness(twoExercisePlan())
	c, err := Start(context.Background(), h.deps, Params{UserID: 1, PlanName: "Upper"})
	require.NoError(t, err)
	h.store.block()

	_, err = c.ToggleExercise("a")
	require.NoError(t, err)
	<-h.store.entered

	c.Close()
	assert.Zero(t, h.sched.Active())
	_, err = c.ToggleExercise("b")
	assert.ErrorIs(t, err, ErrSessionClosed)

	h.store.unblock()
	c.Wait()
	assert.Zero(t, h.diag.count("saved:exercise-completed"), "result after close is discarded")
	c.mu.Lock()
	assert.Empty(t, c.recordID)
	c.mu.Unlock()

	// only the in-flight save reached the store; close writes nothing
	assert.Len(t, h.store.savedRecords(), 1)
	c.Close()
}

func TestResumeHints(t *testing.T) {
	h := newHarness(twoExercisePlan())
	c := h.start(t, Params{UserID: 1, PlanName: "Upper", CompletedHints: []string{"b", "unknown"}})

	s := c.Snapshot()
	assert.True(t, s.Resuming)
	assert.Equal(t, 1, s.CompletedCount)
	assert.True(t, s.Exercises[1].Completed)
	assert.Equal(t, TimerState{Remaining: 60}, s.Exercises[1].Timer)
	assert.Zero(t, h.store.lookups, "hints skip the history lookup")
	assert.Equal(t, 50.0, s.Progress)
}

func TestResumeHintsOutsidePlan(t *testing.T) {
	h := newHarness(twoExercisePlan())
	c := h.start(t, Params{UserID: 1, PlanName: "Upper", CompletedHints: []string{"gone", "also-gone"}})

	s := c.Snapshot()
	assert.False(t, s.Resuming)
	assert.Zero(t, s.CompletedCount)
	assert.Zero(t, s.Progress)
}

func TestPartialRecordOutsidePlanIgnored(t *testing.T) {
	h := newHarness(twoExercisePlan())
	h.store.today = []models.CompletedWorkout{
		{ID: "stale", PlanName: "Upper", CompletedExercises: []string{"removed"}, DurationSec: 120,
			Date: time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)},
	}
	c := h.start(t, Params{UserID: 1, PlanName: "Upper"})

	s := c.Snapshot()
	assert.False(t, s.Resuming)
	assert.Zero(t, s.ElapsedSec)

	_, err := c.ToggleExercise("a")
	require.NoError(t, err)
	c.Wait()
	saved := h.store.savedRecords()
	require.Len(t, saved, 1)
	assert.NotEqual(t, "stale", saved[0].ID)
}

func TestResumeFromTodaysPartialRecord(t *testing.T) {
	h := newHarness(twoExercisePlan())
	base := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	h.store.today = []models.CompletedWorkout{
		{ID: "other-plan", PlanName: "Legs", CompletedExercises: []string{"a"}, Date: base},
		{ID: "done", PlanName: "Upper", Completed: true, CompletedExercises: []string{"a", "b"}, Date: base},
		{ID: "older", PlanName: "Upper", CompletedExercises: []string{"b"}, Date: base},
		{ID: "latest", PlanName: "Upper", CompletedExercises: []string{"a"}, DurationSec: 300, Date: base.Add(time.Hour)},
	}
	c := h.start(t, Params{UserID: 1, PlanName: "Upper"})

	s := c.Snapshot()
	assert.True(t, s.Resuming)
	assert.True(t, s.Exercises[0].Completed)
	assert.False(t, s.Exercises[1].Completed)
	assert.Equal(t, 300, s.ElapsedSec)

	_, err := c.ToggleExercise("b")
	require.NoError(t, err)
	c.Wait()
	saved := h.store.savedRecords()
	require.Len(t, saved, 1)
	assert.Equal(t, "latest", saved[0].ID, "checkpoint overwrites the resumed record")
	assert.Equal(t, []string{"a", "b"}, saved[0].CompletedExercises)
}

func TestProgressEmptyPlan(t *testing.T) {
	h := newHarness(&models.WorkoutPlan{Name: "Empty", Goal: models.GoalLose})
	c := h.start(t, Params{UserID: 1, PlanName: "Empty"})

	p := c.Progress()
	assert.False(t, math.IsNaN(p))
	assert.Zero(t, p)
	assert.Zero(t, c.Snapshot().Progress)
}

func TestCaloriesFallBackToPlanAnnotation(t *testing.T) {
	p := twoExercisePlan()
	p.UserWeightLbs = nil
	kcal := 42.5
	p.Schedules[0].Exercises[0].CaloriesBurned = &kcal
	h := newHarness(p)
	c := h.start(t, Params{UserID: 1, PlanName: "Upper", CompletedHints: []string{"a", "b"}})

	assert.Equal(t, 42.5, c.Snapshot().CaloriesBurned)
}

func TestCaloriesUseDefaultWeight(t *testing.T) {
	p := twoExercisePlan()
	p.UserWeightLbs = nil
	h := newHarness(p)
	h.deps.DefaultWeightLbs = 180
	c := h.start(t, Params{UserID: 1, PlanName: "Upper", CompletedHints: []string{"a"}})

	want := energy.Round(energy.CalculateCaloriesBurned(4, energy.PoundsToKilograms(180), 4), 2)
	assert.Equal(t, want, c.Snapshot().CaloriesBurned)
}
