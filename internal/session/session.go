// Package session runs guided workout sessions: exercise check-off, per
// exercise rest timers, pause and resume, and checkpointed progress.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/fittrack/internal/energy"
	"github.com/meltforce/fittrack/internal/models"
)

const (
	DefaultRestSeconds = 60
	DefaultSaveTimeout = 10 * time.Second

	tick = time.Second
)

// State is the lifecycle state of a session.
type State int

const (
	StateLoading State = iota
	StateActive
	StatePaused
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for st := StateLoading; st <= StateFinished; st++ {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", b)
}

// TimerState is the rest countdown of one exercise.
type TimerState struct {
	Remaining int  `json:"remaining"`
	Running   bool `json:"running"`
}

// PlanFinder resolves a user's plan by name.
type PlanFinder interface {
	FindPlanByName(ctx context.Context, userID int, name string) (*models.WorkoutPlan, error)
}

// HistoryStore persists session records. SaveCompletedWorkout replaces the
// record with the same ID when one is set and returns the record ID.
type HistoryStore interface {
	SaveCompletedWorkout(ctx context.Context, w *models.CompletedWorkout) (string, error)
	GetCompletedWorkoutsForDate(ctx context.Context, userID int, day time.Time) ([]models.CompletedWorkout, error)
}

// Deps are the collaborators of a session. Plans and History are required;
// everything else has a default.
type Deps struct {
	Plans       PlanFinder
	History     HistoryStore
	Estimator   *energy.Estimator
	Scheduler   Scheduler
	Haptics     Haptics
	Diagnostics Diagnostics
	Log         *slog.Logger
	Now         func() time.Time

	RestSeconds      int
	SaveTimeout      time.Duration
	DefaultWeightLbs float64
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Estimator == nil {
		d.Estimator = energy.NewEstimator(nil, energy.DefaultOptions(), d.Log)
	}
	if d.Scheduler == nil {
		d.Scheduler = NewScheduler()
	}
	if d.Haptics == nil {
		d.Haptics = NopHaptics{}
	}
	if d.Diagnostics == nil {
		d.Diagnostics = NewLogDiagnostics(d.Log, nil)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.RestSeconds <= 0 {
		d.RestSeconds = DefaultRestSeconds
	}
	if d.SaveTimeout <= 0 {
		d.SaveTimeout = DefaultSaveTimeout
	}
	return d
}

// Params select the plan to run. CompletedHints marks exercises as already
// done when re-entering a session; without hints, today's partial record
// for the plan is looked up instead.
type Params struct {
	ID             string
	UserID         int
	PlanName       string
	CompletedHints []string
}

type entry struct {
	ex        models.Exercise
	completed bool
	timer     TimerState
	calories  float64
}

// timerRef identifies one scheduled ticker. Callbacks compare their ref to
// the current one and ignore ticks from a cancelled ticker.
type timerRef struct {
	t Ticker
}

// Controller owns one session. All methods are safe for concurrent use.
type Controller struct {
	id       string
	userID   int
	planName string
	deps     Deps
	log      *slog.Logger

	mu       sync.Mutex
	state    State
	closed   bool
	resuming bool
	order    []string
	entries  map[string]*entry
	timers   map[string]*timerRef
	clock    *timerRef
	elapsed  int
	saving   bool
	recordID string

	saves sync.WaitGroup
}

// Start loads the plan, applies resume state and starts the elapsed clock.
func Start(ctx context.Context, deps Deps, p Params) (*Controller, error) {
	if deps.Plans == nil || deps.History == nil {
		return nil, errors.New("session: plan and history stores are required")
	}
	deps = deps.withDefaults()

	plan, err := deps.Plans.FindPlanByName(ctx, p.UserID, p.PlanName)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q: %w", ErrPlanNotFound, p.PlanName, err)
		}
		return nil, fmt.Errorf("loading plan %q: %w", p.PlanName, err)
	}
	if plan == nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrPlanNotFound, p.PlanName, models.ErrNotFound)
	}

	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}
	c := &Controller{
		id:       id,
		userID:   p.UserID,
		planName: p.PlanName,
		deps:     deps,
		log:      deps.Log.With("session", id, "plan", p.PlanName),
		state:    StateLoading,
		entries:  make(map[string]*entry),
		timers:   make(map[string]*timerRef),
	}
	c.load(plan)

	if len(p.CompletedHints) > 0 {
		c.resuming = c.markCompleted(p.CompletedHints) > 0
	} else {
		c.resumeFromHistory(ctx)
	}

	c.mu.Lock()
	c.state = StateActive
	c.startClockLocked()
	resuming := c.resuming
	c.mu.Unlock()

	c.deps.Diagnostics.SessionStarted(c.id, resuming)
	return c, nil
}

// load flattens every day into one working set. Repeated exercise ids keep
// their first occurrence. Calories are fixed here from the planned sets,
// reps and the estimator pace in force at start. Without a plan weight the
// stored per-exercise estimate is used, then the configured default weight.
func (c *Controller) load(plan *models.WorkoutPlan) {
	var planKg float64
	if plan.UserWeightLbs != nil {
		planKg = energy.PoundsToKilograms(*plan.UserWeightLbs)
	}
	defaultKg := energy.PoundsToKilograms(c.deps.DefaultWeightLbs)

	for _, ex := range plan.Flatten() {
		if _, dup := c.entries[ex.ID]; dup {
			continue
		}
		var kcal float64
		switch {
		case planKg > 0:
			kcal = c.deps.Estimator.ExerciseCalories(ex, planKg)
		case ex.CaloriesBurned != nil:
			kcal = *ex.CaloriesBurned
		case defaultKg > 0:
			kcal = c.deps.Estimator.ExerciseCalories(ex, defaultKg)
		}
		c.order = append(c.order, ex.ID)
		c.entries[ex.ID] = &entry{
			ex:       ex,
			timer:    TimerState{Remaining: c.deps.RestSeconds},
			calories: kcal,
		}
	}
}

// markCompleted checks the given exercises and returns how many of them
// belong to the plan.
func (c *Controller) markCompleted(ids []string) int {
	n := 0
	for _, id := range ids {
		if e, ok := c.entries[id]; ok {
			e.completed = true
			n++
		}
	}
	return n
}

func (c *Controller) resumeFromHistory(ctx context.Context) {
	records, err := c.deps.History.GetCompletedWorkoutsForDate(ctx, c.userID, c.deps.Now())
	if err != nil {
		c.log.Warn("looking up partial workout", "error", err)
		return
	}
	var latest *models.CompletedWorkout
	for i := range records {
		r := &records[i]
		if r.PlanName != c.planName || r.Completed || len(r.CompletedExercises) == 0 {
			continue
		}
		if latest == nil || r.Date.After(latest.Date) {
			latest = r
		}
	}
	if latest == nil {
		return
	}
	if c.markCompleted(latest.CompletedExercises) == 0 {
		c.log.Info("ignoring partial workout with no exercises left in the plan", "record", latest.ID)
		return
	}
	c.resuming = true
	c.recordID = latest.ID
	c.elapsed = latest.DurationSec
	c.log.Info("resuming partial workout", "record", latest.ID, "completed", len(latest.CompletedExercises))
}

func (c *Controller) ID() string       { return c.id }
func (c *Controller) UserID() int      { return c.userID }
func (c *Controller) PlanName() string { return c.planName }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Elapsed returns the session duration counted so far, excluding pauses.
func (c *Controller) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Duration(c.elapsed) * time.Second
}

// Timer returns the rest timer of an exercise.
func (c *Controller) Timer(exerciseID string) (TimerState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[exerciseID]
	if !ok {
		return TimerState{}, false
	}
	return e.timer, true
}

// effects are side effects collected under the lock and run after it is
// released.
type effects []func()

func (f *effects) add(fn func()) { *f = append(*f, fn) }

func (f effects) run() {
	for _, fn := range f {
		fn()
	}
}

func (c *Controller) openLocked() error {
	switch {
	case c.closed:
		return ErrSessionClosed
	case c.state == StateFinished:
		return ErrSessionFinished
	}
	return nil
}

// interactiveLocked checks the session accepts exercise and timer controls.
func (c *Controller) interactiveLocked(exerciseID string) (*entry, error) {
	if err := c.openLocked(); err != nil {
		return nil, err
	}
	if c.state == StatePaused {
		return nil, ErrSessionPaused
	}
	e, ok := c.entries[exerciseID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExercise, exerciseID)
	}
	return e, nil
}

// ToggleExercise checks or unchecks an exercise and reports the new state.
// Checking starts a fresh rest countdown and saves a checkpoint; unchecking
// cancels the countdown and resets it.
func (c *Controller) ToggleExercise(exerciseID string) (bool, error) {
	var fx effects
	c.mu.Lock()
	e, err := c.interactiveLocked(exerciseID)
	if err != nil {
		c.mu.Unlock()
		return false, err
	}
	e.completed = !e.completed
	if e.completed {
		c.startTimerLocked(exerciseID, false)
		fx.add(func() { c.deps.Haptics.Vibrate(PulseExerciseDone) })
		c.checkpointLocked("exercise-completed", &fx)
	} else {
		c.resetTimerLocked(exerciseID)
	}
	completed := e.completed
	c.mu.Unlock()

	fx.run()
	return completed, nil
}

// CompleteAll checks off every exercise and zeroes every timer.
func (c *Controller) CompleteAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.openLocked(); err != nil {
		return err
	}
	if c.state == StatePaused {
		return ErrSessionPaused
	}
	for _, id := range c.order {
		c.stopTimerLocked(id)
		e := c.entries[id]
		e.completed = true
		e.timer = TimerState{}
	}
	return nil
}

// ToggleTimer pauses a running countdown or resumes a stopped one from its
// remaining time. Countdowns at zero stay stopped.
func (c *Controller) ToggleTimer(exerciseID string) (TimerState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.interactiveLocked(exerciseID)
	if err != nil {
		return TimerState{}, err
	}
	if !e.completed {
		return e.timer, fmt.Errorf("%w: %q", ErrExerciseNotCompleted, exerciseID)
	}
	switch {
	case e.timer.Running:
		c.stopTimerLocked(exerciseID)
		e.timer.Running = false
	case e.timer.Remaining > 0:
		c.startTimerLocked(exerciseID, true)
	}
	return e.timer, nil
}

// ResetTimer stops a countdown and restores the default rest duration.
func (c *Controller) ResetTimer(exerciseID string) (TimerState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.interactiveLocked(exerciseID)
	if err != nil {
		return TimerState{}, err
	}
	c.resetTimerLocked(exerciseID)
	return e.timer, nil
}

// Pause stops every countdown and the elapsed clock, then saves a
// checkpoint. Running flags are kept so Resume knows what to restart.
func (c *Controller) Pause() error {
	var fx effects
	c.mu.Lock()
	if err := c.openLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.state == StatePaused {
		c.mu.Unlock()
		return ErrSessionPaused
	}
	c.stopAllLocked()
	c.state = StatePaused
	c.checkpointLocked("paused", &fx)
	c.mu.Unlock()

	fx.run()
	return nil
}

// Resume restarts the elapsed clock and every countdown that was running
// with time left when the session was paused.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.openLocked(); err != nil {
		return err
	}
	if c.state != StatePaused {
		return ErrSessionNotPaused
	}
	c.state = StateActive
	c.startClockLocked()
	for _, id := range c.order {
		e := c.entries[id]
		if e.completed && e.timer.Running && e.timer.Remaining > 0 {
			c.startTimerLocked(id, true)
		}
	}
	return nil
}

// Close tears the session down. Timers are cancelled and no checkpoint is
// written; results of saves still in flight are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.stopAllLocked()
}

// Wait blocks until background checkpoint saves have returned.
func (c *Controller) Wait() {
	c.saves.Wait()
}

// IsComplete reports whether every exercise in the working set is checked.
func (c *Controller) IsComplete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completeLocked()
}

func (c *Controller) completeLocked() bool {
	for _, id := range c.order {
		if !c.entries[id].completed {
			return false
		}
	}
	return true
}

// Progress returns the completed share in percent. An empty session is 0%.
func (c *Controller) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	done, total := c.countLocked()
	return progress(done, total)
}

func progress(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}

func (c *Controller) countLocked() (done, total int) {
	for _, id := range c.order {
		if c.entries[id].completed {
			done++
		}
	}
	return done, len(c.order)
}

func (c *Controller) startClockLocked() {
	c.stopClockLocked()
	ref := &timerRef{}
	ref.t = c.deps.Scheduler.Every(tick, func() { c.onClockTick(ref) })
	c.clock = ref
}

func (c *Controller) stopClockLocked() {
	if c.clock != nil {
		c.clock.t.Stop()
		c.clock = nil
	}
}

func (c *Controller) onClockTick(ref *timerRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.clock != ref || c.state != StateActive {
		return
	}
	c.elapsed++
}

// startTimerLocked runs an exercise countdown, either from the default rest
// duration or from its remaining time.
func (c *Controller) startTimerLocked(exerciseID string, fromRemaining bool) {
	c.stopTimerLocked(exerciseID)
	e := c.entries[exerciseID]
	if !fromRemaining {
		e.timer.Remaining = c.deps.RestSeconds
	}
	e.timer.Running = true

	ref := &timerRef{}
	ref.t = c.deps.Scheduler.Every(tick, func() { c.onTimerTick(exerciseID, ref) })
	c.timers[exerciseID] = ref
}

func (c *Controller) stopTimerLocked(exerciseID string) {
	if ref, ok := c.timers[exerciseID]; ok {
		ref.t.Stop()
		delete(c.timers, exerciseID)
	}
}

func (c *Controller) resetTimerLocked(exerciseID string) {
	c.stopTimerLocked(exerciseID)
	c.entries[exerciseID].timer = TimerState{Remaining: c.deps.RestSeconds}
}

// stopAllLocked cancels every ticker the session owns.
func (c *Controller) stopAllLocked() {
	for id := range c.timers {
		c.stopTimerLocked(id)
	}
	c.stopClockLocked()
}

func (c *Controller) onTimerTick(exerciseID string, ref *timerRef) {
	var fx effects
	c.mu.Lock()
	if c.closed || c.timers[exerciseID] != ref || c.state != StateActive {
		c.mu.Unlock()
		return
	}
	e := c.entries[exerciseID]
	if e.timer.Remaining <= 1 {
		e.timer = TimerState{}
		c.stopTimerLocked(exerciseID)
		fx.add(func() { c.deps.Haptics.Vibrate(PatternRestComplete) })
		fx.add(func() { c.deps.Diagnostics.RestTimerExpired(c.id, exerciseID) })
	} else {
		e.timer.Remaining--
	}
	c.mu.Unlock()

	fx.run()
}
