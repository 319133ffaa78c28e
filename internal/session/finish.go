package session

import (
	"context"
	"fmt"

	"github.com/meltforce/fittrack/internal/energy"
	"github.com/meltforce/fittrack/internal/models"
)

// FinishPrompt is the confirmation shown before the final save.
type FinishPrompt struct {
	Complete bool   `json:"complete"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Confirm  string `json:"confirmLabel"`
	Cancel   string `json:"cancelLabel"`
}

// ConfirmFunc asks the user to confirm a prompt. A nil ConfirmFunc confirms.
type ConfirmFunc func(FinishPrompt) bool

// Prompt builds the finish confirmation for the current progress.
func (c *Controller) Prompt() FinishPrompt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.promptLocked()
}

func (c *Controller) promptLocked() FinishPrompt {
	if c.completeLocked() {
		return FinishPrompt{
			Complete: true,
			Title:    "Workout Complete!",
			Message:  fmt.Sprintf("Great job! You completed %q in %s.", c.planName, energy.FormatDuration(c.elapsed)),
			Confirm:  "Save Results",
			Cancel:   "Back to Workouts",
		}
	}
	return FinishPrompt{
		Title:   "Workout Incomplete",
		Message: "You haven't finished all exercises. Do you want to save this as an incomplete workout?",
		Confirm: "Save as Incomplete",
		Cancel:  "Continue Workout",
	}
}

// recordLocked builds the record for the current progress.
func (c *Controller) recordLocked(completed bool) *models.CompletedWorkout {
	rec := &models.CompletedWorkout{
		ID:                 c.recordID,
		UserID:             c.userID,
		PlanName:           c.planName,
		Date:               c.deps.Now(),
		DurationSec:        c.elapsed,
		CompletedExercises: []string{},
		Completed:          completed,
	}
	for _, id := range c.order {
		e := c.entries[id]
		if !e.completed {
			continue
		}
		rec.CompletedExercises = append(rec.CompletedExercises, id)
		rec.CaloriesBurned += e.calories
	}
	rec.CaloriesBurned = energy.Round(rec.CaloriesBurned, 2)
	return rec
}

// checkpointLocked saves partial progress in the background. Only one save
// runs at a time; a checkpoint requested during a save is dropped.
func (c *Controller) checkpointLocked(reason string, fx *effects) {
	if c.saving {
		fx.add(func() { c.deps.Diagnostics.CheckpointSkipped(c.id, reason) })
		return
	}
	c.saving = true
	rec := c.recordLocked(false)

	c.saves.Add(1)
	go func() {
		defer c.saves.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.deps.SaveTimeout)
		defer cancel()

		id, err := c.deps.History.SaveCompletedWorkout(ctx, rec)

		c.mu.Lock()
		c.saving = false
		if c.closed {
			c.mu.Unlock()
			c.log.Debug("discarding checkpoint result after close", "reason", reason, "error", err)
			return
		}
		if err == nil && c.recordID == "" {
			c.recordID = id
		}
		c.mu.Unlock()

		if err != nil {
			c.deps.Diagnostics.CheckpointFailed(c.id, reason, err)
			return
		}
		c.deps.Diagnostics.CheckpointSaved(c.id, reason)
	}()
}

// Finish asks for confirmation and saves the final record, marked completed
// only when every exercise is checked. On failure a *FinishError is
// returned and the session stays as it was so the caller can retry.
func (c *Controller) Finish(ctx context.Context, confirm ConfirmFunc) (*models.CompletedWorkout, error) {
	c.mu.Lock()
	if err := c.openLocked(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if c.saving {
		c.mu.Unlock()
		return nil, ErrSaveInProgress
	}
	prompt := c.promptLocked()
	c.mu.Unlock()

	if confirm != nil && !confirm(prompt) {
		return nil, ErrFinishDeclined
	}

	c.mu.Lock()
	if err := c.openLocked(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if c.saving {
		c.mu.Unlock()
		return nil, ErrSaveInProgress
	}
	c.saving = true
	rec := c.recordLocked(c.completeLocked())
	c.mu.Unlock()

	id, err := c.deps.History.SaveCompletedWorkout(ctx, rec)

	c.mu.Lock()
	c.saving = false
	if err != nil {
		c.mu.Unlock()
		c.log.Error("saving finished workout", "error", err)
		return nil, newFinishError(err)
	}
	rec.ID = id
	if !c.closed {
		c.recordID = id
		c.state = StateFinished
		c.stopAllLocked()
	}
	c.mu.Unlock()

	c.deps.Diagnostics.SessionFinished(c.id, rec.Completed)
	return rec, nil
}

// ExerciseStatus is one row of a snapshot.
type ExerciseStatus struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Sets      int        `json:"sets"`
	Reps      string     `json:"reps"`
	Completed bool       `json:"completed"`
	Timer     TimerState `json:"timer"`
	Calories  float64    `json:"calories"`
}

// Snapshot is a consistent view of a session.
type Snapshot struct {
	ID             string           `json:"id"`
	PlanName       string           `json:"planName"`
	State          State            `json:"state"`
	Resuming       bool             `json:"resuming"`
	Saving         bool             `json:"saving"`
	ElapsedSec     int              `json:"elapsedSec"`
	Elapsed        string           `json:"elapsed"`
	Exercises      []ExerciseStatus `json:"exercises"`
	CompletedCount int              `json:"completedCount"`
	Total          int              `json:"total"`
	Progress       float64          `json:"progress"`
	Complete       bool             `json:"complete"`
	CaloriesBurned float64          `json:"caloriesBurned"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	done, total := c.countLocked()
	s := Snapshot{
		ID:             c.id,
		PlanName:       c.planName,
		State:          c.state,
		Resuming:       c.resuming,
		Saving:         c.saving,
		ElapsedSec:     c.elapsed,
		Elapsed:        energy.FormatDuration(c.elapsed),
		Exercises:      make([]ExerciseStatus, 0, total),
		CompletedCount: done,
		Total:          total,
		Progress:       progress(done, total),
		Complete:       c.completeLocked(),
	}
	var kcal float64
	for _, id := range c.order {
		e := c.entries[id]
		s.Exercises = append(s.Exercises, ExerciseStatus{
			ID:        id,
			Name:      e.ex.Name,
			Sets:      e.ex.Sets,
			Reps:      e.ex.Reps,
			Completed: e.completed,
			Timer:     e.timer,
			Calories:  energy.Round(e.calories, 2),
		})
		if e.completed {
			kcal += e.calories
		}
	}
	s.CaloriesBurned = energy.Round(kcal, 2)
	return s
}
