package session

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/meltforce/fittrack/internal/metrics"
)

// Pattern alternates wait and vibrate durations, starting with a wait.
// A single element is one pulse of that length.
type Pattern []time.Duration

var (
	// PulseExerciseDone is played when an exercise is checked off.
	PulseExerciseDone = Pattern{100 * time.Millisecond}
	// PatternRestComplete is played when a rest timer reaches zero.
	PatternRestComplete = Pattern{0, 300 * time.Millisecond, 100 * time.Millisecond, 300 * time.Millisecond}
)

// Haptics delivers tactile cues. Calls are fire-and-forget.
type Haptics interface {
	Vibrate(p Pattern)
}

type NopHaptics struct{}

func (NopHaptics) Vibrate(Pattern) {}

// Diagnostics observes events the session handles silently, such as failed
// checkpoints. Methods are called without the controller lock held.
type Diagnostics interface {
	SessionStarted(sessionID string, resuming bool)
	SessionFinished(sessionID string, completed bool)
	CheckpointSaved(sessionID, reason string)
	CheckpointFailed(sessionID, reason string, err error)
	CheckpointSkipped(sessionID, reason string)
	RestTimerExpired(sessionID, exerciseID string)
}

// LogDiagnostics writes events to a logger and, when set, to Prometheus.
type LogDiagnostics struct {
	Log     *slog.Logger
	Metrics *metrics.Manager
}

func NewLogDiagnostics(log *slog.Logger, m *metrics.Manager) *LogDiagnostics {
	if log == nil {
		log = slog.Default()
	}
	return &LogDiagnostics{Log: log, Metrics: m}
}

func (d *LogDiagnostics) SessionStarted(sessionID string, resuming bool) {
	d.Log.Info("session started", "session", sessionID, "resuming", resuming)
	if d.Metrics != nil {
		d.Metrics.CounterSessionsStarted.WithLabelValues(strconv.FormatBool(resuming)).Inc()
	}
}

func (d *LogDiagnostics) SessionFinished(sessionID string, completed bool) {
	outcome := "incomplete"
	if completed {
		outcome = "complete"
	}
	d.Log.Info("session finished", "session", sessionID, "outcome", outcome)
	if d.Metrics != nil {
		d.Metrics.CounterSessionsFinished.WithLabelValues(outcome).Inc()
	}
}

func (d *LogDiagnostics) CheckpointSaved(sessionID, reason string) {
	d.Log.Debug("checkpoint saved", "session", sessionID, "reason", reason)
	d.count("saved")
}

func (d *LogDiagnostics) CheckpointFailed(sessionID, reason string, err error) {
	d.Log.Warn("checkpoint failed", "session", sessionID, "reason", reason, "error", err)
	d.count("failed")
}

func (d *LogDiagnostics) CheckpointSkipped(sessionID, reason string) {
	d.Log.Debug("checkpoint skipped, save in progress", "session", sessionID, "reason", reason)
	d.count("skipped")
}

func (d *LogDiagnostics) RestTimerExpired(sessionID, exerciseID string) {
	d.Log.Debug("rest timer expired", "session", sessionID, "exercise", exerciseID)
	if d.Metrics != nil {
		d.Metrics.CounterRestTimersExpired.Inc()
	}
}

func (d *LogDiagnostics) count(result string) {
	if d.Metrics != nil {
		d.Metrics.CounterCheckpoints.WithLabelValues(result).Inc()
	}
}
