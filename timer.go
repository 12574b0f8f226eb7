package racedash

import "time"

type timerPhase int

const (
	// timerStopped means the car has never moved this session.
	timerStopped timerPhase = iota
	timerRunning
	timerPaused
)

// raceTimer counts down the race allocation. It starts on first
// movement, pauses after the idle timeout, and resumes on the next
// movement; no driver interaction.
type raceTimer struct {
	movementThresholdKmh float64
	idleTimeout          time.Duration
	total                time.Duration

	phase        timerPhase
	elapsed      time.Duration
	startedAt    time.Time
	lastMovement time.Time
}

func newRaceTimer(cfg Config) *raceTimer {
	return &raceTimer{
		movementThresholdKmh: cfg.MovementThresholdKmh,
		idleTimeout:          time.Duration(cfg.IdleTimeoutMs) * time.Millisecond,
		total:                time.Duration(cfg.RaceDurationMs) * time.Millisecond,
	}
}

// observe advances the state machine for one sample. Elapsed time is
// accumulated in rolling increments so a pause/resume cycle neither
// loses nor double-counts time at the transition.
func (t *raceTimer) observe(speedKmh float64, now time.Time) {
	if t.phase == timerRunning {
		if d := now.Sub(t.startedAt); d > 0 {
			t.elapsed += d
		}
		t.startedAt = now
	}

	if speedKmh > t.movementThresholdKmh {
		t.lastMovement = now
		if t.phase != timerRunning {
			t.phase = timerRunning
			t.startedAt = now
		}
		return
	}

	if t.phase == timerRunning && !t.lastMovement.IsZero() &&
		now.Sub(t.lastMovement) > t.idleTimeout {
		t.phase = timerPaused
	}
}

func (t *raceTimer) running() bool {
	return t.phase == timerRunning
}

// remaining never goes negative: the display clamps at 0:00.
func (t *raceTimer) remaining() time.Duration {
	r := t.total - t.elapsed
	if r < 0 {
		return 0
	}
	return r
}
