package racedash

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerStartsOnceOnMovement(t *testing.T) {
	rt := newRaceTimer(DefaultConfig())
	base := time.Now()

	assert.False(t, rt.running())

	for i := 0; i < 5; i++ {
		rt.observe(10, base.Add(time.Duration(i)*time.Second))
		assert.True(t, rt.running())
	}
	assert.Equal(t, 4*time.Second, rt.elapsed)
}

func TestTimerNeverStartsWithoutMovement(t *testing.T) {
	rt := newRaceTimer(DefaultConfig())
	base := time.Now()

	for i := 0; i < 100; i++ {
		rt.observe(0.4, base.Add(time.Duration(i)*time.Second))
	}
	assert.False(t, rt.running())
	assert.Equal(t, time.Duration(0), rt.elapsed)
}

func TestTimerConservationAcrossPauseResume(t *testing.T) {
	rt := newRaceTimer(DefaultConfig()) // 30s idle timeout
	base := time.Now()
	at := func(s int) time.Time { return base.Add(time.Duration(s) * time.Second) }

	rt.observe(10, at(0))  // start
	rt.observe(10, at(10)) // +10s
	rt.observe(0, at(20))  // +10s, idle begins
	rt.observe(0, at(45))  // +25s, idle 35s > 30s: pause
	assert.False(t, rt.running())
	assert.Equal(t, 45*time.Second, rt.elapsed)

	rt.observe(0, at(60)) // paused, nothing accumulates
	assert.Equal(t, 45*time.Second, rt.elapsed)

	rt.observe(5, at(100)) // resume, the 55s gap is not counted
	assert.True(t, rt.running())
	assert.Equal(t, 45*time.Second, rt.elapsed)

	rt.observe(5, at(110)) // +10s
	assert.Equal(t, 55*time.Second, rt.elapsed)
}

func TestTimerRemainingClamp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RaceDurationMs = 1000
	rt := newRaceTimer(cfg)
	base := time.Now()

	rt.observe(10, base)
	assert.Equal(t, time.Second, rt.remaining())

	rt.observe(10, base.Add(10*time.Second))
	assert.Equal(t, time.Duration(0), rt.remaining(), "remaining never goes negative")
	assert.Equal(t, 10*time.Second, rt.elapsed, "elapsed keeps counting past the allocation")
}

func TestTimerIdleShorterThanTimeout(t *testing.T) {
	rt := newRaceTimer(DefaultConfig())
	base := time.Now()

	rt.observe(10, base)
	rt.observe(0, base.Add(10*time.Second))
	rt.observe(0, base.Add(29*time.Second))
	assert.True(t, rt.running(), "idle below the timeout must not pause")

	rt.observe(0, base.Add(31*time.Second))
	assert.False(t, rt.running())
}
