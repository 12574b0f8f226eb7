package racedash

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestTurnEnterEdgeTriggered(t *testing.T) {
	track := LusailShort()
	d := newTurnDetector(track, DefaultConfig())

	at := track.Turns[0].Point

	ev, ok := d.observe(at)
	assert.True(t, ok)
	assert.True(t, ev.Entered)
	assert.Equal(t, "TURN 1", ev.Turn.Name)

	// staying inside the same turn's radius emits nothing further
	for i := 0; i < 5; i++ {
		_, ok = d.observe(latOffset(at, 10))
		assert.False(t, ok)
	}
	assert.Equal(t, "TURN 1", d.activeTurn().Name)
}

func TestTurnExitEdgeTriggered(t *testing.T) {
	track := LusailShort()
	d := newTurnDetector(track, DefaultConfig())

	d.observe(track.Turns[0].Point)

	far := track.Center // start/finish is not near TURN 1
	ev, ok := d.observe(far)
	assert.True(t, ok)
	assert.False(t, ev.Entered)
	assert.Equal(t, "TURN 1", ev.Turn.Name)
	assert.Nil(t, d.activeTurn())

	_, ok = d.observe(far)
	assert.False(t, ok, "exit fires exactly once")
}

func TestTurnNoEventWhenNeverNear(t *testing.T) {
	d := newTurnDetector(LusailShort(), DefaultConfig())
	_, ok := d.observe(orb.Point{51.5, 25.5})
	assert.False(t, ok)
	assert.Nil(t, d.activeTurn())
}

func TestTurnSwitchingBetweenTurns(t *testing.T) {
	track := LusailShort()
	d := newTurnDetector(track, DefaultConfig())

	d.observe(track.Turns[0].Point)

	// moving straight into another turn's radius re-triggers an enter
	ev, ok := d.observe(track.Turns[3].Point)
	assert.True(t, ok)
	assert.True(t, ev.Entered)
	assert.Equal(t, "TURN 4", ev.Turn.Name)
}

func TestTurnFirstMatchWins(t *testing.T) {
	cfg := DefaultConfig()
	track := LusailShort()
	// TURN 1 and TURN 2 are ~60m apart; a wide radius reaches both
	cfg.TurnProximityM = 100
	d := newTurnDetector(track, cfg)

	mid := orb.Point{
		(track.Turns[0].Point[0] + track.Turns[1].Point[0]) / 2,
		(track.Turns[0].Point[1] + track.Turns[1].Point[1]) / 2,
	}
	ev, ok := d.observe(mid)
	assert.True(t, ok)
	assert.Equal(t, "TURN 1", ev.Turn.Name, "list order breaks the tie")
}
