package racedash

import "github.com/paulmach/orb"

// TurnEvent is an edge-triggered turn proximity transition. Entered is
// false when the car has moved out of range of all turns.
type TurnEvent struct {
	Turn    *Turn
	Entered bool
}

// turnDetector maps the car position to the nearest defined turn within
// the proximity radius. Events fire on transitions only; staying inside
// the same turn's radius emits nothing further. One turn is active at a
// time, first match in track list order.
type turnDetector struct {
	turns      []Turn
	proximityM float64
	active     *Turn
}

func newTurnDetector(track TrackGeometry, cfg Config) *turnDetector {
	return &turnDetector{
		turns:      track.Turns,
		proximityM: cfg.TurnProximityM,
	}
}

func (d *turnDetector) observe(pos orb.Point) (TurnEvent, bool) {
	for i := range d.turns {
		t := &d.turns[i]
		if DistanceM(t.Point, pos) >= d.proximityM {
			continue
		}
		if d.active == t {
			return TurnEvent{}, false
		}
		d.active = t
		return TurnEvent{Turn: t, Entered: true}, true
	}

	if d.active == nil {
		return TurnEvent{}, false
	}
	prev := d.active
	d.active = nil
	return TurnEvent{Turn: prev, Entered: false}, true
}

func (d *turnDetector) activeTurn() *Turn {
	return d.active
}
