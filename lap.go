package racedash

import "github.com/paulmach/orb"

// lapEvent carries the deltas accumulated over one completed lap.
type lapEvent struct {
	Number     int
	DistanceKm float64
	EnergyWh   float64
}

// lapTracker detects lap completions against the start/finish point.
// A single distance threshold double-triggers when GPS jitter sits near
// the line, so two are used: the car must first travel beyond the leave
// threshold before coming back within the return threshold closes a lap.
type lapTracker struct {
	start   orb.Point
	leaveM  float64
	returnM float64

	number        int
	hasLeft       bool
	startDistKm   float64
	startEnergyWh float64
}

func newLapTracker(start orb.Point, cfg Config) *lapTracker {
	return &lapTracker{
		start:   start,
		leaveM:  cfg.LapLeaveM,
		returnM: cfg.LapReturnM,
		number:  1,
	}
}

// observe checks the current position and returns a completion event
// when the car has genuinely departed and come back.
func (lt *lapTracker) observe(pos orb.Point, distKmAbs, energyWhAbs float64) (lapEvent, bool) {
	distM := DistanceM(lt.start, pos)

	if !lt.hasLeft {
		if distM > lt.leaveM {
			lt.hasLeft = true
		}
		return lapEvent{}, false
	}

	if distM >= lt.returnM {
		return lapEvent{}, false
	}

	ev := lapEvent{
		Number:     lt.number,
		DistanceKm: distKmAbs - lt.startDistKm,
		EnergyWh:   energyWhAbs - lt.startEnergyWh,
	}
	lt.number++
	lt.startDistKm = distKmAbs
	lt.startEnergyWh = energyWhAbs
	lt.hasLeft = false
	return ev, true
}

func (lt *lapTracker) currentLap() int {
	return lt.number
}
