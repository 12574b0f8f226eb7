package racedash

import "time"

// Power readings beyond this magnitude are sensor garbage; integrating
// them would corrupt the cumulative total for the rest of the session.
const maxPlausiblePowerW = 1e6

// energyDelta integrates power over the interval between two samples and
// returns the result in watt-hours. The first sample of a session has no
// interval and contributes nothing. Negative power is legitimate
// (regenerative braking) and decreases the total.
func energyDelta(prev, now time.Time, powerW float64) float64 {
	dtHours := now.Sub(prev).Hours()
	if dtHours <= 0 {
		return 0
	}
	if powerW <= -maxPlausiblePowerW || powerW >= maxPlausiblePowerW {
		return 0
	}
	return powerW * dtHours
}
