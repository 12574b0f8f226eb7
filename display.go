package racedash

import (
	"fmt"
	"math"
	"time"
)

// Display is the read-only projection of a session snapshot consumed by
// the rendering layer. Computing it is pure; the renderer just draws.
type Display struct {
	// SpeedKmh rounded to the integer shown on the speedometer.
	SpeedKmh int
	// CurrentAmps is the absolute current to one decimal, as displayed.
	CurrentAmps string
	// Timer is the remaining race time as M:SS, clamped at 0:00.
	Timer string
	Lap   int
	// Efficiencies are the per-lap history lines, oldest first.
	Efficiencies []string

	HeatMap    []HeatPoint
	HeatMapMax float64

	Turn TurnDirection
}

// Project derives the display values from a snapshot.
func Project(st SessionState) Display {
	d := Display{
		SpeedKmh:    int(math.Round(st.SpeedKmh)),
		CurrentAmps: fmt.Sprintf("%.1f", math.Abs(st.Current)),
		Timer:       formatClock(st.Remaining),
		Lap:         st.Lap,
		HeatMap:     st.HeatMap,
		HeatMapMax:  st.HeatMapMax,
		Turn:        TurnNone,
	}
	if st.ActiveTurn != nil {
		d.Turn = st.ActiveTurn.Direction
	}
	for _, e := range st.Efficiencies {
		d.Efficiencies = append(d.Efficiencies, fmt.Sprintf("LAP %d — %.2f km/kWh", e.Lap, e.KmPerKwh))
	}
	return d
}

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d / time.Minute)
	seconds := int(d/time.Second) % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
