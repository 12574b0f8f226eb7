package racedash

import "math"

// HeatPoint is one current-draw reading pinned to a track position.
type HeatPoint struct {
	Latitude  float64
	Longitude float64
	// CurrentAbs is the magnitude of the current at this point in amps;
	// sign carries no meaning for the heat overlay.
	CurrentAbs float64
}

// heatMap keeps a bounded trail of current-draw readings for the lap in
// progress. Oldest points fall off first, and the whole trail resets at
// every lap boundary.
type heatMap struct {
	cap    int
	points []HeatPoint
}

func newHeatMap(cfg Config) *heatMap {
	return &heatMap{cap: cfg.HeatMapCap}
}

func (h *heatMap) add(lat, lon, current float64) {
	h.points = append(h.points, HeatPoint{Latitude: lat, Longitude: lon, CurrentAbs: math.Abs(current)})
	if len(h.points) > h.cap {
		// shift in place so the backing array stays bounded
		copy(h.points, h.points[1:])
		h.points = h.points[:h.cap]
	}
}

func (h *heatMap) clear() {
	h.points = h.points[:0]
}

func (h *heatMap) snapshot() []HeatPoint {
	out := make([]HeatPoint, len(h.points))
	copy(out, h.points)
	return out
}

// maxCurrent is the scale ceiling for intensity coloring, relative to
// the retained window so the overlay is always locally contrastive.
// Never below 1 so an all-zero trail does not divide by zero.
func (h *heatMap) maxCurrent() float64 {
	max := 1.0
	for _, p := range h.points {
		if p.CurrentAbs > max {
			max = p.CurrentAbs
		}
	}
	return max
}
