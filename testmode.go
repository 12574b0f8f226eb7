package racedash

import (
	"context"
	"math/rand"
	"time"
)

// SimulatedSource generates telemetry that walks the track outline with
// varying speed and current, for exercising the dashboard without a car
// or a broker.
type SimulatedSource struct {
	track    TrackGeometry
	sendChan chan<- RawSample
	interval time.Duration

	speed  float64
	down   bool
	distKm float64
	idx    int
}

func NewSimulatedSource(track TrackGeometry, sendChan chan<- RawSample) *SimulatedSource {
	return &SimulatedSource{
		track:    track,
		sendChan: sendChan,
		interval: 200 * time.Millisecond,
		speed:    20,
	}
}

func (s *SimulatedSource) Open() error {
	return nil
}

func (s *SimulatedSource) Close() error {
	return nil
}

func (s *SimulatedSource) Name() string {
	return "simulator"
}

func (s *SimulatedSource) Start(ctx context.Context) error {
	tick := time.Tick(s.interval)
	for {
		select {
		case <-tick:
		case <-ctx.Done():
			return ctx.Err()
		}

		if s.down {
			s.speed -= rand.Float64() * 10
		} else {
			s.speed += rand.Float64() * 10
		}
		if s.speed > 150 {
			s.down = true
		} else if s.speed < 20 {
			s.down = false
		}

		s.idx = (s.idx + 1) % len(s.track.Outline)
		pt := s.track.Outline[s.idx]
		lat := pt[1] + (rand.Float64()-0.5)*0.00002
		lon := pt[0] + (rand.Float64()-0.5)*0.00002

		s.distKm += s.speed * s.interval.Hours()

		// current rises with speed, as it does under acceleration
		current := (s.speed/150)*20 + rand.Float64()*5
		voltage := 48 + (rand.Float64()-0.5)*4

		raw := RawSample{
			Voltage:    f64(voltage),
			Current:    f64(current),
			Power:      f64(voltage * current),
			Speed:      f64(s.speed),
			RPM:        f64(s.speed * 50),
			DistanceKm: f64(s.distKm),
			Latitude:   f64(lat),
			Longitude:  f64(lon),
		}

		select {
		case s.sendChan <- raw:
		default:
		}
	}
}

func f64(v float64) *float64 {
	return &v
}
