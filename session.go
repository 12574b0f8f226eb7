package racedash

import (
	"time"

	"github.com/paulmach/orb"
	log "github.com/sirupsen/logrus"
)

// SessionState is an immutable snapshot of the session for rendering.
// The engine owns the only mutable copy; Ingest returns a fresh snapshot
// per sample.
type SessionState struct {
	Latitude   float64
	Longitude  float64
	HeadingDeg float64

	Voltage  float64
	Current  float64
	Power    float64
	EnergyWh float64

	SpeedKmh   float64
	RPM        float64
	DistanceKm float64

	TimerRunning bool
	Elapsed      time.Duration
	Remaining    time.Duration

	Lap          int
	Efficiencies []LapEfficiency

	HeatMap    []HeatPoint
	HeatMapMax float64

	// ActiveTurn points into the track's static turn list, nil when the
	// car is not near any turn.
	ActiveTurn *Turn
}

// Engine reduces the inbound sample stream into session state. It is
// not safe for concurrent use: exactly one goroutine drains the active
// source and feeds Ingest, per the single-stream input model.
type Engine struct {
	cfg   Config
	track TrackGeometry

	lat     float64
	lon     float64
	prevLat float64
	prevLon float64
	heading float64

	voltage  float64
	current  float64
	power    float64
	energyWh float64

	speedKmh float64
	rpm      float64
	distKm   float64

	lastSample time.Time
	hasSample  bool

	timer  *raceTimer
	laps   *lapTracker
	ledger *efficiencyLedger
	heat   *heatMap
	turns  *turnDetector
}

func NewEngine(cfg Config, track TrackGeometry) *Engine {
	return &Engine{
		cfg:   cfg,
		track: track,
		// the car marker starts at the start/finish line until the
		// first fix arrives
		lat:    track.Center[1],
		lon:    track.Center[0],
		timer:  newRaceTimer(cfg),
		laps:   newLapTracker(track.Center, cfg),
		ledger: newEfficiencyLedger(cfg),
		heat:   newHeatMap(cfg),
		turns:  newTurnDetector(track, cfg),
	}
}

// Ingest runs one raw packet through the fixed reduction pipeline:
// normalize, position/electrical/motion, energy, heat map, timer, lap,
// turn. All steps complete synchronously before the next sample; no
// error ever propagates out of the pipeline.
func (e *Engine) Ingest(raw RawSample, now time.Time) SessionState {
	s := normalize(raw, now, e.lat, e.lon)

	e.prevLat, e.prevLon = e.lat, e.lon
	e.lat, e.lon = s.Latitude, s.Longitude

	e.voltage = s.Voltage
	e.current = s.Current
	e.power = s.Power
	e.speedKmh = s.SpeedKmh
	e.rpm = s.RPM
	e.distKm = s.DistanceKm

	// heading only means something while actually moving
	if e.speedKmh > e.cfg.HeadingSpeedFloorKmh && (e.prevLat != e.lat || e.prevLon != e.lon) {
		e.heading = Bearing(orb.Point{e.prevLon, e.prevLat}, e.position())
	}

	if e.hasSample {
		e.energyWh += energyDelta(e.lastSample, now, e.power)
	}
	e.lastSample = now
	e.hasSample = true

	e.heat.add(e.lat, e.lon, e.current)

	e.timer.observe(e.speedKmh, now)

	if ev, ok := e.laps.observe(e.position(), e.distKm, e.energyWh); ok {
		if kmPerKwh, accepted := e.ledger.record(ev.Number, ev.DistanceKm, ev.EnergyWh); accepted {
			log.WithFields(log.Fields{
				"lap":        ev.Number,
				"distanceKm": ev.DistanceKm,
				"kmPerKwh":   kmPerKwh,
			}).Info("lap completed")
		} else {
			log.WithFields(log.Fields{
				"lap":      ev.Number,
				"energyWh": ev.EnergyWh,
			}).Warn("lap completed without a plausible efficiency sample")
		}
		e.heat.clear()
	}

	if ev, ok := e.turns.observe(e.position()); ok && ev.Entered {
		log.WithField("turn", ev.Turn.Name).Debug("approaching turn")
	}

	return e.Snapshot()
}

func (e *Engine) position() orb.Point {
	return orb.Point{e.lon, e.lat}
}

// Snapshot copies the current session state for the render boundary.
func (e *Engine) Snapshot() SessionState {
	return SessionState{
		Latitude:     e.lat,
		Longitude:    e.lon,
		HeadingDeg:   e.heading,
		Voltage:      e.voltage,
		Current:      e.current,
		Power:        e.power,
		EnergyWh:     e.energyWh,
		SpeedKmh:     e.speedKmh,
		RPM:          e.rpm,
		DistanceKm:   e.distKm,
		TimerRunning: e.timer.running(),
		Elapsed:      e.timer.elapsed,
		Remaining:    e.timer.remaining(),
		Lap:          e.laps.currentLap(),
		Efficiencies: e.ledger.entries(),
		HeatMap:      e.heat.snapshot(),
		HeatMapMax:   e.heat.maxCurrent(),
		ActiveTurn:   e.turns.activeTurn(),
	}
}

// Track returns the static geometry the engine was built with.
func (e *Engine) Track() TrackGeometry {
	return e.track
}
