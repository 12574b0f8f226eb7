// Package fallback turns the device GPS into a position-only sample
// source for when the telemetry broker is unreachable. Electrical
// fields stay unset; the engine's normalizer handles the rest.
package fallback

import (
	"context"
	"math"

	"github.com/jd3nn1s/skytraq"
	"github.com/paulmach/orb"
	"github.com/psuracing/racedash"
	log "github.com/sirupsen/logrus"
)

const (
	// maximum horizontal dilution of precision
	maxHDOP = 500

	// skytraq reports velocity in cm/s
	cmPerSecToKmh = 0.036
)

type GPS interface {
	Close() error
	Start(context.Context, skytraq.Callbacks) error
}

// to allow testing
var gpsConnect = func(p string) (GPS, error) {
	return skytraq.Connect(p)
}

// Source reads device GPS fixes and synthesizes samples carrying
// position, derived speed, and haversine-accumulated distance.
type Source struct {
	c        GPS
	portName string
	sendChan chan<- racedash.RawSample
	odometer func() float64

	hasFix  bool
	lastPos orb.Point
	distKm  float64
}

// NewSource takes an odometer callback returning the session's
// cumulative distance in km. The source continues that total rather
// than restarting from zero, so the engine's distance never regresses
// at switchover. A nil odometer starts from zero.
func NewSource(portName string, sendChan chan<- racedash.RawSample, odometer func() float64) *Source {
	return &Source{
		portName: portName,
		sendChan: sendChan,
		odometer: odometer,
	}
}

func (g *Source) Name() string {
	return "gps-fallback"
}

func (g *Source) Open() error {
	if g.odometer != nil {
		g.distKm = g.odometer()
		// the last position predates the outage; accumulating across
		// the gap would count distance the car may not have driven
		g.hasFix = false
	}
	c, err := gpsConnect(g.portName)
	g.c = c
	return err
}

func (g *Source) Close() error {
	if g.c == nil {
		return nil
	}
	return g.c.Close()
}

func (g *Source) Start(ctx context.Context) error {
	return g.c.Start(ctx, skytraq.Callbacks{
		SoftwareVersion: func(version skytraq.SoftwareVersion) {
			log.Infof("gps software version: %v", version)
		},
		NavData: g.navDataFn,
	})
}

func (g *Source) navDataFn(navData skytraq.NavData) {
	if navData.Fix == skytraq.FixNone {
		log.Warnf("no satellite fix")
		return
	}
	if navData.HDOP > maxHDOP {
		log.WithField("HDOP", navData.HDOP).Warn("poor resolution")
		return
	}

	lat := float64(navData.Latitude) / 1e7
	lon := float64(navData.Longitude) / 1e7
	pos := orb.Point{lon, lat}

	speedKmh := math.Sqrt(math.Pow(float64(navData.VX), 2)+
		math.Pow(float64(navData.VY), 2)) * cmPerSecToKmh

	if g.hasFix {
		g.distKm += racedash.Distance(g.lastPos, pos)
	}
	g.lastPos = pos
	g.hasFix = true

	// copy so the consumer never observes a later accumulation
	distKm := g.distKm
	raw := racedash.RawSample{
		Speed:      &speedKmh,
		DistanceKm: &distKm,
		Latitude:   &lat,
		Longitude:  &lon,
	}

	select {
	case g.sendChan <- raw:
	default:
	}
}
