package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"sync/atomic"
	"time"

	"github.com/psuracing/racedash"
	"github.com/psuracing/racedash/fallback"
	"github.com/psuracing/racedash/transport"
	log "github.com/sirupsen/logrus"
)

var (
	testMode       = flag.Bool("testmode", false, "generate simulated telemetry")
	printTelemetry = flag.Bool("print-telemetry", false, "print display frames to stdout")
	configFile     = flag.String("config", "racedash.toml", "engine configuration file next to the binary")
	mqttConfigFile = flag.String("mqtt-config", "mqtt.toml", "broker configuration file next to the binary")
	trackFile      = flag.String("track", "", "track geometry geojson (default: built-in Lusail short circuit)")
	gpsPortName    = flag.String("gps-port", "/dev/ttyAMA0", "serial port of the fallback GPS")
)

func main() {
	log.SetLevel(log.InfoLevel)
	flag.Parse()

	ctx := context.Background()

	cfg, err := racedash.LoadConfig(*configFile)
	if err != nil {
		log.Fatal("unable to load configuration: ", err)
	}

	track := racedash.LusailShort()
	if *trackFile != "" {
		f, err := os.Open(*trackFile)
		if err != nil {
			log.Fatal("unable to open track file: ", err)
		}
		track, err = racedash.LoadTrackGeoJSON(f)
		f.Close()
		if err != nil {
			log.Fatal("unable to load track: ", err)
		}
	}
	log.WithField("track", track.Name).Info("track loaded")

	engine := racedash.NewEngine(cfg, track)
	sampleChan := make(chan racedash.RawSample, 1)

	var renderers []racedash.Renderer
	if *printTelemetry {
		renderers = append(renderers, consoleRenderer{})
	}
	dispatcher := racedash.NewDispatcher(cfg, renderers...)
	go func() {
		_ = dispatcher.Start(ctx)
	}()

	odo := &odometer{}
	source := mkSource(track, sampleChan, odo)
	go func() {
		if err := source.Run(ctx); err != nil {
			log.Error("sample source done: ", err)
		}
	}()

	for raw := range sampleChan {
		st := engine.Ingest(raw, time.Now())
		odo.store(st.DistanceKm)
		dispatcher.Offer(st)
	}
}

func mkSource(track racedash.TrackGeometry, sampleChan chan racedash.RawSample, odo *odometer) *racedash.SwitchingSource {
	if *testMode {
		sim := racedash.NewSimulatedSource(track, sampleChan)
		return racedash.NewSwitchingSource(sim, nil, nil)
	}

	primary, err := transport.NewSource(*mqttConfigFile, sampleChan)
	if err != nil {
		log.Fatal("unable to load MQTT source: ", err)
	}
	gps := fallback.NewSource(*gpsPortName, sampleChan, odo.load)
	return racedash.NewSwitchingSource(primary, gps, primary.Offline())
}

// odometer publishes the session's cumulative distance from the ingest
// goroutine to the fallback source, which seeds its own total from it
// at switchover.
type odometer struct {
	bits atomic.Uint64
}

func (o *odometer) store(km float64) {
	o.bits.Store(math.Float64bits(km))
}

func (o *odometer) load() float64 {
	return math.Float64frombits(o.bits.Load())
}

type consoleRenderer struct{}

func (consoleRenderer) Render(d racedash.Display) error {
	_, err := fmt.Printf("lap %d | %s | %3d km/h | %sA | turn %s\n",
		d.Lap, d.Timer, d.SpeedKmh, d.CurrentAmps, d.Turn)
	return err
}
