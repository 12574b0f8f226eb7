package fallback

import (
	"context"
	"sync"
	"testing"

	"github.com/jd3nn1s/skytraq"
	"github.com/psuracing/racedash"
	"github.com/stretchr/testify/assert"
)

type skytraqStub struct {
	startChan chan struct{}
	fnChan    chan func()
	callbacks skytraq.Callbacks
}

func createGPSStub() *skytraqStub {
	return &skytraqStub{
		startChan: make(chan struct{}),
		fnChan:    make(chan func()),
	}
}

func (s *skytraqStub) Close() error {
	return nil
}

func (s *skytraqStub) Start(ctx context.Context, callbacks skytraq.Callbacks) error {
	s.callbacks = callbacks
	select {
	case s.startChan <- struct{}{}:
	default:
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-s.fnChan:
			fn()
		}
	}
}

func TestRunGPS(t *testing.T) {
	sendChan := make(chan racedash.RawSample, 1)

	origGPSConnect := gpsConnect
	defer func() {
		gpsConnect = origGPSConnect
	}()

	stub := createGPSStub()
	gpsConnect = func(p string) (GPS, error) {
		return stub, nil
	}

	source := NewSource("/dev/ttyAMA0", sendChan, nil)

	// close before opening
	assert.NoError(t, source.Close())
	assert.NoError(t, source.Open())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		_ = source.Start(ctx)
		wg.Done()
	}()
	<-stub.startChan

	stub.fnChan <- func() {
		stub.callbacks.SoftwareVersion(skytraq.SoftwareVersion{
			Kernel:   skytraq.Version{Major: 1, Minor: 2, Patch: 3},
			ODM:      skytraq.Version{Major: 4, Minor: 5, Patch: 6},
			Revision: skytraq.Version{Major: 7, Minor: 8, Patch: 9},
		})
	}

	stub.fnChan <- func() {
		stub.callbacks.NavData(skytraq.NavData{
			Fix:            skytraq.Fix3D,
			SatelliteCount: 5,
			Latitude:       254884357,
			Longitude:      514501900,
			VX:             100,
			HDOP:           9,
		})
	}

	// read some data
	raw := <-sendChan
	assert.Equal(t, 25.4884357, *raw.Latitude)
	assert.Equal(t, 51.4501900, *raw.Longitude)

	cancel()
	wg.Wait()
}

func TestNavDataFn(t *testing.T) {
	sendChan := make(chan racedash.RawSample, 1)
	source := NewSource("/dev/ttyAMA0", sendChan, nil)

	navData := skytraq.NavData{
		Fix:            skytraq.FixNone,
		SatelliteCount: 1,
		Latitude:       254884357,
		Longitude:      514501900,
		VX:             100,
		VY:             0,
		HDOP:           9,
	}

	source.navDataFn(navData)
	assertNoData(t, sendChan, "unexpected data on channel as there is no fix")

	navData.Fix = skytraq.Fix3D
	source.navDataFn(navData)
	raw := <-sendChan
	assert.Equal(t, 25.4884357, *raw.Latitude)
	assert.Equal(t, 51.4501900, *raw.Longitude)
	// 100 cm/s is 3.6 km/h
	assert.InDelta(t, 3.6, *raw.Speed, 1e-9)
	// first fix, no travel yet
	assert.Equal(t, 0.0, *raw.DistanceKm)

	navData.HDOP = maxHDOP + 1
	source.navDataFn(navData)
	assertNoData(t, sendChan, "unexpected data on channel as there is high HDOP")
}

func TestNavDataFnAccumulatesDistance(t *testing.T) {
	sendChan := make(chan racedash.RawSample, 1)
	source := NewSource("/dev/ttyAMA0", sendChan, nil)

	navData := skytraq.NavData{
		Fix:       skytraq.Fix3D,
		Latitude:  254884357,
		Longitude: 514501900,
	}
	source.navDataFn(navData)
	<-sendChan

	// a thousandth of a degree of latitude is about 111 m
	navData.Latitude += 10000
	source.navDataFn(navData)
	raw := <-sendChan
	assert.InDelta(t, 0.111, *raw.DistanceKm, 0.001)

	// standing still adds nothing
	source.navDataFn(navData)
	raw = <-sendChan
	assert.InDelta(t, 0.111, *raw.DistanceKm, 0.001)
}

func TestOpenContinuesSessionOdometer(t *testing.T) {
	sendChan := make(chan racedash.RawSample, 1)

	origGPSConnect := gpsConnect
	defer func() {
		gpsConnect = origGPSConnect
	}()
	gpsConnect = func(p string) (GPS, error) {
		return createGPSStub(), nil
	}

	source := NewSource("/dev/ttyAMA0", sendChan, func() float64 {
		return 12.5
	})
	assert.NoError(t, source.Open())

	navData := skytraq.NavData{
		Fix:       skytraq.Fix3D,
		Latitude:  254884357,
		Longitude: 514501900,
	}
	source.navDataFn(navData)
	raw := <-sendChan
	// the total picks up where the primary source left off
	assert.Equal(t, 12.5, *raw.DistanceKm)

	navData.Latitude += 10000
	source.navDataFn(navData)
	raw = <-sendChan
	assert.InDelta(t, 12.611, *raw.DistanceKm, 0.001)
}

func TestNavDataFnDoesNotBlockWhenFull(t *testing.T) {
	sendChan := make(chan racedash.RawSample, 1)
	source := NewSource("/dev/ttyAMA0", sendChan, nil)

	navData := skytraq.NavData{
		Fix:       skytraq.Fix3D,
		Latitude:  254884357,
		Longitude: 514501900,
	}
	source.navDataFn(navData)
	source.navDataFn(navData)
	source.navDataFn(navData)
	assert.Len(t, sendChan, 1)
}

func assertNoData(t *testing.T, sendChan <-chan racedash.RawSample, msg string) {
	select {
	case <-sendChan:
		assert.Fail(t, msg)
	default:
	}
}
