package transport

import (
	"testing"
	"time"

	"github.com/psuracing/racedash"
	"github.com/stretchr/testify/assert"
)

func speedSample(v float64) racedash.RawSample {
	return racedash.RawSample{Speed: &v}
}

func TestSyncBufferLatestEmpty(t *testing.T) {
	b := NewSyncBuffer()
	_, _, ok := b.Latest()
	assert.False(t, ok)
}

func TestSyncBufferLatestPairs(t *testing.T) {
	b := NewSyncBuffer()
	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return at }

	b.AddTelemetry(speedSample(10))
	b.AddTelemetry(speedSample(20))

	telemetry, videoGPS, ok := b.Latest()
	assert.True(t, ok)
	assert.Equal(t, 20.0, *telemetry.Sample.Speed)
	assert.Equal(t, at, telemetry.ReceivedAt)
	assert.Nil(t, videoGPS)

	lat := 25.4884
	b.AddVideoGPS(racedash.RawSample{Latitude: &lat})
	_, videoGPS, ok = b.Latest()
	assert.True(t, ok)
	assert.NotNil(t, videoGPS)
	assert.Equal(t, lat, *videoGPS.Sample.Latitude)
}

func TestSyncBufferBounded(t *testing.T) {
	b := NewSyncBuffer()
	for i := 0; i < syncBufferSize+10; i++ {
		b.AddTelemetry(speedSample(float64(i)))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Len(t, b.telemetry, syncBufferSize)
	// the oldest packets were evicted
	assert.Equal(t, 10.0, *b.telemetry[0].Sample.Speed)
	assert.Equal(t, float64(syncBufferSize+9), *b.telemetry[syncBufferSize-1].Sample.Speed)
}
