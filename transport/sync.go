package transport

import (
	"sync"
	"time"

	"github.com/psuracing/racedash"
)

const syncBufferSize = 100

// TimedPacket is one received packet stamped with its arrival time.
type TimedPacket struct {
	Sample     racedash.RawSample
	ReceivedAt time.Time
}

// SyncBuffer keeps the most recent telemetry and video-GPS packets so
// the video overlay collaborator can pair frames with car state. It is
// bookkeeping only; nothing here feeds the session engine.
type SyncBuffer struct {
	mu        sync.Mutex
	telemetry []TimedPacket
	videoGPS  []TimedPacket
	now       func() time.Time
}

func NewSyncBuffer() *SyncBuffer {
	return &SyncBuffer{now: time.Now}
}

func (b *SyncBuffer) AddTelemetry(raw racedash.RawSample) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.telemetry = appendBounded(b.telemetry, TimedPacket{Sample: raw, ReceivedAt: b.now()})
}

func (b *SyncBuffer) AddVideoGPS(raw racedash.RawSample) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.videoGPS = appendBounded(b.videoGPS, TimedPacket{Sample: raw, ReceivedAt: b.now()})
}

// Latest returns the newest telemetry packet and, when available, the
// newest video-GPS packet to pair it with.
func (b *SyncBuffer) Latest() (telemetry TimedPacket, videoGPS *TimedPacket, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.telemetry) == 0 {
		return TimedPacket{}, nil, false
	}
	telemetry = b.telemetry[len(b.telemetry)-1]
	if len(b.videoGPS) > 0 {
		gps := b.videoGPS[len(b.videoGPS)-1]
		videoGPS = &gps
	}
	return telemetry, videoGPS, true
}

func appendBounded(packets []TimedPacket, p TimedPacket) []TimedPacket {
	packets = append(packets, p)
	if len(packets) > syncBufferSize {
		copy(packets, packets[1:])
		packets = packets[:syncBufferSize]
	}
	return packets
}
