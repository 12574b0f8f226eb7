package racedash

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Renderer draws one projected frame. Implementations live outside the
// engine; a console renderer ships with the binary.
type Renderer interface {
	Render(Display) error
}

// Dispatcher decouples rendering from ingestion. Snapshots are offered
// as fast as samples arrive; the dispatcher repaints at most once per
// interval, and a burst of offers collapses to the newest snapshot.
type Dispatcher struct {
	interval  time.Duration
	renderers []Renderer
	frameChan chan SessionState
}

func NewDispatcher(cfg Config, renderers ...Renderer) *Dispatcher {
	interval := time.Duration(cfg.RenderIntervalMs) * time.Millisecond
	// time.Tick of a non-positive interval returns a nil channel that
	// never fires
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &Dispatcher{
		interval:  interval,
		renderers: renderers,
		frameChan: make(chan SessionState, 1),
	}
}

// Offer queues a snapshot for the next repaint, replacing any snapshot
// already waiting. Never blocks the ingestion goroutine.
func (d *Dispatcher) Offer(st SessionState) {
	for {
		select {
		case d.frameChan <- st:
			return
		default:
		}
		select {
		case <-d.frameChan:
		default:
		}
	}
}

func (d *Dispatcher) Start(ctx context.Context) error {
	limiter := time.Tick(d.interval)
	for {
		<-limiter
		select {
		case st := <-d.frameChan:
			frame := Project(st)
			for _, r := range d.renderers {
				if err := r.Render(frame); err != nil {
					log.Error("unable to render frame ", err)
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
