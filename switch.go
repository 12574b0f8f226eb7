package racedash

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// SwitchingSource runs the primary sample source until it reports loss
// of connectivity on the offline channel, then runs the fallback for the
// rest of the session. The switch is one-way: once on device GPS, the
// session never flips back mid-race even if the broker returns.
//
// The primary is fully stopped before the fallback starts, so the engine
// never sees interleaved position updates from two sources.
type SwitchingSource struct {
	primary  Retryable
	fallback Retryable
	offline  <-chan struct{}
}

// NewSwitchingSource wires a primary and an optional fallback. With a
// nil offline channel the primary runs for the whole session.
func NewSwitchingSource(primary, fallback Retryable, offline <-chan struct{}) *SwitchingSource {
	return &SwitchingSource{
		primary:  primary,
		fallback: fallback,
		offline:  offline,
	}
}

func (s *SwitchingSource) Run(ctx context.Context) error {
	primaryCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Retry(primaryCtx, s.primary)
	}()

	select {
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	case err := <-done:
		return err
	case <-s.offline:
		log.Warnf("%s offline, switching to %s for the rest of the session",
			s.primary.Name(), s.fallbackName())
	}

	// stop consuming from the abandoned source before the fallback
	// starts producing
	cancel()
	<-done

	if s.fallback == nil {
		return errors.New("primary source lost and no fallback configured")
	}
	return Retry(ctx, s.fallback)
}

func (s *SwitchingSource) fallbackName() string {
	if s.fallback == nil {
		return "nothing"
	}
	return s.fallback.Name()
}
