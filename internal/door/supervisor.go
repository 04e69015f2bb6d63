// Package door serializes all door and display actuation.  Every state
// change flows through one Supervisor so the auto-close timer, explicit
// closes, and shutdown can never race each other.
package door

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hzouari/janus/internal/hardware"
	"github.com/hzouari/janus/internal/janus/types"
	"github.com/hzouari/janus/internal/protocol"
)

type Config struct {
	// OpenSeconds is how long the door stays unlocked after a grant.
	// Defaults to 5.
	OpenSeconds int

	// ActuateTimeout bounds each hardware send.  Defaults to 3s.
	ActuateTimeout time.Duration
}

// Supervisor is the single authority over the physical door.  A grant opens
// the door and arms an auto-close timer; a deny or shutdown closes it
// immediately.  Closing an already closed door is a no-op at the hardware
// level, so the supervisor does not track open/closed state beyond the
// timer.
type Supervisor struct {
	sink   hardware.Sink
	cfg    Config
	logger *log.Logger

	mu       sync.Mutex
	closer   *time.Timer
	shutdown bool
}

func NewSupervisor(sink hardware.Sink, cfg Config, logger *log.Logger) *Supervisor {
	if cfg.OpenSeconds <= 0 {
		cfg.OpenSeconds = 5
	}
	if cfg.ActuateTimeout <= 0 {
		cfg.ActuateTimeout = 3 * time.Second
	}
	return &Supervisor{sink: sink, cfg: cfg, logger: logger}
}

// Apply actuates a decision: display feedback plus the matching door
// command.  Hardware errors are logged and returned but never invent a
// grant; the decision itself was already recorded upstream.
func (s *Supervisor) Apply(ctx context.Context, d types.Decision) error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return hardware.ErrChannelClosed
	}
	s.stopTimerLocked()
	if d.Granted {
		s.armAutoCloseLocked()
	}
	s.mu.Unlock()

	var firstErr error
	for _, cmd := range protocol.CommandsForDecision(d, s.cfg.OpenSeconds) {
		if err := s.send(ctx, cmd); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		s.logger.WithError(firstErr).WithFields(log.Fields{
			"granted": d.Granted,
			"reason":  string(d.Reason),
		}).Warn("door actuation incomplete")
	}
	return firstErr
}

// armAutoCloseLocked schedules the close that follows every grant.  Caller
// must hold s.mu.
func (s *Supervisor) armAutoCloseLocked() {
	delay := time.Duration(s.cfg.OpenSeconds) * time.Second
	s.closer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.shutdown {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ActuateTimeout)
		defer cancel()
		if err := s.send(ctx, protocol.DoorClose()); err != nil {
			s.logger.WithError(err).Error("auto-close failed")
		}
	})
}

func (s *Supervisor) stopTimerLocked() {
	if s.closer != nil {
		s.closer.Stop()
		s.closer = nil
	}
}

func (s *Supervisor) send(ctx context.Context, cmd protocol.Command) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ActuateTimeout)
	defer cancel()
	return s.sink.Send(ctx, cmd)
}

// Shutdown forces the door closed and blanks the display.  Safe to call
// more than once; after the first call Apply refuses further work.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return nil
	}
	s.shutdown = true
	s.stopTimerLocked()
	s.mu.Unlock()

	var firstErr error
	for _, cmd := range []protocol.Command{protocol.DoorClose(), protocol.DisplayClear()} {
		if err := s.send(ctx, cmd); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
