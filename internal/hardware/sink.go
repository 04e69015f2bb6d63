// Package hardware owns the channel to the display/door controller.  The
// Sink interface is the capability boundary the rest of the system talks
// to; the concrete sink (serial or null) is selected once at startup.
package hardware

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/hzouari/janus/internal/protocol"
)

// Sink delivers commands to the hardware side.  Implementations must be
// safe for concurrent use and must make Close idempotent so it can be
// called from a signal handler.
type Sink interface {
	Send(ctx context.Context, cmd protocol.Command) error
	Close() error
}

// NullSink logs commands instead of transmitting them.  Used when no
// controller is attached (dev boxes, CI) and as the degraded-mode fallback.
type NullSink struct {
	logger *log.Logger
}

func NewNullSink(logger *log.Logger) *NullSink {
	return &NullSink{logger: logger}
}

func (s *NullSink) Send(_ context.Context, cmd protocol.Command) error {
	frame, err := protocol.Encode(cmd)
	if err != nil {
		return err
	}
	s.logger.WithFields(log.Fields{
		"kind":  cmd.Kind.String(),
		"frame": string(frame[:len(frame)-1]),
	}).Info("hardware command (null sink)")
	return nil
}

func (s *NullSink) Close() error { return nil }

var _ Sink = (*NullSink)(nil)
