package hardware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"

	"github.com/hzouari/janus/internal/protocol"
)

// Operational failures of the serial channel.  These are warnings, not
// crashes: the decision and its audit row are durable before any of them
// can occur.
var (
	ErrPortUnavailable  = errors.New("serial port unavailable")
	ErrHandshakeTimeout = errors.New("no readiness signal before handshake deadline")
	ErrWriteTimeout     = errors.New("no acknowledgement before write deadline")
	ErrChannelClosed    = errors.New("serial channel closed")
)

// State is the lifecycle of the serial session.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// serialPort is the slice of go.bug.st/serial.Port the sink needs; tests
// substitute an in-memory implementation.
type serialPort interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

type openFunc func(port string, baud int) (serialPort, error)

func openRealPort(name string, baud int) (serialPort, error) {
	p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrPortUnavailable, name, err)
	}
	return p, nil
}

// readPollInterval paces the read loops when the port has nothing buffered.
const readPollInterval = 20 * time.Millisecond

type SerialConfig struct {
	Port     string
	BaudRate int

	// HandshakeTimeout bounds the wait for the controller's readiness
	// line after opening the port.  Defaults to 5s.
	HandshakeTimeout time.Duration

	// AckTimeout bounds the wait for an acknowledgement after writing a
	// frame.  Defaults to 1s.
	AckTimeout time.Duration

	// SendRetries is how many times a failed Send is retried with
	// backoff before surfacing the error.  Defaults to 3.
	SendRetries int

	// RetryBackoff is the initial backoff between retries and reconnect
	// attempts; it doubles up to MaxBackoff.  Defaults to 200ms / 5s.
	RetryBackoff time.Duration
	MaxBackoff   time.Duration
}

func (c *SerialConfig) applyDefaults() {
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 5 * time.Second
	}
	if c.AckTimeout <= 0 {
		c.AckTimeout = time.Second
	}
	if c.SendRetries <= 0 {
		c.SendRetries = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 200 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 5 * time.Second
	}
}

// SerialSink owns the physical serial connection to the controller.  A
// supervisor goroutine (Start) keeps the channel alive independently of the
// decision path: connects, handshakes, and reconnects with capped backoff
// after failures.  Send never blocks longer than its retry budget.
type SerialSink struct {
	cfg    SerialConfig
	logger *log.Logger
	open   openFunc

	mu           sync.Mutex
	state        State
	port         serialPort
	rx           protocol.FrameBuffer
	lastActivity time.Time
	closed       bool

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSerialSink(cfg SerialConfig, logger *log.Logger) (*SerialSink, error) {
	if cfg.Port == "" {
		return nil, fmt.Errorf("serial port name is required")
	}
	if cfg.BaudRate <= 0 {
		return nil, fmt.Errorf("invalid baud rate %d", cfg.BaudRate)
	}
	cfg.applyDefaults()
	return &SerialSink{
		cfg:    cfg,
		logger: logger,
		open:   openRealPort,
		done:   make(chan struct{}),
	}, nil
}

// Start launches the connection supervisor.  It returns immediately; the
// first connect attempt happens in the background so a missing controller
// degrades the system instead of stalling startup.
func (s *SerialSink) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.supervise(ctx)
}

// State reports the current session state.
func (s *SerialSink) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastActivity reports when the controller last acknowledged a frame.
func (s *SerialSink) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *SerialSink) supervise(ctx context.Context) {
	defer close(s.done)

	backoff := s.cfg.RetryBackoff
	for {
		s.mu.Lock()
		st, closed := s.state, s.closed
		s.mu.Unlock()
		if closed || ctx.Err() != nil {
			return
		}

		if st == StateConnected {
			select {
			case <-ctx.Done():
				return
			case <-time.After(readPollInterval * 10):
			}
			continue
		}

		if err := s.connect(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.WithError(err).WithField("backoff", backoff.String()).
				Warn("serial connect failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff *= 2; backoff > s.cfg.MaxBackoff {
				backoff = s.cfg.MaxBackoff
			}
			continue
		}

		backoff = s.cfg.RetryBackoff
		s.logger.WithFields(log.Fields{
			"port": s.cfg.Port,
			"baud": s.cfg.BaudRate,
		}).Info("serial channel connected")
	}
}

// connect opens the port and waits for the controller's readiness line.  A
// baud-rate mismatch shows up here as handshake garbage and is surfaced as
// ErrHandshakeTimeout rather than silently tolerated.
func (s *SerialSink) connect(ctx context.Context) error {
	s.setState(StateConnecting)

	port, err := s.open(s.cfg.Port, s.cfg.BaudRate)
	if err != nil {
		s.setState(StateFailed)
		return err
	}
	_ = port.SetReadTimeout(readPollInterval)

	var fb protocol.FrameBuffer
	buf := make([]byte, 64)
	deadline := time.Now().Add(s.cfg.HandshakeTimeout)

	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			_ = port.Close()
			s.setState(StateDisconnected)
			return ctx.Err()
		}

		n, err := port.Read(buf)
		if err != nil {
			_ = port.Close()
			s.setState(StateFailed)
			return fmt.Errorf("%w: handshake read: %v", ErrPortUnavailable, err)
		}
		if n == 0 {
			time.Sleep(readPollInterval)
			continue
		}

		fb.Append(buf[:n])
		for {
			line, ok := fb.Next()
			if !ok {
				break
			}
			if protocol.IsReady(line) {
				s.mu.Lock()
				if s.closed {
					s.mu.Unlock()
					_ = port.Close()
					return ErrChannelClosed
				}
				s.port = port
				s.state = StateConnected
				s.lastActivity = time.Now()
				s.rx = protocol.FrameBuffer{}
				s.mu.Unlock()
				return nil
			}
		}
	}

	_ = port.Close()
	s.setState(StateFailed)
	return ErrHandshakeTimeout
}

// Send writes a fully framed command and waits for its acknowledgement,
// retrying transient failures with backoff up to the configured budget.
func (s *SerialSink) Send(ctx context.Context, cmd protocol.Command) error {
	raw, err := protocol.Encode(cmd)
	if err != nil {
		return err
	}
	opcode := protocol.Opcode(cmd)

	backoff := s.cfg.RetryBackoff
	var lastErr error
	for attempt := 0; attempt <= s.cfg.SendRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff *= 2; backoff > s.cfg.MaxBackoff {
				backoff = s.cfg.MaxBackoff
			}
		}

		lastErr = s.trySend(ctx, raw, opcode)
		if lastErr == nil {
			return nil
		}
		if s.isClosed() {
			return ErrChannelClosed
		}
	}
	return lastErr
}

func (s *SerialSink) trySend(ctx context.Context, raw []byte, opcode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrChannelClosed
	}
	if s.state != StateConnected || s.port == nil {
		return ErrChannelClosed
	}

	if _, err := s.port.Write(raw); err != nil {
		s.dropLocked()
		return fmt.Errorf("%w: write: %v", ErrChannelClosed, err)
	}

	buf := make([]byte, 64)
	deadline := time.Now().Add(s.cfg.AckTimeout)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		n, err := s.port.Read(buf)
		if err != nil {
			s.dropLocked()
			return fmt.Errorf("%w: read: %v", ErrChannelClosed, err)
		}
		if n == 0 {
			time.Sleep(readPollInterval)
			continue
		}

		s.rx.Append(buf[:n])
		for {
			line, ok := s.rx.Next()
			if !ok {
				break
			}
			if op, isAck := protocol.ParseAck(line); isAck && op == opcode {
				s.lastActivity = time.Now()
				return nil
			}
			// Anything else (late acks, telemetry) is dropped.
		}
	}
	return ErrWriteTimeout
}

// dropLocked tears down the current connection; the supervisor notices the
// Failed state and reconnects.  Caller must hold s.mu.
func (s *SerialSink) dropLocked() {
	if s.port != nil {
		_ = s.port.Close()
		s.port = nil
	}
	s.state = StateFailed
}

// Close releases the channel.  Idempotent and safe to call from a signal
// handler; it waits for the supervisor to exit.
func (s *SerialSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return nil
	}
	s.closed = true
	var err error
	if s.port != nil {
		err = s.port.Close()
		s.port = nil
	}
	s.state = StateDisconnected
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-s.done
	} else {
		close(s.done)
	}
	return err
}

func (s *SerialSink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *SerialSink) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

var _ Sink = (*SerialSink)(nil)
