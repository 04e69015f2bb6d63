package agent

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hzouari/janus/internal/janus/types"
)

// AccessChecker asks the decision service whether a candidate may enter.
// Implementations fail closed: on any transport trouble they return a
// denied decision rather than an error.
type AccessChecker interface {
	CheckAccess(ctx context.Context, identityID *int64) types.Decision
}

// DecisionSink actuates a decision (door supervisor in production).
type DecisionSink interface {
	Apply(ctx context.Context, d types.Decision) error
}

type LoopConfig struct {
	// StabilityFrames is how many consecutive identical observations a
	// candidate needs before it is acted on.  Defaults to 3.
	StabilityFrames int

	// Cooldown suppresses repeat actions for the same label after one
	// fires.  Defaults to 5s.
	Cooldown time.Duration
}

// Loop wires a resolver to the decision service and the door.  One
// goroutine, no shared state outside it.
type Loop struct {
	resolver Resolver
	checker  AccessChecker
	sink     DecisionSink
	cfg      LoopConfig
	logger   *log.Logger

	now func() time.Time // test hook

	lastLabel int64
	lastAt    time.Time
	acted     bool
}

func NewLoop(resolver Resolver, checker AccessChecker, sink DecisionSink, cfg LoopConfig, logger *log.Logger) *Loop {
	if cfg.StabilityFrames <= 0 {
		cfg.StabilityFrames = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Second
	}
	return &Loop{
		resolver: resolver,
		checker:  checker,
		sink:     sink,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Run consumes candidates until the context is cancelled or the resolver
// stream ends.  It always returns nil on a clean stream end; resolver
// startup failure is the only error path.
func (l *Loop) Run(ctx context.Context) error {
	candidates, err := l.resolver.Start(ctx)
	if err != nil {
		return err
	}

	tracker := NewStabilityTracker(l.cfg.StabilityFrames)
	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-candidates:
			if !ok {
				return nil
			}
			if !tracker.Observe(c) {
				continue
			}
			l.act(ctx, c)
			tracker.Reset()
		}
	}
}

func (l *Loop) act(ctx context.Context, c Candidate) {
	label := unknownLabel
	if c.ID != nil {
		label = *c.ID
	}

	now := l.now()
	if l.acted && label == l.lastLabel && now.Sub(l.lastAt) < l.cfg.Cooldown {
		return
	}
	l.lastLabel = label
	l.lastAt = now
	l.acted = true

	d := l.checker.CheckAccess(ctx, c.ID)
	l.logger.WithFields(log.Fields{
		"granted": d.Granted,
		"reason":  string(d.Reason),
		"name":    d.IdentityName,
	}).Info("access decision")

	if err := l.sink.Apply(ctx, d); err != nil {
		l.logger.WithError(err).Warn("door actuation failed")
	}
}
