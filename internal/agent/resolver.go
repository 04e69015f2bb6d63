// Package agent runs the recognition-to-actuation loop on the door device:
// it consumes identity candidates, stabilizes them, asks the decision
// service whether to grant, and drives the door supervisor.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Candidate is one recognition observation.  A nil ID means the frame
// contained a face nobody matched.
type Candidate struct {
	ID         *int64
	Confidence float64
}

// Resolver produces a stream of candidates.  Implementations own their
// capture source; the channel closes when the source is exhausted or the
// context is cancelled.  Start may be called at most once.
type Resolver interface {
	Start(ctx context.Context) (<-chan Candidate, error)
	Close() error
}

// StdinResolver reads candidates from a line stream, one per line:
//
//	<id>               matched identity, full confidence
//	<id> <confidence>  matched identity with confidence
//	?                  unmatched face
//
// It stands in for a camera pipeline on dev machines and in integration
// runs.
type StdinResolver struct {
	r      io.Reader
	logger *log.Logger

	mu      sync.Mutex
	started bool
}

func NewStdinResolver(r io.Reader, logger *log.Logger) *StdinResolver {
	return &StdinResolver{r: r, logger: logger}
}

func (s *StdinResolver) Start(ctx context.Context) (<-chan Candidate, error) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil, fmt.Errorf("resolver already started")
	}
	s.started = true
	s.mu.Unlock()

	out := make(chan Candidate)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(s.r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			c, err := parseCandidate(line)
			if err != nil {
				s.logger.WithError(err).WithField("line", line).
					Warn("ignoring malformed candidate")
				continue
			}
			select {
			case out <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *StdinResolver) Close() error { return nil }

func parseCandidate(line string) (Candidate, error) {
	if line == "?" {
		return Candidate{}, nil
	}
	idText, confText, hasConf := strings.Cut(line, " ")
	id, err := strconv.ParseInt(idText, 10, 64)
	if err != nil {
		return Candidate{}, fmt.Errorf("bad identity id %q: %w", idText, err)
	}
	conf := 1.0
	if hasConf {
		conf, err = strconv.ParseFloat(strings.TrimSpace(confText), 64)
		if err != nil || conf < 0 || conf > 1 {
			return Candidate{}, fmt.Errorf("bad confidence %q", confText)
		}
	}
	return Candidate{ID: &id, Confidence: conf}, nil
}
