package door

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hzouari/janus/internal/janus/types"
	"github.com/hzouari/janus/internal/protocol"
)

// ═══════════════════════════════════════════════════════════════════════════
// Test doubles
// ═══════════════════════════════════════════════════════════════════════════

type recordingSink struct {
	mu     sync.Mutex
	cmds   []protocol.Command
	err    error
	closed bool
}

func (s *recordingSink) Send(_ context.Context, cmd protocol.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.cmds = append(s.cmds, cmd)
	return nil
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSink) sent() []protocol.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.Command, len(s.cmds))
	copy(out, s.cmds)
	return out
}

func silentLogger() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestSupervisor(sink *recordingSink, openSeconds int) *Supervisor {
	return NewSupervisor(sink, Config{OpenSeconds: openSeconds}, silentLogger())
}

func grantFor(name string) types.Decision {
	return types.Decision{IdentityName: name, Granted: true, Reason: types.ReasonNone}
}

// ═══════════════════════════════════════════════════════════════════════════
// Apply
// ═══════════════════════════════════════════════════════════════════════════

func TestApply_GrantSendsWelcomeAndOpens(t *testing.T) {
	sink := &recordingSink{}
	sup := newTestSupervisor(sink, 5)

	if err := sup.Apply(context.Background(), grantFor("Hassen")); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	cmds := sink.sent()
	if len(cmds) != 2 {
		t.Fatalf("expected 2 commands, got %d: %v", len(cmds), cmds)
	}
	if cmds[0] != protocol.Display("Welcome", "Hassen") {
		t.Errorf("unexpected display: %+v", cmds[0])
	}
	if cmds[1] != protocol.DoorOpen(5) {
		t.Errorf("unexpected door command: %+v", cmds[1])
	}
}

func TestApply_DenySendsReasonAndCloses(t *testing.T) {
	sink := &recordingSink{}
	sup := newTestSupervisor(sink, 5)

	d := types.Decision{Granted: false, Reason: types.ReasonOutsideScheduledHours}
	if err := sup.Apply(context.Background(), d); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	cmds := sink.sent()
	if len(cmds) != 2 {
		t.Fatalf("expected 2 commands, got %d: %v", len(cmds), cmds)
	}
	if cmds[0].Line1 != "Access Denied" || cmds[0].Line2 != "Outside hours" {
		t.Errorf("unexpected display: %+v", cmds[0])
	}
	if cmds[1] != protocol.DoorClose() {
		t.Errorf("unexpected door command: %+v", cmds[1])
	}
}

func TestApply_GrantArmsAutoClose(t *testing.T) {
	sink := &recordingSink{}
	sup := newTestSupervisor(sink, 1)

	if err := sup.Apply(context.Background(), grantFor("Hassen")); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		cmds := sink.sent()
		if len(cmds) == 3 && cmds[2] == protocol.DoorClose() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("auto-close never fired, commands: %v", sink.sent())
}

func TestApply_DenyCancelsPendingAutoClose(t *testing.T) {
	sink := &recordingSink{}
	sup := newTestSupervisor(sink, 1)

	if err := sup.Apply(context.Background(), grantFor("Hassen")); err != nil {
		t.Fatalf("grant: %v", err)
	}
	d := types.Decision{Granted: false, Reason: types.ReasonUnknownIdentity}
	if err := sup.Apply(context.Background(), d); err != nil {
		t.Fatalf("deny: %v", err)
	}

	before := len(sink.sent())
	time.Sleep(1500 * time.Millisecond)
	if after := len(sink.sent()); after != before {
		t.Errorf("cancelled timer still fired: %d -> %d commands", before, after)
	}
}

func TestApply_SinkErrorSurfacesButDoesNotPanic(t *testing.T) {
	boom := errors.New("wire dead")
	sink := &recordingSink{err: boom}
	sup := newTestSupervisor(sink, 5)

	if err := sup.Apply(context.Background(), grantFor("Hassen")); !errors.Is(err, boom) {
		t.Fatalf("expected sink error back, got %v", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Shutdown
// ═══════════════════════════════════════════════════════════════════════════

func TestShutdown_ClosesDoorAndClearsDisplay(t *testing.T) {
	sink := &recordingSink{}
	sup := newTestSupervisor(sink, 5)

	if err := sup.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	cmds := sink.sent()
	if len(cmds) != 2 || cmds[0] != protocol.DoorClose() || cmds[1] != protocol.DisplayClear() {
		t.Fatalf("unexpected shutdown sequence: %v", cmds)
	}

	// Second shutdown is a no-op.
	if err := sup.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
	if got := len(sink.sent()); got != 2 {
		t.Errorf("second shutdown re-sent commands: %d total", got)
	}
}

func TestShutdown_RefusesFurtherApplies(t *testing.T) {
	sink := &recordingSink{}
	sup := newTestSupervisor(sink, 5)

	_ = sup.Shutdown(context.Background())
	if err := sup.Apply(context.Background(), grantFor("Hassen")); err == nil {
		t.Fatal("expected Apply after shutdown to fail")
	}
}
