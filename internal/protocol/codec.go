// Package protocol implements the line-oriented command protocol spoken to
// the display/door controller over the serial link.
//
// Outbound frames, one per line:
//
//	I:<message>        initialize/status line
//	L:<line1>|<line2>  two-line display update
//	C                  clear display
//	D:O:<seconds>      open door for <seconds>
//	D:C                close door
//
// Inbound lines:
//
//	R                  controller ready (handshake)
//	A:<opcode>         acknowledgement of the last frame
//
// Payload text is percent-escaped so display strings can never collide with
// the frame delimiters.
package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hzouari/janus/internal/janus/types"
)

type Kind int

const (
	KindInitialize Kind = iota
	KindDisplay
	KindDisplayClear
	KindDoorOpen
	KindDoorClose
)

func (k Kind) String() string {
	switch k {
	case KindInitialize:
		return "initialize"
	case KindDisplay:
		return "display"
	case KindDisplayClear:
		return "display_clear"
	case KindDoorOpen:
		return "door_open"
	case KindDoorClose:
		return "door_close"
	default:
		return "unknown"
	}
}

// Command is one typed instruction to the hardware side.  Only the fields
// relevant to Kind are meaningful.
type Command struct {
	Kind    Kind
	Message string // KindInitialize
	Line1   string // KindDisplay
	Line2   string // KindDisplay
	Seconds int    // KindDoorOpen
}

func Initialize(message string) Command { return Command{Kind: KindInitialize, Message: message} }
func Display(line1, line2 string) Command {
	return Command{Kind: KindDisplay, Line1: line1, Line2: line2}
}
func DisplayClear() Command { return Command{Kind: KindDisplayClear} }
func DoorOpen(seconds int) Command {
	return Command{Kind: KindDoorOpen, Seconds: seconds}
}
func DoorClose() Command { return Command{Kind: KindDoorClose} }

// displayWidth matches the 16x2 character module driven by the controller.
const displayWidth = 16

// Encode serializes cmd into a newline-terminated frame.
func Encode(cmd Command) ([]byte, error) {
	var frame string
	switch cmd.Kind {
	case KindInitialize:
		frame = "I:" + escape(cmd.Message)
	case KindDisplay:
		frame = "L:" + escape(cmd.Line1) + "|" + escape(cmd.Line2)
	case KindDisplayClear:
		frame = "C"
	case KindDoorOpen:
		if cmd.Seconds <= 0 {
			return nil, fmt.Errorf("door open duration must be positive, got %d", cmd.Seconds)
		}
		frame = "D:O:" + strconv.Itoa(cmd.Seconds)
	case KindDoorClose:
		frame = "D:C"
	default:
		return nil, fmt.Errorf("unknown command kind %d", cmd.Kind)
	}
	return []byte(frame + "\n"), nil
}

// Decode parses one frame (without its trailing newline) back into a
// Command.  Decode(Encode(c)) reproduces c exactly.
func Decode(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return Command{}, fmt.Errorf("empty frame")
	}

	opcode, payload, hasPayload := strings.Cut(line, ":")
	switch opcode {
	case "I":
		if !hasPayload {
			return Command{}, fmt.Errorf("initialize frame missing payload")
		}
		msg, err := unescape(payload)
		if err != nil {
			return Command{}, err
		}
		return Initialize(msg), nil

	case "L":
		if !hasPayload {
			return Command{}, fmt.Errorf("display frame missing payload")
		}
		raw1, raw2, ok := strings.Cut(payload, "|")
		if !ok {
			return Command{}, fmt.Errorf("display frame missing line separator: %q", line)
		}
		line1, err := unescape(raw1)
		if err != nil {
			return Command{}, err
		}
		line2, err := unescape(raw2)
		if err != nil {
			return Command{}, err
		}
		return Display(line1, line2), nil

	case "C":
		if hasPayload {
			return Command{}, fmt.Errorf("clear frame takes no payload: %q", line)
		}
		return DisplayClear(), nil

	case "D":
		if !hasPayload {
			return Command{}, fmt.Errorf("door frame missing payload")
		}
		if payload == "C" {
			return DoorClose(), nil
		}
		if rest, found := strings.CutPrefix(payload, "O:"); found {
			secs, err := strconv.Atoi(rest)
			if err != nil || secs <= 0 {
				return Command{}, fmt.Errorf("bad door open duration %q", rest)
			}
			return DoorOpen(secs), nil
		}
		return Command{}, fmt.Errorf("bad door frame: %q", line)

	default:
		return Command{}, fmt.Errorf("unknown opcode %q", opcode)
	}
}

// Opcode returns the frame opcode a command encodes to, used to correlate
// acknowledgements.
func Opcode(cmd Command) string {
	switch cmd.Kind {
	case KindInitialize:
		return "I"
	case KindDisplay:
		return "L"
	case KindDisplayClear:
		return "C"
	default:
		return "D"
	}
}

// IsReady reports whether an inbound line is the controller's readiness
// signal sent after boot.
func IsReady(line string) bool {
	return strings.TrimRight(line, "\r\n") == "R"
}

// ParseAck extracts the acknowledged opcode from an inbound line.  Returns
// ok=false for anything that is not an acknowledgement.
func ParseAck(line string) (opcode string, ok bool) {
	line = strings.TrimRight(line, "\r\n")
	payload, found := strings.CutPrefix(line, "A:")
	if !found || payload == "" {
		return "", false
	}
	return payload, true
}

// CommandsForDecision maps a decision to its hardware command sequence.
// Display text is clipped to the module width before encoding so the
// round-trip through the wire is exact.
func CommandsForDecision(d types.Decision, openSeconds int) []Command {
	if d.Granted {
		return []Command{
			Display("Welcome", clip(d.IdentityName)),
			DoorOpen(openSeconds),
		}
	}
	return []Command{
		Display("Access Denied", clip(d.Reason.Text())),
		DoorClose(),
	}
}

func clip(s string) string {
	if len(s) > displayWidth {
		return s[:displayWidth]
	}
	return s
}

// escape percent-encodes the characters that would collide with frame
// delimiters.  unescape reverses it; together they make payload round-trips
// exact instead of silently corrupting framing.
func escape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '%', ':', '|', '\r', '\n':
			fmt.Fprintf(&b, "%%%02X", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func unescape(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+3 > len(s) {
			return "", fmt.Errorf("truncated escape in %q", s)
		}
		v, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
		if err != nil {
			return "", fmt.Errorf("bad escape in %q: %w", s, err)
		}
		b.WriteByte(byte(v))
		i += 2
	}
	return b.String(), nil
}
