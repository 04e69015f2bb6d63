package types

import "time"

// Identity is a registered person, keyed by the stable numeric id assigned
// at enrollment.  The recognizer reports this id when it resolves a face.
type Identity struct {
	ID        int64
	Name      string
	Position  string
	CreatedAt time.Time
}

// Schedule is one day-of-week time window granting access to one identity.
// Times are minutes since midnight; DayOfWeek follows the store convention
// 0=Monday .. 6=Sunday.  An inactive schedule is invisible to the decision
// engine but is never deleted by this process.
type Schedule struct {
	ID          int64
	EmployeeID  int64
	DayOfWeek   int
	StartMinute int
	EndMinute   int
	Active      bool
}

// DayOfWeek converts t's weekday to the 0=Monday .. 6=Sunday convention
// used by schedules.
func DayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
