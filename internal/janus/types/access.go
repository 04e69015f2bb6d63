package types

import "time"

// Reason classifies the outcome of an access decision.  Denial reasons are
// routine results, not system errors.
type Reason string

const (
	ReasonNone                  Reason = "none"
	ReasonUnknownIdentity       Reason = "unknown_identity"
	ReasonIdentityNotFound      Reason = "identity_not_found"
	ReasonNoScheduleForDay      Reason = "no_schedule_for_day"
	ReasonOutsideScheduledHours Reason = "outside_scheduled_hours"
	ReasonServiceUnavailable    Reason = "decision_service_unavailable"
)

// Text returns the short human-readable form shown on the second display
// line when access is denied.
func (r Reason) Text() string {
	switch r {
	case ReasonUnknownIdentity:
		return "Unknown face"
	case ReasonIdentityNotFound:
		return "Not registered"
	case ReasonNoScheduleForDay:
		return "No schedule today"
	case ReasonOutsideScheduledHours:
		return "Outside hours"
	case ReasonServiceUnavailable:
		return "Service offline"
	default:
		return string(r)
	}
}

// Decision is the outcome of one recognition event.  IdentityID is nil only
// when the resolver could not attribute the frame to anyone; a resolved id
// that is missing from the store keeps its value so the audit trail can
// distinguish the two cases.
type Decision struct {
	IdentityID   *int64
	IdentityName string
	Granted      bool
	Reason       Reason
	DecidedAt    time.Time
}

type CheckAccessRequest struct {
	IdentityID *int64 `json:"identity_id"`
}

const (
	StatusGranted = "granted"
	StatusDenied  = "denied"
)

type CheckAccessResponse struct {
	Status       string  `json:"status"`
	IdentityName *string `json:"identity_name"`
	Reason       string  `json:"reason,omitempty"`
}
