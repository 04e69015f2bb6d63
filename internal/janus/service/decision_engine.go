package service

import (
	"context"
	"time"

	"github.com/hzouari/janus/internal/janus/store"
	"github.com/hzouari/janus/internal/janus/types"
)

// DecisionEngine turns a resolved identity plus the current time into a
// grant/deny decision against the identity's weekly schedules.  It only
// reads from the store and is safe to call concurrently.
type DecisionEngine struct {
	identities store.IdentityStore
}

func NewDecisionEngine(st store.IdentityStore) *DecisionEngine {
	return &DecisionEngine{identities: st}
}

// Decide evaluates identityID against the schedules in effect at now.
//
// Day-of-week and time-of-day are both derived from the single now value so
// a schedule boundary cannot race within one evaluation.  A store failure
// returns a fail-closed denial together with the underlying error for the
// caller to log; the denial itself is the authoritative outcome.
func (e *DecisionEngine) Decide(ctx context.Context, identityID *int64, now time.Time) (types.Decision, error) {
	d := types.Decision{
		IdentityID: identityID,
		DecidedAt:  now,
	}

	if identityID == nil {
		d.Reason = types.ReasonUnknownIdentity
		return d, nil
	}

	ident, err := e.identities.FindIdentity(ctx, *identityID)
	if err != nil {
		d.Reason = types.ReasonServiceUnavailable
		return d, err
	}
	if ident == nil {
		d.Reason = types.ReasonIdentityNotFound
		return d, nil
	}
	d.IdentityName = ident.Name

	day := types.DayOfWeek(now)
	secOfDay := now.Hour()*3600 + now.Minute()*60 + now.Second()

	schedules, err := e.identities.FindActiveSchedules(ctx, ident.ID, day)
	if err != nil {
		d.Reason = types.ReasonServiceUnavailable
		return d, err
	}
	if len(schedules) == 0 {
		d.Reason = types.ReasonNoScheduleForDay
		return d, nil
	}

	for _, sc := range schedules {
		// Inclusive on both bounds: a schedule ending 17:00 still grants
		// at 17:00:00 sharp and denies at 17:00:01.
		if sc.StartMinute*60 <= secOfDay && secOfDay <= sc.EndMinute*60 {
			d.Granted = true
			d.Reason = types.ReasonNone
			return d, nil
		}
	}

	d.Reason = types.ReasonOutsideScheduledHours
	return d, nil
}
