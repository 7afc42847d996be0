package alarm

import (
	"slices"
	"time"
)

// DefaultRingDuration is how long an alarm keeps ringing before the store drops it.
const DefaultRingDuration = 15 * 60

// Alarm is a scheduled wake event.
type Alarm struct {
	// ID uniquely identifies the alarm.
	ID string `json:"id"`
	// UnixTime is the trigger time in seconds since the Unix epoch.
	UnixTime int64 `json:"unix_time"`
	// RingDuration is how long the alarm rings, in seconds.
	RingDuration uint32 `json:"ring_duration"`
}

// New creates an alarm ringing at the given instant.
func New(id string, at time.Time, ringDuration uint32) Alarm {
	return Alarm{
		ID:           id,
		UnixTime:     at.Unix(),
		RingDuration: ringDuration,
	}
}

// Time returns the trigger instant.
func (a Alarm) Time() time.Time {
	return time.Unix(a.UnixTime, 0)
}

// End returns the instant the alarm stops ringing.
func (a Alarm) End() time.Time {
	return a.Time().Add(time.Duration(a.RingDuration) * time.Second)
}

// Sort orders alarms by trigger time, then by ID.
func Sort(alarms []Alarm) {
	slices.SortFunc(alarms, func(a, b Alarm) int {
		if a.UnixTime != b.UnixTime {
			if a.UnixTime < b.UnixTime {
				return -1
			}

			return 1
		}

		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
}

// Actor identifies who performed a change in the alarm store.
type Actor struct {
	// Hostname is the machine name where the action was performed.
	Hostname string `json:"hostname"`
	// Username is the system user who triggered the action.
	Username string `json:"username"`
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// String renders the actor as user@host.
func (a *Actor) String() string {
	if a == nil {
		return "<unknown>"
	}

	return a.Username + "@" + a.Hostname
}
