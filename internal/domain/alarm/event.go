package alarm

import "slices"

// Event is a change notification produced by an alarm store subscription.
// It is either AlarmsChanged or Ring.
type Event interface {
	// Clone returns a copy sharing no memory with the receiver.
	Clone() Event

	event()
}

// AlarmsChanged carries the complete, ordered list of pending alarms.
type AlarmsChanged struct {
	Alarms []Alarm
}

// Ring signals that an alarm's trigger time has been reached.
type Ring struct {
	Alarm Alarm
}

func (AlarmsChanged) event() {}

func (Ring) event() {}

// Clone deep-copies the alarm list.
//
//nolint:ireturn // Event is a closed sum type.
func (e AlarmsChanged) Clone() Event {
	return AlarmsChanged{Alarms: slices.Clone(e.Alarms)}
}

// Clone copies the ringing alarm.
//
//nolint:ireturn // Event is a closed sum type.
func (e Ring) Clone() Event {
	return e
}
