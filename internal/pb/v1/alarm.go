package v1

// SystemActor identifies the host and user issuing a request.
type SystemActor struct {
	Hostname string `json:"hostname,omitempty"`
	Username string `json:"username,omitempty"`
}

// GetHostname returns the hostname or "" for a nil actor.
func (x *SystemActor) GetHostname() string {
	if x == nil {
		return ""
	}

	return x.Hostname
}

// GetUsername returns the username or "" for a nil actor.
func (x *SystemActor) GetUsername() string {
	if x == nil {
		return ""
	}

	return x.Username
}

// Alarm is a scheduled alarm.
type Alarm struct {
	Id           string `json:"id"` //nolint:revive,stylecheck // Wire field naming.
	UnixTime     int64  `json:"unix_time"`
	RingDuration uint32 `json:"ring_duration"`
}

// GetId returns the alarm ID.
//
//nolint:revive,stylecheck // Wire field naming.
func (x *Alarm) GetId() string {
	if x == nil {
		return ""
	}

	return x.Id
}

// GetUnixTime returns the trigger time in Unix seconds.
func (x *Alarm) GetUnixTime() int64 {
	if x == nil {
		return 0
	}

	return x.UnixTime
}

// GetRingDuration returns the ring duration in seconds.
func (x *Alarm) GetRingDuration() uint32 {
	if x == nil {
		return 0
	}

	return x.RingDuration
}

// AddAlarmRequest schedules a new alarm.
type AddAlarmRequest struct {
	Actor *SystemActor `json:"actor,omitempty"`
	Alarm *Alarm       `json:"alarm,omitempty"`
}

// GetActor returns the requesting actor.
func (x *AddAlarmRequest) GetActor() *SystemActor {
	if x == nil {
		return nil
	}

	return x.Actor
}

// GetAlarm returns the alarm to add.
func (x *AddAlarmRequest) GetAlarm() *Alarm {
	if x == nil {
		return nil
	}

	return x.Alarm
}

// RemoveAlarmRequest deletes an alarm by ID.
type RemoveAlarmRequest struct {
	Actor *SystemActor `json:"actor,omitempty"`
	Id    string       `json:"id"` //nolint:revive,stylecheck // Wire field naming.
}

// GetActor returns the requesting actor.
func (x *RemoveAlarmRequest) GetActor() *SystemActor {
	if x == nil {
		return nil
	}

	return x.Actor
}

// GetId returns the ID of the alarm to remove.
//
//nolint:revive,stylecheck // Wire field naming.
func (x *RemoveAlarmRequest) GetId() string {
	if x == nil {
		return ""
	}

	return x.Id
}

// MutationResponse acknowledges an Add or Remove.
type MutationResponse struct{}

// SubscribeRequest opens an alarm event stream.
type SubscribeRequest struct {
	Actor *SystemActor `json:"actor,omitempty"`
}

// GetActor returns the subscribing actor.
func (x *SubscribeRequest) GetActor() *SystemActor {
	if x == nil {
		return nil
	}

	return x.Actor
}

// EventType discriminates AlarmEvent payloads.
type EventType string

// Alarm event types.
const (
	EventTypeAlarmsChanged EventType = "alarms_changed"
	EventTypeRing          EventType = "ring"
)

// AlarmEvent is one message of the Subscribe stream. AlarmsChanged events
// carry Alarms, Ring events carry Alarm.
type AlarmEvent struct {
	Type   EventType `json:"type"`
	Alarms []*Alarm  `json:"alarms,omitempty"`
	Alarm  *Alarm    `json:"alarm,omitempty"`
}

// GetType returns the event type.
func (x *AlarmEvent) GetType() EventType {
	if x == nil {
		return ""
	}

	return x.Type
}

// GetAlarms returns the complete alarm list of an AlarmsChanged event.
func (x *AlarmEvent) GetAlarms() []*Alarm {
	if x == nil {
		return nil
	}

	return x.Alarms
}

// GetAlarm returns the ringing alarm of a Ring event.
func (x *AlarmEvent) GetAlarm() *Alarm {
	if x == nil {
		return nil
	}

	return x.Alarm
}
