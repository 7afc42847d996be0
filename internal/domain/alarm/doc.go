// Package alarm contains the core domain types shared by the alarm store
// daemon and the touchscreen client.
//
// It defines Alarm (a scheduled wake event), the Event variants delivered to
// subscribers (AlarmsChanged and Ring) and Actor (who changed the store),
// with Clone helpers to avoid leaking internal references across goroutines.
package alarm
