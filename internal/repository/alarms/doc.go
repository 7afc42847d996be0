// Package alarms implements persistence for the alarm store.
//
// FileRepository keeps the pending alarms in a JSON document; SQLiteRepository
// keeps them in a SQLite table. Both satisfy Repository, the interface the
// alarm store service depends on. Open picks one from the settings.
package alarms
