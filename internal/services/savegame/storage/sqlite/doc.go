// Package sqlite provides the preferences store backed by SQLite.
//
// It holds small player choices that outlive a session, such as the
// quick-save slot, and is deliberately separate from the slot records.
package sqlite
