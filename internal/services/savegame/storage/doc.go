// Package storage declares persistence contracts for save slots and the small
// preference store that lives beside them.
//
// Slots are the only durable state of the save subsystem. Each occupied slot
// holds exactly one record, replaced wholesale on every write.
package storage
