// Package slotfs stores save slots as JSON files in an application-private
// directory, one file per occupied slot named after the slot key.
package slotfs
