// Package snapshot defines the persisted save record and its codec.
//
// A Snapshot is built fresh on every save and never patched in place. The
// on-disk form is a versioned JSON Document whose field names are stable
// across releases; older minimal records still decode.
package snapshot
