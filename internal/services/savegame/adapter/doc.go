// Package adapter bridges live entities and snapshot records.
//
// Each entity category (player, enemy) resolves through a fixed priority
// chain: the first adapter whose required capabilities the entity has wins;
// fields that adapter does not own go through the entity's declared field
// accessor; whatever is left is logged and skipped. An entity with neither
// an adapter nor a field accessor is an ADAPTER_MISSING error.
//
// Enemies additionally reconcile by id: live enemies absent from the record
// are deactivated, missing active ones are spawned from their kind's
// template, and matches are updated in place.
package adapter
