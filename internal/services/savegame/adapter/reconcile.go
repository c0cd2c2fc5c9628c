package adapter

import (
	"github.com/louisbranch/savepoint/internal/services/savegame/host"
	"github.com/louisbranch/savepoint/internal/services/savegame/snapshot"
)

// ReconcileReport counts what a reconciliation pass did, by enemy id.
type ReconcileReport struct {
	Updated     []string
	Deactivated []string
	Reactivated []string
	Spawned     []string
	SpawnFailed []string
}

// Changes reports how many enemies were mutated.
func (r ReconcileReport) Changes() int {
	return len(r.Updated) + len(r.Deactivated) + len(r.Reactivated) + len(r.Spawned)
}

// Reconcile makes the world's enemies match records:
//
//   - a live enemy whose id is not in records is deactivated;
//   - a live enemy with a matching record takes its state and activity;
//   - an active record with no live enemy is spawned from its kind's
//     template, then takes its state.
//
// Inactive records with no live enemy are left alone. A spawn failure is
// logged and counted; it does not stop the pass. Running Reconcile twice
// with the same records changes nothing the second time.
func (c *EnemyChain) Reconcile(world host.World, records []snapshot.Enemy) ReconcileReport {
	var report ReconcileReport
	byID := make(map[string]snapshot.Enemy, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}

	live := make(map[string]struct{})
	for _, e := range world.Enemies() {
		id := e.EntityID()
		live[id] = struct{}{}
		record, ok := byID[id]
		if !ok {
			if e.Active() {
				world.SetActive(e, false)
				report.Deactivated = append(report.Deactivated, id)
			}
			continue
		}
		if c.Apply(record, e).Changed {
			report.Updated = append(report.Updated, id)
		}
		if e.Active() != record.IsActive {
			world.SetActive(e, record.IsActive)
			if record.IsActive {
				report.Reactivated = append(report.Reactivated, id)
			} else {
				report.Deactivated = append(report.Deactivated, id)
			}
		}
	}

	for _, record := range records {
		if _, ok := live[record.ID]; ok || !record.IsActive {
			continue
		}
		spawned, err := world.SpawnEnemy(record.Kind, record.ID, record.Position)
		if err != nil {
			c.logger.Printf("enemy %s: spawn %q: %v", record.ID, record.Kind, err)
			report.SpawnFailed = append(report.SpawnFailed, record.ID)
			continue
		}
		c.Apply(record, spawned)
		if !spawned.Active() {
			world.SetActive(spawned, true)
		}
		report.Spawned = append(report.Spawned, record.ID)
	}
	return report
}
