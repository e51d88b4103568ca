package main

import "sort"

// ApplyDamage hits victim on behalf of attackerID and returns true if the
// hit killed it
func ApplyDamage(victim *Player, attackerID string, damage float64) bool {
	if !victim.Life.Alive() {
		return false
	}
	victim.LastKiller = attackerID
	victim.TakeDamage(damage)
	return !victim.Life.Alive()
}

// checkHits resolves projectile-player overlaps. A projectile hits at most
// one player and never its owner.
func (w *World) checkHits() {
	w.indexPlayers()
	var near []string
	for projID, proj := range w.projectiles {
		if !proj.Alive {
			continue
		}
		near = w.grid.QueryBuf(proj.Location, proj.Radius+BodyRadius, near[:0])
		for _, id := range near {
			p := w.players[id]
			if id == proj.OwnerID || !p.Life.Alive() {
				continue
			}
			if !CheckCapsuleSphere(p.Body.Location(), BodyRadius, BodyHalfHeight, proj.Location, proj.Radius) {
				continue
			}
			ApplyDamage(p, proj.OwnerID, proj.Damage)
			proj.Alive = false
			delete(w.projectiles, projID)
			break
		}
	}
}

// checkPickups stages a pickup's class on the first live player touching it
func (w *World) checkPickups() {
	var near []string
	for pkID, pk := range w.pickups {
		near = w.grid.QueryBuf(pk.Location, PickupRadius+BodyRadius, near[:0])
		for _, id := range near {
			p := w.players[id]
			if !p.Life.Alive() {
				continue
			}
			if !CheckCapsuleSphere(p.Body.Location(), BodyRadius, BodyHalfHeight, pk.Location, PickupRadius) {
				continue
			}
			p.ChangePowerBall(pk.Class)
			pk.Alive = false
			delete(w.pickups, pkID)
			break
		}
	}
}

// indexPlayers rebuilds the broad-phase grid, in ID order so overlapping
// players are hit deterministically
func (w *World) indexPlayers() {
	w.grid.Clear()
	for _, id := range w.sortedPlayerIDs() {
		w.grid.Insert(w.players[id].Body.Location(), BodyRadius, id)
	}
}

func (w *World) sortedPlayerIDs() []string {
	ids := make([]string, 0, len(w.players))
	for id := range w.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
