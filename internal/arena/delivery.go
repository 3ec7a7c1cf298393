package arena

import (
	"context"

	"github.com/NexxxT-x/TamagotchPy/internal/combat"
	"github.com/NexxxT-x/TamagotchPy/internal/constants"
	"github.com/NexxxT-x/TamagotchPy/internal/engine"
	"github.com/NexxxT-x/TamagotchPy/internal/logging"
)

// StartPayload is the combat-start payload; it tells each participant which
// side it controls.
type StartPayload struct {
	combat.Update
	YourSide engine.Side `json:"yourSide"`
}

// deliver is the session sink. It runs with the session lock held, so
// events of one session reach the gateway in production order.
func (r *Registry) deliver(e *entry, ev combat.Event) {
	r.mu.Lock()
	if ev.Type == combat.EventStart {
		e.active = true
	}
	conns := e.conns
	r.mu.Unlock()

	for i, c := range conns {
		if c == "" {
			continue
		}
		var data any = ev.Payload
		if ev.Type == combat.EventStart {
			data = StartPayload{Update: ev.Payload, YourSide: sideAt(i)}
		}
		r.opts.Gateway.Send(c, string(ev.Type), data)
	}

	if ev.Type == combat.EventEnd {
		final := ev.Payload
		r.finish(e, &final)
	}
}

func sideAt(i int) engine.Side {
	if i == 1 {
		return engine.SideB
	}
	return engine.SideA
}

// finish unregisters e once. When the combat had become active and its
// final state is known, the outcome is persisted in the background. A
// session aborted between attach and start is never persisted.
func (r *Registry) finish(e *entry, final *combat.Update) {
	r.mu.Lock()
	if e.finished {
		r.mu.Unlock()
		return
	}
	active := e.active
	r.removeLocked(e)
	r.mu.Unlock()

	if final == nil {
		return
	}
	logging.Info("combat concluded", logging.Fields{
		constants.LogFieldSessionID: e.id,
		constants.LogFieldReason:    string(final.Reason),
		constants.LogFieldVictor:    string(final.Victor),
		constants.LogFieldTurn:      final.TurnNumber,
	})
	if !active || r.opts.Persister == nil {
		return
	}
	r.persistWG.Add(1)
	go func() {
		defer r.persistWG.Done()
		r.persist(e, *final)
	}()
}

func (r *Registry) persist(e *entry, final combat.Update) {
	forfeit := final.Reason == combat.ReasonFlee ||
		final.Reason == combat.ReasonDisconnect ||
		final.Reason == combat.ReasonTimeout

	for _, ps := range final.ParticipantStates {
		won := final.Victor.Valid() && ps.Side == final.Victor
		lost := final.Victor.Valid() && ps.Side != final.Victor
		out := PetOutcome{
			SessionID: e.id,
			PetID:     ps.PetID,
			Health:    ps.CurrentHealth,
			Items:     ps.Items,
			Won:       won,
			Lost:      lost,
			Forfeited: lost && forfeit,
		}
		ctx, cancel := context.WithTimeout(context.Background(), r.opts.PersistTimeout)
		if err := r.opts.Persister.PersistPetOutcome(ctx, out); err != nil {
			logging.Error("failed to persist pet outcome", err, logging.Fields{
				constants.LogFieldSessionID: e.id,
				constants.LogFieldPetID:     ps.PetID,
			})
		}
		cancel()
	}

	sum := CombatSummary{
		SessionID: e.id,
		PetAID:    e.petIDs[0],
		PetBID:    e.petIDs[1],
		Reason:    final.Reason,
		Turns:     final.TurnNumber,
	}
	if final.Victor.Valid() {
		sum.VictorPetID = e.petIDs[final.Victor.Index()]
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.opts.PersistTimeout)
	defer cancel()
	if err := r.opts.Persister.RecordCombat(ctx, sum); err != nil {
		logging.Error("failed to record combat", err, logging.Fields{constants.LogFieldSessionID: e.id})
	}
}
