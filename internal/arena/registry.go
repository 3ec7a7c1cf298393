package arena

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/NexxxT-x/TamagotchPy/internal/combat"
	"github.com/NexxxT-x/TamagotchPy/internal/constants"
	"github.com/NexxxT-x/TamagotchPy/internal/dedupe"
	"github.com/NexxxT-x/TamagotchPy/internal/engine"
	"github.com/NexxxT-x/TamagotchPy/internal/keys"
	"github.com/NexxxT-x/TamagotchPy/internal/logging"
	"github.com/NexxxT-x/TamagotchPy/internal/random"
)

const tracerName = "github.com/NexxxT-x/TamagotchPy/internal/arena"

// Options wire the registry to its collaborators. Loader and Gateway are
// required; Persister may be nil.
type Options struct {
	Loader      PetLoader
	Persister   Persister
	Gateway     Gateway
	TurnTimeout time.Duration
	Rules       engine.Rules
	Items       map[string]engine.Item
	// NewRand returns the random source for a new session and the seed it
	// was built from. Defaults to random.NewSource.
	NewRand func() (engine.RandomSource, int64)
	// NewID returns session ids. Defaults to uuid.NewString.
	NewID func() string
	// PersistTimeout bounds each background persistence call.
	PersistTimeout time.Duration
	Flight         *singleflight.Group
	Tracer         trace.Tracer
}

// JoinResult tells the requester where it was seated.
type JoinResult struct {
	SessionID string      `json:"sessionId"`
	Side      engine.Side `json:"side"`
	Started   bool        `json:"started"`
}

// Stats is a point-in-time view of the registry.
type Stats struct {
	Sessions    int `json:"sessions"`
	Pending     int `json:"pending"`
	Active      int `json:"active"`
	Connections int `json:"connections"`
}

type entry struct {
	id      string
	session *combat.Session
	pairKey string
	petIDs  [2]string
	// conns holds the connection seated on each side; "" when unbound.
	conns [2]string
	// started is set once both seats are taken; active once the session
	// has emitted combat-start. Only active combats are persisted.
	started  bool
	active   bool
	finished bool
}

func (e *entry) sideOf(connID string) engine.Side {
	switch connID {
	case e.conns[0]:
		return engine.SideA
	case e.conns[1]:
		return engine.SideB
	}
	return engine.SideNone
}

// Registry owns every live combat session and the connection bindings that
// route traffic to them. All maps are guarded by mu. Sessions call back into
// the registry through their sink while holding their own lock, so the
// registry never calls a session while holding mu.
type Registry struct {
	opts   Options
	tracer trace.Tracer
	flight *singleflight.Group

	mu       sync.Mutex
	byConn   map[string]string
	joining  map[string]bool
	sessions map[string]*entry
	waiting  map[string]string
	closed   bool

	persistWG sync.WaitGroup
}

func NewRegistry(opts Options) *Registry {
	if opts.NewRand == nil {
		opts.NewRand = func() (engine.RandomSource, int64) { return random.NewSource() }
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = 10 * time.Second
	}
	r := &Registry{
		opts:     opts,
		tracer:   opts.Tracer,
		flight:   opts.Flight,
		byConn:   make(map[string]string),
		joining:  make(map[string]bool),
		sessions: make(map[string]*entry),
		waiting:  make(map[string]string),
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}
	if r.flight == nil {
		r.flight = &dedupe.PetPairGroup
	}
	return r
}

// Join seats connID's pet against opponentID. The first trainer of a pair
// creates a pending session; the second one attaches to it and starts it.
func (r *Registry) Join(ctx context.Context, connID, petID, opponentID string) (JoinResult, error) {
	ctx, span := r.tracer.Start(ctx, "arena.Join", trace.WithAttributes(
		attribute.String(constants.LogFieldConnID, connID),
		attribute.String(constants.LogFieldPetID, petID),
		attribute.String(constants.LogFieldOpponent, opponentID),
	))
	defer span.End()

	res, err := r.join(ctx, connID, petID, opponentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return JoinResult{}, err
	}
	span.SetAttributes(attribute.String(constants.LogFieldSessionID, res.SessionID))
	return res, nil
}

func (r *Registry) join(ctx context.Context, connID, petID, opponentID string) (JoinResult, error) {
	if connID == "" || petID == "" || opponentID == "" {
		return JoinResult{}, fmt.Errorf("%w: petId and opponentId are required", ErrInvalidJoin)
	}
	if petID == opponentID {
		return JoinResult{}, fmt.Errorf("%w: a pet cannot fight itself", ErrInvalidJoin)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return JoinResult{}, ErrShuttingDown
	}
	if _, bound := r.byConn[connID]; bound {
		r.mu.Unlock()
		return JoinResult{}, ErrAlreadyInSession
	}
	if _, busy := r.joining[connID]; busy {
		r.mu.Unlock()
		return JoinResult{}, ErrAlreadyInSession
	}
	r.joining[connID] = false
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.joining, connID)
		r.mu.Unlock()
	}()

	pairKey := keys.PairKey(petID, opponentID)
	pets, err := r.loadPair(ctx, pairKey, petID, opponentID)
	if err != nil {
		return JoinResult{}, err
	}
	side := engine.SideA
	if first, _ := keys.OrderedPair(petID, opponentID); first != petID {
		side = engine.SideB
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return JoinResult{}, ErrShuttingDown
	}
	if r.joining[connID] {
		// The connection went away while its pets were loading.
		r.mu.Unlock()
		return JoinResult{}, ErrNoActiveSession
	}

	if sid, ok := r.waiting[pairKey]; ok {
		e := r.sessions[sid]
		if e != nil && !e.finished {
			if e.conns[side.Index()] != "" {
				r.mu.Unlock()
				return JoinResult{}, fmt.Errorf("%w: pet %s already has a trainer in this combat", ErrInvalidJoin, petID)
			}
			e.conns[side.Index()] = connID
			e.started = true
			r.byConn[connID] = sid
			delete(r.waiting, pairKey)
			res := JoinResult{SessionID: sid, Side: side, Started: true}
			r.opts.Gateway.Send(connID, constants.EventCombatJoined, res)
			r.mu.Unlock()

			if err := e.session.Start(); err != nil {
				// The opponent left between attach and start; the combat-end
				// has already been delivered.
				return JoinResult{}, ErrNoActiveSession
			}
			logging.Info("combat started", logging.Fields{
				constants.LogFieldSessionID: sid,
				"pet_a":                     e.petIDs[0],
				"pet_b":                     e.petIDs[1],
			})
			return res, nil
		}
	}

	e := r.newEntryLocked(pairKey, pets)
	e.conns[side.Index()] = connID
	r.sessions[e.id] = e
	r.byConn[connID] = e.id
	r.waiting[pairKey] = e.id
	res := JoinResult{SessionID: e.id, Side: side, Started: false}
	r.opts.Gateway.Send(connID, constants.EventCombatJoined, res)
	r.mu.Unlock()

	logging.Info("combat created", logging.Fields{
		constants.LogFieldSessionID: e.id,
		constants.LogFieldConnID:    connID,
		constants.LogFieldPetID:     petID,
		constants.LogFieldOpponent:  opponentID,
	})
	return res, nil
}

// loadPair loads both pets of a join, sharing the work with any concurrent
// join for the same unordered pair. The result is ordered side A first.
func (r *Registry) loadPair(ctx context.Context, pairKey, petID, opponentID string) ([2]engine.Combatant, error) {
	first, second := keys.OrderedPair(petID, opponentID)
	v, err, _ := r.flight.Do(pairKey, func() (interface{}, error) {
		a, err := r.opts.Loader.LoadPet(ctx, first)
		if err != nil {
			return nil, err
		}
		b, err := r.opts.Loader.LoadPet(ctx, second)
		if err != nil {
			return nil, err
		}
		return [2]engine.Combatant{a, b}, nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return [2]engine.Combatant{}, err
		}
		return [2]engine.Combatant{}, fmt.Errorf("load pets: %w", err)
	}
	pair := v.([2]engine.Combatant)
	return [2]engine.Combatant{pair[0].Clone(), pair[1].Clone()}, nil
}

func (r *Registry) newEntryLocked(pairKey string, pets [2]engine.Combatant) *entry {
	rnd, seed := r.opts.NewRand()
	e := &entry{
		id:      r.opts.NewID(),
		pairKey: pairKey,
		petIDs:  [2]string{pets[0].PetID, pets[1].PetID},
	}
	e.session = combat.New(e.id, pets[0], pets[1], combat.Options{
		TurnTimeout: r.opts.TurnTimeout,
		Rules:       r.opts.Rules,
		Items:       r.opts.Items,
		Rand:        rnd,
		Sink:        func(ev combat.Event) { r.deliver(e, ev) },
	})
	logging.Debug("combat seed", logging.Fields{constants.LogFieldSessionID: e.id, constants.LogFieldSeed: seed})
	return e
}

// SubmitAction routes an action to the caller's session. A panic inside
// the session aborts that session only.
func (r *Registry) SubmitAction(ctx context.Context, connID string, action engine.Action) (engine.Outcome, error) {
	_, span := r.tracer.Start(ctx, "arena.SubmitAction", trace.WithAttributes(
		attribute.String(constants.LogFieldConnID, connID),
		attribute.String("action", string(action.Kind)),
	))
	defer span.End()

	out, err := r.submit(connID, action)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return engine.Outcome{}, err
	}
	span.SetAttributes(attribute.Int("damage", out.Damage))
	return out, nil
}

func (r *Registry) submit(connID string, action engine.Action) (out engine.Outcome, err error) {
	r.mu.Lock()
	e := r.sessions[r.byConn[connID]]
	var side engine.Side
	started := false
	if e != nil {
		side = e.sideOf(connID)
		started = e.started && !e.finished
	}
	r.mu.Unlock()

	if e == nil || !started || !side.Valid() {
		return engine.Outcome{}, ErrNoActiveSession
	}

	defer func() {
		if p := recover(); p != nil {
			logging.Error("combat session panicked", fmt.Errorf("%v", p), logging.Fields{
				constants.LogFieldSessionID: e.id,
				constants.LogFieldConnID:    connID,
			})
			e.session.Abort(combat.ReasonFault)
			r.finish(e, nil)
			out, err = engine.Outcome{}, ErrSessionFault
		}
	}()

	out, err = e.session.Submit(side, action)
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, combat.ErrNotActive), errors.Is(err, combat.ErrConcluded):
		return engine.Outcome{}, ErrNoActiveSession
	case errors.Is(err, combat.ErrInconsistent):
		logging.Error("combat state inconsistent", err, logging.Fields{constants.LogFieldSessionID: e.id})
		return engine.Outcome{}, ErrSessionFault
	}
	return engine.Outcome{}, err
}

// Disconnect releases connID. An active combat is forfeited by the side
// that left; a pending one is cancelled. Unknown connections are ignored.
func (r *Registry) Disconnect(ctx context.Context, connID string) {
	_, span := r.tracer.Start(ctx, "arena.Disconnect", trace.WithAttributes(
		attribute.String(constants.LogFieldConnID, connID),
	))
	defer span.End()

	r.mu.Lock()
	if _, ok := r.joining[connID]; ok {
		r.joining[connID] = true
	}
	sid, ok := r.byConn[connID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.byConn, connID)
	e := r.sessions[sid]
	if e == nil {
		r.mu.Unlock()
		return
	}
	side := e.sideOf(connID)
	if side.Valid() {
		e.conns[side.Index()] = ""
	}
	started := e.started
	if !started {
		r.removeLocked(e)
	}
	r.mu.Unlock()

	span.SetAttributes(attribute.String(constants.LogFieldSessionID, sid))
	logging.Info("connection left combat", logging.Fields{
		constants.LogFieldSessionID: sid,
		constants.LogFieldConnID:    connID,
		constants.LogFieldSide:      string(side),
	})

	if !started || !side.Valid() {
		e.session.Abort(combat.ReasonCancelled)
		return
	}
	if err := e.session.Forfeit(side, combat.ReasonDisconnect); errors.Is(err, combat.ErrNotActive) {
		e.session.Abort(combat.ReasonCancelled)
	}
}

// OnConcluded removes a session and its bindings. It is safe to call more
// than once and for unknown ids; a session still running is cancelled.
func (r *Registry) OnConcluded(sessionID string) {
	r.mu.Lock()
	e := r.sessions[sessionID]
	r.mu.Unlock()
	if e == nil {
		return
	}
	e.session.Abort(combat.ReasonCancelled)
	r.finish(e, nil)
}

func (r *Registry) sessionOf(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sid, ok := r.byConn[connID]
	return sid, ok
}

// Combat returns the current state of a live session.
func (r *Registry) Combat(sessionID string) (combat.Update, bool) {
	r.mu.Lock()
	e, ok := r.sessions[sessionID]
	r.mu.Unlock()
	if !ok {
		return combat.Update{}, false
	}
	return e.session.Snapshot(), true
}

func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := Stats{Sessions: len(r.sessions), Connections: len(r.byConn)}
	for _, e := range r.sessions {
		if e.started {
			st.Active++
		} else {
			st.Pending++
		}
	}
	return st
}

// Close aborts every session and waits for background persistence until
// ctx is done.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	entries := make([]*entry, 0, len(r.sessions))
	for _, e := range r.sessions {
		entries = append(entries, e)
	}
	r.mu.Unlock()

	for _, e := range entries {
		e.session.Abort(combat.ReasonShutdown)
		r.finish(e, nil)
	}

	done := make(chan struct{})
	go func() {
		r.persistWG.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// removeLocked drops every map entry that still points at e.
func (r *Registry) removeLocked(e *entry) {
	e.finished = true
	if r.sessions[e.id] == e {
		delete(r.sessions, e.id)
	}
	for _, c := range e.conns {
		if c != "" && r.byConn[c] == e.id {
			delete(r.byConn, c)
		}
	}
	if r.waiting[e.pairKey] == e.id {
		delete(r.waiting, e.pairKey)
	}
}
