package combat

import (
	"errors"
	"sync"
	"time"

	"github.com/NexxxT-x/TamagotchPy/internal/engine"
)

var (
	ErrNotActive     = errors.New("combat has not started")
	ErrConcluded     = errors.New("combat is over")
	ErrOutOfTurn     = errors.New("not your turn")
	ErrInvalidAction = errors.New("invalid action")
	ErrInconsistent  = errors.New("combat state is inconsistent")
)

// State is the lifecycle phase of a session.
type State string

const (
	StatePending   State = "pending"
	StateActive    State = "active"
	StateConcluded State = "concluded"
)

// Options configure a session. A zero TurnTimeout disables the inactivity timer.
type Options struct {
	TurnTimeout time.Duration
	Rules       engine.Rules
	Items       map[string]engine.Item
	Rand        engine.RandomSource
	Sink        Sink
}

// Session is the state machine for one match between two combatants.
// Every mutation goes through the session mutex, so turns of the same
// session never resolve concurrently.
type Session struct {
	mu sync.Mutex

	id          string
	sides       [2]engine.Combatant
	state       State
	turnOwner   engine.Side
	turnNumber  int
	victor      engine.Side
	reason      EndReason
	rules       engine.Rules
	items       map[string]engine.Item
	rnd         engine.RandomSource
	sink        Sink
	turnTimeout time.Duration
	timer       *time.Timer
}

// New creates a pending session. a is seated on side A and b on side B
// regardless of the Side fields they carry.
func New(id string, a, b engine.Combatant, opts Options) *Session {
	a = a.Clone()
	b = b.Clone()
	a.Side = engine.SideA
	b.Side = engine.SideB
	rules := opts.Rules
	if rules == (engine.Rules{}) {
		rules = engine.DefaultRules()
	}
	return &Session{
		id:          id,
		sides:       [2]engine.Combatant{a, b},
		state:       StatePending,
		rules:       rules,
		items:       opts.Items,
		rnd:         opts.Rand,
		sink:        opts.Sink,
		turnTimeout: opts.TurnTimeout,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) TurnOwner() engine.Side {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnOwner
}

func (s *Session) TurnNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnNumber
}

// Combatant returns a copy of the combatant seated on side.
func (s *Session) Combatant(side engine.Side) engine.Combatant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sides[side.Index()].Clone()
}

// Snapshot returns the current public state of the session.
func (s *Session) Snapshot() Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payloadLocked()
}

// Start moves a pending session to active. The faster pet acts first;
// side A wins speed ties.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateActive:
		return nil
	case StateConcluded:
		return ErrConcluded
	}
	s.state = StateActive
	s.turnOwner = engine.SideA
	if s.sides[1].Base.Speed > s.sides[0].Base.Speed {
		s.turnOwner = engine.SideB
	}
	p := s.payloadLocked()
	p.EffectDescription = "The combat begins. Side " + string(s.turnOwner) + " acts first."
	s.emitLocked(Event{Type: EventStart, Payload: p})
	s.armTimerLocked()
	return nil
}

// Submit resolves one turn for side. Rejected submissions leave the
// session untouched.
func (s *Session) Submit(side engine.Side, action engine.Action) (engine.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StatePending:
		return engine.Outcome{}, ErrNotActive
	case StateConcluded:
		return engine.Outcome{}, ErrConcluded
	}
	if side != s.turnOwner {
		return engine.Outcome{}, ErrOutOfTurn
	}
	act, err := s.entitleLocked(side, action)
	if err != nil {
		return engine.Outcome{}, err
	}

	attacker := s.sides[side.Index()]
	defender := s.sides[side.Other().Index()]
	out := engine.Resolve(attacker, defender, act, s.rnd, s.rules)

	s.sides[side.Index()] = out.Attacker
	s.sides[side.Other().Index()] = out.Defender
	s.turnNumber++
	s.turnOwner = side.Other()

	if err := s.checkInvariantsLocked(); err != nil {
		s.concludeLocked(engine.SideNone, ReasonFault, "The combat was stopped after an internal error.")
		return engine.Outcome{}, err
	}

	p := s.payloadLocked()
	p.AttackerSide = side
	p.Action = out.Action
	p.EffectDescription = out.Description
	p.Victor = out.Victor
	s.emitLocked(Event{Type: EventUpdate, Payload: p})

	if out.Concluded() {
		reason := ReasonDefeat
		if out.Forfeit {
			reason = ReasonFlee
		}
		s.concludeLocked(out.Victor, reason, out.Description)
		return out, nil
	}
	s.armTimerLocked()
	return out, nil
}

// Forfeit concludes an active session with the other side as victor.
func (s *Session) Forfeit(side engine.Side, reason EndReason) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !side.Valid() {
		return ErrInvalidAction
	}
	switch s.state {
	case StatePending:
		return ErrNotActive
	case StateConcluded:
		return ErrConcluded
	}
	winner := side.Other()
	s.concludeLocked(winner, reason, describeForfeit(s.sides[side.Index()], reason))
	return nil
}

// Abort force-concludes the session without a victor. It is a no-op once
// the session has concluded.
func (s *Session) Abort(reason EndReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateConcluded {
		return
	}
	msg := "The combat was cancelled."
	if reason == ReasonFault {
		msg = "The combat was stopped after an internal error."
	} else if reason == ReasonShutdown {
		msg = "The server is shutting down."
	}
	s.concludeLocked(engine.SideNone, reason, msg)
}

// Victor and Reason are meaningful once the session has concluded.
func (s *Session) Victor() engine.Side {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.victor
}

func (s *Session) Reason() EndReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

func (s *Session) entitleLocked(side engine.Side, action engine.Action) (engine.Action, error) {
	if !action.Kind.Valid() {
		return action, ErrInvalidAction
	}
	action.Item = nil
	if action.Kind != engine.ActionUseItem {
		action.ItemID = ""
		return action, nil
	}
	it, ok := s.items[action.ItemID]
	if !ok || action.ItemID == "" {
		return action, ErrInvalidAction
	}
	if !s.sides[side.Index()].HasItem(action.ItemID) {
		return action, ErrInvalidAction
	}
	action.Item = &it
	return action, nil
}

func (s *Session) checkInvariantsLocked() error {
	if !s.turnOwner.Valid() {
		return ErrInconsistent
	}
	for _, c := range s.sides {
		if c.Health < 0 || c.Health > c.Base.MaxHealth {
			return ErrInconsistent
		}
	}
	return nil
}

// concludeLocked is the single exit from the active state. It releases the
// turn timer before emitting the terminal event.
func (s *Session) concludeLocked(victor engine.Side, reason EndReason, description string) {
	s.stopTimerLocked()
	s.state = StateConcluded
	s.victor = victor
	s.reason = reason
	p := s.payloadLocked()
	p.EffectDescription = description
	s.emitLocked(Event{Type: EventEnd, Payload: p})
}

func (s *Session) payloadLocked() Update {
	p := Update{
		SessionID:  s.id,
		TurnNumber: s.turnNumber,
		ParticipantStates: []ParticipantState{
			participantState(s.sides[0]),
			participantState(s.sides[1]),
		},
	}
	if s.state == StateActive {
		p.TurnOwner = s.turnOwner
	}
	if s.state == StateConcluded {
		p.Victor = s.victor
		p.Reason = s.reason
		p.Concluded = true
	}
	return p
}

func (s *Session) emitLocked(ev Event) {
	if s.sink != nil {
		s.sink(ev)
	}
}

func describeForfeit(loser engine.Combatant, reason EndReason) string {
	name := loser.Name
	if name == "" {
		name = "Side " + string(loser.Side)
	}
	switch reason {
	case ReasonDisconnect:
		return name + "'s trainer disconnected; " + name + " forfeits."
	case ReasonTimeout:
		return name + " did not act in time and forfeits."
	}
	return name + " forfeits."
}
