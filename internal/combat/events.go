package combat

import "github.com/NexxxT-x/TamagotchPy/internal/engine"

// EventType names an outbound message. The values double as wire event names.
type EventType string

const (
	EventStart  EventType = "combat-start"
	EventUpdate EventType = "combat-update"
	EventEnd    EventType = "combat-end"
)

// EndReason explains why a session concluded.
type EndReason string

const (
	ReasonDefeat     EndReason = "defeat"
	ReasonFlee       EndReason = "flee"
	ReasonDisconnect EndReason = "disconnect"
	ReasonTimeout    EndReason = "timeout"
	ReasonCancelled  EndReason = "cancelled"
	ReasonFault      EndReason = "fault"
	ReasonShutdown   EndReason = "shutdown"
)

// ParticipantState is the public view of one combatant.
type ParticipantState struct {
	Side          engine.Side           `json:"side"`
	PetID         string                `json:"petId"`
	Name          string                `json:"name"`
	CurrentHealth int                   `json:"currentHealth"`
	MaxHealth     int                   `json:"maxHealth"`
	StatusEffects []engine.StatusEffect `json:"statusEffects"`
	Items         map[string]int        `json:"items,omitempty"`
}

// Update is the payload of every outbound combat event.
type Update struct {
	SessionID         string             `json:"sessionId"`
	TurnNumber        int                `json:"turnNumber"`
	AttackerSide      engine.Side        `json:"attackerSide,omitempty"`
	Action            engine.ActionKind  `json:"action,omitempty"`
	EffectDescription string             `json:"effectDescription"`
	ParticipantStates []ParticipantState `json:"participantStates"`
	TurnOwner         engine.Side        `json:"turnOwner,omitempty"`
	Victor            engine.Side        `json:"victor,omitempty"`
	Reason            EndReason          `json:"reason,omitempty"`
	Concluded         bool               `json:"concluded"`
}

// Event is what a session hands to its sink.
type Event struct {
	Type    EventType
	Payload Update
}

// Sink receives events in production order. It is called with the session
// lock held and must not call back into the session.
type Sink func(Event)

func participantState(c engine.Combatant) ParticipantState {
	cc := c.Clone()
	return ParticipantState{
		Side:          cc.Side,
		PetID:         cc.PetID,
		Name:          cc.Name,
		CurrentHealth: cc.Health,
		MaxHealth:     cc.Base.MaxHealth,
		StatusEffects: cc.Effects,
		Items:         cc.Items,
	}
}
