package constants

// Centralized constants for env keys, routes, wire events and log fields.
const (
	// Environment variable keys
	EnvConfigPath   = "ARENA_CONFIG"
	EnvDBPath       = "ARENA_DB"
	EnvAddr         = "ARENA_ADDR"
	EnvLogLevel     = "ARENA_LOG_LEVEL"
	EnvOTelEndpoint = "ARENA_OTEL_ENDPOINT"

	DefaultConfigPath = "./arena_config.json"
	DefaultDBPath     = "./data/arena.db"
	DefaultAddr       = ":5000"

	ServiceName = "petarena"
)

// Routes used by the backend router
const (
	RouteHealth       = "/healthz"
	RouteWebSocket    = "/ws"
	RouteAPIPrefix    = "/api"
	RouteVersion      = "/version"
	RouteCombatStats  = "/combats/stats"
	RouteCombatByID   = "/combats/:sessionID"
	ParamSessionID    = "sessionID"
	RoutePetByID      = "/pets/:petID"
	RoutePetCombats   = "/pets/:petID/combats"
	ParamPetID        = "petID"
	QueryLimit        = "limit"
	DefaultListLimit  = 20
	MaxListLimit      = 100
)

// WebSocket event names. Outbound combat event names live in the combat
// package next to their payload type.
const (
	EventJoinCombat   = "join-combat"
	EventCombatAction = "combat-action"
	EventCombatJoined = "combat-joined"
	EventCombatError  = "combat-error"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
	JSONKeyStatus  = "status"
)

// Common error messages used across API handlers and the gateway
const (
	ErrInvalidRequest       = "Invalid request"
	ErrPetNotFound          = "Pet not found"
	ErrCombatNotFound       = "Combat not found"
	ErrFailedFetchPet       = "Failed to fetch pet"
	ErrFailedFetchCombats   = "Failed to fetch combats"
	ErrUnknownEvent         = "Unknown event"
	ErrInternal             = "Internal error"
	ErrMalformedJoinPayload = "join-combat requires petId and opponentId"
	ErrMalformedAction      = "combat-action requires an action"
)

// Logging field names
const (
	LogFieldSessionID = "session_id"
	LogFieldConnID    = "conn_id"
	LogFieldPetID     = "pet_id"
	LogFieldOpponent  = "opponent_id"
	LogFieldSide      = "side"
	LogFieldTurn      = "turn"
	LogFieldReason    = "reason"
	LogFieldVictor    = "victor"
	LogFieldSeed      = "seed"
	LogFieldEvent     = "event"
	LogFieldAddr      = "addr"
	LogFieldRows      = "rows"
	LogFieldPath      = "path"
)
