package scheduling

// Kind is the stable identity of an event's behavior. It doubles as the key
// of the per-creature tracked-event registry, so at most one event of a given
// kind can be tracked on an entity at a time.
type Kind int

const (
	KindGeneric Kind = iota
	KindMovement
	KindAutoWalk
	KindTurn
	KindSpeech
	KindLogIn
	KindLogOut
	KindAutoAttack
	KindStrike
	KindCreateItem
	KindPlaceMonster
	KindMonsterThink
	KindHeartbeat
	KindHeartbeatResponse
	KindCancelPending
	KindWorldClock
	KindIdleSweep
	KindNotification
	KindConditionExhaustion
	KindConditionInCombat
	KindConditionDecay
	KindConditionDamageOverTime
)

var kindNames = map[Kind]string{
	KindGeneric:                 "generic",
	KindMovement:                "movement",
	KindAutoWalk:                "auto_walk",
	KindTurn:                    "turn",
	KindSpeech:                  "speech",
	KindLogIn:                   "log_in",
	KindLogOut:                  "log_out",
	KindAutoAttack:              "auto_attack",
	KindStrike:                  "strike",
	KindCreateItem:              "create_item",
	KindPlaceMonster:            "place_monster",
	KindMonsterThink:            "monster_think",
	KindHeartbeat:               "heartbeat",
	KindHeartbeatResponse:       "heartbeat_response",
	KindCancelPending:           "cancel_pending",
	KindWorldClock:              "world_clock",
	KindIdleSweep:               "idle_sweep",
	KindNotification:            "notification",
	KindConditionExhaustion:     "condition_exhaustion",
	KindConditionInCombat:       "condition_in_combat",
	KindConditionDecay:          "condition_decay",
	KindConditionDamageOverTime: "condition_damage_over_time",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Capability is the closed set of execution-context variants. The
// orchestrator switches exhaustively over this tag to decide which context
// an event receives, instead of probing concrete types.
type Capability int

const (
	CapGeneric Capability = iota
	CapOperation
	CapElevated
	CapCondition
	CapNotification
)

// ExhaustionType is a cooldown category. An operation declares how much
// exhaustion it costs per category; dispatch of a later operation declaring
// the same category is delayed until the cooldown expires.
type ExhaustionType int

const (
	ExhaustMove ExhaustionType = iota
	ExhaustCombat
	ExhaustAction
	ExhaustSpeech
)

var exhaustNames = map[ExhaustionType]string{
	ExhaustMove:   "move",
	ExhaustCombat: "combat",
	ExhaustAction: "action",
	ExhaustSpeech: "speech",
}

func (t ExhaustionType) String() string {
	if name, ok := exhaustNames[t]; ok {
		return name
	}
	return "unknown"
}
