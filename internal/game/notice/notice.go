// Package notice defines the outcome events the engine emits to its UI, loot,
// and spawn collaborators. Events carry enough structured data to be rendered
// without further lookups; the engine itself performs no cross-subsystem
// mutation, it only posts notices.
package notice

// Type identifies what kind of outcome an Event records.
type Type int

const (
	TypeUnknown Type = iota // zero value; intentionally invalid
	TypeAttackHit
	TypeAttackMiss
	TypeDamage
	TypeStatusApplied
	TypeStatusExpired
	TypeDeath
	TypeAbilityUsed
	TypePackAlerted
	TypeLootRequest
	TypeSummonRequest
	TypeTerrainRequest
	TypeTheftRequest
	TypeEquipmentDamageRequest
	TypeDebug
)

// String returns the snake_case event name used in logs.
func (t Type) String() string {
	switch t {
	case TypeAttackHit:
		return "attack_hit"
	case TypeAttackMiss:
		return "attack_miss"
	case TypeDamage:
		return "damage"
	case TypeStatusApplied:
		return "status_applied"
	case TypeStatusExpired:
		return "status_expired"
	case TypeDeath:
		return "death"
	case TypeAbilityUsed:
		return "ability_used"
	case TypePackAlerted:
		return "pack_alerted"
	case TypeLootRequest:
		return "loot_request"
	case TypeSummonRequest:
		return "summon_request"
	case TypeTerrainRequest:
		return "terrain_request"
	case TypeTheftRequest:
		return "theft_request"
	case TypeEquipmentDamageRequest:
		return "equipment_damage_request"
	case TypeDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// Event is one discrete outcome record. Only the fields relevant to the Type
// are populated; the rest stay zero.
type Event struct {
	Type     Type
	ActorID  string
	TargetID string
	// Amount is damage dealt, heal amount, or summon count depending on Type.
	Amount int
	// Kind is the damage kind, condition name, ability name, or summon kind.
	Kind string
	// X, Y anchor location-bearing requests (loot, summon, terrain).
	X, Y int
	// Detail is a freeform debug note; populated only for TypeDebug.
	Detail string
}

// Sink consumes engine events. Implementations must not retain the Event
// beyond the call and must never fail the caller; a sink problem is the
// sink's problem.
type Sink interface {
	Post(Event)
}

// Discard is a Sink that drops every event.
type Discard struct{}

// Post implements Sink.
func (Discard) Post(Event) {}

// Recorder is a Sink that captures events in order, for tests.
type Recorder struct {
	Events []Event
}

// Post implements Sink.
func (r *Recorder) Post(e Event) { r.Events = append(r.Events, e) }

// ByType returns the recorded events of the given type, in emission order.
func (r *Recorder) ByType(t Type) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many events of type t were recorded.
func (r *Recorder) Count(t Type) int { return len(r.ByType(t)) }
