package creature

import (
	"github.com/duskmantle/delve/internal/game/dice"
	"github.com/duskmantle/delve/internal/game/grid"
	"github.com/duskmantle/delve/internal/game/notice"
)

// EscapeMultiplier scales sight range into the hostility leash: a hostile
// creature gives up when its target is further than EscapeMultiplier x
// sight range away.
const EscapeMultiplier = 3

// TargetInfo is what awareness needs to know about the engagement target.
type TargetInfo struct {
	ID  string
	Pos grid.Point
}

// UpdateAwareness advances one creature's awareness state for this turn.
//
// Hostility is sticky: a hostile creature stays hostile regardless of
// intervening sight-blocking terrain until its target escapes beyond
// EscapeMultiplier x sight range, at which point it downgrades to wandering.
// A sleeping creature has zero effective senses and can only be woken by a
// probabilistic noise check. Wandering and guarding creatures turn hostile
// on a sight check (line of sight within sight range) or a hearing check
// (noise within hearing range). A spatial collaborator that cannot answer
// counts as "not visible".
//
// Becoming hostile alerts the pack: every same-kind creature within this
// creature's alert radius is force-set hostile with no line-of-sight
// requirement. That shortcut is deliberate and load-bearing.
//
// Precondition: c, world, src, and sink must be non-nil.
func UpdateAwareness(c *Instance, target TargetInfo, world grid.SpatialQuery, noise int, src dice.Source, pack []*Instance, sink notice.Sink) {
	if c.IsDead() {
		return
	}

	dist := grid.Dist(c.Pos, target.Pos)

	switch c.State {
	case StateHostile:
		if dist > EscapeMultiplier*c.SightRange {
			c.State = StateWandering
			c.Fleeing = false
			c.TargetID = ""
		}
		return

	case StateSleeping:
		// Only noise wakes a sleeper; closer and louder means likelier.
		if noise > 0 && dist <= noise {
			if src.Intn(dist+noise) < noise {
				c.State = StateWandering
			}
		}
		return

	default: // StateWandering, StateGuarding
		sees := dist <= c.EffectiveSight() && world.LineOfSight(c.Pos, target.Pos)
		hears := noise > 0 && dist <= c.EffectiveHearing()
		if sees || hears {
			becomeHostile(c, target.ID)
			alertPack(c, pack, sink)
		}
	}
}

// ForceHostile makes the creature hostile toward targetID immediately, used
// when it is attacked or pack-alerted. Guards struck at their post behave
// the same as guards who engage: hostile for good.
func ForceHostile(c *Instance, targetID string) {
	if c.IsDead() {
		return
	}
	becomeHostile(c, targetID)
}

func becomeHostile(c *Instance, targetID string) {
	c.State = StateHostile
	c.TargetID = targetID
}

// alertPack force-sets every same-kind creature within c's alert radius
// hostile, independent of their own line of sight to the target.
func alertPack(c *Instance, pack []*Instance, sink notice.Sink) {
	if c.AlertRadius <= 0 {
		return
	}
	for _, ally := range pack {
		if ally == nil || ally.ID == c.ID || ally.IsDead() {
			continue
		}
		if ally.TemplateID != c.TemplateID || ally.State == StateHostile {
			continue
		}
		if grid.Dist(c.Pos, ally.Pos) > c.AlertRadius {
			continue
		}
		becomeHostile(ally, c.TargetID)
		sink.Post(notice.Event{
			Type:     notice.TypePackAlerted,
			ActorID:  c.ID,
			TargetID: ally.ID,
			Kind:     c.TemplateID,
		})
	}
}
