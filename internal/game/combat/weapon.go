package combat

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/duskmantle/delve/internal/game/creature"
	"github.com/duskmantle/delve/internal/game/notice"
)

// ChainWeapon is a player weapon definition: a per-tier damage multiplier
// table keyed by consecutive correct quiz answers, plus the resolved
// enchantment and blessing flags. Shared and immutable once loaded.
type ChainWeapon struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	BaseDamage int `yaml:"base_damage"`
	// ChainMultipliers[i] is the damage multiplier for i+1 consecutive
	// correct answers; scores past the end clamp to the last entry.
	ChainMultipliers []int `yaml:"chain_multipliers"`
	Enchantment      int   `yaml:"enchantment"`

	// Kind is the damage kind dealt; empty defaults to physical.
	Kind string `yaml:"kind"`

	Blessed bool `yaml:"blessed"`
	Cursed  bool `yaml:"cursed"`
}

// Validate checks the weapon definition's invariants.
//
// Postcondition: nil return guarantees a usable multiplier table.
func (w *ChainWeapon) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("weapon: id must not be empty")
	}
	if w.BaseDamage < 1 {
		return fmt.Errorf("weapon %q: base_damage must be >= 1", w.ID)
	}
	if len(w.ChainMultipliers) == 0 {
		return fmt.Errorf("weapon %q: chain_multipliers must not be empty", w.ID)
	}
	for i, m := range w.ChainMultipliers {
		if m < 1 {
			return fmt.Errorf("weapon %q: chain_multipliers[%d] must be >= 1", w.ID, i)
		}
	}
	if w.Blessed && w.Cursed {
		return fmt.Errorf("weapon %q: cannot be both blessed and cursed", w.ID)
	}
	return nil
}

// DamageKind returns the weapon's damage kind, defaulting to physical.
func (w *ChainWeapon) DamageKind() string {
	if w.Kind == "" {
		return KindPhysical
	}
	return w.Kind
}

// LoadWeapons reads every *.yaml file in dir as a ChainWeapon.
//
// Postcondition: Returns weapons keyed by ID, or an error if any file fails
// to parse or validate.
func LoadWeapons(dir string) (map[string]*ChainWeapon, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading weapon dir %q: %w", dir, err)
	}
	weapons := make(map[string]*ChainWeapon)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var w ChainWeapon
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&w); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		weapons[w.ID] = &w
	}
	return weapons, nil
}

// QuizResult is the single record the external quiz subsystem hands the
// resolver: a consecutive-correct score and an overall success flag. It is
// consumed exactly once per initiated player attack.
type QuizResult struct {
	Success        bool
	Score          int
	TotalQuestions int
}

// ChainDamage computes the pre-mitigation damage for a quiz score against
// the given target flags: base x multiplier[min(score-1, last)] +
// enchantment, the blessed-vs-unholy x1.5 bonus, the cursed halving, then a
// floor of 1.
//
// Precondition: score >= 1.
// Postcondition: Returns >= 1.
func (w *ChainWeapon) ChainDamage(score int, targetUnholy bool) int {
	idx := score - 1
	if idx >= len(w.ChainMultipliers) {
		idx = len(w.ChainMultipliers) - 1
	}
	dmg := w.BaseDamage*w.ChainMultipliers[idx] + w.Enchantment
	if w.Blessed && targetUnholy {
		dmg = dmg * 3 / 2
	}
	if w.Cursed {
		dmg /= 2
	}
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// ResolvePlayerAttack runs the quiz-chain pipeline for one player attack on
// target. A zero score is always a complete miss regardless of the success
// flag. Attacks on a missing or already dead target fail without touching
// the world.
//
// Precondition: player has a weapon; sink non-nil.
func ResolvePlayerAttack(player *Player, quiz QuizResult, target *creature.Instance, sink notice.Sink) Outcome {
	out := Outcome{AttackerID: player.ID}
	if target == nil || target.IsDead() {
		return out
	}
	out.TargetID = target.ID

	if quiz.Score == 0 {
		sink.Post(notice.Event{
			Type:     notice.TypeAttackMiss,
			ActorID:  player.ID,
			TargetID: target.ID,
		})
		return out
	}

	w := player.Weapon
	dmg := w.ChainDamage(quiz.Score, target.Unholy)
	sink.Post(notice.Event{
		Type:     notice.TypeAttackHit,
		ActorID:  player.ID,
		TargetID: target.ID,
		Amount:   quiz.Score,
	})
	return DealDamage(target, dmg, w.DamageKind(), player.ID, sink)
}
