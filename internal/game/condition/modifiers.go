package condition

// SkipsTurn reports whether any active condition forces the bearer to skip
// its whole turn (stunned, paralyzed).
func SkipsTurn(s *ActiveSet) bool { return anyFlag(s, func(d *Def) bool { return d.SkipsTurn }) }

// MovementBlocked reports whether the bearer may not move (webbed). Attacks
// in place are still allowed.
func MovementBlocked(s *ActiveSet) bool {
	return anyFlag(s, func(d *Def) bool { return d.BlocksMovement })
}

// MovementScrambled reports whether the bearer's turn is replaced by a
// random-direction move attempt (confused).
func MovementScrambled(s *ActiveSet) bool {
	return anyFlag(s, func(d *Def) bool { return d.ScramblesMovement })
}

// Concealed reports whether the bearer is hidden from normal sight (invisible).
func Concealed(s *ActiveSet) bool { return anyFlag(s, func(d *Def) bool { return d.Conceals }) }

// BlocksAbilities reports whether the bearer may not trigger special abilities.
func BlocksAbilities(s *ActiveSet) bool {
	return anyFlag(s, func(d *Def) bool { return d.BlocksAbilities })
}

// AttackMod returns the net attack modifier from all active conditions
// (raging is positive, penalties negative). Removal at expiry reverts the
// stat exactly once because the modifier only exists while present.
func AttackMod(s *ActiveSet) int {
	total := 0
	for _, ac := range s.conditions {
		total += ac.Def.AttackMod
	}
	return total
}

// ACMod returns the net armor class modifier from all active conditions.
func ACMod(s *ActiveSet) int {
	total := 0
	for _, ac := range s.conditions {
		total += ac.Def.ACMod
	}
	return total
}

func anyFlag(s *ActiveSet, flag func(*Def) bool) bool {
	for _, ac := range s.conditions {
		if flag(ac.Def) {
			return true
		}
	}
	return false
}
