package testutil

// FixedSource is a dice source returning the same value for every Intn call,
// with no bounds clamping, so tests can force rolls outside the normal range.
type FixedSource struct{ Val int }

// Intn returns the fixed value.
func (f FixedSource) Intn(_ int) int { return f.Val }

// ScriptedSource replays a fixed sequence of values, then repeats the last
// one forever. Useful when a test needs distinct consecutive rolls.
type ScriptedSource struct {
	Vals []int
	next int
}

// Intn returns the next scripted value.
//
// Precondition: Vals must not be empty.
func (s *ScriptedSource) Intn(_ int) int {
	if s.next >= len(s.Vals) {
		return s.Vals[len(s.Vals)-1]
	}
	v := s.Vals[s.next]
	s.next++
	return v
}
