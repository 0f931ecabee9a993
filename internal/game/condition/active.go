package condition

import "fmt"

// Active tracks one applied condition on a creature.
type Active struct {
	Def               *Def
	DurationRemaining int // turns left; always >= 1 while present
}

// ActiveSet tracks all conditions currently applied to one creature.
// At most one instance of a given condition ID is ever active. The set is not
// safe for concurrent use; the single-threaded turn loop serialises access.
type ActiveSet struct {
	conditions map[string]*Active
}

// NewActiveSet creates an empty ActiveSet.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{conditions: make(map[string]*Active)}
}

// Apply adds or re-applies a condition. Re-applying an unstackable condition
// refreshes the remaining duration to the newest value; a stackable condition
// accumulates duration instead. Either way only one instance exists.
//
// Precondition: def must not be nil; duration must be >= 1.
// Postcondition: Has(def.ID) is true.
func (s *ActiveSet) Apply(def *Def, duration int) error {
	if def == nil {
		return fmt.Errorf("condition: Apply requires a non-nil def")
	}
	if duration < 1 {
		return fmt.Errorf("condition %q: duration must be >= 1, got %d", def.ID, duration)
	}

	if existing, ok := s.conditions[def.ID]; ok {
		if def.Stackable {
			existing.DurationRemaining += duration
		} else {
			existing.DurationRemaining = duration
		}
		return nil
	}

	s.conditions[def.ID] = &Active{Def: def, DurationRemaining: duration}
	return nil
}

// Remove deletes the condition with the given ID; a no-op when absent.
//
// Postcondition: Has(id) is false.
func (s *ActiveSet) Remove(id string) {
	delete(s.conditions, id)
}

// Tick decrements every active condition's remaining duration by 1 and
// removes those that reach 0, returning the expired definitions so the
// caller can fire each one-shot expiry effect and notice exactly once.
//
// Postcondition: every returned Def's ID satisfies !Has(id); surviving
// conditions all have DurationRemaining >= 1.
func (s *ActiveSet) Tick() []*Def {
	var expired []*Def
	for id, ac := range s.conditions {
		ac.DurationRemaining--
		if ac.DurationRemaining <= 0 {
			expired = append(expired, ac.Def)
			delete(s.conditions, id)
		}
	}
	return expired
}

// Has reports whether the condition with id is currently active.
func (s *ActiveSet) Has(id string) bool {
	_, ok := s.conditions[id]
	return ok
}

// Remaining returns the turns left for condition id, or 0 when absent.
func (s *ActiveSet) Remaining(id string) int {
	if ac, ok := s.conditions[id]; ok {
		return ac.DurationRemaining
	}
	return 0
}

// All returns the active conditions. The slice is a fresh allocation but the
// pointed-to Active values are live; callers must not mutate them.
func (s *ActiveSet) All() []*Active {
	out := make([]*Active, 0, len(s.conditions))
	for _, ac := range s.conditions {
		out = append(out, ac)
	}
	return out
}

// Len returns the number of active conditions.
func (s *ActiveSet) Len() int { return len(s.conditions) }
