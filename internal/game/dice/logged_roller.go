package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger so every roll leaves a debug-level audit
// record: expression, individual dice, modifier, and total. Malformed
// notation is logged at debug level and resolved through the Eval fallback
// rather than failing the caller's turn.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness source.
func (r *Roller) Source() Source { return r.src }

// Roll evaluates expr and logs the result at debug level.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// Eval evaluates notation with the lenient floor-at-zero contract, logging
// the draw. Unparsable notation is noted at debug level before falling back
// to its leading integer.
//
// Postcondition: return value >= 0.
func (r *Roller) Eval(notation string) int {
	e, err := Parse(notation)
	if err != nil {
		n := leadingInt(notation)
		r.logger.Debug("dice notation fallback",
			zap.String("notation", notation),
			zap.Int("value", n),
			zap.Error(err),
		)
		return n
	}
	return r.Roll(e).Clamped()
}
