package dice

import (
	"strconv"
	"strings"
)

// Roll evaluates an Expression using the given Source and returns a RollResult.
//
// Precondition: expr must come from Parse (Count >= 0, Sides >= 1); src must
// be non-nil.
// Postcondition: len(result.Dice) == expr.Count and
// result.Total() == sum(result.Dice) + result.Modifier.
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	return RollResult{
		Expression: expr.Raw,
		Dice:       rolled,
		Modifier:   expr.Modifier,
	}
}

// RollExpr parses expr and rolls it using src in a single call.
//
// Precondition: expr must be a valid dice expression string; src must be non-nil.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src), nil
}

// Eval evaluates notation with the lenient contract the combat engine relies
// on: a valid dice expression rolls fresh independent dice and floors the
// total at zero; anything else falls back to its leading integer, or 0 when
// no leading integer exists. Eval never fails and never returns a negative
// value.
//
// Postcondition: return value >= 0.
func Eval(notation string, src Source) int {
	e, err := Parse(notation)
	if err != nil {
		return leadingInt(notation)
	}
	return Roll(e, src).Clamped()
}

// leadingInt parses the longest integer prefix of s, returning 0 when there
// is none or when the parsed value is negative.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 0 {
		return 0
	}
	return n
}
