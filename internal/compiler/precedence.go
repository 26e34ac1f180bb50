package compiler

// Precedence orders how tightly an infix operator binds, lowest to
// highest, per spec.md §4.4.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment // =
	PrecOr         // or || and infix [ (array index)
	PrecAnd        // and
	PrecEquality   // == !=
	PrecComparison // < > <= >=
	PrecTerm       // + - & | ^
	PrecFactor     // * /
	PrecUnary      // ! - ~
	PrecCall       // . ()
	PrecPrimary
)

// parseFn is a Pratt prefix or infix handler: it consumes p.previous
// (already advanced past by the caller) and emits bytecode for the
// construct it recognizes.
type parseFn func(p *Parser, canAssign bool)

// rule is one row of the Pratt table: how a token kind behaves when it
// starts an expression (prefix) and when it follows one (infix), plus
// the infix binding precedence used to decide whether to keep
// consuming.
type rule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}
