// Package compiler implements ember's single-pass Pratt parser and
// code generator together with the lexical-scope and upvalue resolver
// that makes closures work. There is no intermediate syntax tree: the
// Parser (parser.go) emits bytecode directly into the Chunk owned by
// the current Compiler (this file) as it recognizes each construct.
package compiler

import (
	"errors"

	"github.com/emberlang/ember/internal/value"
)

// FunctionType distinguishes the four contexts a Compiler can be
// building code for, per spec.md §4.3. It governs what slot 0 of
// locals means and what `return` is allowed to do.
type FunctionType int

const (
	TypeScript FunctionType = iota
	TypeFunction
	TypeMethod
	TypeInitializer
)

// Local describes one slot in the current function's stack-relative
// local variable window.
type Local struct {
	Name       string
	Depth      int // -1 means "declared but not yet initialized"
	IsCaptured bool
}

// UpvalueSlot records one entry in a Compiler's upvalue capture list:
// either a direct reference to a local slot in the immediately
// enclosing function (IsLocal == true) or a reference to that
// enclosing function's own upvalue at Index (IsLocal == false).
type UpvalueSlot struct {
	Index   int
	IsLocal bool
}

// Errors returned by the resolver; the Parser wraps these with the
// offending token's line and lexeme to produce spec.md's exact
// diagnostic text.
var (
	ErrOwnInitializer = errors.New("Can't read local variable in its own initializer.")
	ErrDuplicateLocal = errors.New("Already a variable with this name in this scope.")
	ErrTooManyLocals  = errors.New("Too many local variables in function.")
	ErrTooManyUpvalues = errors.New("Too many closure variables in function.")
	ErrTooManyParams   = errors.New("Can't have more than 255 parameters.")
)

const maxLocals = 256
const maxUpvalues = 256

// Compiler is one node in the stack of nested function compilations:
// each `func` literal or method body pushes a new Compiler whose
// Enclosing link is the only upward pointer, per spec.md §9 ("do not
// model this with back-pointers from Compiler to Parser").
type Compiler struct {
	Enclosing *Compiler

	Function *value.Function
	Type     FunctionType

	Locals     []Local
	Upvalues   []UpvalueSlot
	ScopeDepth int
}

// newCompiler starts a fresh Compiler for a function of the given
// type and name, enclosed by parent (nil for the top-level script).
// Slot 0 of locals is reserved: named "this" for methods/initializers
// so `this` resolves to it, unnamed (unusable from user code)
// otherwise — this is how the callee's own stack slot becomes
// invisible to ordinary variable lookups.
func newCompiler(parent *Compiler, typ FunctionType, name string) *Compiler {
	c := &Compiler{
		Enclosing: parent,
		Function:  &value.Function{Name: name, Chunk: value.NewChunk()},
		Type:      typ,
	}
	slot0 := Local{Depth: 0}
	if typ == TypeMethod || typ == TypeInitializer {
		slot0.Name = "this"
	}
	c.Locals = append(c.Locals, slot0)
	return c
}

// beginScope increments the lexical scope depth.
func (c *Compiler) beginScope() { c.ScopeDepth++ }

// endScope decrements the scope depth and reports, for every local
// that scope held, whether a CloseUpvalue or a Pop must be emitted to
// discard it — emission itself is the Parser's job since it owns the
// Chunk's line-number context.
func (c *Compiler) endScope() []Local {
	c.ScopeDepth--
	var popped []Local
	for len(c.Locals) > 0 && c.Locals[len(c.Locals)-1].Depth > c.ScopeDepth {
		popped = append(popped, c.Locals[len(c.Locals)-1])
		c.Locals = c.Locals[:len(c.Locals)-1]
	}
	return popped
}

// declareVariable adds name as a new local in the current scope. At
// depth 0 (global scope) it does nothing — globals are resolved by
// name, not by slot. It is an error to redeclare a name already local
// to the current scope depth.
func (c *Compiler) declareVariable(name string) error {
	if c.ScopeDepth == 0 {
		return nil
	}
	for i := len(c.Locals) - 1; i >= 0; i-- {
		l := c.Locals[i]
		if l.Depth != -1 && l.Depth < c.ScopeDepth {
			break
		}
		if l.Name == name {
			return ErrDuplicateLocal
		}
	}
	return c.addLocal(name)
}

func (c *Compiler) addLocal(name string) error {
	if len(c.Locals) >= maxLocals {
		return ErrTooManyLocals
	}
	c.Locals = append(c.Locals, Local{Name: name, Depth: -1})
	return nil
}

// markInitialized sets the most recently added local's depth to the
// current scope depth, ending its "uninitialized" window. Called at
// the end of a var declaration's initializer, or — for functions —
// before compiling the body, so recursive self-reference resolves.
// At global scope (no locals tracked) this is a no-op.
func (c *Compiler) markInitialized() {
	if c.ScopeDepth == 0 {
		return
	}
	c.Locals[len(c.Locals)-1].Depth = c.ScopeDepth
}

// resolveLocal scans locals from newest to oldest looking for name.
// Returns -1 if not found. Returns ErrOwnInitializer if the match is
// still mid-declaration (Depth == -1), per spec.md §4.3.
func (c *Compiler) resolveLocal(name string) (int, error) {
	for i := len(c.Locals) - 1; i >= 0; i-- {
		if c.Locals[i].Name == name {
			if c.Locals[i].Depth == -1 {
				return -1, ErrOwnInitializer
			}
			return i, nil
		}
	}
	return -1, nil
}

// resolveUpvalue looks up name in enclosing functions, threading an
// upvalue through every intermediate Compiler so a variable captured
// more than one level up still resolves correctly at each level.
func (c *Compiler) resolveUpvalue(name string) (int, error) {
	if c.Enclosing == nil {
		return -1, nil
	}
	if local, err := c.Enclosing.resolveLocal(name); err != nil {
		return -1, err
	} else if local != -1 {
		c.Enclosing.Locals[local].IsCaptured = true
		return c.addUpvalue(local, true)
	}
	if up, err := c.Enclosing.resolveUpvalue(name); err != nil {
		return -1, err
	} else if up != -1 {
		return c.addUpvalue(up, false)
	}
	return -1, nil
}

// addUpvalue deduplicates: an existing (index, isLocal) pair returns
// its existing position, otherwise a new entry is appended.
func (c *Compiler) addUpvalue(index int, isLocal bool) (int, error) {
	for i, u := range c.Upvalues {
		if u.Index == index && u.IsLocal == isLocal {
			return i, nil
		}
	}
	if len(c.Upvalues) >= maxUpvalues {
		return -1, ErrTooManyUpvalues
	}
	c.Upvalues = append(c.Upvalues, UpvalueSlot{Index: index, IsLocal: isLocal})
	c.Function.UpvalueCount = len(c.Upvalues)
	return len(c.Upvalues) - 1, nil
}

// ClassCompiler tracks the class currently being compiled so `super`
// can be validated and scoped, per spec.md §4.4. Like Compiler, these
// form a stack via Enclosing for nested class bodies.
type ClassCompiler struct {
	Enclosing      *ClassCompiler
	HasSuperclass  bool
}
