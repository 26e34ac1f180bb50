package compiler

import (
	"io"
	"os"
	"strconv"

	"github.com/emberlang/ember/internal/diag"
	"github.com/emberlang/ember/internal/scanner"
	"github.com/emberlang/ember/internal/token"
	"github.com/emberlang/ember/internal/value"
)

// Parser drives the scanner one token at a time and emits bytecode
// directly into the current Compiler's Chunk as it recognizes each
// construct — there is no intermediate AST. It owns the Compiler
// chain (one node pushed per nested function) and the ClassCompiler
// chain (one node pushed per nested class body), and carries the two
// error flags spec.md §4.4 requires: HadError is sticky across the
// whole compile, PanicMode suppresses cascading diagnostics until the
// next statement boundary.
type Parser struct {
	scanner *scanner.Scanner
	errOut  io.Writer

	current  token.Token
	previous token.Token

	compiler *Compiler
	class    *ClassCompiler

	hadError  bool
	panicMode bool
}

// Compile compiles src into a top-level Function whose Chunk is ready
// to run as a script. If any compile error occurred, ok is false and
// the returned Function is nil, per spec.md §4.4's "no function"
// sentinel. Diagnostics go to stderr; use CompileTo to capture them.
func Compile(src string) (fn *value.Function, ok bool) {
	return CompileTo(src, os.Stderr)
}

// CompileTo is Compile with an explicit diagnostic sink, used by tests
// that want to assert on compile-error text without touching stderr.
func CompileTo(src string, errOut io.Writer) (fn *value.Function, ok bool) {
	p := &Parser{scanner: scanner.New(src), errOut: errOut}
	p.compiler = newCompiler(nil, TypeScript, "")
	p.advance()
	for !p.match(token.EOF) {
		p.declaration()
	}
	fn = p.endCompiler()
	if p.hadError {
		return nil, false
	}
	return fn, true
}

// --- token plumbing -------------------------------------------------

func (p *Parser) advance() {
	p.previous = p.current
	for {
		p.current = p.scanner.Next()
		if p.current.Kind != token.Error {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *Parser) check(k token.Kind) bool { return p.current.Kind == k }

func (p *Parser) match(k token.Kind) bool {
	if !p.check(k) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) consume(k token.Kind, msg string) {
	if p.current.Kind == k {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

// --- error reporting --------------------------------------------------

func (p *Parser) errorAtCurrent(msg string) { p.errorAt(p.current, msg) }
func (p *Parser) error(msg string)          { p.errorAt(p.previous, msg) }

func (p *Parser) errorAt(tok token.Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	lexeme := ""
	if tok.Kind != token.EOF && tok.Kind != token.Error {
		lexeme = tok.Lexeme
	}
	diag.CompileError(p.errOut, tok.Line, lexeme, tok.Kind == token.EOF, msg)
	p.hadError = true
}

// synchronize discards tokens until a statement boundary, per
// spec.md §4.4: a just-consumed semicolon, or one of the listed
// statement-introducer keywords next up.
func (p *Parser) synchronize() {
	p.panicMode = false
	for p.current.Kind != token.EOF {
		if p.previous.Kind == token.Semicolon {
			return
		}
		switch p.current.Kind {
		case token.KwClass, token.KwFunc, token.KwVar, token.KwFor,
			token.KwIf, token.KwWhile, token.KwPrint, token.KwReturn:
			return
		}
		p.advance()
	}
}

// --- chunk / emission helpers ------------------------------------------

func (p *Parser) currentChunk() *value.Chunk { return p.compiler.Function.Chunk }

func (p *Parser) emitByte(b byte) { p.currentChunk().WriteByte(b, p.previous.Line) }
func (p *Parser) emitOp(op value.OpCode) { p.currentChunk().WriteOp(op, p.previous.Line) }
func (p *Parser) emitOpByte(op value.OpCode, b byte) {
	p.emitOp(op)
	p.emitByte(b)
}

func (p *Parser) emitConstant(v value.Value) {
	idx, err := p.currentChunk().AddConstant(v)
	if err != nil {
		p.error(err.Error())
		return
	}
	p.emitOpByte(value.OpConstant, byte(idx))
}

// emitJump writes a jump opcode with a placeholder 16-bit operand and
// returns the offset of the first operand byte, to be fixed up later
// by patchJump.
func (p *Parser) emitJump(op value.OpCode) int {
	p.emitOp(op)
	p.emitByte(0xff)
	p.emitByte(0xff)
	return p.currentChunk().Count() - 2
}

// patchJump backfills the jump at offset with the distance from just
// past its operand to the current code position, per the big-endian
// 16-bit encoding in SPEC_FULL.md §6.
func (p *Parser) patchJump(offset int) {
	jump := p.currentChunk().Count() - offset - 2
	if jump > 0xffff {
		p.error("Too much code to jump over.")
		return
	}
	p.currentChunk().SetCode(offset, byte((jump>>8)&0xff))
	p.currentChunk().SetCode(offset+1, byte(jump&0xff))
}

func (p *Parser) emitLoop(loopStart int) {
	p.emitOp(value.OpLoop)
	offset := p.currentChunk().Count() - loopStart + 2
	if offset > 0xffff {
		p.error("Loop body too large.")
		return
	}
	p.emitByte(byte((offset >> 8) & 0xff))
	p.emitByte(byte(offset & 0xff))
}

func (p *Parser) emitReturn() {
	if p.compiler.Type == TypeInitializer {
		p.emitOpByte(value.OpGetLocal, 0)
	} else {
		p.emitOp(value.OpNull)
	}
	p.emitOp(value.OpReturn)
}

func (p *Parser) endCompiler() *value.Function {
	p.emitReturn()
	fn := p.compiler.Function
	p.compiler = p.compiler.Enclosing
	return fn
}

// identifierConstant interns name as a string constant, used whenever
// a variable/property/method name must be addressable from bytecode
// (globals, GetProperty/SetProperty, Invoke, Method, Class).
func (p *Parser) identifierConstant(name string) byte {
	idx, err := p.currentChunk().AddConstant(value.Str(name))
	if err != nil {
		p.error(err.Error())
		return 0
	}
	return byte(idx)
}

// --- scope helpers -----------------------------------------------------

func (p *Parser) beginScope() { p.compiler.beginScope() }

func (p *Parser) endScope() {
	popped := p.compiler.endScope()
	for _, l := range popped {
		if l.IsCaptured {
			p.emitOp(value.OpCloseUpvalue)
		} else {
			p.emitOp(value.OpPop)
		}
	}
}

// --- declarations --------------------------------------------------------

func (p *Parser) declaration() {
	switch {
	case p.match(token.KwClass):
		p.classDeclaration()
	case p.match(token.KwFunc):
		p.funcDeclaration()
	case p.match(token.KwVar):
		p.varDeclaration()
	default:
		p.statement()
	}
	if p.panicMode {
		p.synchronize()
	}
}

func (p *Parser) parseVariable(errMsg string) byte {
	p.consume(token.Identifier, errMsg)
	name := p.previous.Lexeme
	if err := p.compiler.declareVariable(name); err != nil {
		p.error(err.Error())
	}
	if p.compiler.ScopeDepth > 0 {
		return 0
	}
	return p.identifierConstant(name)
}

func (p *Parser) defineVariable(global byte) {
	if p.compiler.ScopeDepth > 0 {
		p.compiler.markInitialized()
		return
	}
	p.emitOpByte(value.OpDefineGlobal, global)
}

func (p *Parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")
	if p.match(token.Equal) {
		p.expression()
	} else {
		p.emitOp(value.OpNull)
	}
	p.consume(token.Semicolon, "Expect ';' after variable declaration.")
	p.defineVariable(global)
}

func (p *Parser) funcDeclaration() {
	global := p.parseVariable("Expect function name.")
	p.compiler.markInitialized()
	p.function(TypeFunction, p.previous.Lexeme)
	p.defineVariable(global)
}

// function compiles a parameter list and block body into a brand-new
// Compiler, then emits OpClosure followed by the capture metadata for
// every upvalue that Compiler resolved, per spec.md §4.4.
func (p *Parser) function(typ FunctionType, name string) {
	enclosing := p.compiler
	p.compiler = newCompiler(enclosing, typ, name)
	p.beginScope()

	p.consume(token.LeftParen, "Expect '(' after function name.")
	if !p.check(token.RightParen) {
		for {
			p.compiler.Function.Arity++
			if p.compiler.Function.Arity > 255 {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramConst := p.parseVariable("Expect parameter name.")
			p.defineVariable(paramConst)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "Expect ')' after parameters.")
	p.consume(token.LeftBrace, "Expect '{' before function body.")
	p.block()

	built := p.compiler
	fn := p.endCompiler()

	idx, err := p.currentChunk().AddConstant(value.Obj(value.KindFunction, fn))
	if err != nil {
		p.error(err.Error())
		return
	}
	p.emitOpByte(value.OpClosure, byte(idx))
	// Capture metadata: two bytes per upvalue the nested Compiler
	// resolved, read by the VM's OpClosure handler at runtime to
	// decide whether to capture a stack slot or forward an upvalue
	// from the enclosing closure, per spec.md §4.4/§4.5.
	for _, up := range built.Upvalues {
		if up.IsLocal {
			p.emitByte(1)
		} else {
			p.emitByte(0)
		}
		p.emitByte(byte(up.Index))
	}
}

func (p *Parser) method() {
	p.consume(token.Identifier, "Expect method name.")
	name := p.previous.Lexeme
	nameConst := p.identifierConstant(name)

	typ := TypeMethod
	if name == "init" {
		typ = TypeInitializer
	}
	p.function(typ, name)
	p.emitOpByte(value.OpMethod, nameConst)
}

func (p *Parser) classDeclaration() {
	p.consume(token.Identifier, "Expect class name.")
	className := p.previous.Lexeme
	nameConst := p.identifierConstant(className)
	if err := p.compiler.declareVariable(className); err != nil {
		p.error(err.Error())
	}

	p.emitOpByte(value.OpClass, nameConst)
	p.defineVariable(nameConst)

	classCompiler := &ClassCompiler{Enclosing: p.class}
	p.class = classCompiler

	if p.match(token.Less) {
		p.consume(token.Identifier, "Expect superclass name.")
		p.variableNamed(p.previous.Lexeme, false)
		if p.previous.Lexeme == className {
			p.error("A class cannot inherit from itself.")
		}

		p.beginScope()
		if err := p.compiler.addLocal("super"); err != nil {
			p.error(err.Error())
		}
		p.compiler.markInitialized()

		p.variableNamed(className, false)
		p.emitOp(value.OpInherit)
		classCompiler.HasSuperclass = true
	}

	p.variableNamed(className, false)
	p.consume(token.LeftBrace, "Expect '{' before class body.")
	for !p.check(token.RightBrace) && !p.check(token.EOF) {
		p.method()
	}
	p.consume(token.RightBrace, "Expect '}' after class body.")
	p.emitOp(value.OpPop)

	if classCompiler.HasSuperclass {
		p.endScope()
	}
	p.class = p.class.Enclosing
}

// --- statements ----------------------------------------------------------

func (p *Parser) statement() {
	switch {
	case p.match(token.KwPrint):
		p.printStatement()
	case p.match(token.KwIf):
		p.ifStatement()
	case p.match(token.KwReturn):
		p.returnStatement()
	case p.match(token.KwWhile):
		p.whileStatement()
	case p.match(token.KwFor):
		p.forStatement()
	case p.match(token.LeftBrace):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *Parser) block() {
	for !p.check(token.RightBrace) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RightBrace, "Expect '}' after block.")
}

func (p *Parser) printStatement() {
	p.expression()
	p.consume(token.Semicolon, "Expect ';' after value.")
	p.emitOp(value.OpPrint)
}

func (p *Parser) expressionStatement() {
	p.expression()
	p.consume(token.Semicolon, "Expect ';' after expression.")
	p.emitOp(value.OpPop)
}

func (p *Parser) returnStatement() {
	if p.compiler.Type == TypeScript {
		p.error("Cannot return from top-level code.")
	}
	if p.match(token.Semicolon) {
		p.emitReturn()
		return
	}
	if p.compiler.Type == TypeInitializer {
		p.error("Can't return a value from an initializer.")
	}
	p.expression()
	p.consume(token.Semicolon, "Expect ';' after return value.")
	p.emitOp(value.OpReturn)
}

func (p *Parser) ifStatement() {
	p.consume(token.LeftParen, "Expect '(' after 'if'.")
	p.expression()
	p.consume(token.RightParen, "Expect ')' after condition.")

	thenJump := p.emitJump(value.OpJumpIfFalse)
	p.emitOp(value.OpPop)
	p.statement()

	elseJump := p.emitJump(value.OpJump)
	p.patchJump(thenJump)
	p.emitOp(value.OpPop)

	if p.match(token.KwElse) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *Parser) whileStatement() {
	loopStart := p.currentChunk().Count()
	p.consume(token.LeftParen, "Expect '(' after 'while'.")
	p.expression()
	p.consume(token.RightParen, "Expect ')' after condition.")

	exitJump := p.emitJump(value.OpJumpIfFalse)
	p.emitOp(value.OpPop)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOp(value.OpPop)
}

// forStatement implements the desugared C-style for loop exactly as
// sequenced in spec.md §4.4, including the clever splice that runs the
// increment after the body but before re-testing the condition.
func (p *Parser) forStatement() {
	p.beginScope()
	p.consume(token.LeftParen, "Expect '(' after 'for'.")

	switch {
	case p.match(token.Semicolon):
		// no initializer
	case p.match(token.KwVar):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := p.currentChunk().Count()
	exitJump := -1
	if !p.match(token.Semicolon) {
		p.expression()
		p.consume(token.Semicolon, "Expect ';' after loop condition.")
		exitJump = p.emitJump(value.OpJumpIfFalse)
		p.emitOp(value.OpPop)
	}

	if !p.match(token.RightParen) {
		bodyJump := p.emitJump(value.OpJump)
		incrStart := p.currentChunk().Count()
		p.expression()
		p.emitOp(value.OpPop)
		p.consume(token.RightParen, "Expect ')' after for clauses.")

		p.emitLoop(loopStart)
		loopStart = incrStart
		p.patchJump(bodyJump)
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(value.OpPop)
	}
	p.endScope()
}

// --- expressions -----------------------------------------------------------

func (p *Parser) expression() { p.parsePrecedence(PrecAssignment) }

func (p *Parser) parsePrecedence(prec Precedence) {
	p.advance()
	prefixRule := rules[p.previous.Kind].prefix
	if prefixRule == nil {
		p.error("Expect expression.")
		return
	}
	canAssign := prec <= PrecAssignment
	prefixRule(p, canAssign)

	for prec <= rules[p.current.Kind].precedence {
		p.advance()
		infixRule := rules[p.previous.Kind].infix
		infixRule(p, canAssign)
	}

	if canAssign && p.match(token.Equal) {
		p.error("Invalid assignment target.")
	}
}

func grouping(p *Parser, _ bool) {
	p.expression()
	p.consume(token.RightParen, "Expect ')' after expression.")
}

func numberLiteral(p *Parser, _ bool) {
	n, err := strconv.ParseFloat(p.previous.Lexeme, 64)
	if err != nil {
		p.error("Invalid number literal.")
		return
	}
	p.emitConstant(value.Number(n))
}

func stringLiteral(p *Parser, _ bool) {
	lex := p.previous.Lexeme
	s := lex[1 : len(lex)-1] // strip the delimiting quotes
	p.emitConstant(value.Str(s))
}

func literalKeyword(p *Parser, _ bool) {
	switch p.previous.Kind {
	case token.KwFalse:
		p.emitOp(value.OpFalse)
	case token.KwTrue:
		p.emitOp(value.OpTrue)
	case token.KwNull:
		p.emitOp(value.OpNull)
	}
}

func unary(p *Parser, _ bool) {
	op := p.previous.Kind
	p.parsePrecedence(PrecUnary)
	switch op {
	case token.Bang:
		p.emitOp(value.OpNot)
	case token.Minus:
		p.emitOp(value.OpNegate)
	case token.Tilde:
		p.emitOp(value.OpBwNot)
	}
}

func binary(p *Parser, _ bool) {
	op := p.previous.Kind
	r := rules[op]
	p.parsePrecedence(r.precedence + 1)
	switch op {
	case token.BangEqual:
		p.emitOp(value.OpEqual)
		p.emitOp(value.OpNot)
	case token.EqualEqual:
		p.emitOp(value.OpEqual)
	case token.Greater:
		p.emitOp(value.OpGreater)
	case token.GreaterEqual:
		p.emitOp(value.OpLess)
		p.emitOp(value.OpNot)
	case token.Less:
		p.emitOp(value.OpLess)
	case token.LessEqual:
		p.emitOp(value.OpGreater)
		p.emitOp(value.OpNot)
	case token.Plus:
		p.emitOp(value.OpAdd)
	case token.Minus:
		p.emitOp(value.OpSubtract)
	case token.Star:
		p.emitOp(value.OpMultiply)
	case token.Slash:
		p.emitOp(value.OpDivide)
	case token.Ampersand:
		p.emitOp(value.OpBwAnd)
	case token.Pipe:
		p.emitOp(value.OpBwOr)
	case token.Caret:
		p.emitOp(value.OpBwXor)
	}
}

// and_ implements short-circuit AND using the pop-on-false-jump
// discipline of spec.md's GLOSSARY: JumpIfFalse leaves its operand on
// the stack, and the Pop only executes on the continuation path.
func and_(p *Parser, _ bool) {
	endJump := p.emitJump(value.OpJumpIfFalse)
	p.emitOp(value.OpPop)
	p.parsePrecedence(PrecAnd)
	p.patchJump(endJump)
}

func or_(p *Parser, _ bool) {
	elseJump := p.emitJump(value.OpJumpIfFalse)
	endJump := p.emitJump(value.OpJump)
	p.patchJump(elseJump)
	p.emitOp(value.OpPop)
	p.parsePrecedence(PrecOr)
	p.patchJump(endJump)
}

func call(p *Parser, _ bool) {
	argc := p.argumentList()
	p.emitOpByte(value.OpCall, byte(argc))
}

func (p *Parser) argumentList() int {
	argc := 0
	if !p.check(token.RightParen) {
		for {
			p.expression()
			if argc == 255 {
				p.error("Can't have more than 255 arguments.")
			}
			argc++
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "Expect ')' after arguments.")
	return argc
}

func dot(p *Parser, canAssign bool) {
	p.consume(token.Identifier, "Expect property name after '.'.")
	name := p.identifierConstant(p.previous.Lexeme)

	switch {
	case canAssign && p.match(token.Equal):
		p.expression()
		p.emitOpByte(value.OpSetProperty, name)
	case p.match(token.LeftParen):
		argc := p.argumentList()
		p.emitOpByte(value.OpInvoke, name)
		p.emitByte(byte(argc))
	default:
		p.emitOpByte(value.OpGetProperty, name)
	}
}

func arrayLiteral(p *Parser, _ bool) {
	count := 0
	if !p.check(token.RightBracket) {
		for {
			p.expression()
			count++
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightBracket, "Expect ']' after array elements.")
	p.emitOpByte(value.OpArrBuild, byte(count))
}

func arrayIndex(p *Parser, canAssign bool) {
	p.expression()
	p.consume(token.RightBracket, "Expect ']' after index.")
	if canAssign && p.match(token.Equal) {
		p.expression()
		p.emitOp(value.OpArrStore)
	} else {
		p.emitOp(value.OpArrIndex)
	}
}

func variable(p *Parser, canAssign bool) {
	p.namedVariable(p.previous.Lexeme, canAssign)
}

// variableNamed emits a reference to name, used internally for
// synthesized references to a class/superclass variable; every caller
// passes canAssign == false, since such a reference must never be an
// assignment target.
func (p *Parser) variableNamed(name string, canAssign bool) {
	p.namedVariable(name, canAssign)
}

func (p *Parser) namedVariable(name string, canAssign bool) {
	var getOp, setOp value.OpCode
	slot, err := p.compiler.resolveLocal(name)
	if err != nil {
		p.error(err.Error())
		return
	}
	if slot != -1 {
		getOp, setOp = value.OpGetLocal, value.OpSetLocal
	} else if slot, err = p.compiler.resolveUpvalue(name); err != nil {
		p.error(err.Error())
		return
	} else if slot != -1 {
		getOp, setOp = value.OpGetUpvalue, value.OpSetUpvalue
	} else {
		slot = int(p.identifierConstant(name))
		getOp, setOp = value.OpGetGlobal, value.OpSetGlobal
	}

	if canAssign && p.match(token.Equal) {
		p.expression()
		p.emitOpByte(setOp, byte(slot))
	} else {
		p.emitOpByte(getOp, byte(slot))
	}
}

func this_(p *Parser, _ bool) {
	if p.class == nil {
		p.error("'this' cannot be used outside of a class.")
		return
	}
	variable(p, false)
}

func super_(p *Parser, _ bool) {
	if p.class == nil {
		p.error("'super' cannot be used outside of a class.")
		return
	} else if !p.class.HasSuperclass {
		p.error("'super' cannot be used in a class with no superclass.")
	}

	p.consume(token.Dot, "Expect '.' after 'super'.")
	p.consume(token.Identifier, "Expect superclass method name.")
	name := p.identifierConstant(p.previous.Lexeme)

	p.namedVariable("this", false)
	if p.match(token.LeftParen) {
		argc := p.argumentList()
		p.namedVariable("super", false)
		p.emitOpByte(value.OpSuperInvoke, name)
		p.emitByte(byte(argc))
	} else {
		p.namedVariable("super", false)
		p.emitOpByte(value.OpGetSuper, name)
	}
}

// rules is the Pratt table mapping every token kind to its prefix /
// infix handlers and infix binding precedence, per spec.md §4.4.
var rules map[token.Kind]rule

func init() {
	rules = map[token.Kind]rule{
		token.LeftParen:    {grouping, call, PrecCall},
		token.Dot:          {nil, dot, PrecCall},
		token.LeftBracket:  {arrayLiteral, arrayIndex, PrecOr},
		token.Minus:        {unary, binary, PrecTerm},
		token.Plus:         {nil, binary, PrecTerm},
		token.Slash:        {nil, binary, PrecFactor},
		token.Star:         {nil, binary, PrecFactor},
		token.Bang:         {unary, nil, PrecNone},
		token.Tilde:        {unary, nil, PrecNone},
		token.BangEqual:    {nil, binary, PrecEquality},
		token.EqualEqual:   {nil, binary, PrecEquality},
		token.Greater:      {nil, binary, PrecComparison},
		token.GreaterEqual: {nil, binary, PrecComparison},
		token.Less:         {nil, binary, PrecComparison},
		token.LessEqual:    {nil, binary, PrecComparison},
		token.Ampersand:    {nil, binary, PrecTerm},
		token.Pipe:         {nil, binary, PrecTerm},
		token.Caret:        {nil, binary, PrecTerm},
		token.KwAnd:        {nil, and_, PrecAnd},
		token.KwOr:         {nil, or_, PrecOr},
		token.And2:         {nil, and_, PrecAnd},
		token.Or2:          {nil, or_, PrecOr},
		token.Identifier:   {variable, nil, PrecNone},
		token.String:       {stringLiteral, nil, PrecNone},
		token.Number:       {numberLiteral, nil, PrecNone},
		token.KwTrue:       {literalKeyword, nil, PrecNone},
		token.KwFalse:      {literalKeyword, nil, PrecNone},
		token.KwNull:       {literalKeyword, nil, PrecNone},
		token.KwThis:       {this_, nil, PrecNone},
		token.KwSuper:      {super_, nil, PrecNone},
	}
}
