// Package compiler translates a validated AST into a program image: the
// signature, a data pool of interned strings, and a linear instruction
// stream. Forward references to not-yet-defined functions are emitted
// with placeholder addresses and back-patched in a single pass at the
// end of generation.
package compiler

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/jonashpro/lang/ast"
	"github.com/jonashpro/lang/opcode"
	"github.com/jonashpro/lang/token"
)

// unaryInstructions maps a unary operator to its instruction. Unary '+'
// has no entry: +e is e.
var unaryInstructions = map[token.Type]opcode.Opcode{
	token.SUB:         opcode.NEG,
	token.NOT:         opcode.NOT,
	token.BITWISE_NOT: opcode.BNT,
}

var binaryInstructions = map[token.Type]opcode.Opcode{
	token.ADD:         opcode.ADD,
	token.SUB:         opcode.SUB,
	token.MUL:         opcode.MUL,
	token.DIV:         opcode.DIV,
	token.EQ:          opcode.EQ,
	token.NE:          opcode.NE,
	token.LT:          opcode.LT,
	token.LE:          opcode.LE,
	token.GT:          opcode.GT,
	token.GE:          opcode.GE,
	token.AND:         opcode.AND,
	token.OR:          opcode.OR,
	token.BITWISE_AND: opcode.BND,
	token.BITWISE_OR:  opcode.BOR,
	token.BITWISE_XOR: opcode.XOR,
	token.SHL:         opcode.SHL,
	token.SHR:         opcode.SHR,
}

// CodeGenerator emits the two sections of a program image from a list of
// top-level declarations. Generation is deterministic: the same AST
// always produces a byte-identical image.
type CodeGenerator struct {
	declarations []ast.Stmt

	data []string
	code []byte

	// last opcode appended to the code section; operands do not count
	lastOpcode opcode.Opcode

	// function name -> code address of its prologue
	functionAddress map[string]int32

	// operand address of an unresolved CAL -> callee name
	addressToLink map[int32]string
}

// Initializes and returns a new CodeGenerator instance for the given
// top-level declarations.
func New(declarations []ast.Stmt) *CodeGenerator {
	return &CodeGenerator{
		declarations:    declarations,
		functionAddress: map[string]int32{},
		addressToLink:   map[int32]string{},
	}
}

// Generate emits code for every declaration, appends the implicit
// "cal main; ext" epilogue, resolves forward references, and returns the
// serialized image.
func (cg *CodeGenerator) Generate() ([]byte, error) {
	for _, declaration := range cg.declarations {
		declaration.Accept(cg)
	}

	// call the entry point, then halt with its value as exit code
	cg.emitOpcode(opcode.POS)
	cg.emitName("main")
	cg.emitInt32(0)
	cg.emitOpcode(opcode.CAL)
	cg.emitInt32(cg.functionAddress["main"])
	cg.emitOpcode(opcode.EXT)

	if err := cg.link(); err != nil {
		return nil, err
	}

	image := make([]byte, 0, len(Signature)+len(cg.code))
	image = append(image, Signature...)
	for _, data := range cg.data {
		image = append(image, data...)
		image = append(image, 0)
	}
	image = append(image, 0)
	image = append(image, cg.code...)
	return image, nil
}

// link writes the final address of every function into the placeholder
// operands recorded during generation. There are no cycles: every edge
// goes from a call site to a function address.
func (cg *CodeGenerator) link() error {
	for address, name := range cg.addressToLink {
		target, ok := cg.functionAddress[name]
		if !ok {
			return fmt.Errorf("unresolved function %s", name)
		}
		cg.patchInt32(address, target)
	}
	return nil
}

func (cg *CodeGenerator) currentAddress() int32 {
	return int32(len(cg.code))
}

func (cg *CodeGenerator) emitOpcode(op opcode.Opcode) {
	cg.code = append(cg.code, byte(op))
	cg.lastOpcode = op
}

// emitInt32 appends a signed 32-bit big-endian operand.
func (cg *CodeGenerator) emitInt32(value int32) {
	var operand [4]byte
	binary.BigEndian.PutUint32(operand[:], uint32(value))
	cg.code = append(cg.code, operand[:]...)
}

// patchInt32 overwrites a previously emitted 32-bit operand in place.
func (cg *CodeGenerator) patchInt32(address int32, value int32) {
	binary.BigEndian.PutUint32(cg.code[address:address+4], uint32(value))
}

// emitFloat appends a 64-bit big-endian IEEE-754 operand.
func (cg *CodeGenerator) emitFloat(value float64) {
	var operand [8]byte
	binary.BigEndian.PutUint64(operand[:], math.Float64bits(value))
	cg.code = append(cg.code, operand[:]...)
}

// internData returns the data-pool index of the given string, appending
// it on first use so that every distinct string is stored exactly once.
func (cg *CodeGenerator) internData(data string) int32 {
	for index, existing := range cg.data {
		if existing == data {
			return int32(index)
		}
	}
	cg.data = append(cg.data, data)
	return int32(len(cg.data) - 1)
}

// emitName appends the data-pool index of a string as a 32-bit operand.
func (cg *CodeGenerator) emitName(name string) {
	cg.emitInt32(cg.internData(name))
}

func (cg *CodeGenerator) VisitInt(n ast.Int) any {
	cg.emitOpcode(opcode.LDI)
	cg.emitInt32(int32(n.Value))
	return nil
}

func (cg *CodeGenerator) VisitFloat(n ast.Float) any {
	cg.emitOpcode(opcode.LDF)
	cg.emitFloat(n.Value)
	return nil
}

func (cg *CodeGenerator) VisitString(n ast.String) any {
	cg.emitOpcode(opcode.LDS)
	cg.emitName(n.Value)
	return nil
}

func (cg *CodeGenerator) VisitNil(n ast.Nil) any {
	cg.emitOpcode(opcode.LDN)
	return nil
}

func (cg *CodeGenerator) VisitIdentifier(n ast.Identifier) any {
	cg.emitOpcode(opcode.LDV)
	cg.emitName(n.Name)
	return nil
}

func (cg *CodeGenerator) VisitUnary(n ast.Unary) any {
	n.Operand.Accept(cg)

	// +e is e
	if n.Operator == token.ADD {
		return nil
	}

	cg.emitOpcode(unaryInstructions[n.Operator])
	return nil
}

func (cg *CodeGenerator) VisitBinary(n ast.Binary) any {
	n.Left.Accept(cg)
	n.Right.Accept(cg)
	cg.emitOpcode(binaryInstructions[n.Operator])
	return nil
}

func (cg *CodeGenerator) VisitCall(n ast.Call) any {
	cg.generateCall(n, true)
	return nil
}

// generateCall emits a call. Arguments are pushed in reverse source order
// so the callee's prologue pops them in declared order. Built-ins compile
// to their single opcode; user calls get a POS annotation for back
// traces, then CAL with the callee address, patched later when the
// callee is not yet defined. The returned value of a user call in
// statement position is discarded with POP; built-in calls never get one.
func (cg *CodeGenerator) generateCall(n ast.Call, preserveReturn bool) {
	for i := len(n.Arguments) - 1; i >= 0; i-- {
		n.Arguments[i].Accept(cg)
	}

	if builtin, ok := opcode.Builtins[n.Name]; ok {
		cg.emitOpcode(builtin.Op)
		return
	}

	cg.emitOpcode(opcode.POS)
	cg.emitName(n.Name)
	cg.emitInt32(n.Pos.Line)

	cg.emitOpcode(opcode.CAL)
	if address, ok := cg.functionAddress[n.Name]; ok {
		cg.emitInt32(address)
	} else {
		cg.addressToLink[cg.currentAddress()] = n.Name
		cg.emitInt32(0) // patched by link
	}

	if !preserveReturn {
		cg.emitOpcode(opcode.POP)
	}
}

func (cg *CodeGenerator) VisitList(n ast.List) any {
	for i := len(n.Elements) - 1; i >= 0; i-- {
		n.Elements[i].Accept(cg)
	}
	cg.emitOpcode(opcode.LDL)
	cg.emitInt32(int32(len(n.Elements)))
	return nil
}

func (cg *CodeGenerator) VisitListAccess(n ast.ListAccess) any {
	n.Target.Accept(cg)
	n.Index.Accept(cg)
	cg.emitOpcode(opcode.GET)
	return nil
}

func (cg *CodeGenerator) VisitLet(n ast.Let) any {
	cg.emitOpcode(opcode.LET)
	cg.emitName(n.Name)

	if n.Value != nil {
		n.Value.Accept(cg)
	} else {
		cg.emitOpcode(opcode.LDN)
	}

	cg.emitOpcode(opcode.STO)
	cg.emitName(n.Name)
	return nil
}

func (cg *CodeGenerator) VisitAssign(n ast.Assign) any {
	n.Value.Accept(cg)
	cg.emitOpcode(opcode.STO)
	cg.emitName(n.Name)
	return nil
}

func (cg *CodeGenerator) VisitBlock(n ast.Block) any {
	for _, statement := range n.Statements {
		statement.Accept(cg)
	}
	return nil
}

func (cg *CodeGenerator) VisitIf(n ast.If) any {
	n.Condition.Accept(cg)

	cg.emitOpcode(opcode.JPF)
	jumpFalseAddress := cg.currentAddress()
	cg.emitInt32(0) // patched below

	n.Then.Accept(cg)

	if n.Else != nil {
		cg.emitOpcode(opcode.JMP)
		jumpEndAddress := cg.currentAddress()
		cg.emitInt32(0) // patched below

		cg.patchInt32(jumpFalseAddress, cg.currentAddress())
		n.Else.Accept(cg)
		cg.patchInt32(jumpEndAddress, cg.currentAddress())
	} else {
		cg.patchInt32(jumpFalseAddress, cg.currentAddress())
	}
	return nil
}

func (cg *CodeGenerator) VisitWhile(n ast.While) any {
	conditionAddress := cg.currentAddress()

	n.Condition.Accept(cg)
	cg.emitOpcode(opcode.JPF)
	jumpEndAddress := cg.currentAddress()
	cg.emitInt32(0) // patched below

	n.Body.Accept(cg)
	cg.emitOpcode(opcode.JMP)
	cg.emitInt32(conditionAddress)

	cg.patchInt32(jumpEndAddress, cg.currentAddress())
	return nil
}

func (cg *CodeGenerator) VisitDoWhile(n ast.DoWhile) any {
	bodyAddress := cg.currentAddress()
	n.Body.Accept(cg)

	n.Condition.Accept(cg)
	cg.emitOpcode(opcode.JPT)
	cg.emitInt32(bodyAddress)
	return nil
}

func (cg *CodeGenerator) VisitFn(n ast.Fn) any {
	// skip over the body; the function only runs when called
	cg.emitOpcode(opcode.JMP)
	jumpEndAddress := cg.currentAddress()
	cg.emitInt32(0) // patched below

	cg.functionAddress[n.Name] = cg.currentAddress()

	// the caller pushed the arguments in reverse, so popping binds them
	// in declared order
	for _, parameter := range n.Parameters {
		cg.emitOpcode(opcode.LET)
		cg.emitName(parameter.Name)
		cg.emitOpcode(opcode.STO)
		cg.emitName(parameter.Name)
	}

	n.Body.Accept(cg)

	if cg.lastOpcode != opcode.RET {
		cg.emitOpcode(opcode.RET)
	}

	cg.patchInt32(jumpEndAddress, cg.currentAddress())
	return nil
}

func (cg *CodeGenerator) VisitReturn(n ast.Return) any {
	n.Value.Accept(cg)
	cg.emitOpcode(opcode.RET)
	return nil
}

func (cg *CodeGenerator) VisitExpressionStmt(n ast.ExpressionStmt) any {
	if call, ok := n.Expression.(ast.Call); ok {
		cg.generateCall(call, false)
		return nil
	}
	n.Expression.Accept(cg)
	cg.emitOpcode(opcode.POP)
	return nil
}
