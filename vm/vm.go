// Package vm executes program images on a stack machine: a fetch/decode
// loop over the code section with a value stack, a call stack of
// activation frames, a scope stack of name-to-slot dictionaries, and a
// fixed slot table for variable storage.
package vm

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/jonashpro/lang/compiler"
	"github.com/jonashpro/lang/opcode"
)

// MemorySize is the number of variable slots available to a program.
const MemorySize = 1024

// frame is one activation record on the call stack.
type frame struct {
	// code address to resume at after ret
	returnAddress int

	// value stack depth at the call instruction
	stackDepth int

	// diagnostic fields for back traces, taken from the pos annotation
	// preceding the call
	function string
	line     int32

	// memory slots bound while this frame was active; freed on ret
	slots []int32
}

// VM is a single program execution. It owns the value stack, the call
// stack, the scope stack, the slot table, and every file handle the
// program opens; none of it is shared.
type VM struct {
	fileName string
	data     []string
	code     []byte

	pc     int
	stack  Stack
	frames []*frame

	// stack of scope dictionaries: data-pool name index -> slot address.
	// A call pushes a copy of the top dictionary, so the callee inherits
	// enclosing bindings without mutating the caller's dictionary.
	scopes []map[int32]int32

	memory      []any
	memoryTable []bool

	// most recent pos annotation; consumed by cal, kept for panics
	callee string
	line   int32

	out io.Writer
}

// New parses a serialized program image and returns a VM ready to run
// it. The file name is only used in diagnostics.
func New(fileName string, raw []byte) (*VM, error) {
	image, err := compiler.ParseImage(raw)
	if err != nil {
		return nil, err
	}

	return &VM{
		fileName:    fileName,
		data:        image.Data,
		code:        image.Code,
		scopes:      []map[int32]int32{{}},
		memory:      make([]any, MemorySize),
		memoryTable: make([]bool, MemorySize),
		out:         os.Stdout,
	}, nil
}

// SetOutput redirects the program's standard output, which defaults to
// os.Stdout.
func (vm *VM) SetOutput(out io.Writer) {
	vm.out = out
}

// panicf builds the fatal runtime diagnostic for the current machine
// state: the failing position plus a call-stack trace, innermost frame
// first.
func (vm *VM) panicf(format string, args ...any) *PanicError {
	trace := make([]TraceFrame, 0, len(vm.frames))
	for i := len(vm.frames) - 1; i >= 0; i-- {
		trace = append(trace, TraceFrame{
			File:     vm.fileName,
			Line:     vm.frames[i].line,
			Function: vm.frames[i].function,
		})
	}
	return &PanicError{
		File:    vm.fileName,
		Line:    vm.line,
		Message: fmt.Sprintf(format, args...),
		Trace:   trace,
	}
}

// fetchInt32 reads a signed big-endian 32-bit operand at pc.
func (vm *VM) fetchInt32() (int32, error) {
	if vm.pc+4 > len(vm.code) {
		return 0, vm.panicf("unknown instruction")
	}
	value := int32(binary.BigEndian.Uint32(vm.code[vm.pc : vm.pc+4]))
	vm.pc += 4
	return value, nil
}

// fetchFloat reads a big-endian IEEE-754 64-bit operand at pc.
func (vm *VM) fetchFloat() (float64, error) {
	if vm.pc+8 > len(vm.code) {
		return 0, vm.panicf("unknown instruction")
	}
	value := math.Float64frombits(binary.BigEndian.Uint64(vm.code[vm.pc : vm.pc+8]))
	vm.pc += 8
	return value, nil
}

// dataString resolves a data-pool index operand.
func (vm *VM) dataString(index int32) (string, error) {
	if index < 0 || int(index) >= len(vm.data) {
		return "", vm.panicf("invalid data index %d", index)
	}
	return vm.data[index], nil
}

// pop removes the top of the value stack.
func (vm *VM) pop() (any, error) {
	value, ok := vm.stack.Pop()
	if !ok {
		return nil, vm.panicf("stack underflow")
	}
	return value, nil
}

// popList pops a value that must be a list.
func (vm *VM) popList() (*List, error) {
	value, err := vm.pop()
	if err != nil {
		return nil, err
	}
	list, ok := value.(*List)
	if !ok {
		return nil, vm.panicf("value of type %s is not subscriptable", TypeName(value))
	}
	return list, nil
}

// popIndex pops a value that must be an integer index.
func (vm *VM) popIndex() (int64, error) {
	value, err := vm.pop()
	if err != nil {
		return 0, err
	}
	index, ok := value.(int64)
	if !ok {
		return 0, vm.panicf("invalid index of type %s", TypeName(value))
	}
	return index, nil
}

// popFile pops a value that must be a file handle.
func (vm *VM) popFile() (*File, error) {
	value, err := vm.pop()
	if err != nil {
		return nil, err
	}
	file, ok := value.(*File)
	if !ok {
		return nil, vm.panicf("value of type %s is not a file", TypeName(value))
	}
	return file, nil
}

// currentScope returns the top scope dictionary.
func (vm *VM) currentScope() map[int32]int32 {
	return vm.scopes[len(vm.scopes)-1]
}

// allocate finds the lowest free memory slot with a first-fit scan and
// marks it occupied.
func (vm *VM) allocate() (int32, bool) {
	for address := range vm.memoryTable {
		if !vm.memoryTable[address] {
			vm.memoryTable[address] = true
			return int32(address), true
		}
	}
	return 0, false
}

// jump validates a branch target and moves pc there.
func (vm *VM) jump(address int32) error {
	if address < 0 || int(address) > len(vm.code) {
		return vm.panicf("invalid address %d", address)
	}
	vm.pc = int(address)
	return nil
}

// Run executes the loaded image until hlt, ext, or a runtime panic. The
// returned error is nil after hlt, an *ExitError after ext, and a
// *PanicError on any fatal condition.
func (vm *VM) Run() error {
	for {
		if vm.pc >= len(vm.code) {
			return vm.panicf("unknown instruction")
		}
		instr := opcode.Opcode(vm.code[vm.pc])
		vm.pc++

		if apply, ok := binaryOperations[instr]; ok {
			b, err := vm.pop()
			if err != nil {
				return err
			}
			a, err := vm.pop()
			if err != nil {
				return err
			}
			result, opErr := apply(a, b)
			if opErr != nil {
				return vm.panicf("%s", opErr)
			}
			vm.stack.Push(result)
			continue
		}

		if apply, ok := unaryOperations[instr]; ok {
			a, err := vm.pop()
			if err != nil {
				return err
			}
			result, opErr := apply(a)
			if opErr != nil {
				return vm.panicf("%s", opErr)
			}
			vm.stack.Push(result)
			continue
		}

		var err error
		switch instr {
		case opcode.HLT:
			return nil

		case opcode.NOP:

		case opcode.LDI:
			var value int32
			if value, err = vm.fetchInt32(); err == nil {
				vm.stack.Push(int64(value))
			}

		case opcode.LDF:
			var value float64
			if value, err = vm.fetchFloat(); err == nil {
				vm.stack.Push(value)
			}

		case opcode.LDS:
			err = vm.execLoadString()

		case opcode.LDN:
			vm.stack.Push(nil)

		case opcode.JMP:
			var address int32
			if address, err = vm.fetchInt32(); err == nil {
				err = vm.jump(address)
			}

		case opcode.JPT, opcode.JPF:
			err = vm.execConditionalJump(instr == opcode.JPT)

		case opcode.POS:
			err = vm.execPos()

		case opcode.CAL:
			err = vm.execCall()

		case opcode.RET:
			err = vm.execReturn()

		case opcode.WRT:
			var value any
			if value, err = vm.pop(); err == nil {
				fmt.Fprintln(vm.out, Format(value))
			}

		case opcode.LET:
			err = vm.execLet()

		case opcode.STO:
			err = vm.execStore()

		case opcode.LDV:
			err = vm.execLoadVariable()

		case opcode.DUP:
			var value any
			if value, err = vm.pop(); err == nil {
				vm.stack.Push(value)
				vm.stack.Push(value)
			}

		case opcode.INC, opcode.DEC:
			err = vm.execStep(instr)

		case opcode.EXT:
			value, _ := vm.stack.Pop()
			if code, ok := value.(int64); ok {
				return &ExitError{Code: int(code)}
			}
			return &ExitError{Code: 0}

		case opcode.POP:
			_, err = vm.pop()

		case opcode.LDL:
			err = vm.execLoadList()

		case opcode.GET:
			err = vm.execGet()

		case opcode.SET:
			err = vm.execSet()

		case opcode.APD:
			err = vm.execAppend()

		case opcode.LPP:
			err = vm.execListPop()

		case opcode.LEN:
			err = vm.execLength()

		case opcode.CPY:
			err = vm.execCopy()

		case opcode.TYP:
			var value any
			if value, err = vm.pop(); err == nil {
				vm.stack.Push(TypeName(value))
			}

		case opcode.FOP:
			err = vm.execFileOpen()

		case opcode.FWT:
			err = vm.execFileWrite()

		case opcode.FRD:
			err = vm.execFileRead()

		case opcode.FRL:
			err = vm.execFileReadLine()

		case opcode.FCL:
			err = vm.execFileClose()

		default:
			return vm.panicf("unknown instruction %d", byte(instr))
		}

		if err != nil {
			return err
		}
	}
}

func (vm *VM) execLoadString() error {
	index, err := vm.fetchInt32()
	if err != nil {
		return err
	}
	value, err := vm.dataString(index)
	if err != nil {
		return err
	}
	vm.stack.Push(value)
	return nil
}

func (vm *VM) execConditionalJump(whenTruthy bool) error {
	address, err := vm.fetchInt32()
	if err != nil {
		return err
	}
	value, err := vm.pop()
	if err != nil {
		return err
	}
	if Truthy(value) == whenTruthy {
		return vm.jump(address)
	}
	return nil
}

// execPos records the debug annotation preceding a call: the callee name
// and the call-site line. Panics report the most recent line seen.
func (vm *VM) execPos() error {
	nameIndex, err := vm.fetchInt32()
	if err != nil {
		return err
	}
	line, err := vm.fetchInt32()
	if err != nil {
		return err
	}
	name, err := vm.dataString(nameIndex)
	if err != nil {
		return err
	}
	vm.callee = name
	vm.line = line
	return nil
}

func (vm *VM) execCall() error {
	address, err := vm.fetchInt32()
	if err != nil {
		return err
	}

	// the callee inherits the enclosing bindings through a copy, so its
	// local declarations never leak back into the caller's dictionary
	top := vm.currentScope()
	inherited := make(map[int32]int32, len(top))
	for name, slot := range top {
		inherited[name] = slot
	}
	vm.scopes = append(vm.scopes, inherited)

	vm.frames = append(vm.frames, &frame{
		returnAddress: vm.pc,
		stackDepth:    vm.stack.Len(),
		function:      vm.callee,
		line:          vm.line,
	})
	vm.callee = ""

	return vm.jump(address)
}

func (vm *VM) execReturn() error {
	if len(vm.frames) == 0 {
		return vm.panicf("call stack underflow")
	}

	current := vm.frames[len(vm.frames)-1]
	vm.frames = vm.frames[:len(vm.frames)-1]

	for _, slot := range current.slots {
		vm.memoryTable[slot] = false
	}
	vm.scopes = vm.scopes[:len(vm.scopes)-1]

	// the frame's result, nil when the function never pushed one
	returnValue, _ := vm.stack.Pop()
	vm.stack.Truncate(current.stackDepth)
	vm.stack.Push(returnValue)

	vm.pc = current.returnAddress
	return nil
}

func (vm *VM) execLet() error {
	nameIndex, err := vm.fetchInt32()
	if err != nil {
		return err
	}
	if _, err := vm.dataString(nameIndex); err != nil {
		return err
	}

	address, ok := vm.allocate()
	if !ok {
		return vm.panicf("memory overflow")
	}
	vm.currentScope()[nameIndex] = address

	if len(vm.frames) > 0 {
		current := vm.frames[len(vm.frames)-1]
		current.slots = append(current.slots, address)
	}
	return nil
}

func (vm *VM) execStore() error {
	nameIndex, err := vm.fetchInt32()
	if err != nil {
		return err
	}
	value, err := vm.pop()
	if err != nil {
		return err
	}
	address, ok := vm.currentScope()[nameIndex]
	if !ok {
		name, _ := vm.dataString(nameIndex)
		return vm.panicf("undefined variable %s", name)
	}
	vm.memory[address] = value
	return nil
}

func (vm *VM) execLoadVariable() error {
	nameIndex, err := vm.fetchInt32()
	if err != nil {
		return err
	}
	address, ok := vm.currentScope()[nameIndex]
	if !ok {
		name, _ := vm.dataString(nameIndex)
		return vm.panicf("undefined variable %s", name)
	}
	vm.stack.Push(vm.memory[address])
	return nil
}

func (vm *VM) execStep(instr opcode.Opcode) error {
	value, err := vm.pop()
	if err != nil {
		return err
	}
	delta := int64(1)
	if instr == opcode.DEC {
		delta = -1
	}
	result, opErr := stepValue(value, delta)
	if opErr != nil {
		return vm.panicf("%s", opErr)
	}
	vm.stack.Push(result)
	return nil
}

func (vm *VM) execLoadList() error {
	count, err := vm.fetchInt32()
	if err != nil {
		return err
	}
	if count < 0 {
		return vm.panicf("unknown instruction")
	}

	// the generator pushed the elements in reverse, so popping restores
	// source order
	elements := make([]any, count)
	for i := range elements {
		if elements[i], err = vm.pop(); err != nil {
			return err
		}
	}
	vm.stack.Push(&List{Elements: elements})
	return nil
}

func (vm *VM) execGet() error {
	index, err := vm.popIndex()
	if err != nil {
		return err
	}
	list, err := vm.popList()
	if err != nil {
		return err
	}
	if index < 0 || index >= int64(len(list.Elements)) {
		return vm.panicf("list index out of range")
	}
	vm.stack.Push(list.Elements[index])
	return nil
}

func (vm *VM) execSet() error {
	list, err := vm.popList()
	if err != nil {
		return err
	}
	index, err := vm.popIndex()
	if err != nil {
		return err
	}
	value, err := vm.pop()
	if err != nil {
		return err
	}
	if index < 0 || index >= int64(len(list.Elements)) {
		return vm.panicf("list index out of range")
	}
	list.Elements[index] = value
	return nil
}

func (vm *VM) execAppend() error {
	list, err := vm.popList()
	if err != nil {
		return err
	}
	value, err := vm.pop()
	if err != nil {
		return err
	}
	list.Elements = append(list.Elements, value)
	return nil
}

func (vm *VM) execListPop() error {
	list, err := vm.popList()
	if err != nil {
		return err
	}
	index, err := vm.popIndex()
	if err != nil {
		return err
	}
	if index < 0 || index >= int64(len(list.Elements)) {
		return vm.panicf("list index out of range")
	}
	list.Elements = append(list.Elements[:index], list.Elements[index+1:]...)
	return nil
}

func (vm *VM) execLength() error {
	value, err := vm.pop()
	if err != nil {
		return err
	}
	switch v := value.(type) {
	case *List:
		vm.stack.Push(int64(len(v.Elements)))
	case string:
		vm.stack.Push(int64(len(v)))
	default:
		return vm.panicf("value of type %s has no length", TypeName(value))
	}
	return nil
}

func (vm *VM) execCopy() error {
	value, err := vm.pop()
	if err != nil {
		return err
	}
	if list, ok := value.(*List); ok {
		elements := make([]any, len(list.Elements))
		copy(elements, list.Elements)
		vm.stack.Push(&List{Elements: elements})
		return nil
	}
	vm.stack.Push(value)
	return nil
}

func (vm *VM) execFileOpen() error {
	value, err := vm.pop()
	if err != nil {
		return err
	}
	path, ok := value.(string)
	if !ok {
		return vm.panicf("illegal operation between %s and string", TypeName(value))
	}
	value, err = vm.pop()
	if err != nil {
		return err
	}
	mode, ok := value.(string)
	if !ok {
		return vm.panicf("illegal operation between string and %s", TypeName(value))
	}

	var handle *os.File
	var openErr error
	switch mode {
	case "w":
		handle, openErr = os.Create(path)
	case "a":
		handle, openErr = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	default:
		handle, openErr = os.Open(path)
	}

	// a missing file is not a panic; the program sees nil
	if openErr != nil {
		vm.stack.Push(nil)
		return nil
	}

	vm.stack.Push(&File{
		Name:   path,
		handle: handle,
		reader: bufio.NewReader(handle),
	})
	return nil
}

func (vm *VM) execFileWrite() error {
	file, err := vm.popFile()
	if err != nil {
		return err
	}
	value, err := vm.pop()
	if err != nil {
		return err
	}
	if _, writeErr := file.handle.WriteString(Format(value)); writeErr != nil {
		return vm.panicf("%s", writeErr)
	}
	return nil
}

func (vm *VM) execFileRead() error {
	file, err := vm.popFile()
	if err != nil {
		return err
	}
	content, readErr := io.ReadAll(file.reader)
	if readErr != nil {
		return vm.panicf("%s", readErr)
	}
	vm.stack.Push(string(content))
	return nil
}

func (vm *VM) execFileReadLine() error {
	file, err := vm.popFile()
	if err != nil {
		return err
	}
	line, readErr := file.reader.ReadString('\n')
	if readErr != nil && line == "" {
		vm.stack.Push(nil)
		return nil
	}
	vm.stack.Push(strings.TrimSuffix(line, "\n"))
	return nil
}

func (vm *VM) execFileClose() error {
	file, err := vm.popFile()
	if err != nil {
		return err
	}
	file.handle.Close()
	return nil
}
