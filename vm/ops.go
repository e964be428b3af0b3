package vm

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/jonashpro/lang/opcode"
)

// Operand type errors become panics; the messages here are the panic
// texts.

func illegalOperation(a, b any) error {
	return fmt.Errorf("illegal operation between %s and %s", TypeName(a), TypeName(b))
}

func illegalUnaryOperation(a any) error {
	return fmt.Errorf("illegal operation on %s", TypeName(a))
}

func asInts(a, b any) (int64, int64, bool) {
	x, okx := a.(int64)
	y, oky := b.(int64)
	return x, y, okx && oky
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func asFloats(a, b any) (float64, float64, bool) {
	x, okx := toFloat(a)
	y, oky := toFloat(b)
	return x, y, okx && oky
}

func btoi(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// valueEquals compares two values for the eq/ne instructions. Numbers
// compare across int and float; lists compare element-wise.
func valueEquals(a, b any) bool {
	if x, y, ok := asInts(a, b); ok {
		return x == y
	}
	if x, y, ok := asFloats(a, b); ok {
		return x == y
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders two values for the relational instructions.
// Numbers order numerically, strings lexicographically; anything else is
// an illegal operation.
func compareValues(a, b any) (int, error) {
	if x, y, ok := asInts(a, b); ok {
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		}
		return 0, nil
	}
	if x, y, ok := asFloats(a, b); ok {
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		}
		return 0, nil
	}
	if x, ok := a.(string); ok {
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), nil
		}
	}
	return 0, illegalOperation(a, b)
}

func addValues(a, b any) (any, error) {
	if x, y, ok := asInts(a, b); ok {
		return x + y, nil
	}
	if x, y, ok := asFloats(a, b); ok {
		return x + y, nil
	}
	if x, ok := a.(string); ok {
		if y, ok := b.(string); ok {
			return x + y, nil
		}
	}
	return nil, illegalOperation(a, b)
}

func subValues(a, b any) (any, error) {
	if x, y, ok := asInts(a, b); ok {
		return x - y, nil
	}
	if x, y, ok := asFloats(a, b); ok {
		return x - y, nil
	}
	return nil, illegalOperation(a, b)
}

func mulValues(a, b any) (any, error) {
	if x, y, ok := asInts(a, b); ok {
		return x * y, nil
	}
	if x, y, ok := asFloats(a, b); ok {
		return x * y, nil
	}
	return nil, illegalOperation(a, b)
}

func divValues(a, b any) (any, error) {
	if x, y, ok := asInts(a, b); ok {
		if y == 0 {
			return nil, errors.New("division by zero")
		}
		return x / y, nil
	}
	if x, y, ok := asFloats(a, b); ok {
		if y == 0 {
			return nil, errors.New("division by zero")
		}
		return x / y, nil
	}
	return nil, illegalOperation(a, b)
}

func shiftValues(a, b any, left bool) (any, error) {
	x, y, ok := asInts(a, b)
	if !ok {
		return nil, illegalOperation(a, b)
	}
	if y < 0 {
		return nil, errors.New("negative shift count")
	}
	if left {
		return x << uint(y), nil
	}
	return x >> uint(y), nil
}

func relational(test func(int) bool) func(a, b any) (any, error) {
	return func(a, b any) (any, error) {
		order, err := compareValues(a, b)
		if err != nil {
			return nil, err
		}
		return btoi(test(order)), nil
	}
}

func bitwise(apply func(x, y int64) int64) func(a, b any) (any, error) {
	return func(a, b any) (any, error) {
		x, y, ok := asInts(a, b)
		if !ok {
			return nil, illegalOperation(a, b)
		}
		return apply(x, y), nil
	}
}

// binaryOperations dispatches every two-operand instruction. The logical
// and/or are eager: both operands are already on the stack when the
// instruction runs.
var binaryOperations = map[opcode.Opcode]func(a, b any) (any, error){
	opcode.ADD: addValues,
	opcode.SUB: subValues,
	opcode.MUL: mulValues,
	opcode.DIV: divValues,
	opcode.EQ: func(a, b any) (any, error) {
		return btoi(valueEquals(a, b)), nil
	},
	opcode.NE: func(a, b any) (any, error) {
		return btoi(!valueEquals(a, b)), nil
	},
	opcode.LT: relational(func(order int) bool { return order < 0 }),
	opcode.LE: relational(func(order int) bool { return order <= 0 }),
	opcode.GT: relational(func(order int) bool { return order > 0 }),
	opcode.GE: relational(func(order int) bool { return order >= 0 }),
	opcode.AND: func(a, b any) (any, error) {
		return btoi(Truthy(a) && Truthy(b)), nil
	},
	opcode.OR: func(a, b any) (any, error) {
		return btoi(Truthy(a) || Truthy(b)), nil
	},
	opcode.XOR: bitwise(func(x, y int64) int64 { return x ^ y }),
	opcode.BOR: bitwise(func(x, y int64) int64 { return x | y }),
	opcode.BND: bitwise(func(x, y int64) int64 { return x & y }),
	opcode.SHL: func(a, b any) (any, error) { return shiftValues(a, b, true) },
	opcode.SHR: func(a, b any) (any, error) { return shiftValues(a, b, false) },
}

// unaryOperations dispatches every one-operand instruction.
var unaryOperations = map[opcode.Opcode]func(a any) (any, error){
	opcode.NOT: func(a any) (any, error) {
		return btoi(!Truthy(a)), nil
	},
	opcode.NEG: func(a any) (any, error) {
		switch v := a.(type) {
		case int64:
			return -v, nil
		case float64:
			return -v, nil
		}
		return nil, illegalUnaryOperation(a)
	},
	opcode.BNT: func(a any) (any, error) {
		v, ok := a.(int64)
		if !ok {
			return nil, illegalUnaryOperation(a)
		}
		return ^v, nil
	},
}

// stepValue adds delta to a numeric value for inc/dec.
func stepValue(a any, delta int64) (any, error) {
	switch v := a.(type) {
	case int64:
		return v + delta, nil
	case float64:
		return v + float64(delta), nil
	}
	return nil, illegalUnaryOperation(a)
}
