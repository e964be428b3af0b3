package vm

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// Runtime values are carried as any, tagged by their Go type:
// int64, float64, string, *List, *File, or nil.

// List is a mutable reference value. All copies on the value stack share
// the same element sequence, so a mutation through one copy is observed
// by every other; an independent copy requires the copy built-in.
type List struct {
	Elements []any
}

// File is an open file handle produced by the fopen built-in. Reads go
// through a buffered reader so line reads and whole-file reads compose.
type File struct {
	Name   string
	handle *os.File
	reader *bufio.Reader
}

// Truthy reports whether a value counts as true for conditional jumps and
// the logical operators: nil, zero numbers, the empty string and the
// empty list are falsy; everything else is truthy.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v != ""
	case *List:
		return len(v.Elements) != 0
	default:
		return true
	}
}

// TypeName returns the name the type built-in reports for a value.
func TypeName(value any) string {
	switch value.(type) {
	case nil:
		return "nil"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case *List:
		return "list"
	case *File:
		return "file"
	default:
		return "unknown"
	}
}

// Format renders a value the way the write built-in prints it. Strings
// print their raw bytes; inside lists they print quoted.
func Format(value any) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return formatFloat(v)
	case string:
		return v
	case *List:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, element := range v.Elements {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(formatElement(element))
		}
		sb.WriteByte(']')
		return sb.String()
	case *File:
		return "<file " + v.Name + ">"
	default:
		return "unknown"
	}
}

func formatElement(value any) string {
	if s, ok := value.(string); ok {
		return strconv.Quote(s)
	}
	return Format(value)
}

// formatFloat keeps a decimal point on round floats so that 3.0 does not
// print like the integer 3.
func formatFloat(value float64) string {
	s := strconv.FormatFloat(value, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
