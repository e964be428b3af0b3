// Package disasm renders a program image as a human-readable listing:
// the data pool first, then the code section with one instruction per
// line, addresses highlighted and operand meanings spelled out in
// comments.
package disasm

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/fatih/color"

	"github.com/jonashpro/lang/compiler"
	"github.com/jonashpro/lang/opcode"
)

// Disassembler walks the code section of a parsed image and prints a
// listing.
type Disassembler struct {
	image *Image
	out   io.Writer
}

// Image aliases the parsed program image so callers only need this
// package.
type Image = compiler.Image

// New parses a serialized program image and returns a Disassembler that
// writes its listing to standard output.
func New(raw []byte) (*Disassembler, error) {
	image, err := compiler.ParseImage(raw)
	if err != nil {
		return nil, err
	}
	return &Disassembler{
		image: image,
		out:   os.Stdout,
	}, nil
}

// SetOutput redirects the listing.
func (d *Disassembler) SetOutput(out io.Writer) {
	d.out = out
}

// number renders a right-aligned highlighted address or operand.
func number(value int64) string {
	return color.New(color.FgGreen, color.Bold).Sprintf("%3d", value)
}

// comment renders a dimmed end-of-line comment.
func comment(format string, args ...any) string {
	return color.New(color.FgHiBlack).Sprintf("// "+format, args...)
}

// dataName resolves a data-pool operand for a comment; a bad index is
// shown as-is rather than failing the listing.
func (d *Disassembler) dataName(index int32) string {
	if index < 0 || int(index) >= len(d.image.Data) {
		return fmt.Sprintf("?%d", index)
	}
	return d.image.Data[index]
}

// Disassemble prints the DATA section and then decodes the CODE section
// instruction by instruction.
func (d *Disassembler) Disassemble() error {
	if len(d.image.Data) > 0 {
		fmt.Fprintln(d.out, "DATA")
		for index, data := range d.image.Data {
			fmt.Fprintf(d.out, "  %s  %s\n", number(int64(index)), data)
		}
		fmt.Fprintln(d.out)
	}

	fmt.Fprintln(d.out, "CODE")

	code := d.image.Code
	pc := 0
	for pc < len(code) {
		address := pc
		op := opcode.Opcode(code[pc])
		pc++

		def, err := opcode.Lookup(op)
		if err != nil {
			return fmt.Errorf("unknown opcode %d at address %d", code[address], address)
		}

		operands := make([]int64, 0, len(def.OperandWidths))
		var float float64
		for _, width := range def.OperandWidths {
			if pc+width > len(code) {
				return fmt.Errorf("truncated operand at address %d", address)
			}
			switch width {
			case 4:
				operands = append(operands, int64(int32(binary.BigEndian.Uint32(code[pc:pc+4]))))
			case 8:
				float = math.Float64frombits(binary.BigEndian.Uint64(code[pc : pc+8]))
			}
			pc += width
		}

		fmt.Fprintf(d.out, "  %s  ", number(int64(address)))

		switch op {
		case opcode.LDF:
			fmt.Fprintf(d.out, "%s %v\n", def.Name, float)

		case opcode.LDS:
			fmt.Fprintf(d.out, "%s %s %s\n", def.Name, number(operands[0]),
				comment("string %q", d.dataName(int32(operands[0]))))

		case opcode.STO, opcode.LDV, opcode.LET:
			fmt.Fprintf(d.out, "%s %s %s\n", def.Name, number(operands[0]),
				comment("variable %s", d.dataName(int32(operands[0]))))

		case opcode.POS:
			fmt.Fprintf(d.out, "%s %s %s %s\n", def.Name, number(operands[0]), number(operands[1]),
				comment("function %s", d.dataName(int32(operands[0]))))

		default:
			fmt.Fprint(d.out, def.Name)
			for _, operand := range operands {
				fmt.Fprintf(d.out, " %s", number(operand))
			}
			fmt.Fprintln(d.out)
		}
	}

	return nil
}
