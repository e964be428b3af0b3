package disasm

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonashpro/lang/compiler"
	"github.com/jonashpro/lang/lexer"
	"github.com/jonashpro/lang/opcode"
	"github.com/jonashpro/lang/parser"
)

// generate compiles a source snippet into an image.
func generate(t *testing.T, source string) []byte {
	t.Helper()
	tokens, err := lexer.New("test.lng", source).Lex()
	require.NoError(t, err)
	declarations, err := parser.New(tokens).Parse()
	require.NoError(t, err)
	image, err := compiler.New(declarations).Generate()
	require.NoError(t, err)
	return image
}

// listing disassembles an image with color disabled.
func listing(t *testing.T, image []byte) string {
	t.Helper()
	color.NoColor = true

	disassembler, err := New(image)
	require.NoError(t, err)

	var out bytes.Buffer
	disassembler.SetOutput(&out)
	require.NoError(t, disassembler.Disassemble())
	return out.String()
}

func TestDisassembleHelloWorld(t *testing.T) {
	image := generate(t, `fn main() { write("hi"); return 0; }`)
	text := listing(t, image)

	assert.Contains(t, text, "DATA")
	assert.Contains(t, text, "hi")
	assert.Contains(t, text, "CODE")
	assert.Contains(t, text, "jmp")
	assert.Contains(t, text, `lds   0 // string "hi"`)
	assert.Contains(t, text, "wrt")
	assert.Contains(t, text, "ldi")
	assert.Contains(t, text, "ret")
	assert.Contains(t, text, "pos")
	assert.Contains(t, text, "// function main")
	assert.Contains(t, text, "cal")
	assert.Contains(t, text, "ext")
}

func TestDisassembleVariablesAndFloats(t *testing.T) {
	image := generate(t, `
fn main() {
	let pi = 3.5;
	write(pi);
	return 0;
}
`)
	text := listing(t, image)

	assert.Contains(t, text, "ldf 3.5")
	assert.Contains(t, text, "// variable pi")
	assert.Contains(t, text, "let")
	assert.Contains(t, text, "sto")
	assert.Contains(t, text, "ldv")
}

func TestDisassembleRejectsUnknownOpcode(t *testing.T) {
	raw := append(append([]byte{}, compiler.Signature...), 0x00, 0xFF)

	disassembler, err := New(raw)
	require.NoError(t, err)

	var out bytes.Buffer
	disassembler.SetOutput(&out)
	err = disassembler.Disassemble()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown opcode 255")
}

func TestDisassembleRejectsTruncatedOperand(t *testing.T) {
	raw := append(append([]byte{}, compiler.Signature...), 0x00, byte(opcode.LDI), 0x00)

	disassembler, err := New(raw)
	require.NoError(t, err)

	err = disassembler.Disassemble()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated operand")
}
