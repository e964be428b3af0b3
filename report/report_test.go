package report

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/jonashpro/lang/token"
)

func TestErrorFormat(t *testing.T) {
	pos := token.Position{File: "main.lng", Line: 3, Column: 7}
	err := Errorf(pos, "%s is undefined", "foo")
	assert.Equal(t, "main.lng:3:7: error: foo is undefined", err.Error())
}

func TestErrorWithoutPosition(t *testing.T) {
	err := Errorf(token.Position{}, "no entry point")
	assert.Equal(t, "error: no entry point", err.Error())
}

func TestWarningFormat(t *testing.T) {
	pos := token.Position{File: "main.lng", Line: 2, Column: 1}
	warning := Warningf(pos, "variable %s was used but not initialized", "x")
	assert.Equal(t, "main.lng:2:1: warning: variable x was used but not initialized", warning.String())
}

func TestFprint(t *testing.T) {
	color.NoColor = true

	var out bytes.Buffer
	Fprint(&out, Errorf(token.Position{File: "a.lng", Line: 1, Column: 2}, "unclosed string"))
	assert.Equal(t, "a.lng:1:2: error: unclosed string\n", out.String())

	out.Reset()
	Fprint(&out, Errorf(token.Position{}, "no entry point"))
	assert.Equal(t, "error: no entry point\n", out.String())
}

func TestFprintWarning(t *testing.T) {
	color.NoColor = true

	var out bytes.Buffer
	FprintWarning(&out, Warningf(token.Position{File: "a.lng", Line: 5, Column: 3}, "unused"))
	assert.Equal(t, "a.lng:5:3: warning: unused\n", out.String())
}
