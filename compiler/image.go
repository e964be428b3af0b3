package compiler

import (
	"bytes"
	"errors"
)

// Signature is the five-byte magic at the start of every program image.
var Signature = []byte{'.', 'l', 'n', 'g', 0x00}

// Image is a program image split into its two sections. Data holds the
// interned strings of the data pool in index order; Code is the raw
// opcode/operand stream.
type Image struct {
	Data []string
	Code []byte
}

// ErrInvalidFormat is returned when a byte stream is not a program image.
var ErrInvalidFormat = errors.New("invalid file format")

// ParseImage verifies the signature and splits a serialized image into
// its data and code sections. The data section is a run of NUL-terminated
// strings closed by one extra NUL; everything after that is code.
func ParseImage(raw []byte) (*Image, error) {
	if !bytes.HasPrefix(raw, Signature) {
		return nil, ErrInvalidFormat
	}
	rest := raw[len(Signature):]

	image := &Image{}
	position := 0
	for position < len(rest) && rest[position] != 0 {
		end := bytes.IndexByte(rest[position:], 0)
		if end < 0 {
			return nil, ErrInvalidFormat
		}
		image.Data = append(image.Data, string(rest[position:position+end]))
		position += end + 1
	}
	if position >= len(rest) {
		return nil, ErrInvalidFormat
	}
	position++ // section terminator

	image.Code = rest[position:]
	return image, nil
}
