// Package device provides the byte-level devices attached to the SPU: the
// Console used by the input, print and draw instructions, and the Rom image
// holding a flat little-endian instruction stream.
package device

import (
	"errors"

	"github.com/ezrec/spu/translate"
)

var f = translate.From

var (
	// Device errors
	ErrPrematureEOF = errors.New(f("premature end of binary image"))
	ErrNoInput      = errors.New(f("console has no input"))
	ErrInputSyntax  = errors.New(f("console input is not an integer"))
	ErrScreenSize   = errors.New(f("screen size mismatch"))
)
