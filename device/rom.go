package device

import (
	"encoding/binary"
	"io"
)

// WORD_SIZE is the size in bytes of one instruction word in a binary image.
const WORD_SIZE = 4

// Rom is a flat binary image: little-endian instruction words, no header.
type Rom struct {
	Data []uint32
}

var _ io.ReaderFrom = (*Rom)(nil)
var _ io.WriterTo = (*Rom)(nil)

// ReadFrom replaces the image with the words read from r.
// An image whose length is not a multiple of WORD_SIZE is rejected.
func (rom *Rom) ReadFrom(r io.Reader) (n int64, err error) {
	raw, err := io.ReadAll(r)
	n = int64(len(raw))
	if err != nil {
		return
	}

	if len(raw)%WORD_SIZE != 0 {
		err = ErrPrematureEOF
		return
	}

	data := make([]uint32, 0, len(raw)/WORD_SIZE)
	for len(raw) > 0 {
		data = append(data, binary.LittleEndian.Uint32(raw))
		raw = raw[WORD_SIZE:]
	}

	rom.Data = data
	return
}

// WriteTo writes the image to w.
func (rom *Rom) WriteTo(w io.Writer) (n int64, err error) {
	raw := make([]byte, 0, len(rom.Data)*WORD_SIZE)
	for _, word := range rom.Data {
		raw = binary.LittleEndian.AppendUint32(raw, word)
	}

	written, err := w.Write(raw)
	n = int64(written)
	return
}
