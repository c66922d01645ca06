package device

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// Console provides blocking integer I/O and a character screen.
// It wraps an io.Reader for input and an io.Writer for output.
type Console struct {
	Input  io.Reader
	Output io.Writer

	reader *bufio.Reader
	source io.Reader
}

// Rewind drops any buffered, unread input.
func (con *Console) Rewind() {
	con.reader = nil
	con.source = nil
}

// Writer returns the output, or io.Discard when there is none.
func (con *Console) Writer() io.Writer {
	if con.Output == nil {
		return io.Discard
	}
	return con.Output
}

// ReadInt reads one whitespace-delimited signed integer. Base prefixes
// (0x, 0o, 0b) are accepted.
func (con *Console) ReadInt() (value int64, err error) {
	if con.Input == nil {
		err = ErrNoInput
		return
	}

	if con.reader == nil || con.source != con.Input {
		con.reader = bufio.NewReader(con.Input)
		con.source = con.Input
	}

	_, err = fmt.Fscan(con.reader, &value)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = errors.Join(ErrNoInput, err)
		} else {
			err = errors.Join(ErrInputSyntax, err)
		}
		return
	}

	return
}

// WriteInt writes a signed integer followed by a newline.
func (con *Console) WriteInt(value int64) (err error) {
	_, err = fmt.Fprintf(con.Writer(), "%d\n", value)
	return
}

// Draw renders height*width cells, row-major. A nonzero cell is drawn
// as "* ", a zero cell as ". ", and a newline follows every height cells.
func (con *Console) Draw(cells []int64, height, width int) (err error) {
	if height <= 0 || width <= 0 || len(cells) != height*width {
		err = ErrScreenSize
		return
	}

	out := bufio.NewWriter(con.Writer())

	for n, cell := range cells {
		if n != 0 && n%height == 0 {
			out.WriteByte('\n')
		}
		if cell != 0 {
			out.WriteString("* ")
		} else {
			out.WriteString(". ")
		}
	}
	out.WriteByte('\n')

	err = out.Flush()
	return
}
