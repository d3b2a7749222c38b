// This file is part of Lockstep.
//
// Lockstep is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Lockstep is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Lockstep.  If not, see <https://www.gnu.org/licenses/>.

package logger

import (
	"bytes"
	"io"
)

const (
	penDim    = "\033[2m"
	penRed    = "\033[31m"
	penNormal = "\033[0m"
)

// Colorizer is an io.Writer that adds terminal colours to log entries. The tag
// of each entry is dimmed. Entries with the "error" tag are coloured red.
//
// Colorizer should only be used when the output is a terminal.
type Colorizer struct {
	out io.Writer
}

// NewColorizer is the preferred method of initialisation for the Colorizer
// type.
func NewColorizer(out io.Writer) Colorizer {
	return Colorizer{out: out}
}

func (c Colorizer) Write(p []byte) (int, error) {
	var b bytes.Buffer

	for _, l := range bytes.SplitAfter(p, []byte("\n")) {
		if len(l) == 0 {
			continue
		}

		tag, detail, ok := bytes.Cut(l, []byte(": "))
		if !ok {
			b.Write(l)
			continue
		}

		if bytes.Equal(tag, []byte("error")) {
			b.WriteString(penRed)
		} else {
			b.WriteString(penDim)
		}
		b.Write(tag)
		b.WriteString(": ")
		b.WriteString(penNormal)
		b.Write(detail)
	}

	_, err := c.out.Write(b.Bytes())
	if err != nil {
		return 0, err
	}
	return len(p), nil
}
