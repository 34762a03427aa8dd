// Package syntax holds the position, channel and error types shared by the
// CMIS and FTS grammars.
package syntax

import "fmt"

// Pos is the start position of a token or tree node.
// Line is 1-based, Column is 0-based and counts runes, Offset is a byte offset.
type Pos struct {
	Line   int
	Column int
	Offset int
}

// StartPos is the position of the first character of any input.
var StartPos = Pos{Line: 1}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Advance returns the position after r.
func (p Pos) Advance(r rune, width int) Pos {
	p.Offset += width
	if r == '\n' {
		p.Line++
		p.Column = 0
	} else {
		p.Column++
	}
	return p
}

// Shift translates p, a position inside a nested input, into the coordinates
// of the enclosing input that starts at base.
func (p Pos) Shift(base Pos) Pos {
	out := Pos{Line: base.Line + p.Line - 1, Offset: base.Offset + p.Offset}
	if p.Line == 1 {
		out.Column = base.Column + p.Column
	} else {
		out.Column = p.Column
	}
	return out
}

// Channel routes a token to the parser or away from it.
type Channel int

const (
	// ChannelDefault tokens are visible to grammar rules.
	ChannelDefault Channel = iota
	// ChannelHidden tokens are kept for position tracking only.
	ChannelHidden
)

func (c Channel) String() string {
	if c == ChannelHidden {
		return "hidden"
	}
	return "default"
}
