package lexer

import "strconv"

// Position is a location in a source file. Line and Column are 1-based,
// Offset is the 0-based byte offset into the source.
type Position struct {
	Filename string
	Line     int
	Column   int
	Offset   int
}

// String renders the position as "file:line:col", or "line:col" when the
// source has no file name.
func (p Position) String() string {
	lc := strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
	if p.Filename == "" {
		return lc
	}
	return p.Filename + ":" + lc
}

// IsValid reports whether the position was set by the lexer.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Before reports whether p is earlier in the source than other.
func (p Position) Before(other Position) bool {
	return p.Offset < other.Offset
}

// After reports whether p is later in the source than other.
func (p Position) After(other Position) bool {
	return p.Offset > other.Offset
}

// Span is a half-open source range [Start, End).
type Span struct {
	Start Position
	End   Position
}

func (s Span) String() string {
	if s.Start.Line == s.End.Line {
		return s.Start.String() + "-" + strconv.Itoa(s.End.Column)
	}
	return s.Start.String() + "-" + strconv.Itoa(s.End.Line) + ":" + strconv.Itoa(s.End.Column)
}

// IsValid reports whether both ends are set and End does not precede Start.
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid() && !s.End.Before(s.Start)
}

// Contains reports whether pos falls inside the span.
func (s Span) Contains(pos Position) bool {
	return !pos.Before(s.Start) && pos.Before(s.End)
}

// Length returns the span length in bytes.
func (s Span) Length() int {
	if !s.IsValid() {
		return 0
	}
	return s.End.Offset - s.Start.Offset
}
