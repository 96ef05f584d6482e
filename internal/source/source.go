package source

import (
	"bytes"
	"fmt"
	"os"
)

// Span is a byte range of a unit's text. It references the text, it never copies it.
type Span struct {
	Offset int
	Length int
}

func (s Span) End() int {
	return s.Offset + s.Length
}

type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Unit struct {
	Path string
	Data []byte
}

func Load(path string) (*Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load source: %w", err)
	}

	return &Unit{
		Path: path,
		Data: data,
	}, nil
}

func Inline(code string, path string) *Unit {
	return &Unit{
		Path: path,
		Data: []byte(code),
	}
}

func (u *Unit) Text(span Span) string {
	if span.Offset < 0 || span.End() > len(u.Data) {
		return ""
	}
	return string(u.Data[span.Offset:span.End()])
}

// Position resolves a byte offset into a 1-based line and column.
func (u *Unit) Position(offset int) Position {
	if offset > len(u.Data) {
		offset = len(u.Data)
	}

	line := 1 + bytes.Count(u.Data[:offset], []byte{'\n'})
	lineStart := bytes.LastIndexByte(u.Data[:offset], '\n') + 1

	return Position{
		Line:   line,
		Column: offset - lineStart + 1,
	}
}

// Line returns the full text of the line containing offset, without its newline.
func (u *Unit) Line(offset int) string {
	if offset > len(u.Data) {
		offset = len(u.Data)
	}

	start := bytes.LastIndexByte(u.Data[:offset], '\n') + 1
	end := bytes.IndexByte(u.Data[offset:], '\n')
	if end < 0 {
		end = len(u.Data)
	} else {
		end += offset
	}

	return string(bytes.TrimRight(u.Data[start:end], "\r"))
}
