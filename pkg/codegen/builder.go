package codegen

import (
	"fmt"
	"strings"
)

// Builder assembles a generated text file line by line
type Builder struct {
	path  string
	lines []string
}

// NewBuilder creates a builder for the file at path
func NewBuilder(path string) *Builder {
	return &Builder{path: path}
}

// Comment appends a "//" line comment
func (b *Builder) Comment(text string) *Builder {
	b.lines = append(b.lines, "// "+text)
	return b
}

// Line appends a formatted line
func (b *Builder) Line(format string, args ...interface{}) *Builder {
	if len(args) == 0 {
		b.lines = append(b.lines, format)
		return b
	}
	b.lines = append(b.lines, fmt.Sprintf(format, args...))
	return b
}

// Lines appends lines verbatim
func (b *Builder) Lines(lines ...string) *Builder {
	b.lines = append(b.lines, lines...)
	return b
}

// Blank appends an empty line
func (b *Builder) Blank() *Builder {
	b.lines = append(b.lines, "")
	return b
}

// Len returns the number of lines
func (b *Builder) Len() int {
	return len(b.lines)
}

// String returns the lines joined with newlines, without a trailing newline
func (b *Builder) String() string {
	return strings.Join(b.lines, "\n")
}

// Bytes returns the file content. Non-empty content ends with exactly one newline.
func (b *Builder) Bytes() []byte {
	if len(b.lines) == 0 {
		return []byte{}
	}
	return []byte(b.String() + "\n")
}

// File returns the generated file
func (b *Builder) File() GeneratedFile {
	content := b.Bytes()
	return GeneratedFile{
		Path:    b.path,
		Content: content,
		Size:    int64(len(content)),
	}
}
