// Package rosterinput turns pasted or typed text into placement inputs.
// Bad lines never fail a parse; they come back as warnings next to whatever could be read.
package rosterinput

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseWarning describes a line that was skipped or only partly understood
type ParseWarning struct {
	// Line is 1-based, zero when the warning is not tied to a line
	Line    int
	Text    string
	Message string
}

func (w ParseWarning) String() string {
	if w.Line == 0 {
		return w.Message
	}
	return fmt.Sprintf("line %d (%q): %s", w.Line, w.Text, w.Message)
}

// scanLines calls fn for every non-blank line that is not a # comment, passing the
// trimmed text and its 1-based line number
func scanLines(r io.Reader, fn func(lineNo int, line string)) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fn(lineNo, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}
