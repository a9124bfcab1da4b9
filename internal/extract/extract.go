// Package extract pulls visible text out of WordprocessingML markup.
package extract

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// Namespaces under which the field-instruction element is recognised.
const (
	WordprocessingNamespace       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	StrictWordprocessingNamespace = "http://purl.oclc.org/ooxml/wordprocessingml/main"

	fieldInstructionLocal = "instrText"
)

// IsFieldInstruction reports whether name is the field-instruction element
// (w:instrText). An undeclared "w" prefix is accepted as well, since the
// decoder leaves unresolved prefixes in Space.
func IsFieldInstruction(name xml.Name) bool {
	if name.Local != fieldInstructionLocal {
		return false
	}
	switch name.Space {
	case WordprocessingNamespace, StrictWordprocessingNamespace, "w":
		return true
	}
	return false
}

type fieldState int

const (
	stateNormal fieldState = iota
	stateInFieldInstruction
)

// next applies one event to the state. Transitions are keyed only on the
// element name; nested instruction elements are not balanced and the first
// end tag returns to normal.
func (s fieldState) next(ev Event) fieldState {
	switch ev.Kind {
	case EventStartElement:
		if IsFieldInstruction(ev.Name) {
			return stateInFieldInstruction
		}
	case EventEndElement:
		if IsFieldInstruction(ev.Name) {
			return stateNormal
		}
	}
	return s
}

// Extract returns the visible text of raw markup. Accepted text chunks are
// joined with a single space and the result is trimmed. When
// stripFieldInstructions is set, text inside w:instrText is dropped.
func Extract(raw []byte, stripFieldInstructions bool) (string, error) {
	return ExtractReader(bytes.NewReader(raw), stripFieldInstructions)
}

// ExtractReader is Extract over a stream. No partial text is returned on error.
func ExtractReader(r io.Reader, stripFieldInstructions bool) (string, error) {
	sc := NewScanner(r)
	state := stateNormal
	var out strings.Builder

	for {
		ev, err := sc.Next()
		if err != nil {
			return "", err
		}
		if ev.Kind == EventEndOfStream {
			break
		}
		state = state.next(ev)
		if ev.Kind != EventText {
			continue
		}
		if stripFieldInstructions && state == stateInFieldInstruction {
			continue
		}
		out.WriteString(ev.Text)
		out.WriteByte(' ')
	}
	return strings.TrimSpace(out.String()), nil
}
