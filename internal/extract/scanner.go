package extract

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// EventKind identifies a structural markup event.
type EventKind int

const (
	EventStartElement EventKind = iota
	EventEndElement
	EventText
	EventEndOfStream
)

func (k EventKind) String() string {
	switch k {
	case EventStartElement:
		return "start"
	case EventEndElement:
		return "end"
	case EventText:
		return "text"
	case EventEndOfStream:
		return "eof"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a single structural event. Name is set for element events,
// Text for text events. Text is already unescaped.
type Event struct {
	Kind EventKind
	Name xml.Name
	Text string
}

// Scanner turns a markup stream into Events. It is forward-only: each event
// is produced once, and after EndOfStream or an error every further call
// repeats that outcome.
type Scanner struct {
	dec        *xml.Decoder
	src        *recordingReader
	charsetErr error
	done       bool
	err        error
}

// recordingReader remembers the first read failure so it can be told apart
// from a decoding failure.
type recordingReader struct {
	r   io.Reader
	err error
}

func (r *recordingReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && err != io.EOF && r.err == nil {
		r.err = err
	}
	return n, err
}

// NewScanner returns a Scanner reading markup from r.
func NewScanner(r io.Reader) *Scanner {
	s := &Scanner{src: &recordingReader{r: r}}
	dec := xml.NewDecoder(s.src)
	dec.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		cr, err := charset.NewReaderLabel(label, input)
		if err != nil {
			s.charsetErr = err
			return nil, err
		}
		return cr, nil
	}
	s.dec = dec
	return s
}

// Next returns the next event. Comments, processing instructions and
// directives are skipped, as is whitespace-only text. Text is trimmed.
func (s *Scanner) Next() (Event, error) {
	if s.err != nil {
		return Event{}, s.err
	}
	if s.done {
		return Event{Kind: EventEndOfStream}, nil
	}
	for {
		tok, err := s.dec.Token()
		if errors.Is(err, io.EOF) {
			s.done = true
			return Event{Kind: EventEndOfStream}, nil
		}
		if err != nil {
			s.err = s.classify(err)
			return Event{}, s.err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			return Event{Kind: EventStartElement, Name: t.Name}, nil
		case xml.EndElement:
			return Event{Kind: EventEndElement, Name: t.Name}, nil
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			return Event{Kind: EventText, Text: text}, nil
		}
	}
}

func (s *Scanner) classify(err error) error {
	if s.src.err != nil {
		return NewError(KindIO, "", err)
	}
	if s.charsetErr != nil {
		return NewError(KindEncoding, "", fmt.Errorf("decode charset: %w", s.charsetErr))
	}
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		if strings.Contains(syn.Msg, "invalid UTF-8") || strings.Contains(syn.Msg, "entity") {
			return NewError(KindEncoding, "", err)
		}
		return NewError(KindMalformedMarkup, "", err)
	}
	return NewError(KindMalformedMarkup, "", err)
}
