package extract

import (
	"errors"
	"fmt"
)

// Kind classifies extraction failures so callers can branch on them.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors outside the taxonomy.
	KindUnknown Kind = iota
	// KindArchiveEntryNotFound: the package is not a valid archive or lacks the main markup part.
	KindArchiveEntryNotFound
	// KindMalformedMarkup: the markup part is not well-formed.
	KindMalformedMarkup
	// KindEncoding: text content could not be decoded or unescaped.
	KindEncoding
	// KindIO: the underlying byte read failed.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindArchiveEntryNotFound:
		return "archive entry not found"
	case KindMalformedMarkup:
		return "malformed markup"
	case KindEncoding:
		return "encoding error"
	case KindIO:
		return "io error"
	}
	return "unknown"
}

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrArchiveEntryNotFound = errors.New("archive entry not found")
	ErrMalformedMarkup      = errors.New("malformed markup")
	ErrEncoding             = errors.New("encoding error")
	ErrIO                   = errors.New("io error")
)

// Error is a terminal failure for a single document.
type Error struct {
	Kind   Kind
	Source string // file name or other source identifier, may be empty
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Source != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
	case e.Source != "":
		return fmt.Sprintf("%s: %s", e.Source, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (k Kind) sentinel() error {
	switch k {
	case KindArchiveEntryNotFound:
		return ErrArchiveEntryNotFound
	case KindMalformedMarkup:
		return ErrMalformedMarkup
	case KindEncoding:
		return ErrEncoding
	case KindIO:
		return ErrIO
	}
	return nil
}

// NewError builds an *Error of the given kind.
func NewError(kind Kind, source string, err error) error {
	return &Error{Kind: kind, Source: source, Err: err}
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// WithSource attaches a source identifier to an *Error that has none.
// Other errors are returned unchanged.
func WithSource(err error, source string) error {
	var e *Error
	if !errors.As(err, &e) || e.Source != "" {
		return err
	}
	return &Error{Kind: e.Kind, Source: source, Err: e.Err}
}
