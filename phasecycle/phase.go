package phasecycle

import (
	"fmt"
	"strings"
)

// Phase is one of the two mutually exclusive states of a Cycle.
type Phase int32

const (
	// Red is the initial phase of every Cycle.
	Red Phase = iota
	// Green follows Red and is the phase observers usually wait for.
	Green
)

func (p Phase) String() string {
	switch p {
	case Red:
		return "red"
	case Green:
		return "green"
	}
	return fmt.Sprintf("phase(%d)", int32(p))
}

// Valid reports whether p is Red or Green.
func (p Phase) Valid() bool {
	return p == Red || p == Green
}

// Next returns the phase that follows p.
func (p Phase) Next() Phase {
	if p == Green {
		return Red
	}
	return Green
}

// ParsePhase parses "red" or "green", ignoring case.
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red":
		return Red, nil
	case "green":
		return Green, nil
	}
	return Red, fmt.Errorf("%w: %q", ErrInvalidPhase, s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPhase, int32(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	v, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
