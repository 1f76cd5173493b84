package phasecycle

import (
	"errors"
	"testing"
)

func TestPhaseNextAlternates(t *testing.T) {
	if Red.Next() != Green || Green.Next() != Red {
		t.Fatalf("next: red->%s green->%s", Red.Next(), Green.Next())
	}
	var zero Phase
	if zero != Red {
		t.Fatal("zero phase should be red")
	}
	if Phase(5).Valid() {
		t.Fatal("phase 5 should be invalid")
	}
}

func TestParsePhase(t *testing.T) {
	if p, err := ParsePhase(" Green"); err != nil || p != Green {
		t.Fatalf("parse = %v,%v want green,nil", p, err)
	}
	if _, err := ParsePhase("amber"); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("err = %v want ErrInvalidPhase", err)
	}
	var p Phase
	if err := p.UnmarshalText([]byte("green")); err != nil || p != Green {
		t.Fatalf("unmarshal = %v,%v", p, err)
	}
	b, err := Red.MarshalText()
	if err != nil || string(b) != "red" {
		t.Fatalf("marshal = %q,%v", b, err)
	}
	if _, err := Phase(9).MarshalText(); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("err = %v want ErrInvalidPhase", err)
	}
	if Phase(9).String() != "phase(9)" {
		t.Fatalf("string = %q", Phase(9).String())
	}
}
