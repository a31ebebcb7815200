package diag

import (
	"errors"
	"testing"
)

func TestNewFormatsPosition(t *testing.T) {
	err := New(Resolution, Pos{Line: 3, Col: 7}, "undefined identifier %q", "x")
	want := "3:7: resolution: undefined identifier \"x\""
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNewWithoutPosition(t *testing.T) {
	err := New(Control, Pos{}, "break outside a loop")
	want := "control: break outside a loop"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(Typing, Pos{}, cause, "cast of %s failed", "i32")
	if !errors.Is(err, cause) {
		t.Error("Wrap should produce an error that unwraps to cause via errors.Is")
	}
}

func TestIsKind(t *testing.T) {
	inner := New(Structural, Pos{}, "invalid lvalue")
	outer := Wrap(Typing, Pos{}, inner, "assignment failed")
	if !Is(outer, Typing) {
		t.Error("Is(outer, Typing) should be true")
	}
	if !Is(outer, Structural) {
		t.Error("Is(outer, Structural) should see through the wrapped cause")
	}
	if Is(outer, Control) {
		t.Error("Is(outer, Control) should be false")
	}
}
