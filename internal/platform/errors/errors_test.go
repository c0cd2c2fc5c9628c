package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("load slot: %w", New(CodeSlotEmpty, "slot 1 is empty"))
	if !stderrors.Is(err, Sentinel(CodeSlotEmpty)) {
		t.Fatal("expected wrapped error to match slot empty sentinel")
	}
	if stderrors.Is(err, Sentinel(CodeBusy)) {
		t.Fatal("did not expect busy match")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeIOFailure, "write slot", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if err.Error() != "write slot: disk full" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain", err: stderrors.New("plain"), want: CodeUnknown},
		{name: "domain", err: New(CodeBusy, "busy"), want: CodeBusy},
		{name: "wrapped", err: fmt.Errorf("outer: %w", New(CodeCorruptRecord, "bad")), want: CodeCorruptRecord},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CodeOf(tc.err); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
