package model

import (
	"errors"
	"strings"
	"testing"
)

func TestAllOperationsKnown(t *testing.T) {
	ops := AllOperations()
	if len(ops) != 8 {
		t.Fatalf("expected 8 operations, got %d", len(ops))
	}
	seen := make(map[OperationID]bool)
	for _, id := range ops {
		if !id.IsKnown() {
			t.Errorf("%s should be known", id)
		}
		if seen[id] {
			t.Errorf("duplicate operation %s", id)
		}
		seen[id] = true
	}
	if Unrecognized.IsKnown() {
		t.Error("Unrecognized must not be a known operation")
	}
}

func TestUnrecognizedString(t *testing.T) {
	if Unrecognized.String() != "unrecognized" {
		t.Errorf("expected 'unrecognized', got %q", Unrecognized.String())
	}
	if CountWeekday.String() != "count_weekday" {
		t.Errorf("expected 'count_weekday', got %q", CountWeekday.String())
	}
}

func TestOutcomeConstructors(t *testing.T) {
	ok := Succeeded("count Wednesdays", CountWeekday, "done")
	if ok.Kind != KindSuccess || ok.Message != "done" || ok.Operation != CountWeekday {
		t.Errorf("unexpected success outcome: %+v", ok)
	}

	nr := NotRecognized("hello")
	if nr.Kind != KindUnrecognized || nr.Instruction != "hello" {
		t.Errorf("unexpected unrecognized outcome: %+v", nr)
	}
	if !strings.Contains(nr.Message, "hello") {
		t.Errorf("message should echo the instruction, got %q", nr.Message)
	}

	rej := Rejected("x", SortContacts, Deny(DestructiveIntent, "matched \"delete\""))
	if rej.Kind != KindSecurityRejected || rej.Reason != DestructiveIntent {
		t.Errorf("unexpected rejected outcome: %+v", rej)
	}
	if !strings.Contains(rej.Message, "destructive_intent") {
		t.Errorf("message should carry the reason, got %q", rej.Message)
	}

	cause := errors.New("boom")
	f := Failed("x", SortContacts, cause)
	if f.Kind != KindOperationFailed || !errors.Is(f.Err, cause) {
		t.Errorf("unexpected failed outcome: %+v", f)
	}
}

func TestDecisionHelpers(t *testing.T) {
	if !Allow().Allowed {
		t.Error("Allow() should be allowed")
	}
	d := Deny(PathEscape, "..")
	if d.Allowed || d.Reason != PathEscape {
		t.Errorf("unexpected deny decision: %+v", d)
	}
}
