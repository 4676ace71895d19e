package models

import (
	"testing"
)

func TestCanAdvance(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		to       string
		expected bool
	}{
		{"found to applied", VacancyStatusFound, VacancyStatusApplied, true},
		{"applied to viewed", VacancyStatusApplied, VacancyStatusViewed, true},
		{"applied to invited", VacancyStatusApplied, VacancyStatusInvited, true},
		{"applied to rejected", VacancyStatusApplied, VacancyStatusRejected, true},
		{"viewed to invited", VacancyStatusViewed, VacancyStatusInvited, true},
		{"viewed to rejected", VacancyStatusViewed, VacancyStatusRejected, true},
		{"applied to found regression", VacancyStatusApplied, VacancyStatusFound, false},
		{"invited to viewed regression", VacancyStatusInvited, VacancyStatusViewed, false},
		{"invited to rejected terminal swap", VacancyStatusInvited, VacancyStatusRejected, false},
		{"rejected to invited terminal swap", VacancyStatusRejected, VacancyStatusInvited, false},
		{"same status", VacancyStatusViewed, VacancyStatusViewed, false},
		{"skipped to applied", VacancyStatusSkipped, VacancyStatusApplied, true},
		{"unknown from", "response", VacancyStatusViewed, false},
		{"unknown to", VacancyStatusApplied, "response", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAdvance(tt.from, tt.to); got != tt.expected {
				t.Errorf("CanAdvance(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestStatusRank_Ordering(t *testing.T) {
	// found/skipped share the lowest rank; invited/rejected share the top
	if StatusRank(VacancyStatusFound) != StatusRank(VacancyStatusSkipped) {
		t.Error("found and skipped should share a rank")
	}
	if StatusRank(VacancyStatusInvited) != StatusRank(VacancyStatusRejected) {
		t.Error("invited and rejected should share a rank")
	}
	if !(StatusRank(VacancyStatusFound) < StatusRank(VacancyStatusApplied)) {
		t.Error("found should rank below applied")
	}
	if !(StatusRank(VacancyStatusApplied) < StatusRank(VacancyStatusViewed)) {
		t.Error("applied should rank below viewed")
	}
	if !(StatusRank(VacancyStatusViewed) < StatusRank(VacancyStatusInvited)) {
		t.Error("viewed should rank below invited")
	}
	if StatusRank("nonsense") != -1 {
		t.Error("unknown status should rank -1")
	}
}

func TestStringList_RoundTrip(t *testing.T) {
	list := StringList{"strong Go background", "remote friendly"}

	value, err := list.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}

	var decoded StringList
	if err := decoded.Scan(value); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	if len(decoded) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(decoded))
	}
	if decoded[0] != "strong Go background" || decoded[1] != "remote friendly" {
		t.Errorf("unexpected round-trip result: %v", decoded)
	}
}

func TestStringList_ScanNil(t *testing.T) {
	var list StringList
	if err := list.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) error: %v", err)
	}
	if list != nil {
		t.Errorf("expected nil list, got %v", list)
	}
}

func TestStringList_NilValue(t *testing.T) {
	var list StringList
	value, err := list.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}
	// nil lists serialize as an empty JSON array, not SQL NULL
	if string(value.([]byte)) != "[]" {
		t.Errorf("expected [], got %s", value)
	}
}
