package core

import (
	"errors"
	"testing"
	"time"
)

func TestNewRunIDsAreDistinctAndOrdered(t *testing.T) {
	const count = 2000

	seen := make(map[RunID]struct{}, count)
	prev := ""
	for i := 0; i < count; i++ {
		id := NewRunID()
		if id.IsEmpty() {
			t.Fatalf("empty run ID at iteration %d", i)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate run ID %s", id)
		}
		seen[id] = struct{}{}
		if id.String() <= prev {
			t.Errorf("run ID %s sorts before an earlier one", id)
		}
		prev = id.String()
	}
	if !ID("").IsEmpty() || ID("x").IsEmpty() {
		t.Error("IsEmpty should only report the zero ID")
	}
}

func TestTimestampSortKeyRoundTrip(t *testing.T) {
	early := NewTimestamp(time.Date(2024, 3, 9, 8, 0, 0, 5, time.FixedZone("CET", 3600)))
	late := NewTimestamp(time.Date(2024, 3, 9, 8, 0, 1, 0, time.UTC))

	if early.SortKey() >= late.SortKey() {
		t.Errorf("sort keys out of order: %s >= %s", early.SortKey(), late.SortKey())
	}
	back, err := ParseSortKey(early.SortKey())
	if err != nil {
		t.Fatalf("ParseSortKey: %v", err)
	}
	if !back.Time().Equal(early.Time()) {
		t.Errorf("round trip changed the instant: %v vs %v", back, early)
	}
	if _, err := ParseSortKey("yesterday"); err == nil {
		t.Error("expected an error for a malformed key")
	}
}

func TestParseRunID(t *testing.T) {
	fresh := NewRunID()

	tests := []struct {
		input    string
		expected RunID
		hasError bool
	}{
		{fresh.String(), fresh, false},
		{"  " + fresh.String() + " ", fresh, false},
		{"run-123", "", true},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseRunID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

func TestTextHashStable(t *testing.T) {
	a := NewTextHash("The quick brown fox")
	b := NewTextHash("The quick brown fox")
	c := NewTextHash("The quick brown fox.")

	if a != b {
		t.Errorf("Expected equal hashes for equal text, got %s and %s", a, b)
	}
	if a == c {
		t.Error("Expected different hashes for different text")
	}
	if len(a.String()) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(a.String()))
	}
	if got := Hash(a).Short(); len(got) != 12 {
		t.Errorf("Expected 12 character short hash, got %q", got)
	}
}

func TestComputeRecipeHashSeparatesParams(t *testing.T) {
	if ComputeRecipeHash("eda", "ab", "c") == ComputeRecipeHash("eda", "a", "bc") {
		t.Error("Expected parameter boundaries to change the hash")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	if !IsConfigurationError(ErrToleranceUnitAmbiguous) || !IsConfigurationError(ErrUnknownRecipe) {
		t.Error("Expected tolerance and recipe errors to be configuration errors")
	}
	if !IsContractViolation(NewArityError(3)) {
		t.Error("Expected arity error to be a contract violation")
	}
	if IsContractViolation(ErrNegativeTolerance) {
		t.Error("Negative tolerance is a configuration error, not a contract violation")
	}

	cause := errors.New("connection refused")
	err := NewResourceError("cc.de.300.vec", cause)
	if !IsResourceError(err) || !errors.Is(err, cause) {
		t.Errorf("Expected resource error wrapping its cause, got %v", err)
	}

	if !IsNotFoundError(ErrRunNotFound) {
		t.Error("Expected run-not-found to be a not-found error")
	}
}
