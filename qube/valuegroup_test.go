package qube

import "testing"

func TestNewEnumStringsSortsAndDedups(t *testing.T) {
	enum, err := NewEnumStrings([]string{"3", "1", "2", "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enum.Len() != 3 {
		t.Fatalf("expected 3 unique values, got %d", enum.Len())
	}
	if enum.Summary() != "1/2/3" {
		t.Errorf("expected sorted summary 1/2/3, got %q", enum.Summary())
	}
}

func TestEnumFilterWithValueList(t *testing.T) {
	enum, _ := NewEnumStrings([]string{"1", "2", "3"})
	indices, sub, err := enum.Filter(ValueList{"2", "3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(indices) != 2 || indices[0] != 1 || indices[1] != 2 {
		t.Errorf("unexpected indices: %v", indices)
	}
	if sub.Len() != 2 {
		t.Errorf("expected 2 kept values, got %d", sub.Len())
	}
}

func TestEnumMixedDtypeRejected(t *testing.T) {
	_, err := NewEnum([]Value{NewInt64Value(1), NewStringValue("x")})
	if KindOf(err) != ErrorKindTypeMismatch {
		t.Fatalf("expected type-mismatch error, got %v", err)
	}
}

func TestWildcardContainsEverything(t *testing.T) {
	w := Wildcard{}
	if !w.Contains(NewStringValue("anything")) {
		t.Errorf("expected wildcard to contain any value")
	}
}

func TestWildcardFilterWithListBecomesEnum(t *testing.T) {
	w := Wildcard{}
	_, sub, err := w.Filter(ValueList{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Len() != 2 {
		t.Errorf("expected 2 values, got %d", sub.Len())
	}
}
