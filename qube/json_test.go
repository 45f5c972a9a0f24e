package qube

import (
	"encoding/json"
	"testing"
)

func TestJSONRoundTrip(t *testing.T) {
	tree := rootWith(
		newNode("level", mustEnum(t, "1", "2"), map[string]*MetadataArray{
			"owner": NewStringMetadata([]string{"alice", "bob"}),
		}, []*Node{leaf(t, "date", "2024-01-01")}),
	)

	data, err := ToJSON(tree)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	back, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if !tree.StructurallyEqual(back) {
		t.Errorf("expected round-tripped tree to equal original\nwant: %s\ngot:  %s", ToASCII(tree), ToASCII(back))
	}
}

func TestJSONRoundTripWithWildcard(t *testing.T) {
	tree := rootWith(newNode("level", Wildcard{}, nil, nil))
	data, err := ToJSON(tree)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	back, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if !tree.StructurallyEqual(back) {
		t.Errorf("expected wildcard tree to round-trip")
	}
}

// TestJSONWireFormatMatchesSpecContract asserts the on-the-wire shape
// itself, not just that Go's own encode/decode agree: a nested
// {"type":"enum","dtype":...,"values":[...]} value group and a
// {"shape":...,"dtype":...,"base64":...} metadata entry, so a
// non-Go consumer parsing this JSON by the documented contract alone
// could still read it.
func TestJSONWireFormatMatchesSpecContract(t *testing.T) {
	tree := rootWith(
		newNode("level", mustEnum(t, "1", "2"), map[string]*MetadataArray{
			"number": NewInt64Metadata([]int64{1, 2}),
		}, nil),
	)

	data, err := ToJSON(tree)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("expected valid JSON: %v", err)
	}
	if _, ok := generic["key"]; !ok {
		t.Fatalf("expected top-level %q field, got %v", "key", generic)
	}
	children, ok := generic["children"].([]any)
	if !ok || len(children) != 1 {
		t.Fatalf("expected one child node, got %v", generic["children"])
	}
	level, ok := children[0].(map[string]any)
	if !ok {
		t.Fatalf("expected child node to be an object, got %v", children[0])
	}

	values, ok := level["values"].(map[string]any)
	if !ok {
		t.Fatalf(`expected nested "values" object, got %v`, level["values"])
	}
	if values["type"] != "enum" {
		t.Errorf(`expected values.type == "enum", got %v`, values["type"])
	}
	if _, ok := values["dtype"]; !ok {
		t.Errorf("expected values.dtype field, got %v", values)
	}
	if _, ok := values["values"]; !ok {
		t.Errorf("expected values.values field, got %v", values)
	}

	metadata, ok := level["metadata"].(map[string]any)
	if !ok {
		t.Fatalf(`expected "metadata" object, got %v`, level["metadata"])
	}
	number, ok := metadata["number"].(map[string]any)
	if !ok {
		t.Fatalf("expected metadata.number object, got %v", metadata["number"])
	}
	for _, field := range []string{"shape", "dtype", "base64"} {
		if _, ok := number[field]; !ok {
			t.Errorf("expected metadata.number.%s field, got %v", field, number)
		}
	}
	if _, ok := number["data"]; ok {
		t.Errorf("expected no legacy metadata.number.data field, got %v", number)
	}
}

// TestJSONWireFormatWildcardIsBareString asserts a wildcard value group
// serialises to the bare string "*" rather than an object, per §4.1/§6.
func TestJSONWireFormatWildcardIsBareString(t *testing.T) {
	tree := rootWith(newNode("level", Wildcard{}, nil, nil))

	data, err := ToJSON(tree)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("expected valid JSON: %v", err)
	}
	children := generic["children"].([]any)
	level := children[0].(map[string]any)
	if level["values"] != "*" {
		t.Errorf(`expected wildcard values to serialize as "*", got %v`, level["values"])
	}
}

func TestJSONRoundTripWithFloatMetadata(t *testing.T) {
	tree := rootWith(
		newNode("level", mustEnum(t, "1", "2"), map[string]*MetadataArray{
			"score": NewFloat64Metadata([]float64{1.5, 2.25}),
		}, nil),
	)
	data, err := ToJSON(tree)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	back, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if !tree.StructurallyEqual(back) {
		t.Errorf("expected float metadata to round-trip")
	}
}
