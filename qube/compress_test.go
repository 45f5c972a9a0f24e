package qube

import "testing"

func TestCompressMergesIdenticalSiblingSubtrees(t *testing.T) {
	tree := rootWith(
		newNode("level", mustEnum(t, "1"), nil, []*Node{leaf(t, "date", "2024-01-01")}),
		newNode("level", mustEnum(t, "2"), nil, []*Node{leaf(t, "date", "2024-01-01")}),
	)

	compressed := Compress(tree)
	if got := len(compressed.Children); got != 1 {
		t.Fatalf("expected the two siblings to merge into one node, got %d children", got)
	}
	merged := compressed.Children[0]
	if merged.Values.Summary() != "1/2" {
		t.Errorf("expected merged values 1/2, got %q", merged.Values.Summary())
	}
	if compressed.NLeaves() != tree.NLeaves() {
		t.Errorf("compression must not change leaf count: before %d after %d", tree.NLeaves(), compressed.NLeaves())
	}
}

func TestCompressDoesNotMergeDifferentSubtrees(t *testing.T) {
	tree := rootWith(
		newNode("level", mustEnum(t, "1"), nil, []*Node{leaf(t, "date", "2024-01-01")}),
		newNode("level", mustEnum(t, "2"), nil, []*Node{leaf(t, "date", "2024-01-02")}),
	)

	compressed := Compress(tree)
	if got := len(compressed.Children); got != 2 {
		t.Fatalf("expected siblings with different children to stay separate, got %d children", got)
	}
}

func TestCompressMergesMetadataPresentOnBothSides(t *testing.T) {
	tree := rootWith(
		newNode("expver", mustEnum(t, "0001"), map[string]*MetadataArray{
			"number": NewInt64Metadata([]int64{10}),
		}, nil),
		newNode("expver", mustEnum(t, "0002"), map[string]*MetadataArray{
			"number": NewInt64Metadata([]int64{20}),
		}, nil),
	)

	compressed := Compress(tree)
	if got := len(compressed.Children); got != 1 {
		t.Fatalf("expected the two expver siblings to merge, got %d children", got)
	}
	merged := compressed.Children[0]
	if merged.Values.Summary() != "1/2" {
		t.Fatalf("expected merged values 1/2, got %q", merged.Values.Summary())
	}
	number := merged.Metadata["number"]
	if number == nil || number.Kind != MetadataInt64 {
		t.Fatalf("expected merged int64 metadata %q, got %v", "number", number)
	}
	want := []int64{10, 20}
	if len(number.I64) != len(want) || number.I64[0] != want[0] || number.I64[1] != want[1] {
		t.Fatalf("expected merged number=%v, got %v", want, number.I64)
	}
}

func TestCompressIsIdempotent(t *testing.T) {
	tree := rootWith(
		newNode("level", mustEnum(t, "1"), nil, []*Node{leaf(t, "date", "2024-01-01")}),
		newNode("level", mustEnum(t, "2"), nil, []*Node{leaf(t, "date", "2024-01-01")}),
	)
	once := Compress(tree)
	twice := Compress(once)
	if !once.StructurallyEqual(twice) {
		t.Errorf("compressing an already-compressed tree should be a no-op")
	}
}
