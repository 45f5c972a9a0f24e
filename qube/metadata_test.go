package qube

import "testing"

func TestMetadataArrayPushDownBroadcastsAndRoundTrips(t *testing.T) {
	m := NewInt64Metadata([]int64{10, 20, 30})
	broadcast := m.PushDown(4)

	if got, want := broadcast.Shape, []int{3, 4}; !intSlicesEqual(got, want) {
		t.Fatalf("PushDown shape = %v, want %v", got, want)
	}
	if got, want := broadcast.len(), 12; got != want {
		t.Fatalf("PushDown flat length = %d, want %d", got, want)
	}

	for i := 0; i < 4; i++ {
		back, err := broadcast.TakeAxis(1, i)
		if err != nil {
			t.Fatalf("TakeAxis(1, %d): %v", i, err)
		}
		if !back.Equal(m) {
			t.Fatalf("TakeAxis(1, %d) = %+v, want the original array %+v back", i, back, m)
		}
	}
}

func intSlicesEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMetadataArrayReshape(t *testing.T) {
	m := NewFloat64Metadata([]float64{1, 2, 3, 4, 5, 6})
	reshaped, err := m.Reshape([]int{2, 3})
	if err != nil {
		t.Fatalf("Reshape: %v", err)
	}
	if got, want := reshaped.Shape, []int{2, 3}; !intSlicesEqual(got, want) {
		t.Fatalf("Reshape shape = %v, want %v", got, want)
	}

	if _, err := m.Reshape([]int{4, 4}); KindOf(err) != ErrorKindShapeMismatch {
		t.Fatalf("expected shape-mismatch reshaping into an incompatible element count, got %v", err)
	}
}

func TestMetadataArrayConcatAxis(t *testing.T) {
	a := NewStringMetadata([]string{"a", "b"})
	b := NewStringMetadata([]string{"c", "d", "e"})
	cat, err := a.ConcatAxis(b, 0)
	if err != nil {
		t.Fatalf("ConcatAxis: %v", err)
	}
	want := []string{"a", "b", "c", "d", "e"}
	for i, w := range want {
		if cat.Str[i] != w {
			t.Fatalf("ConcatAxis result = %v, want %v", cat.Str, want)
		}
	}

	mismatched := NewBoolMetadata([]bool{true})
	if _, err := a.ConcatAxis(mismatched, 0); KindOf(err) != ErrorKindTypeMismatch {
		t.Fatalf("expected type-mismatch concatenating different kinds, got %v", err)
	}
}

func TestMetadataArrayTakeIndices(t *testing.T) {
	m := NewInt64Metadata([]int64{100, 200, 300})
	taken, err := m.TakeIndices([]int{2, 0, 0})
	if err != nil {
		t.Fatalf("TakeIndices: %v", err)
	}
	want := []int64{300, 100, 100}
	for i, w := range want {
		if taken.I64[i] != w {
			t.Fatalf("TakeIndices result = %v, want %v", taken.I64, want)
		}
	}
}

func TestAddMetadataAtDepthZeroValidatesLeadingDimension(t *testing.T) {
	n := leaf(t, "level", "1", "2", "3")
	withMeta, err := AddMetadata(n, map[string]*MetadataArray{
		"owner": NewStringMetadata([]string{"a", "b", "c"}),
	}, 0)
	if err != nil {
		t.Fatalf("AddMetadata: %v", err)
	}
	if !withMeta.Metadata["owner"].Equal(NewStringMetadata([]string{"a", "b", "c"})) {
		t.Fatalf("expected owner metadata to be attached unchanged")
	}

	if _, err := AddMetadata(n, map[string]*MetadataArray{
		"owner": NewStringMetadata([]string{"a", "b"}),
	}, 0); KindOf(err) != ErrorKindShapeMismatch {
		t.Fatalf("expected shape-mismatch attaching metadata with the wrong leading dimension, got %v", err)
	}
}

func TestAddMetadataBroadcastsThroughIntermediateDepth(t *testing.T) {
	tree := rootWith(
		newNode("class", mustEnum(t, "d1"), nil, []*Node{
			leaf(t, "dataset", "rd"),
		}),
	)

	withMeta, err := AddMetadata(tree, map[string]*MetadataArray{
		"priority": NewInt64Metadata([]int64{5}),
	}, 2)
	if err != nil {
		t.Fatalf("AddMetadata: %v", err)
	}

	dataset := withMeta.Children[0].Children[0]
	got, ok := dataset.Metadata["priority"]
	if !ok {
		t.Fatalf("expected priority metadata to reach the dataset node two levels down")
	}
	if !got.Equal(NewInt64Metadata([]int64{5})) {
		t.Fatalf("expected priority metadata to survive the broadcast unchanged, got %+v", got)
	}
}

func TestLeavesWithMetadataGathersPerLeafEntries(t *testing.T) {
	tree := rootWith(
		newNode("level", mustEnum(t, "1", "2"), nil, nil),
	)
	withMeta, err := AddMetadata(tree, map[string]*MetadataArray{
		"owner": NewStringMetadata([]string{"alice", "bob"}),
	}, 1)
	if err != nil {
		t.Fatalf("AddMetadata: %v", err)
	}

	leaves := LeavesWithMetadata(withMeta)
	if len(leaves) != 2 {
		t.Fatalf("expected 2 leaves, got %d", len(leaves))
	}
	for i, want := range []string{"alice", "bob"} {
		if got := leaves[i].Metadata["owner"]; got != want {
			t.Fatalf("leaf %d owner = %v, want %v", i, got, want)
		}
	}
}
