package qube

import (
	"sort"
	"strings"
	"testing"
)

// pathSet reduces a tree to the set of dense leaf identifiers it covers,
// the representation spec.md §8's properties 1-5 and S1-S6 are stated
// over ("leaves as sets of dense identifiers").
func pathSet(n *Node) map[string]bool {
	set := make(map[string]bool)
	for _, lm := range LeavesWithMetadata(n) {
		set[strings.Join(lm.Path, "/")] = true
	}
	return set
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func assertSameLeafSet(t *testing.T, got, want *Node) {
	t.Helper()
	gotSet, wantSet := pathSet(got), pathSet(want)
	if len(gotSet) != len(wantSet) {
		t.Fatalf("leaf sets differ in size: got %v want %v", sortedKeys(gotSet), sortedKeys(wantSet))
	}
	for k := range wantSet {
		if !gotSet[k] {
			t.Fatalf("leaf set missing %q: got %v want %v", k, sortedKeys(gotSet), sortedKeys(wantSet))
		}
	}
}

// --- property 1: idempotence ---

func TestPropertyIdempotence(t *testing.T) {
	a := rootWith(leaf(t, "level", "1", "2"))

	uu, err := Union(a, a)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	assertSameLeafSet(t, uu, a)

	ii, err := Intersect(a, a)
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	assertSameLeafSet(t, ii, a)
}

// --- property 2: commutativity ---

func TestPropertyCommutativity(t *testing.T) {
	a := rootWith(leaf(t, "level", "1", "2"))
	b := rootWith(leaf(t, "level", "2", "3"))

	ab, err := Union(a, b)
	if err != nil {
		t.Fatalf("Union(a,b): %v", err)
	}
	ba, err := Union(b, a)
	if err != nil {
		t.Fatalf("Union(b,a): %v", err)
	}
	assertSameLeafSet(t, ab, ba)

	aib, err := Intersect(a, b)
	if err != nil {
		t.Fatalf("Intersect(a,b): %v", err)
	}
	bia, err := Intersect(b, a)
	if err != nil {
		t.Fatalf("Intersect(b,a): %v", err)
	}
	assertSameLeafSet(t, aib, bia)
}

// --- property 3: associativity ---

func TestPropertyAssociativity(t *testing.T) {
	a := rootWith(leaf(t, "level", "1"))
	b := rootWith(leaf(t, "level", "2"))
	c := rootWith(leaf(t, "level", "3"))

	abThenC, err := unionAll(a, b, c)
	if err != nil {
		t.Fatalf("(a|b)|c: %v", err)
	}
	aThenBC, err := unionAllRight(a, b, c)
	if err != nil {
		t.Fatalf("a|(b|c): %v", err)
	}
	assertSameLeafSet(t, abThenC, aThenBC)
}

func unionAll(a, b, c *Node) (*Node, error) {
	ab, err := Union(a, b)
	if err != nil {
		return nil, err
	}
	return Union(ab, c)
}

func unionAllRight(a, b, c *Node) (*Node, error) {
	bc, err := Union(b, c)
	if err != nil {
		return nil, err
	}
	return Union(a, bc)
}

// --- property 4: absorption/identity ---

func TestPropertyIdentity(t *testing.T) {
	a := rootWith(leaf(t, "level", "1", "2"))
	empty := rootWith()

	unionWithEmpty, err := Union(a, empty)
	if err != nil {
		t.Fatalf("Union(a, empty): %v", err)
	}
	assertSameLeafSet(t, unionWithEmpty, a)

	intersectWithEmpty, err := Intersect(a, empty)
	if err != nil {
		t.Fatalf("Intersect(a, empty): %v", err)
	}
	if !intersectWithEmpty.StructurallyEqual(empty) {
		t.Errorf("expected A & ∅ = ∅, got %s", ToASCII(intersectWithEmpty))
	}

	diffWithEmpty, err := Difference(a, empty)
	if err != nil {
		t.Fatalf("Difference(a, empty): %v", err)
	}
	assertSameLeafSet(t, diffWithEmpty, a)

	emptyMinusA, err := Difference(empty, a)
	if err != nil {
		t.Fatalf("Difference(empty, a): %v", err)
	}
	if !emptyMinusA.StructurallyEqual(empty) {
		t.Errorf("expected ∅ - A = ∅, got %s", ToASCII(emptyMinusA))
	}
}

// --- property 5: De Morgan via leaves ---

func TestPropertyLeavesOfUnionIsUnionOfLeaves(t *testing.T) {
	a := rootWith(leaf(t, "level", "1", "2"))
	b := rootWith(leaf(t, "level", "2", "3"))

	u, err := Union(a, b)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}

	want := make(map[string]bool)
	for k := range pathSet(a) {
		want[k] = true
	}
	for k := range pathSet(b) {
		want[k] = true
	}
	got := pathSet(u)
	if len(got) != len(want) {
		t.Fatalf("leaves(A|B) != leaves(A) ∪ leaves(B): got %v want %v", sortedKeys(got), sortedKeys(want))
	}
	for k := range want {
		if !got[k] {
			t.Errorf("leaves(A|B) missing %q", k)
		}
	}
}

// --- property 8: selection = restricted intersection ---

func TestPropertySelectionEqualsRestrictedIntersection(t *testing.T) {
	a := rootWith(leaf(t, "level", "1", "2", "3"))
	filter := rootWith(leaf(t, "level", "1", "2"))

	selected, err := Select(a, Selection{"level": {"1", "2"}}, SelectStrict, false)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	intersected, err := Intersect(a, filter)
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	assertSameLeafSet(t, selected, intersected)
}

// --- property 9: metadata preservation on union of disjoint identifiers ---

func TestPropertyMetadataPreservedOnDisjointUnion(t *testing.T) {
	a := rootWith(newNode("level", mustEnum(t, "1", "2"), map[string]*MetadataArray{
		"number": NewInt64Metadata([]int64{10, 20}),
	}, nil))
	b := rootWith(newNode("level", mustEnum(t, "3", "4"), map[string]*MetadataArray{
		"number": NewInt64Metadata([]int64{30, 40}),
	}, nil))

	u, err := Union(a, b)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}

	want := map[string]int64{"level=1": 10, "level=2": 20, "level=3": 30, "level=4": 40}
	got := leafNumbers(t, u)
	for path, num := range want {
		if got[path] != num {
			t.Errorf("expected %s number=%d, got %d", path, num, got[path])
		}
	}
}

func leafNumbers(t *testing.T, n *Node) map[string]int64 {
	t.Helper()
	out := make(map[string]int64)
	for _, lm := range LeavesWithMetadata(n) {
		path := strings.Join(lm.Path, "/")
		num, ok := lm.Metadata["number"]
		if !ok {
			continue
		}
		v, ok := num.(int64)
		if !ok {
			t.Fatalf("expected int64 metadata at %s, got %T", path, num)
		}
		out[path] = v
	}
	return out
}

// --- property 10 / scenario S4: left-wins on overlapping metadata ---

func TestPropertyLeftWinsOnOverlappingMetadata(t *testing.T) {
	a := rootWith(newNode("class", mustEnum(t, "1"), nil, []*Node{
		newNode("expver", mustEnum(t, "1", "2", "3"), map[string]*MetadataArray{
			"number": NewInt64Metadata([]int64{1, 1, 1}),
		}, []*Node{leaf(t, "param", "1")}),
	}))
	b := rootWith(newNode("class", mustEnum(t, "1"), nil, []*Node{
		newNode("expver", mustEnum(t, "2", "4"), map[string]*MetadataArray{
			"number": NewInt64Metadata([]int64{2, 2}),
		}, []*Node{leaf(t, "param", "1")}),
	}))

	u, err := Union(a, b)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}

	want := map[string]int64{
		"class=1/expver=1/param=1": 1,
		"class=1/expver=2/param=1": 1,
		"class=1/expver=3/param=1": 1,
		"class=1/expver=4/param=1": 2,
	}
	got := leafNumbers(t, u)
	for path, num := range want {
		if got[path] != num {
			t.Errorf("expected %s number=%d, got %d", path, num, got[path])
		}
	}
}

// --- scenario S2: uneven union ---

func TestScenarioS2UnevenUnion(t *testing.T) {
	a := rootWith(
		newNode("step", mustEnum(t, "1", "2", "3"), nil, []*Node{
			leaf(t, "param", "c", "d"),
		}),
	)
	b := rootWith(
		newNode("step", mustEnum(t, "1", "2", "3"), nil, []*Node{
			newNode("param", mustEnum(t, "c", "d"), nil, []*Node{
				leaf(t, "level", "100", "200"),
			}),
		}),
	)

	u, err := Union(a, b)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	// B's leaves are strictly more specific than A's identically-shaped
	// prefix, so the union is dominated by B's leaf set.
	assertSameLeafSet(t, u, b)
}

// --- scenario S3: non-monotonic metadata merge ---

func TestScenarioS3NonMonotonicMetadataMerge(t *testing.T) {
	a := rootWith(newNode("class", mustEnum(t, "1"), nil, []*Node{
		newNode("expver", mustEnum(t, "1", "3"), map[string]*MetadataArray{
			"number": NewInt64Metadata([]int64{1, 1}),
		}, []*Node{leaf(t, "param", "1")}),
	}))
	b := rootWith(newNode("class", mustEnum(t, "1"), nil, []*Node{
		newNode("expver", mustEnum(t, "2", "4"), map[string]*MetadataArray{
			"number": NewInt64Metadata([]int64{2, 2}),
		}, []*Node{leaf(t, "param", "1")}),
	}))

	u, err := Union(a, b)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}

	want := map[string]int64{
		"class=1/expver=1/param=1": 1,
		"class=1/expver=2/param=1": 2,
		"class=1/expver=3/param=1": 1,
		"class=1/expver=4/param=1": 2,
	}
	got := leafNumbers(t, u)
	for path, num := range want {
		if got[path] != num {
			t.Errorf("expected %s number=%d, got %d", path, num, got[path])
		}
	}
}

// --- scenario S1: compression basic ---

// TestScenarioS1CompressionBasic builds the fully-expanded, one-child-
// per-value equivalent of S1's tree and asserts it compresses down to
// exactly the compact form s1Tree builds directly.
func TestScenarioS1CompressionBasic(t *testing.T) {
	classOd := newNode("class", mustEnum(t, "od"), nil, []*Node{
		newNode("expver", mustEnum(t, "0001"), nil, []*Node{leaf(t, "param", "1"), leaf(t, "param", "2")}),
		newNode("expver", mustEnum(t, "0002"), nil, []*Node{leaf(t, "param", "1"), leaf(t, "param", "2")}),
	})
	classRd := newNode("class", mustEnum(t, "rd"), nil, []*Node{
		newNode("expver", mustEnum(t, "0001"), nil, []*Node{leaf(t, "param", "1"), leaf(t, "param", "2"), leaf(t, "param", "3")}),
		newNode("expver", mustEnum(t, "0002"), nil, []*Node{leaf(t, "param", "1"), leaf(t, "param", "2")}),
	})
	expanded := rootWith(classOd, classRd)

	compressed := Compress(expanded)
	want := s1Tree(t)
	if !compressed.StructurallyEqual(want) {
		t.Errorf("expected compress() of the expanded S1 tree to equal the compact form\ngot:\n%s\nwant:\n%s",
			ToASCII(compressed), ToASCII(want))
	}
}

// --- scenario S6: JSON round-trip with base64 metadata ---

func TestScenarioS6JSONRoundTripBase64Metadata(t *testing.T) {
	tree := rootWith(leaf(t, "level", "1", "2"))
	withMeta, err := AddMetadata(tree, map[string]*MetadataArray{
		"number": NewInt64Metadata([]int64{1, 2}),
	}, 1)
	if err != nil {
		t.Fatalf("AddMetadata: %v", err)
	}

	data, err := ToJSON(withMeta)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	back, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if !withMeta.StructurallyEqual(back) {
		t.Fatalf("expected bytewise-equal metadata round-trip\nwant: %s\ngot:  %s", ToASCII(withMeta), ToASCII(back))
	}
}
