package qube

import "sort"

// Op applies opKind to two whole qube trees rooted at a and b, returning
// the resulting root. Both roots must carry the same key (normally the
// sentinel root key); mismatched roots are a caller error since the two
// trees being combined must describe the same namespace.
func Op(opKind OpKind, a, b *Node) (*Node, error) {
	if a.Key != b.Key {
		return nil, newError(ErrorKindKeyMismatch, "setops", "Op",
			"cannot combine two trees rooted at different keys").withPath(a.Key + " vs " + b.Key)
	}
	children, err := opChildren(opKind, a.Children, b.Children)
	if err != nil {
		return nil, err
	}
	// The two roots' own value groups are always the degenerate
	// single-value root group; keep A's as the canonical representative.
	return newNode(a.Key, a.Values, mergeMetadataLeftWins(a.Metadata, b.Metadata), children), nil
}

// opChildren is the C5 lift of the shallow engine: group both children
// lists by key — a key may legitimately carry more than one sibling node
// (spec invariant 2's worked example: two "class" nodes "od"/"rd"
// directly under root, each with its own children) — then for each key
// apply the shallow value-set op across every sibling sharing that key
// and recurse into the overlapping bucket's own children. Keys present
// on only one side are kept or dropped wholesale depending on opKind.
func opChildren(opKind OpKind, as, bs []*Node) ([]*Node, error) {
	aByKey := groupByKey(as)
	bByKey := groupByKey(bs)

	keys := unionKeyOrder(as, bs)
	var out []*Node
	for _, key := range keys {
		aGroup := aByKey[key]
		bGroup := bByKey[key]
		switch {
		case len(aGroup) > 0 && len(bGroup) > 0:
			nodes, err := combineSameKeyGroup(opKind, aGroup, bGroup)
			if err != nil {
				return nil, err
			}
			out = append(out, nodes...)
		case len(aGroup) > 0:
			if keepLeftOnly(opKind) {
				out = append(out, aGroup...)
			}
		case len(bGroup) > 0:
			if keepRightOnly(opKind) {
				out = append(out, bGroup...)
			}
		}
	}
	return out, nil
}

func keepLeftOnly(op OpKind) bool {
	switch op {
	case OpUnion, OpDifference, OpSymmetricDifference:
		return true
	default:
		return false
	}
}

func keepRightOnly(op OpKind) bool {
	switch op {
	case OpUnion, OpSymmetricDifference:
		return true
	default:
		return false
	}
}

func groupByKey(nodes []*Node) map[string][]*Node {
	m := make(map[string][]*Node, len(nodes))
	for _, n := range nodes {
		m[n.Key] = append(m[n.Key], n)
	}
	return m
}

func unionKeyOrder(as, bs []*Node) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, n := range as {
		if !seen[n.Key] {
			seen[n.Key] = true
			keys = append(keys, n.Key)
		}
	}
	for _, n := range bs {
		if !seen[n.Key] {
			seen[n.Key] = true
			keys = append(keys, n.Key)
		}
	}
	sort.Strings(keys)
	return keys
}

// combineSameKey applies the shallow fused set operation (C4) to two
// sibling nodes sharing one key, producing zero, one, or two result
// nodes: a node carrying the values unique to A, a node carrying the
// values unique to B, and a node carrying the values common to both with
// their children recursively combined — whichever of those three the
// opKind calls for. Op does not recompress its result, so these nodes stay
// separate siblings even when their children end up structurally
// identical; Compress merges them only when called on the result.
func combineSameKey(opKind OpKind, a, b *Node) ([]*Node, error) {
	onlyA, shared, onlyB := shallowPartition(a.Values, b.Values)

	var out []*Node

	if len(onlyA) > 0 && keepLeftOnly(opKind) {
		n, err := buildPartial(a, onlyA, pairSideA)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if len(onlyB) > 0 && keepRightOnly(opKind) {
		n, err := buildPartial(b, onlyB, pairSideB)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if len(shared) > 0 && keepShared(opKind) {
		n, err := buildShared(opKind, a, b, shared)
		if err != nil {
			return nil, err
		}
		if n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// sourceRef tracks, for one value in a flattened multi-sibling group, which
// original sibling node it came from and its index within that node's own
// value group — so a pairing computed over the flattened space can be
// routed back to the right node's children and metadata.
type sourceRef struct {
	node *Node
	idx  int
}

// flattenGroup concatenates the value groups of every sibling sharing one
// key into a single ValueGroup, alongside a parallel sourceRef slice
// mapping each position back to its origin node. A lone wildcard node is
// passed through unchanged (wildcards have no discrete values to
// concatenate); a wildcard cannot share a key with further siblings.
func flattenGroup(nodes []*Node) (ValueGroup, []sourceRef, error) {
	if len(nodes) == 1 {
		n := nodes[0]
		if n.Values.isWildcard() {
			return n.Values, []sourceRef{{node: n, idx: 0}}, nil
		}
		enum, ok := n.Values.(*Enum)
		if !ok {
			return nil, nil, newError(ErrorKindUnsupportedValueType, "setops", "flattenGroup", "unknown value group variant")
		}
		count := len(enum.values)
		if count == 0 {
			count = 1
		}
		refs := make([]sourceRef, count)
		for i := range refs {
			refs[i] = sourceRef{node: n, idx: i}
		}
		return n.Values, refs, nil
	}

	dtype := DTypeString
	var values []Value
	var refs []sourceRef
	for _, n := range nodes {
		if n.Values.isWildcard() {
			return nil, nil, newError(ErrorKindInvariantViolation, "setops", "flattenGroup",
				"key "+n.Key+" has a wildcard sibling alongside other nodes of the same key")
		}
		enum, ok := n.Values.(*Enum)
		if !ok {
			return nil, nil, newError(ErrorKindUnsupportedValueType, "setops", "flattenGroup", "unknown value group variant")
		}
		dtype = enum.dtype
		for i, v := range enum.values {
			values = append(values, v)
			refs = append(refs, sourceRef{node: n, idx: i})
		}
	}
	return &Enum{dtype: dtype, values: values}, refs, nil
}

// originBucket groups a set of pairings (already remapped to node-local
// indices) by the single node they came from.
type originBucket struct {
	node  *Node
	pairs []pairing
}

func splitByOrigin(pairs []pairing, refs []sourceRef, side pairSide) []originBucket {
	var order []*Node
	groups := make(map[*Node][]pairing)
	for _, p := range pairs {
		idx := p.aIndex
		if side == pairSideB {
			idx = p.bIndex
		}
		ref := refs[idx]
		if _, ok := groups[ref.node]; !ok {
			order = append(order, ref.node)
		}
		local := pairing{aIndex: p.aIndex, bIndex: p.bIndex}
		if side == pairSideA {
			local.aIndex = ref.idx
		} else {
			local.bIndex = ref.idx
		}
		groups[ref.node] = append(groups[ref.node], local)
	}
	out := make([]originBucket, len(order))
	for i, n := range order {
		out[i] = originBucket{node: n, pairs: groups[n]}
	}
	return out
}

// originPairBucket groups shared pairings by the specific (A-origin,
// B-origin) node pair they were matched between, with indices remapped to
// each origin node's own local indexing.
type originPairBucket struct {
	aNode, bNode *Node
	pairs        []pairing
}

func splitByOriginPair(pairs []pairing, aRefs, bRefs []sourceRef) []originPairBucket {
	type key struct{ a, b *Node }
	var order []key
	groups := make(map[key][]pairing)
	for _, p := range pairs {
		aRef := aRefs[p.aIndex]
		bRef := bRefs[p.bIndex]
		k := key{aRef.node, bRef.node}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], pairing{aIndex: aRef.idx, bIndex: bRef.idx})
	}
	out := make([]originPairBucket, len(order))
	for i, k := range order {
		out[i] = originPairBucket{aNode: k.a, bNode: k.b, pairs: groups[k]}
	}
	return out
}

// combineSameKeyGroup is combineSameKey generalized to a key that carries
// more than one sibling node on either side: it flattens each side's
// values into one combined space, shallow-partitions across the whole
// space, then splits the resulting pairings back out by origin node so
// each result node still draws its children/metadata from exactly one
// original sibling (spec §4.5 groupOp). The common single-sibling case is
// handled by the unchanged fast path to keep its behavior and output
// identical to before.
func combineSameKeyGroup(opKind OpKind, aGroup, bGroup []*Node) ([]*Node, error) {
	if len(aGroup) == 1 && len(bGroup) == 1 {
		return combineSameKey(opKind, aGroup[0], bGroup[0])
	}

	aValues, aRefs, err := flattenGroup(aGroup)
	if err != nil {
		return nil, err
	}
	bValues, bRefs, err := flattenGroup(bGroup)
	if err != nil {
		return nil, err
	}

	onlyA, shared, onlyB := shallowPartition(aValues, bValues)

	var out []*Node
	if keepLeftOnly(opKind) {
		for _, bucket := range splitByOrigin(onlyA, aRefs, pairSideA) {
			n, err := buildPartial(bucket.node, bucket.pairs, pairSideA)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
	}
	if keepRightOnly(opKind) {
		for _, bucket := range splitByOrigin(onlyB, bRefs, pairSideB) {
			n, err := buildPartial(bucket.node, bucket.pairs, pairSideB)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
	}
	if keepShared(opKind) {
		for _, bucket := range splitByOriginPair(shared, aRefs, bRefs) {
			n, err := buildShared(opKind, bucket.aNode, bucket.bNode, bucket.pairs)
			if err != nil {
				return nil, err
			}
			if n != nil {
				out = append(out, n)
			}
		}
	}
	return out, nil
}

func keepShared(op OpKind) bool {
	switch op {
	case OpUnion, OpIntersection, OpDifference:
		return true
	default:
		return false
	}
}

type pairSide int

const (
	pairSideA pairSide = iota
	pairSideB
)

// buildPartial builds a result node for values that exist on only one
// side, reusing that side's children and metadata verbatim (sliced down
// to the surviving indices).
func buildPartial(n *Node, pairs []pairing, side pairSide) (*Node, error) {
	indices := make([]int, len(pairs))
	for i, p := range pairs {
		if side == pairSideA {
			indices[i] = p.aIndex
		} else {
			indices[i] = p.bIndex
		}
	}
	values, err := takeValueIndices(n.Values, indices)
	if err != nil {
		return nil, err
	}
	metadata, err := sliceMetadata(n.Metadata, indices)
	if err != nil {
		return nil, err
	}
	return newNode(n.Key, values, metadata, n.Children), nil
}

// buildShared builds the result node for values common to both sides. Its
// children are the recursive combination of A's and B's children; for
// OpDifference, a shared bucket left with no children (a pure leaf
// overlap, or an interior node whose children all cancelled out) is
// dropped entirely rather than emitted as an empty node (SPEC_FULL.md
// OQ-5).
func buildShared(opKind OpKind, a, b *Node, pairs []pairing) (*Node, error) {
	aIndices := make([]int, len(pairs))
	bIndices := make([]int, len(pairs))
	for i, p := range pairs {
		aIndices[i] = p.aIndex
		bIndices[i] = p.bIndex
	}

	values, err := takeValueIndices(a.Values, aIndices)
	if err != nil {
		return nil, err
	}
	aMeta, err := sliceMetadata(a.Metadata, aIndices)
	if err != nil {
		return nil, err
	}
	bMeta, err := sliceMetadata(b.Metadata, bIndices)
	if err != nil {
		return nil, err
	}
	metadata := mergeMetadataLeftWins(aMeta, bMeta)

	children, err := opChildren(childOpFor(opKind), a.Children, b.Children)
	if err != nil {
		return nil, err
	}

	if opKind == OpDifference && len(children) == 0 {
		return nil, nil
	}
	return newNode(a.Key, values, metadata, children), nil
}

// childOpFor is the op applied when recursing into a shared bucket's
// children: union/intersection recurse with themselves, but a top-level
// difference recurses with difference on children too (spec §4.5 step 3).
func childOpFor(opKind OpKind) OpKind { return opKind }

func takeValueIndices(vg ValueGroup, indices []int) (ValueGroup, error) {
	if vg.isWildcard() {
		return vg, nil
	}
	enum, ok := vg.(*Enum)
	if !ok {
		return nil, newError(ErrorKindUnsupportedValueType, "setops", "takeValueIndices", "unknown value group variant")
	}
	values := make([]Value, len(indices))
	for i, idx := range indices {
		values[i] = enum.values[idx]
	}
	return &Enum{dtype: enum.dtype, values: values}, nil
}

func sliceMetadata(meta map[string]*MetadataArray, indices []int) (map[string]*MetadataArray, error) {
	if len(meta) == 0 {
		return nil, nil
	}
	out := make(map[string]*MetadataArray, len(meta))
	for name, arr := range meta {
		sliced, err := arr.TakeIndices(indices)
		if err != nil {
			return nil, err
		}
		out[name] = sliced
	}
	return out, nil
}

// mergeMetadataLeftWins combines two metadata maps, preferring a's entry
// whenever both sides define the same key (test_overlapping_and_non_monotonic's
// documented left-wins policy).
func mergeMetadataLeftWins(a, b map[string]*MetadataArray) map[string]*MetadataArray {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]*MetadataArray, len(a)+len(b))
	for k, v := range b {
		out[k] = v
	}
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Union, Intersect, Difference and SymmetricDifference are the public
// entry points spec.md §4.4 names directly.
func Union(a, b *Node) (*Node, error) { return Op(OpUnion, a, b) }

func Intersect(a, b *Node) (*Node, error) { return Op(OpIntersection, a, b) }

func Difference(a, b *Node) (*Node, error) { return Op(OpDifference, a, b) }

// SymmetricDifference is expressed as the union of each side's
// difference from the other, since the shallow engine above doesn't
// track a single pass that produces it directly without duplicating the
// combineSameKey bucket logic a third time.
func SymmetricDifference(a, b *Node) (*Node, error) {
	ab, err := Difference(a, b)
	if err != nil {
		return nil, err
	}
	ba, err := Difference(b, a)
	if err != nil {
		return nil, err
	}
	return Union(ab, ba)
}
