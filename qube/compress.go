package qube

import "sort"

// Compress rewrites n bottom-up, merging sibling subtrees that are
// structurally identical once their own value groups are set aside (spec
// §4.6). Two siblings merge when they share a key and, after removing
// their own value group from the comparison, have identical children;
// the merged node's value group is the (sorted, deduplicated) union of
// the two original groups, and its own metadata and every descendant's
// own-level metadata are reindexed by the sort permutation that union
// required.
func Compress(n *Node) *Node {
	children := make([]*Node, len(n.Children))
	for i, c := range n.Children {
		children[i] = Compress(c)
	}
	return newNode(n.Key, n.Values, n.Metadata, compressSiblings(children))
}

// compressSiblings groups a list of already-compressed children by a
// "shape signature" — key plus the hash of their children — and merges
// every group of size > 1 into one node.
func compressSiblings(nodes []*Node) []*Node {
	type bucket struct {
		signature string
		members   []*Node
	}
	order := make([]string, 0, len(nodes))
	buckets := make(map[string]*bucket)

	for _, n := range nodes {
		sig := shapeSignature(n)
		b, ok := buckets[sig]
		if !ok {
			b = &bucket{signature: sig}
			buckets[sig] = b
			order = append(order, sig)
		}
		b.members = append(b.members, n)
	}

	out := make([]*Node, 0, len(order))
	for _, sig := range order {
		b := buckets[sig]
		merged := b.members[0]
		for _, next := range b.members[1:] {
			merged = mergeNodes(merged, next)
		}
		out = append(out, merged)
	}
	return out
}

// shapeSignature identifies everything about a node EXCEPT its own value
// group: its key and the structural hash of each child, in order. Two
// nodes with the same signature are merge candidates regardless of what
// values they individually cover.
func shapeSignature(n *Node) string {
	sig := n.Key + "|"
	for _, c := range n.Children {
		sig += "c:" + uint64ToString(c.structuralHash) + ","
	}
	return sig
}

func uint64ToString(v uint64) string {
	const digits = "0123456789"
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v%10]
		v /= 10
	}
	return string(buf[i:])
}

// mergeNodes combines two sibling nodes that share a shape signature:
// their value groups union together (sorted, deduplicated), their own
// metadata is reindexed by the sort permutation that union required, and
// their children are merged position-by-position, pushing that same
// permutation one axis deeper at every level of recursion since each
// level of descendant metadata carries one more leading axis than its
// parent.
func mergeNodes(a, b *Node) *Node {
	values, perm, fromA := unionSortedValues(a.Values, b.Values)

	metadata := mergeMetadataForUnion(a.Metadata, b.Metadata, perm, fromA, 0)

	var children []*Node
	if len(a.Children) > 0 || len(b.Children) > 0 {
		children = make([]*Node, len(a.Children))
		for i := range a.Children {
			children[i] = mergeChildMetadataAxis(a.Children[i], b.Children[i], perm, fromA, 1)
		}
	}

	return newNode(a.Key, values, metadata, children)
}

// unionSortedValues merges two value groups into one sorted, deduplicated
// group, returning the permutation needed to reindex per-value data: perm[i]
// is the source position (in whichever of a or b fromA[i] selects) that
// ends up at output position i. Equal values present in both groups take
// a's data (left-wins, consistent with mergeMetadataLeftWins elsewhere).
func unionSortedValues(a, b ValueGroup) (ValueGroup, []int, []bool) {
	if a.isWildcard() || b.isWildcard() {
		return Wildcard{}, nil, nil
	}
	aEnum := a.(*Enum)
	bEnum := b.(*Enum)

	type tagged struct {
		v      Value
		fromA  bool
		srcIdx int
	}
	all := make([]tagged, 0, len(aEnum.values)+len(bEnum.values))
	for i, v := range aEnum.values {
		all = append(all, tagged{v: v, fromA: true, srcIdx: i})
	}
	for i, v := range bEnum.values {
		all = append(all, tagged{v: v, fromA: false, srcIdx: i})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].v.Less(all[j].v) })

	var values []Value
	var perm []int
	var fromA []bool
	for i, t := range all {
		if i > 0 && values[len(values)-1].Equal(t.v) {
			if t.fromA {
				fromA[len(fromA)-1] = true
				perm[len(perm)-1] = t.srcIdx
			}
			continue
		}
		values = append(values, t.v)
		perm = append(perm, t.srcIdx)
		fromA = append(fromA, t.fromA)
	}
	return &Enum{dtype: aEnum.dtype, values: values}, perm, fromA
}

// mergeMetadataForUnion reindexes both sides' own metadata according to
// the union permutation at the given axis. A name defined on only one
// side is simply reindexed; a name defined on both sides has each side
// reindexed to the positions it owns and then combined position-by-
// position via fromA, so a's real rows and b's real rows both survive
// instead of one side's placeholder rows overwriting the other's.
func mergeMetadataForUnion(a, b map[string]*MetadataArray, perm []int, fromA []bool, axis int) map[string]*MetadataArray {
	if perm == nil {
		return mergeMetadataLeftWins(a, b)
	}
	out := make(map[string]*MetadataArray)
	for name, arrB := range b {
		if _, onBothSides := a[name]; onBothSides {
			continue
		}
		if reindexed, err := reindexAtAxis(arrB, perm, fromA, false, axis); err == nil {
			out[name] = reindexed
		}
	}
	for name, arrA := range a {
		arrB, onBothSides := b[name]
		if !onBothSides {
			if reindexed, err := reindexAtAxis(arrA, perm, fromA, true, axis); err == nil {
				out[name] = reindexed
			}
			continue
		}
		if merged, err := combineMetadataForUnion(arrA, arrB, perm, fromA, axis); err == nil {
			out[name] = merged
		}
	}
	return out
}

// combineMetadataForUnion builds the merged array for a name present on
// both merge sides: each side is reindexed to the output positions it
// owns (with copies of its row 0 elsewhere), then CombineAxis0 picks
// a's row wherever fromA says a owns that position and b's row otherwise.
// Axes deeper than 0 aren't reindexed at all (see reindexAtAxis), so a's
// array is kept verbatim there, matching the existing one-side behavior.
func combineMetadataForUnion(arrA, arrB *MetadataArray, perm []int, fromA []bool, axis int) (*MetadataArray, error) {
	if axis != 0 {
		return arrA, nil
	}
	aIndices := make([]int, len(perm))
	bIndices := make([]int, len(perm))
	for i, srcIdx := range perm {
		if fromA[i] {
			aIndices[i] = srcIdx
		} else {
			bIndices[i] = srcIdx
		}
	}
	aReindexed, err := arrA.TakeIndices(aIndices)
	if err != nil {
		return nil, err
	}
	bReindexed, err := arrB.TakeIndices(bIndices)
	if err != nil {
		return nil, err
	}
	return aReindexed.CombineAxis0(bReindexed, fromA)
}

// reindexAtAxis builds the merged array's values along axis by pulling,
// for each output position, either from arr (if this side owns that
// position per fromA/wantFromA) or repeating arr's row 0 as a placeholder
// otherwise. It is used for names present on only one side; names on both
// sides go through combineMetadataForUnion instead.
func reindexAtAxis(arr *MetadataArray, perm []int, fromA []bool, wantFromA bool, axis int) (*MetadataArray, error) {
	indices := make([]int, len(perm))
	for i, srcIdx := range perm {
		if fromA[i] == wantFromA {
			indices[i] = srcIdx
		} else {
			indices[i] = 0
		}
	}
	if axis == 0 {
		return arr.TakeIndices(indices)
	}
	return arr, nil
}

// mergeChildMetadataAxis applies the union permutation to a single pair
// of position-matched children one level deeper: it does not merge their
// shapes (they're already structurally identical down to signature), it
// only reindexes each child's OWN metadata at the given axis and recurses
// into its children at axis+1, since deeper metadata carries one more
// leading axis per level of depth.
func mergeChildMetadataAxis(a, b *Node, perm []int, fromA []bool, axis int) *Node {
	metadata := mergeMetadataForUnion(a.Metadata, b.Metadata, perm, fromA, axis)
	var children []*Node
	if len(a.Children) > 0 {
		children = make([]*Node, len(a.Children))
		for i := range a.Children {
			children[i] = mergeChildMetadataAxis(a.Children[i], b.Children[i], perm, fromA, axis+1)
		}
	}
	return newNode(a.Key, a.Values, metadata, children)
}
