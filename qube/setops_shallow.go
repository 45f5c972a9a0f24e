package qube

// OpKind selects one of the four set algebra operations (spec §4.4/§4.5).
type OpKind int

const (
	OpUnion OpKind = iota
	OpIntersection
	OpDifference
	// OpSymmetricDifference is accepted by Op for completeness but, unlike
	// the other three kinds, Op's shared-bucket handling for it simply
	// drops values common to both sides rather than recursing into their
	// children — it does not produce a correct symmetric difference on
	// its own. Use the SymmetricDifference function, which composes it
	// correctly out of two differences and a union.
	OpSymmetricDifference
)

// pairing describes how one value from A's group and one value from B's
// group line up at a shared sibling position: at most one side's index is
// -1, meaning that value only exists on the other side.
type pairing struct {
	aIndex int
	bIndex int
}

// shallowPartition implements the C4 "fused set operation" on a single
// pair of sibling value groups sharing one key: it pairs up equal values
// between A and B and classifies the result into three buckets —
// A-only, shared, B-only — without looking at children at all. The
// recursive engine (setops.go) decides, per opKind, which buckets
// survive and whether shared pairs recurse into their children or are
// taken verbatim from one side.
//
// A Wildcard on either side is treated as matching every value the other
// side offers: pairing every other-side value against it and leaving it
// with no purely-own values of its own, mirroring the original
// WildcardGroup's "matches anything" semantics.
func shallowPartition(a, b ValueGroup) (onlyA, shared, onlyB []pairing) {
	switch {
	case a.isWildcard() && b.isWildcard():
		return nil, []pairing{{aIndex: 0, bIndex: 0}}, nil
	case a.isWildcard():
		bVals := b.Values()
		shared = make([]pairing, len(bVals))
		for i := range bVals {
			shared[i] = pairing{aIndex: 0, bIndex: i}
		}
		return nil, shared, nil
	case b.isWildcard():
		aVals := a.Values()
		shared = make([]pairing, len(aVals))
		for i := range aVals {
			shared[i] = pairing{aIndex: i, bIndex: 0}
		}
		return nil, shared, nil
	}

	aVals := a.Values()
	bVals := b.Values()
	bMatched := make([]bool, len(bVals))

	for i, av := range aVals {
		matched := -1
		for j, bv := range bVals {
			if !bMatched[j] && av.Equal(bv) {
				matched = j
				break
			}
		}
		if matched >= 0 {
			shared = append(shared, pairing{aIndex: i, bIndex: matched})
			bMatched[matched] = true
		} else {
			onlyA = append(onlyA, pairing{aIndex: i, bIndex: -1})
		}
	}
	for j, used := range bMatched {
		if !used {
			onlyB = append(onlyB, pairing{aIndex: -1, bIndex: j})
		}
	}
	return onlyA, shared, onlyB
}
