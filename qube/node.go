package qube

import (
	"hash/fnv"
	"sort"
	"strconv"
)

// Node is one level of a qube tree: a key, the group of values the key can
// take at this level, per-key metadata arrays (shape indexed by sibling
// position, one row per value), and the children reached from each value.
//
// Node deliberately does not cache depth or shape (SPEC_FULL.md OQ-1): the
// same *Node may be shared, by reference, under more than one parent at
// different depths once two trees are unioned or compressed together, so
// there is no single "true" depth to memoize. Callers that need depth or
// axis position thread it through as a recursion parameter instead.
type Node struct {
	Key      string
	Values   ValueGroup
	Metadata map[string]*MetadataArray
	Children []*Node

	structuralHash uint64
}

// newNode is the single construction path for a Node: it fixes up the
// structural hash once at build time so every later set-op/compress pass
// can compare nodes by hash before falling back to a deep structural
// comparison. Children must already be in canonical (sorted-by-min-value)
// order; newNode does not sort them, since callers that just split a
// group via Filter or a set operation already know the order they want.
func newNode(key string, values ValueGroup, metadata map[string]*MetadataArray, children []*Node) *Node {
	n := &Node{Key: key, Values: values, Metadata: metadata, Children: children}
	n.structuralHash = n.computeHash()
	return n
}

// computeHash folds the node's key, value-group token, metadata names (not
// their shapes or contents), and each child's hash into a single fnv-1a
// digest. It is a fast pre-filter, not a content-addressed identity: two
// structurally-identical subtrees built independently always hash equal.
// compress.go groups siblings by their children's hashes without a further
// exact comparison, and StructurallyEqual uses the hash to reject unequal
// nodes before its full comparison.
func (n *Node) computeHash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(n.Key))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(n.Values.token()))
	_, _ = h.Write([]byte{0})

	keys := make([]string, 0, len(n.Metadata))
	for k := range n.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = h.Write([]byte(k))
		_, _ = h.Write([]byte{0})
	}

	for _, c := range n.Children {
		var buf [8]byte
		putUint64(buf[:], c.structuralHash)
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * uint(i)))
	}
}

// StructuralHash exposes the precomputed hash for callers (compress.go,
// tests) that want to bucket nodes before a deep equality check.
func (n *Node) StructuralHash() uint64 { return n.structuralHash }

// StructurallyEqual reports whether two nodes would produce the same
// ASCII/JSON rendering: same key, same value-group content, same metadata
// keys/shapes/content, and recursively equal children in the same order.
// Metadata content equality is delegated to MetadataArray.Equal.
func (n *Node) StructurallyEqual(other *Node) bool {
	if n == other {
		return true
	}
	if n.structuralHash != other.structuralHash {
		return false
	}
	if n.Key != other.Key {
		return false
	}
	if !valuesEqual(n.Values, other.Values) {
		return false
	}
	if len(n.Metadata) != len(other.Metadata) {
		return false
	}
	for k, arr := range n.Metadata {
		oarr, ok := other.Metadata[k]
		if !ok || !arr.Equal(oarr) {
			return false
		}
	}
	if len(n.Children) != len(other.Children) {
		return false
	}
	for i, c := range n.Children {
		if !c.StructurallyEqual(other.Children[i]) {
			return false
		}
	}
	return true
}

// NLeaves counts the number of distinct key=value paths reachable from n
// down to leaf nodes (children slice empty), per spec.md's leaf-counting
// testable property. A node with no children and an empty value group
// counts as a single leaf (the root sentinel case).
func (n *Node) NLeaves() int {
	if len(n.Children) == 0 {
		count := n.Values.Len()
		if count == 0 {
			count = 1
		}
		return count
	}
	total := 0
	for _, c := range n.Children {
		total += c.NLeaves()
	}
	multiplier := n.Values.Len()
	if multiplier == 0 {
		multiplier = 1
	}
	return total * multiplier
}

// NNodes counts n and every node reachable from it.
func (n *Node) NNodes() int {
	total := 1
	for _, c := range n.Children {
		total += c.NNodes()
	}
	return total
}

// summaryLine renders "key=v1/v2/v3", used by ascii.go's ToASCII.
func (n *Node) summaryLine() string {
	if n.Key == rootKey {
		return rootKey
	}
	return n.Key + "=" + n.Values.Summary()
}

// rootKey is the sentinel key used for the single implicit root node that
// every qube is rooted at, matching the "root" stem printed by the
// original tree formatter.
const rootKey = "root"

// indexString is a small formatting helper used to put line numbers into
// FromASCII's error messages ("line 3 ...").
func indexString(i int) string { return strconv.Itoa(i) }
