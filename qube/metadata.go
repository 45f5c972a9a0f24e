package qube

import (
	"fmt"
	"reflect"
)

// MetadataKind tags which typed flat slice a MetadataArray is backed by.
type MetadataKind int

const (
	MetadataInt64 MetadataKind = iota
	MetadataFloat64
	MetadataString
	MetadataBool
)

// MetadataArray is an N-dimensional array of a single scalar type, stored
// flat with an explicit Shape (spec §4.3). The first axis always indexes
// sibling position at the node the array is attached to; deeper axes
// index positions further down the tree, one per level of depth the
// metadata was pushed through. Exactly one of the typed slices is
// populated, selected by Kind.
type MetadataArray struct {
	Kind  MetadataKind
	Shape []int

	I64 []int64
	F64 []float64
	Str []string
	Bln []bool
}

func (m *MetadataArray) len() int {
	switch m.Kind {
	case MetadataInt64:
		return len(m.I64)
	case MetadataFloat64:
		return len(m.F64)
	case MetadataString:
		return len(m.Str)
	case MetadataBool:
		return len(m.Bln)
	default:
		return 0
	}
}

func shapeSize(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

// validate checks that the flat slice length matches the declared shape.
func (m *MetadataArray) validate() error {
	want := shapeSize(m.Shape)
	if got := m.len(); got != want {
		return newError(ErrorKindShapeMismatch, "metadata", "validate",
			fmt.Sprintf("flat length %d does not match shape %v (%d)", got, m.Shape, want))
	}
	return nil
}

// NewInt64Metadata builds a 1-D int64 metadata array, one value per
// sibling at the attaching node.
func NewInt64Metadata(values []int64) *MetadataArray {
	return &MetadataArray{Kind: MetadataInt64, Shape: []int{len(values)}, I64: append([]int64(nil), values...)}
}

// NewFloat64Metadata builds a 1-D float64 metadata array.
func NewFloat64Metadata(values []float64) *MetadataArray {
	return &MetadataArray{Kind: MetadataFloat64, Shape: []int{len(values)}, F64: append([]float64(nil), values...)}
}

// NewStringMetadata builds a 1-D string metadata array.
func NewStringMetadata(values []string) *MetadataArray {
	return &MetadataArray{Kind: MetadataString, Shape: []int{len(values)}, Str: append([]string(nil), values...)}
}

// NewBoolMetadata builds a 1-D bool metadata array.
func NewBoolMetadata(values []bool) *MetadataArray {
	return &MetadataArray{Kind: MetadataBool, Shape: []int{len(values)}, Bln: append([]bool(nil), values...)}
}

// Equal reports whether two metadata arrays have the same kind, shape and
// flat contents.
func (m *MetadataArray) Equal(other *MetadataArray) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.Kind != other.Kind || len(m.Shape) != len(other.Shape) {
		return false
	}
	for i := range m.Shape {
		if m.Shape[i] != other.Shape[i] {
			return false
		}
	}
	switch m.Kind {
	case MetadataInt64:
		return reflect.DeepEqual(m.I64, other.I64)
	case MetadataFloat64:
		return reflect.DeepEqual(m.F64, other.F64)
	case MetadataString:
		return reflect.DeepEqual(m.Str, other.Str)
	case MetadataBool:
		return reflect.DeepEqual(m.Bln, other.Bln)
	default:
		return false
	}
}

// Reshape returns a copy of m with a new shape, which must describe the
// same total element count.
func (m *MetadataArray) Reshape(shape []int) (*MetadataArray, error) {
	if shapeSize(shape) != m.len() {
		return nil, newError(ErrorKindShapeMismatch, "metadata", "Reshape",
			fmt.Sprintf("cannot reshape %d elements into shape %v", m.len(), shape))
	}
	cp := *m
	cp.Shape = append([]int(nil), shape...)
	return &cp, nil
}

// axisStride returns the number of flat elements spanned by one index
// step along axis within shape.
func axisStride(shape []int, axis int) int {
	stride := 1
	for i := axis + 1; i < len(shape); i++ {
		stride *= shape[i]
	}
	return stride
}

// concatGeneric concatenates a and b along axis, given their full shapes.
// Both arrays must agree on every axis except axis itself.
func concatGeneric[T any](a, b []T, shapeA, shapeB []int, axis int) ([]T, []int, error) {
	if len(shapeA) != len(shapeB) {
		return nil, nil, newError(ErrorKindShapeMismatch, "metadata", "concat", "rank mismatch")
	}
	for i := range shapeA {
		if i == axis {
			continue
		}
		if shapeA[i] != shapeB[i] {
			return nil, nil, newError(ErrorKindShapeMismatch, "metadata", "concat",
				fmt.Sprintf("shapes %v and %v disagree outside axis %d", shapeA, shapeB, axis))
		}
	}
	outShape := append([]int(nil), shapeA...)
	outShape[axis] = shapeA[axis] + shapeB[axis]

	outer := 1
	for i := 0; i < axis; i++ {
		outer *= shapeA[i]
	}
	strideA := axisStride(shapeA, axis) * shapeA[axis]
	strideB := axisStride(shapeB, axis) * shapeB[axis]

	out := make([]T, 0, len(a)+len(b))
	for o := 0; o < outer; o++ {
		out = append(out, a[o*strideA:(o+1)*strideA]...)
		out = append(out, b[o*strideB:(o+1)*strideB]...)
	}
	return out, outShape, nil
}

// takeGeneric selects a single index along axis, dropping that axis from
// the returned shape (numpy's basic-indexing semantics, used by
// LeavesWithMetadata's per-index gather).
func takeGeneric[T any](a []T, shape []int, axis int, index int) ([]T, []int, error) {
	if axis < 0 || axis >= len(shape) {
		return nil, nil, newError(ErrorKindShapeMismatch, "metadata", "take", fmt.Sprintf("axis %d out of range for shape %v", axis, shape))
	}
	if index < 0 || index >= shape[axis] {
		return nil, nil, newError(ErrorKindShapeMismatch, "metadata", "take", fmt.Sprintf("index %d out of range for axis size %d", index, shape[axis]))
	}
	outer := 1
	for i := 0; i < axis; i++ {
		outer *= shape[i]
	}
	stride := axisStride(shape, axis)
	axisSize := shape[axis]

	outShape := append([]int(nil), shape[:axis]...)
	outShape = append(outShape, shape[axis+1:]...)

	out := make([]T, 0, outer*stride)
	for o := 0; o < outer; o++ {
		start := (o*axisSize+index)*stride
		out = append(out, a[start:start+stride]...)
	}
	return out, outShape, nil
}

// pushDownGeneric repeats each element of a n times contiguously, the flat
// form of broadcasting a trailing axis of length n onto every existing
// element (numpy's np.repeat(a, n) along a freshly appended last axis).
func pushDownGeneric[T any](a []T, n int) []T {
	out := make([]T, 0, len(a)*n)
	for _, v := range a {
		for i := 0; i < n; i++ {
			out = append(out, v)
		}
	}
	return out
}

// PushDown broadcasts m, of shape S, into shape S∪(n,) by appending a new
// trailing axis of length n and repeating every existing element across
// it without otherwise copying or reshaping the data (spec §4.3's
// push-down primitive). It is how a metadata array recorded once at a
// node is distributed across that node's n children before AddMetadata
// recurses one level deeper, each child then recovering its own S-shaped
// slice via TakeAxis on the new axis.
func (m *MetadataArray) PushDown(n int) *MetadataArray {
	shape := append(append([]int(nil), m.Shape...), n)
	switch m.Kind {
	case MetadataInt64:
		return &MetadataArray{Kind: MetadataInt64, Shape: shape, I64: pushDownGeneric(m.I64, n)}
	case MetadataFloat64:
		return &MetadataArray{Kind: MetadataFloat64, Shape: shape, F64: pushDownGeneric(m.F64, n)}
	case MetadataString:
		return &MetadataArray{Kind: MetadataString, Shape: shape, Str: pushDownGeneric(m.Str, n)}
	case MetadataBool:
		return &MetadataArray{Kind: MetadataBool, Shape: shape, Bln: pushDownGeneric(m.Bln, n)}
	default:
		return &MetadataArray{Kind: m.Kind, Shape: shape}
	}
}

// ConcatAxis concatenates m and other along axis. Kinds must match.
func (m *MetadataArray) ConcatAxis(other *MetadataArray, axis int) (*MetadataArray, error) {
	if m.Kind != other.Kind {
		return nil, newError(ErrorKindTypeMismatch, "metadata", "ConcatAxis", "cannot concatenate metadata arrays of different kinds")
	}
	switch m.Kind {
	case MetadataInt64:
		flat, shape, err := concatGeneric(m.I64, other.I64, m.Shape, other.Shape, axis)
		if err != nil {
			return nil, err
		}
		return &MetadataArray{Kind: MetadataInt64, Shape: shape, I64: flat}, nil
	case MetadataFloat64:
		flat, shape, err := concatGeneric(m.F64, other.F64, m.Shape, other.Shape, axis)
		if err != nil {
			return nil, err
		}
		return &MetadataArray{Kind: MetadataFloat64, Shape: shape, F64: flat}, nil
	case MetadataString:
		flat, shape, err := concatGeneric(m.Str, other.Str, m.Shape, other.Shape, axis)
		if err != nil {
			return nil, err
		}
		return &MetadataArray{Kind: MetadataString, Shape: shape, Str: flat}, nil
	case MetadataBool:
		flat, shape, err := concatGeneric(m.Bln, other.Bln, m.Shape, other.Shape, axis)
		if err != nil {
			return nil, err
		}
		return &MetadataArray{Kind: MetadataBool, Shape: shape, Bln: flat}, nil
	default:
		return nil, newError(ErrorKindUnsupportedValueType, "metadata", "ConcatAxis", "unknown metadata kind")
	}
}

// TakeAxis selects a single index along axis.
func (m *MetadataArray) TakeAxis(axis, index int) (*MetadataArray, error) {
	switch m.Kind {
	case MetadataInt64:
		flat, shape, err := takeGeneric(m.I64, m.Shape, axis, index)
		if err != nil {
			return nil, err
		}
		return &MetadataArray{Kind: MetadataInt64, Shape: shape, I64: flat}, nil
	case MetadataFloat64:
		flat, shape, err := takeGeneric(m.F64, m.Shape, axis, index)
		if err != nil {
			return nil, err
		}
		return &MetadataArray{Kind: MetadataFloat64, Shape: shape, F64: flat}, nil
	case MetadataString:
		flat, shape, err := takeGeneric(m.Str, m.Shape, axis, index)
		if err != nil {
			return nil, err
		}
		return &MetadataArray{Kind: MetadataString, Shape: shape, Str: flat}, nil
	case MetadataBool:
		flat, shape, err := takeGeneric(m.Bln, m.Shape, axis, index)
		if err != nil {
			return nil, err
		}
		return &MetadataArray{Kind: MetadataBool, Shape: shape, Bln: flat}, nil
	default:
		return nil, newError(ErrorKindUnsupportedValueType, "metadata", "TakeAxis", "unknown metadata kind")
	}
}

// TakeIndices selects multiple indices along axis 0 in the given order,
// used to apply a sort permutation computed during compression (C6) or a
// filter result (C7) to a metadata array attached at the affected node.
func (m *MetadataArray) TakeIndices(indices []int) (*MetadataArray, error) {
	if len(m.Shape) == 0 {
		return nil, newError(ErrorKindShapeMismatch, "metadata", "TakeIndices", "cannot index a scalar metadata array")
	}
	stride := axisStride(m.Shape, 0)
	newShape := append([]int(nil), m.Shape...)
	newShape[0] = len(indices)

	switch m.Kind {
	case MetadataInt64:
		out := make([]int64, 0, len(indices)*stride)
		for _, idx := range indices {
			out = append(out, m.I64[idx*stride:(idx+1)*stride]...)
		}
		return &MetadataArray{Kind: MetadataInt64, Shape: newShape, I64: out}, nil
	case MetadataFloat64:
		out := make([]float64, 0, len(indices)*stride)
		for _, idx := range indices {
			out = append(out, m.F64[idx*stride:(idx+1)*stride]...)
		}
		return &MetadataArray{Kind: MetadataFloat64, Shape: newShape, F64: out}, nil
	case MetadataString:
		out := make([]string, 0, len(indices)*stride)
		for _, idx := range indices {
			out = append(out, m.Str[idx*stride:(idx+1)*stride]...)
		}
		return &MetadataArray{Kind: MetadataString, Shape: newShape, Str: out}, nil
	case MetadataBool:
		out := make([]bool, 0, len(indices)*stride)
		for _, idx := range indices {
			out = append(out, m.Bln[idx*stride:(idx+1)*stride]...)
		}
		return &MetadataArray{Kind: MetadataBool, Shape: newShape, Bln: out}, nil
	default:
		return nil, newError(ErrorKindUnsupportedValueType, "metadata", "TakeIndices", "unknown metadata kind")
	}
}

// CombineAxis0 merges m and other, which must share the same shape, into
// one array by taking m's row at each axis-0 position where mask is true
// and other's row where it is false (compress.go's union-merge combines
// two sides' own metadata this way instead of letting one side's
// placeholder rows overwrite the other's real ones).
func (m *MetadataArray) CombineAxis0(other *MetadataArray, mask []bool) (*MetadataArray, error) {
	if m.Kind != other.Kind {
		return nil, newError(ErrorKindTypeMismatch, "metadata", "CombineAxis0", "cannot combine metadata arrays of different kinds")
	}
	stride := axisStride(m.Shape, 0)
	pick := func(i int) bool { return i < len(mask) && mask[i] }
	switch m.Kind {
	case MetadataInt64:
		out := make([]int64, len(m.I64))
		for i := range mask {
			src := other.I64
			if pick(i) {
				src = m.I64
			}
			copy(out[i*stride:(i+1)*stride], src[i*stride:(i+1)*stride])
		}
		return &MetadataArray{Kind: MetadataInt64, Shape: append([]int(nil), m.Shape...), I64: out}, nil
	case MetadataFloat64:
		out := make([]float64, len(m.F64))
		for i := range mask {
			src := other.F64
			if pick(i) {
				src = m.F64
			}
			copy(out[i*stride:(i+1)*stride], src[i*stride:(i+1)*stride])
		}
		return &MetadataArray{Kind: MetadataFloat64, Shape: append([]int(nil), m.Shape...), F64: out}, nil
	case MetadataString:
		out := make([]string, len(m.Str))
		for i := range mask {
			src := other.Str
			if pick(i) {
				src = m.Str
			}
			copy(out[i*stride:(i+1)*stride], src[i*stride:(i+1)*stride])
		}
		return &MetadataArray{Kind: MetadataString, Shape: append([]int(nil), m.Shape...), Str: out}, nil
	case MetadataBool:
		out := make([]bool, len(m.Bln))
		for i := range mask {
			src := other.Bln
			if pick(i) {
				src = m.Bln
			}
			copy(out[i*stride:(i+1)*stride], src[i*stride:(i+1)*stride])
		}
		return &MetadataArray{Kind: MetadataBool, Shape: append([]int(nil), m.Shape...), Bln: out}, nil
	default:
		return nil, newError(ErrorKindUnsupportedValueType, "metadata", "CombineAxis0", "unknown metadata kind")
	}
}

// AddMetadata attaches metadata to every node exactly depth levels below n
// (spec §4.3 + OQ-4). Each such node receives the same arrays unchanged;
// they are not split into per-path entries. depth 0 attaches directly to
// n's own values axis and requires each array's leading dimension to equal
// n's value count, matching the original add_metadata's depth-0 reshape
// special case.
func AddMetadata(n *Node, metadata map[string]*MetadataArray, depth int) (*Node, error) {
	if depth == 0 {
		for name, arr := range metadata {
			if err := arr.validate(); err != nil {
				return nil, err
			}
			if arr.Shape[0] != n.Values.Len() {
				return nil, newError(ErrorKindShapeMismatch, "metadata", "AddMetadata",
					fmt.Sprintf("metadata %q has leading dimension %d, node has %d values", name, arr.Shape[0], n.Values.Len()))
			}
		}
		merged := make(map[string]*MetadataArray, len(n.Metadata)+len(metadata))
		for k, v := range n.Metadata {
			merged[k] = v
		}
		for k, v := range metadata {
			merged[k] = v
		}
		return newNode(n.Key, n.Values, merged, n.Children), nil
	}
	perChild := make([]map[string]*MetadataArray, len(n.Children))
	for i := range n.Children {
		perChild[i] = make(map[string]*MetadataArray, len(metadata))
	}
	for name, arr := range metadata {
		broadcast := arr.PushDown(len(n.Children))
		axis := len(broadcast.Shape) - 1
		for i := range n.Children {
			slice, err := broadcast.TakeAxis(axis, i)
			if err != nil {
				return nil, err
			}
			perChild[i][name] = slice
		}
	}

	children := make([]*Node, len(n.Children))
	for i, c := range n.Children {
		child, err := AddMetadata(c, perChild[i], depth-1)
		if err != nil {
			return nil, err
		}
		children[i] = child
	}
	return newNode(n.Key, n.Values, n.Metadata, children), nil
}

// LeavesWithMetadata walks n depth-first and, for each leaf, returns the
// path of key=value segments taken to reach it together with every
// metadata entry gathered along that path (gathering the row/slice that
// corresponds to the index actually taken at each level), mirroring
// metadata.py's leaves_with_metadata generator.
type LeafMetadata struct {
	Path     []string
	Metadata map[string]any
}

func LeavesWithMetadata(n *Node) []LeafMetadata {
	return leavesWithMetadata(n, nil, nil)
}

func leavesWithMetadata(n *Node, path []string, indices []int) []LeafMetadata {
	values := n.Values.Values()
	if len(values) == 0 {
		// An empty value group (the root sentinel, by convention) carries
		// no segment of its own but still contributes an implicit single
		// pass-through so traversal reaches its children.
		return leavesBelow(n, path, indices, false)
	}
	var out []LeafMetadata
	for i, v := range values {
		segPath := append(append([]string(nil), path...), n.Key+"="+v.Summary())
		segIndices := append(append([]int(nil), indices...), i)
		out = append(out, leavesBelow(n, segPath, segIndices, true)...)
	}
	return out
}

// leavesBelow gathers n's own metadata at segIndices (when hasOwnValue is
// true, i.e. segIndices already has an entry for n's own axis) and
// recurses into n's children, merging child metadata over n's own.
func leavesBelow(n *Node, segPath []string, segIndices []int, hasOwnValue bool) []LeafMetadata {
	gathered := make(map[string]any, len(n.Metadata))
	if hasOwnValue {
		for name, arr := range n.Metadata {
			val, err := gatherScalar(arr, segIndices)
			if err == nil {
				gathered[name] = val
			}
		}
	}

	if len(n.Children) == 0 {
		return []LeafMetadata{{Path: segPath, Metadata: gathered}}
	}
	var out []LeafMetadata
	for _, c := range n.Children {
		childLeaves := leavesWithMetadata(c, segPath, segIndices)
		for _, cl := range childLeaves {
			merged := make(map[string]any, len(gathered)+len(cl.Metadata))
			for k, v := range gathered {
				merged[k] = v
			}
			for k, v := range cl.Metadata {
				merged[k] = v
			}
			out = append(out, LeafMetadata{Path: cl.Path, Metadata: merged})
		}
	}
	return out
}

// gatherScalar indexes arr at the trailing len(indices) axes (taking the
// last len(indices) entries of the index path, since metadata attached at
// an ancestor may have fewer axes than the full path depth).
func gatherScalar(arr *MetadataArray, indices []int) (any, error) {
	n := len(arr.Shape)
	if n > len(indices) {
		return nil, newError(ErrorKindShapeMismatch, "metadata", "gatherScalar", "metadata rank exceeds available index path")
	}
	use := indices[len(indices)-n:]
	cur := arr
	for _, idx := range use {
		var err error
		cur, err = cur.TakeAxis(0, idx)
		if err != nil {
			return nil, err
		}
	}
	switch cur.Kind {
	case MetadataInt64:
		if len(cur.I64) != 1 {
			return nil, newError(ErrorKindShapeMismatch, "metadata", "gatherScalar", "expected scalar result")
		}
		return cur.I64[0], nil
	case MetadataFloat64:
		if len(cur.F64) != 1 {
			return nil, newError(ErrorKindShapeMismatch, "metadata", "gatherScalar", "expected scalar result")
		}
		return cur.F64[0], nil
	case MetadataString:
		if len(cur.Str) != 1 {
			return nil, newError(ErrorKindShapeMismatch, "metadata", "gatherScalar", "expected scalar result")
		}
		return cur.Str[0], nil
	case MetadataBool:
		if len(cur.Bln) != 1 {
			return nil, newError(ErrorKindShapeMismatch, "metadata", "gatherScalar", "expected scalar result")
		}
		return cur.Bln[0], nil
	default:
		return nil, newError(ErrorKindUnsupportedValueType, "metadata", "gatherScalar", "unknown metadata kind")
	}
}
