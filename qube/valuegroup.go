package qube

import (
	"fmt"
	"sort"
	"strings"
)

// ValueGroup is the sealed set of value-group variants: Enum and Wildcard.
// Range-typed groups are reserved (spec §9) and deliberately unimplemented;
// adding a variant means updating every switch and type assertion on
// *Enum / *Wildcard across the package.
type ValueGroup interface {
	Dtype() DType
	Summary() string
	Contains(v Value) bool
	Len() int
	Values() []Value
	Min() Value
	Filter(c Criterion) ([]int, ValueGroup, error)
	isWildcard() bool
	// token is the canonical representation folded into a node's
	// structural hash; it must be identical for value groups that compare
	// equal and differ for ones that don't.
	token() string
}

// Criterion is the sealed selection criterion passed to ValueGroup.Filter:
// either a predicate or a concrete list of raw strings.
type Criterion interface{ isCriterion() }

// Predicate filters by calling fn on each value.
type Predicate func(Value) bool

func (Predicate) isCriterion() {}

// ValueList filters by coercing each string to the group's dtype and
// keeping values present in the list.
type ValueList []string

func (ValueList) isCriterion() {}

// ---- Enum -----------------------------------------------------------------

// Enum is an ordered, duplicate-free sequence of typed values sharing one
// dtype.
type Enum struct {
	dtype  DType
	values []Value
}

// NewEnum builds an Enum from values that must all share one dtype; mixed
// dtypes fail with ErrTypeMismatch. An empty list defaults to string dtype.
func NewEnum(values []Value) (*Enum, error) {
	if len(values) == 0 {
		return &Enum{dtype: DTypeString}, nil
	}
	dtype := values[0].Dtype()
	for _, v := range values[1:] {
		if v.Dtype() != dtype {
			return nil, newError(ErrorKindTypeMismatch, "valuegroup", "NewEnum",
				fmt.Sprintf("mixed dtypes in enumeration: %s and %s", dtype, v.Dtype()))
		}
	}
	return &Enum{dtype: dtype, values: sortDedup(values)}, nil
}

// NewEnumStrings infers the dtype from the first string (spec §4.1) and
// coerces the rest; a later string that doesn't parse as the inferred
// dtype is kept as-is only if the inferred dtype is string, otherwise it
// is a type-mismatch.
func NewEnumStrings(raw []string) (*Enum, error) {
	if len(raw) == 0 {
		return &Enum{dtype: DTypeString}, nil
	}
	first := inferValue(raw[0])
	dtype := first.Dtype()
	values := make([]Value, 0, len(raw))
	for _, s := range raw {
		v, err := valueFromString(s, dtype)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return &Enum{dtype: dtype, values: sortDedup(values)}, nil
}

func sortDedup(values []Value) []Value {
	cp := append([]Value(nil), values...)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Less(cp[j]) })
	out := cp[:0]
	for i, v := range cp {
		if i == 0 || !out[len(out)-1].Equal(v) {
			out = append(out, v)
		}
	}
	return out
}

func (e *Enum) Dtype() DType    { return e.dtype }
func (e *Enum) Len() int        { return len(e.values) }
func (e *Enum) Values() []Value { return e.values }
func (e *Enum) isWildcard() bool { return false }

func (e *Enum) Min() Value {
	if len(e.values) == 0 {
		return Value{}
	}
	return e.values[0]
}

func (e *Enum) Summary() string {
	parts := make([]string, len(e.values))
	for i, v := range e.values {
		parts[i] = v.Summary()
	}
	return strings.Join(parts, "/")
}

func (e *Enum) Contains(v Value) bool {
	for _, ev := range e.values {
		if ev.Equal(v) {
			return true
		}
	}
	return false
}

func (e *Enum) token() string {
	return "enum:" + e.dtype.String() + ":" + e.Summary()
}

// Filter implements spec §4.1: a predicate keeps matching values in
// original order; a list coerces to the group's dtype and keeps values
// present in the list, also in original order. Indices are positions in
// the original group.
func (e *Enum) Filter(c Criterion) ([]int, ValueGroup, error) {
	switch crit := c.(type) {
	case Predicate:
		var indices []int
		var kept []Value
		for i, v := range e.values {
			if crit(v) {
				indices = append(indices, i)
				kept = append(kept, v)
			}
		}
		return indices, &Enum{dtype: e.dtype, values: kept}, nil
	case ValueList:
		wanted := make(map[string]bool, len(crit))
		for _, s := range crit {
			v, err := valueFromString(s, e.dtype)
			if err != nil {
				return nil, nil, err
			}
			wanted[v.String()] = true
		}
		var indices []int
		var kept []Value
		for i, v := range e.values {
			if wanted[v.String()] {
				indices = append(indices, i)
				kept = append(kept, v)
			}
		}
		return indices, &Enum{dtype: e.dtype, values: kept}, nil
	default:
		return nil, nil, newError(ErrorKindUnsupportedValueType, "valuegroup", "Filter", "unknown criterion type")
	}
}

// valueGroupFromRaw builds a value group from raw strings, treating the
// single-element list ["*"] as a Wildcard the way every textual
// constructor (ASCII, nested-map, datacube) does.
func valueGroupFromRaw(raw []string) (ValueGroup, error) {
	if len(raw) == 1 && raw[0] == "*" {
		return Wildcard{}, nil
	}
	return NewEnumStrings(raw)
}

// ---- Wildcard ---------------------------------------------------------------

// Wildcard matches anything; it behaves as if it contained every value the
// other side offers.
type Wildcard struct{}

func (Wildcard) Dtype() DType     { return DTypeString }
func (Wildcard) Len() int         { return 1 }
func (Wildcard) Values() []Value  { return []Value{NewStringValue("*")} }
func (Wildcard) Min() Value       { return NewStringValue("*") }
func (Wildcard) Summary() string  { return "*" }
func (Wildcard) Contains(Value) bool { return true }
func (Wildcard) isWildcard() bool { return true }
func (Wildcard) token() string    { return "wildcard" }

// Filter on a Wildcard: a list becomes that list as an enumeration (spec
// §4.1); a predicate is unsupported since a wildcard has no concrete
// values to test.
func (Wildcard) Filter(c Criterion) ([]int, ValueGroup, error) {
	switch crit := c.(type) {
	case ValueList:
		enum, err := NewEnumStrings([]string(crit))
		if err != nil {
			return nil, nil, err
		}
		indices := make([]int, enum.Len())
		for i := range indices {
			indices[i] = i
		}
		return indices, enum, nil
	case Predicate:
		return nil, nil, newError(ErrorKindUnsupportedValueType, "valuegroup", "Filter", "can't filter a wildcard with a predicate")
	default:
		return nil, nil, newError(ErrorKindUnsupportedValueType, "valuegroup", "Filter", "unknown criterion type")
	}
}

// valuesEqual reports whether two value groups are the same variant with
// the same dtype/content, used by Node.StructurallyEqual.
func valuesEqual(a, b ValueGroup) bool {
	return a.token() == b.token()
}
