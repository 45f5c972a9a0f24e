package qube

import (
	"fmt"
	"strconv"
	"time"
)

// DType tags the scalar type carried by an Enum value group. The set is
// fixed by design: range-typed groups are reserved for a future revision
// of the value group variant (see valuegroup.go).
type DType int

const (
	DTypeString DType = iota
	DTypeInt64
	DTypeFloat64
	DTypeDate
	DTypeDateTime
)

func (d DType) String() string {
	switch d {
	case DTypeString:
		return "str"
	case DTypeInt64:
		return "int64"
	case DTypeFloat64:
		return "float64"
	case DTypeDate:
		return "date"
	case DTypeDateTime:
		return "datetime"
	default:
		return "unknown"
	}
}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = time.RFC3339
)

// Value is a single scalar belonging to one dtype. It always carries its
// canonical string form so that hashing, sorting and JSON round-tripping
// never need to re-derive it.
type Value struct {
	dtype DType
	str   string
	i64   int64
	f64   float64
	t     time.Time
}

// NewStringValue builds a string-dtype value.
func NewStringValue(s string) Value { return Value{dtype: DTypeString, str: s} }

// NewInt64Value builds an int64-dtype value.
func NewInt64Value(i int64) Value {
	return Value{dtype: DTypeInt64, i64: i, str: strconv.FormatInt(i, 10)}
}

// NewFloat64Value builds a float64-dtype value.
func NewFloat64Value(f float64) Value {
	return Value{dtype: DTypeFloat64, f64: f, str: strconv.FormatFloat(f, 'g', -1, 64)}
}

// NewDateValue builds a date-dtype value (time component is ignored).
func NewDateValue(t time.Time) Value {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Value{dtype: DTypeDate, t: d, str: d.Format(dateLayout)}
}

// NewDateTimeValue builds a datetime-dtype value.
func NewDateTimeValue(t time.Time) Value {
	return Value{dtype: DTypeDateTime, t: t, str: t.Format(dateTimeLayout)}
}

func (v Value) Dtype() DType  { return v.dtype }
func (v Value) String() string { return v.str }

// Less implements the per-dtype ordering used to keep Enum groups sorted.
func (v Value) Less(other Value) bool {
	switch v.dtype {
	case DTypeInt64:
		return v.i64 < other.i64
	case DTypeFloat64:
		return v.f64 < other.f64
	case DTypeDate, DTypeDateTime:
		return v.t.Before(other.t)
	default:
		return v.str < other.str
	}
}

// Equal reports whether two values carry the same dtype and content.
func (v Value) Equal(other Value) bool {
	if v.dtype != other.dtype {
		return false
	}
	switch v.dtype {
	case DTypeInt64:
		return v.i64 == other.i64
	case DTypeFloat64:
		return v.f64 == other.f64
	case DTypeDate, DTypeDateTime:
		return v.t.Equal(other.t)
	default:
		return v.str == other.str
	}
}

// Summary renders a human string per the dtype's conventional format.
func (v Value) Summary() string {
	switch v.dtype {
	case DTypeFloat64:
		return strconv.FormatFloat(v.f64, 'g', 3, 64)
	case DTypeDate:
		return v.t.Format(dateLayout)
	case DTypeDateTime:
		return v.t.Format(dateTimeLayout)
	default:
		return v.str
	}
}

// valueFromString coerces a raw string into the given dtype, used both by
// ASCII/dict construction (everything arrives as strings) and by Enum.Filter
// when a caller passes a list of strings against a typed group.
func valueFromString(s string, dtype DType) (Value, error) {
	switch dtype {
	case DTypeString:
		return NewStringValue(s), nil
	case DTypeInt64:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, newError(ErrorKindTypeMismatch, "value", "parse", fmt.Sprintf("%q is not a valid int64", s)).withCause(err)
		}
		return NewInt64Value(i), nil
	case DTypeFloat64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, newError(ErrorKindTypeMismatch, "value", "parse", fmt.Sprintf("%q is not a valid float64", s)).withCause(err)
		}
		return NewFloat64Value(f), nil
	case DTypeDate:
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return Value{}, newError(ErrorKindTypeMismatch, "value", "parse", fmt.Sprintf("%q is not a valid date", s)).withCause(err)
		}
		return NewDateValue(t), nil
	case DTypeDateTime:
		t, err := time.Parse(dateTimeLayout, s)
		if err != nil {
			return Value{}, newError(ErrorKindTypeMismatch, "value", "parse", fmt.Sprintf("%q is not a valid datetime", s)).withCause(err)
		}
		return NewDateTimeValue(t), nil
	default:
		return Value{}, newError(ErrorKindTypeMismatch, "value", "parse", fmt.Sprintf("unknown dtype %v", dtype))
	}
}

// inferValue guesses a dtype for a bare string the way the original
// inferred dtype from the first element of a Python list: try int64, then
// float64, then date, then datetime, then fall back to string.
func inferValue(s string) Value {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NewInt64Value(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return NewFloat64Value(f)
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return NewDateValue(t)
	}
	if t, err := time.Parse(dateTimeLayout, s); err == nil {
		return NewDateTimeValue(t)
	}
	return NewStringValue(s)
}
