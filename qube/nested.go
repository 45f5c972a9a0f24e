package qube

import (
	"sort"
	"strings"
)

// DatacubeValue is one entry of the map passed to FromDatacube: either a
// single raw value, a list of raw values, or the literal "*" wildcard
// marker, mirroring serialisation.py's from_datacube accepting a scalar,
// a sequence, or a wildcard string at each key.
type DatacubeValue interface{}

// FromDatacube builds a single dense linear qube (one child per key, no
// branching) from a flat map of key to value-or-values, the same shape
// produced by one row of a request form:
//
//	qube.FromDatacube(map[string]qube.DatacubeValue{
//	    "class":  "rd",
//	    "expver": []string{"1", "2"},
//	    "param":  "*",
//	})
//
// It can only produce a dense qube; build a branching tree by unioning
// several FromDatacube results together.
func FromDatacube(datacube map[string]DatacubeValue) (*Qube, error) {
	keys := make([]string, 0, len(datacube))
	for k := range datacube {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var children []*Node
	// A Go map has no iteration order to preserve, unlike the original's
	// dict-ordered fold, so keys are nested alphabetically for a
	// reproducible tree; the resulting dense set of key=value paths is
	// the same cartesian product regardless of nesting order.
	for i := len(keys) - 1; i >= 0; i-- {
		key := keys[i]
		group, err := datacubeValueGroup(datacube[key])
		if err != nil {
			return nil, err
		}
		children = []*Node{newNode(key, group, nil, children)}
	}
	return &Qube{root: newNode(rootKey, &Enum{dtype: DTypeString}, nil, children)}, nil
}

func datacubeValueGroup(v DatacubeValue) (ValueGroup, error) {
	switch vv := v.(type) {
	case string:
		if vv == "*" {
			return Wildcard{}, nil
		}
		return NewEnumStrings([]string{vv})
	case []string:
		return NewEnumStrings(vv)
	default:
		return nil, newError(ErrorKindUnsupportedValueType, "nested", "FromDatacube",
			"datacube value must be a string or []string")
	}
}

// FromNestedMap builds a qube from nested maps whose keys take the form
// "key=value1/value2/...", the general-purpose constructor behind
// serialisation.py's from_dict:
//
//	qube.FromNestedMap(map[string]any{
//	    "class=d1": map[string]any{
//	        "dataset=climate-dt/weather-dt": map[string]any{
//	            "generation=1/2/3/4": map[string]any{},
//	        },
//	    },
//	})
//
// A child map with the single entry "...": map[string]any{} marks a stem
// whose children are deliberately unknown; since Node has no separate
// "unknown children" marker from "no children", it is represented the
// same way as any other leaf (documented design decision, not a loss of
// information the rest of the engine could act on differently anyway).
func FromNestedMap(d map[string]interface{}) (*Qube, error) {
	children, err := nestedMapChildren(d)
	if err != nil {
		return nil, err
	}
	return &Qube{root: newNode(rootKey, &Enum{dtype: DTypeString}, nil, children)}, nil
}

func nestedMapChildren(d map[string]interface{}) ([]*Node, error) {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	children := make([]*Node, 0, len(keys))
	for _, spec := range keys {
		key, rawVals, err := splitKeyEquals(spec)
		if err != nil {
			return nil, err
		}

		sub, ok := d[spec].(map[string]interface{})
		if !ok {
			return nil, newError(ErrorKindInvariantViolation, "nested", "FromNestedMap",
				"value for key "+spec+" must be a nested map")
		}

		group, err := valueGroupFromRaw(rawVals)
		if err != nil {
			return nil, err
		}

		if isOpaqueStem(sub) {
			children = append(children, newNode(key, group, nil, nil))
			continue
		}

		grandchildren, err := nestedMapChildren(sub)
		if err != nil {
			return nil, err
		}
		children = append(children, newNode(key, group, nil, grandchildren))
	}
	return children, nil
}

func isOpaqueStem(d map[string]interface{}) bool {
	if len(d) != 1 {
		return false
	}
	sub, ok := d["..."]
	if !ok {
		return false
	}
	nested, ok := sub.(map[string]interface{})
	return ok && len(nested) == 0
}

func splitKeyEquals(spec string) (string, []string, error) {
	eq := strings.IndexByte(spec, '=')
	if eq < 0 {
		return "", nil, newError(ErrorKindAmbiguousASCII, "nested", "splitKeyEquals",
			"key "+spec+" is missing '=value' suffix")
	}
	return spec[:eq], strings.Split(spec[eq+1:], "/"), nil
}
