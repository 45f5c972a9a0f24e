package qube

// ConvertDtypes rewrites every Enum value group in n, reinferring its
// dtype from its own string content instead of trusting whatever dtype
// it was constructed or parsed with. This mirrors the original test
// suite's pervasive use of convert_dtypes to normalize a tree built from
// bare strings (typically via FromASCII) before comparing it against one
// built with typed constructors, so an int-looking key doesn't compare
// unequal to itself just because one side inferred "str" and the other
// "int64".
func ConvertDtypes(n *Node) (*Node, error) {
	values := n.Values
	if enum, ok := n.Values.(*Enum); ok {
		raw := make([]string, enum.Len())
		for i, v := range enum.values {
			raw[i] = v.String()
		}
		converted, err := NewEnumStrings(raw)
		if err != nil {
			return nil, err
		}
		values = converted
	}
	children := make([]*Node, len(n.Children))
	for i, c := range n.Children {
		cc, err := ConvertDtypes(c)
		if err != nil {
			return nil, err
		}
		children[i] = cc
	}
	return newNode(n.Key, values, n.Metadata, children), nil
}
