package qube

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
)

// jsonNode mirrors serialisation.py's to_json/from_json shape and
// spec.md §6's bit-stable wire contract: a node is its key, a nested
// value-group object, a map of metadata arrays, and a list of children.
type jsonNode struct {
	Key      string                  `json:"key"`
	Values   jsonValues              `json:"values"`
	Metadata map[string]jsonMetadata `json:"metadata,omitempty"`
	Children []*jsonNode             `json:"children,omitempty"`
}

// jsonValues is the C1 value-group wire form: an enumeration serialises
// as {"type":"enum","dtype":...,"values":[...]}, a wildcard as the bare
// string "*".
type jsonValues struct {
	Wildcard bool
	Dtype    string
	Values   []string
}

type jsonEnumValues struct {
	Type   string   `json:"type"`
	Dtype  string   `json:"dtype"`
	Values []string `json:"values"`
}

func (jv jsonValues) MarshalJSON() ([]byte, error) {
	if jv.Wildcard {
		return json.Marshal("*")
	}
	return json.Marshal(jsonEnumValues{Type: "enum", Dtype: jv.Dtype, Values: jv.Values})
}

func (jv *jsonValues) UnmarshalJSON(data []byte) error {
	var wildcard string
	if err := json.Unmarshal(data, &wildcard); err == nil {
		if wildcard != "*" {
			return newError(ErrorKindUnsupportedValueType, "json", "jsonValues.UnmarshalJSON",
				"unrecognized bare value-group string "+wildcard)
		}
		jv.Wildcard = true
		return nil
	}
	var enum jsonEnumValues
	if err := json.Unmarshal(data, &enum); err != nil {
		return newError(ErrorKindUnsupportedValueType, "json", "jsonValues.UnmarshalJSON", "malformed value group").withCause(err)
	}
	jv.Dtype = enum.Dtype
	jv.Values = enum.Values
	return nil
}

// jsonMetadata stores the flat buffer base64-encoded and little-endian,
// alongside dtype and shape: {"shape":[...],"dtype":"...","base64":"..."}.
type jsonMetadata struct {
	Shape  []int  `json:"shape"`
	Dtype  string `json:"dtype"`
	Base64 string `json:"base64"`
}

// ToJSON renders n and everything below it as the wire JSON format (C8).
func ToJSON(n *Node) ([]byte, error) {
	jn, err := nodeToJSON(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jn)
}

func nodeToJSON(n *Node) (*jsonNode, error) {
	jn := &jsonNode{Key: n.Key}
	if n.Values.isWildcard() {
		jn.Values = jsonValues{Wildcard: true}
	} else {
		enum := n.Values.(*Enum)
		raw := make([]string, len(enum.values))
		for i, v := range enum.values {
			raw[i] = v.String()
		}
		jn.Values = jsonValues{Dtype: enum.dtype.String(), Values: raw}
	}
	if len(n.Metadata) > 0 {
		jn.Metadata = make(map[string]jsonMetadata, len(n.Metadata))
		for name, arr := range n.Metadata {
			jm, err := metadataToJSON(arr)
			if err != nil {
				return nil, err
			}
			jn.Metadata[name] = jm
		}
	}
	for _, c := range n.Children {
		jc, err := nodeToJSON(c)
		if err != nil {
			return nil, err
		}
		jn.Children = append(jn.Children, jc)
	}
	return jn, nil
}

func metadataToJSON(arr *MetadataArray) (jsonMetadata, error) {
	var buf []byte
	var dtype string
	switch arr.Kind {
	case MetadataInt64:
		dtype = "int64"
		buf = make([]byte, 8*len(arr.I64))
		for i, v := range arr.I64 {
			binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
		}
	case MetadataFloat64:
		dtype = "float64"
		buf = make([]byte, 8*len(arr.F64))
		for i, v := range arr.F64 {
			binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
		}
	case MetadataBool:
		dtype = "bool"
		buf = make([]byte, len(arr.Bln))
		for i, v := range arr.Bln {
			if v {
				buf[i] = 1
			}
		}
	case MetadataString:
		dtype = "str"
		data, err := json.Marshal(arr.Str)
		if err != nil {
			return jsonMetadata{}, newError(ErrorKindUnsupportedValueType, "json", "metadataToJSON", "failed to encode string metadata").withCause(err)
		}
		buf = data
	default:
		return jsonMetadata{}, newError(ErrorKindUnsupportedValueType, "json", "metadataToJSON", "unknown metadata kind")
	}
	return jsonMetadata{Shape: arr.Shape, Dtype: dtype, Base64: base64.StdEncoding.EncodeToString(buf)}, nil
}

// FromJSON parses the wire JSON format back into a tree.
func FromJSON(data []byte) (*Node, error) {
	var jn jsonNode
	if err := json.Unmarshal(data, &jn); err != nil {
		return nil, newError(ErrorKindUnsupportedValueType, "json", "FromJSON", "malformed JSON").withCause(err)
	}
	return jsonToNode(&jn)
}

func jsonToNode(jn *jsonNode) (*Node, error) {
	var values ValueGroup
	if jn.Values.Wildcard {
		values = Wildcard{}
	} else {
		dtype := dtypeFromString(jn.Values.Dtype)
		if dtype == DTypeString && jn.Values.Dtype == "" {
			enum, err := NewEnumStrings(jn.Values.Values)
			if err != nil {
				return nil, err
			}
			values = enum
		} else {
			vs := make([]Value, len(jn.Values.Values))
			for i, raw := range jn.Values.Values {
				v, err := valueFromString(raw, dtype)
				if err != nil {
					return nil, err
				}
				vs[i] = v
			}
			enum, err := NewEnum(vs)
			if err != nil {
				return nil, err
			}
			values = enum
		}
	}

	var metadata map[string]*MetadataArray
	if len(jn.Metadata) > 0 {
		metadata = make(map[string]*MetadataArray, len(jn.Metadata))
		for name, jm := range jn.Metadata {
			arr, err := metadataFromJSON(jm)
			if err != nil {
				return nil, err
			}
			metadata[name] = arr
		}
	}

	children := make([]*Node, len(jn.Children))
	for i, jc := range jn.Children {
		c, err := jsonToNode(jc)
		if err != nil {
			return nil, err
		}
		children[i] = c
	}
	return newNode(jn.Key, values, metadata, children), nil
}

func dtypeFromString(s string) DType {
	switch s {
	case "int64":
		return DTypeInt64
	case "float64":
		return DTypeFloat64
	case "date":
		return DTypeDate
	case "datetime":
		return DTypeDateTime
	default:
		return DTypeString
	}
}

func metadataFromJSON(jm jsonMetadata) (*MetadataArray, error) {
	raw, err := base64.StdEncoding.DecodeString(jm.Base64)
	if err != nil {
		return nil, newError(ErrorKindUnsupportedValueType, "json", "metadataFromJSON", "bad base64").withCause(err)
	}
	switch jm.Dtype {
	case "int64":
		vals := make([]int64, len(raw)/8)
		for i := range vals {
			vals[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return &MetadataArray{Kind: MetadataInt64, Shape: jm.Shape, I64: vals}, nil
	case "float64":
		vals := make([]float64, len(raw)/8)
		for i := range vals {
			vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return &MetadataArray{Kind: MetadataFloat64, Shape: jm.Shape, F64: vals}, nil
	case "bool":
		vals := make([]bool, len(raw))
		for i, b := range raw {
			vals[i] = b != 0
		}
		return &MetadataArray{Kind: MetadataBool, Shape: jm.Shape, Bln: vals}, nil
	case "str":
		var vals []string
		if err := json.Unmarshal(raw, &vals); err != nil {
			return nil, newError(ErrorKindUnsupportedValueType, "json", "metadataFromJSON", "malformed string metadata").withCause(err)
		}
		return &MetadataArray{Kind: MetadataString, Shape: jm.Shape, Str: vals}, nil
	default:
		return nil, newError(ErrorKindUnsupportedValueType, "json", "metadataFromJSON", "unknown metadata dtype "+jm.Dtype)
	}
}
