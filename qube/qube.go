package qube

// Qube wraps a rooted tree and exposes the public operations as methods,
// the way the teacher's Collection wraps an index and exposes vector
// operations as methods, so callers never touch a bare *Node directly.
type Qube struct {
	root *Node
}

// New wraps an existing root node.
func New(root *Node) *Qube { return &Qube{root: root} }

// Empty returns a qube with a single empty root, the starting point for
// piecemeal construction via AddMetadata/Union.
func Empty() *Qube {
	return &Qube{root: newNode(rootKey, &Enum{dtype: DTypeString}, nil, nil)}
}

// Root returns the underlying root node.
func (q *Qube) Root() *Node { return q.root }

// ---- set algebra ----

func (q *Qube) Union(other *Qube) (*Qube, error) {
	r, err := Union(q.root, other.root)
	if err != nil {
		return nil, err
	}
	return &Qube{root: r}, nil
}

func (q *Qube) Intersect(other *Qube) (*Qube, error) {
	r, err := Intersect(q.root, other.root)
	if err != nil {
		return nil, err
	}
	return &Qube{root: r}, nil
}

func (q *Qube) Difference(other *Qube) (*Qube, error) {
	r, err := Difference(q.root, other.root)
	if err != nil {
		return nil, err
	}
	return &Qube{root: r}, nil
}

func (q *Qube) SymmetricDifference(other *Qube) (*Qube, error) {
	r, err := SymmetricDifference(q.root, other.root)
	if err != nil {
		return nil, err
	}
	return &Qube{root: r}, nil
}

// ---- compression & selection ----

func (q *Qube) Compress() *Qube {
	return &Qube{root: Compress(q.root)}
}

func (q *Qube) Select(selection Selection, opts ...SelectOption) (*Qube, error) {
	cfg, err := newSelectConfig(opts)
	if err != nil {
		return nil, err
	}
	r, err := Select(q.root, selection, cfg.mode, cfg.consume)
	if err != nil {
		return nil, err
	}
	if r == nil {
		r = newNode(rootKey, &Enum{dtype: DTypeString}, nil, nil)
	}
	return &Qube{root: r}, nil
}

func (q *Qube) Filter() *FilterBuilder { return NewFilter() }

// ---- metadata ----

func (q *Qube) AddMetadata(metadata map[string]*MetadataArray, depth int) (*Qube, error) {
	r, err := AddMetadata(q.root, metadata, depth)
	if err != nil {
		return nil, err
	}
	return &Qube{root: r}, nil
}

func (q *Qube) Leaves() []LeafMetadata {
	return LeavesWithMetadata(q.root)
}

// ---- removal & normalization ----

func (q *Qube) RemoveByKey(key string) *Qube {
	return &Qube{root: RemoveByKey(q.root, key)}
}

func (q *Qube) RemoveValues(key string, values []string) (*Qube, error) {
	r, err := RemoveValues(q.root, key, values)
	if err != nil {
		return nil, err
	}
	return &Qube{root: r}, nil
}

func (q *Qube) ConvertDtypes() (*Qube, error) {
	r, err := ConvertDtypes(q.root)
	if err != nil {
		return nil, err
	}
	return &Qube{root: r}, nil
}

// ---- stats ----

func (q *Qube) Stats() Stats { return ComputeStats(q.root) }

func (q *Qube) NLeaves() int { return q.root.NLeaves() }

func (q *Qube) NNodes() int { return q.root.NNodes() }

// ---- serialization ----

func (q *Qube) String() string { return ToASCII(q.root) }

func (q *Qube) ToJSON() ([]byte, error) { return ToJSON(q.root) }

func FromJSONQube(data []byte) (*Qube, error) {
	r, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	return &Qube{root: r}, nil
}

func FromASCIIQube(text string) (*Qube, error) {
	r, err := FromASCII(text)
	if err != nil {
		return nil, err
	}
	return &Qube{root: r}, nil
}

func (q *Qube) SaveBinary(path string) error { return SaveBinary(q.root, path) }

func LoadBinaryQube(path string) (*Qube, error) {
	r, err := LoadBinary(path)
	if err != nil {
		return nil, err
	}
	return &Qube{root: r}, nil
}
