package qube

// RemoveByKey removes every path through n that passes through key,
// recompressing afterwards so any siblings left structurally identical
// by the removal merge back together (original tests:
// test_compression.py::test_removal_compression, test_remove_branch.py).
func RemoveByKey(n *Node, key string) *Node {
	removed := removeKey(n, key)
	return Compress(removed)
}

func removeKey(n *Node, key string) *Node {
	var children []*Node
	for _, c := range n.Children {
		if c.Key == key {
			continue
		}
		children = append(children, removeKey(c, key))
	}
	return newNode(n.Key, n.Values, n.Metadata, children)
}

// FilterByPredicate keeps only the values at key for which pred returns
// true wherever key occurs in n, dropping a node entirely if that empties
// its value group, also dropping any node whose children were all dropped
// this way, and recompresses afterwards — the tree-walk half of
// `FilterBuilder.Predicate`, built the same way `RemoveValues` narrows a
// key's value group before recursing into what's left of its children.
func FilterByPredicate(n *Node, key string, pred Predicate) (*Node, error) {
	filtered, err := filterByPredicate(n, key, pred)
	if err != nil {
		return nil, err
	}
	return Compress(filtered), nil
}

func filterByPredicate(n *Node, key string, pred Predicate) (*Node, error) {
	var children []*Node
	for _, c := range n.Children {
		if c.Key == key {
			indices, kept, err := c.Values.Filter(pred)
			if err != nil {
				return nil, err
			}
			if kept.Len() == 0 {
				continue
			}
			metadata, err := sliceMetadata(c.Metadata, indices)
			if err != nil {
				return nil, err
			}
			next, err := filterByPredicate(c, key, pred)
			if err != nil {
				return nil, err
			}
			if len(c.Children) > 0 && len(next.Children) == 0 {
				continue
			}
			children = append(children, newNode(c.Key, kept, metadata, next.Children))
			continue
		}
		next, err := filterByPredicate(c, key, pred)
		if err != nil {
			return nil, err
		}
		if len(c.Children) > 0 && len(next.Children) == 0 {
			continue
		}
		children = append(children, next)
	}
	return newNode(n.Key, n.Values, n.Metadata, children), nil
}

// RemoveValues drops the given raw values from key wherever it occurs in
// n, dropping the node entirely if that empties its value group, and
// recompresses afterwards.
func RemoveValues(n *Node, key string, values []string) (*Node, error) {
	removed, err := removeValues(n, key, values)
	if err != nil {
		return nil, err
	}
	return Compress(removed), nil
}

func removeValues(n *Node, key string, values []string) (*Node, error) {
	var children []*Node
	for _, c := range n.Children {
		if c.Key == key {
			indices, kept, err := c.Values.Filter(Predicate(func(v Value) bool {
				for _, s := range values {
					if v.String() == s {
						return false
					}
				}
				return true
			}))
			if err != nil {
				return nil, err
			}
			if kept.Len() == 0 {
				continue
			}
			metadata, err := sliceMetadata(c.Metadata, indices)
			if err != nil {
				return nil, err
			}
			next, err := removeValues(c, key, values)
			if err != nil {
				return nil, err
			}
			children = append(children, newNode(c.Key, kept, metadata, next.Children))
			continue
		}
		next, err := removeValues(c, key, values)
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	return newNode(n.Key, n.Values, n.Metadata, children), nil
}
