package qube

// SelectMode controls how a selection dict that doesn't name every key on
// a path is treated (spec §4.7, grounded on selection.py's three modes).
type SelectMode int

const (
	// SelectStrict requires every node on a path to have an entry in the
	// selection; a node whose key is absent from the selection is
	// dropped entirely.
	SelectStrict SelectMode = iota
	// SelectRelaxed keeps a node whose key isn't named in the selection
	// as-is, descending into its children unfiltered.
	SelectRelaxed
	// SelectNextLevel filters named keys like the other modes; at the
	// first key on a path the selection doesn't name, it keeps that node
	// as a frontier with its children stripped.
	SelectNextLevel
)

// Selection maps a key to the list of raw string values to keep at that
// key, matching the original's dict-of-value-lists shape.
type Selection map[string][]string

// Select walks n and keeps only the paths consistent with selection,
// following mode's rules for keys the selection doesn't mention. When
// consume is true, a matched key is removed from the selection before
// recursing into children, so a leaf reached with leftover unconsumed
// selection entries is pruned (selection.py's "consume and not
// node.children and selection" rule) — a selection that still has
// unmatched keys by the time it reaches a leaf means that leaf can't
// satisfy the whole selection.
func Select(n *Node, selection Selection, mode SelectMode, consume bool) (*Node, error) {
	return selectNode(n, selection, mode, consume)
}

func selectNode(n *Node, selection Selection, mode SelectMode, consume bool) (*Node, error) {
	// The root sentinel carries no filterable dimension of its own and
	// can never be named in a caller-supplied selection, so it always
	// passes through regardless of mode; strict/relaxed/next-level only
	// govern the real domain keys beneath it.
	if n.Key == rootKey {
		children, err := selectChildren(n.Children, selection, mode, consume)
		if err != nil {
			return nil, err
		}
		if consume && len(n.Children) == 0 && len(selection) > 0 {
			return nil, nil
		}
		return newNode(n.Key, n.Values, n.Metadata, children), nil
	}

	raw, named := selection[n.Key]

	if !named {
		switch mode {
		case SelectStrict:
			return nil, nil
		case SelectRelaxed:
			children, err := selectChildren(n.Children, selection, mode, consume)
			if err != nil {
				return nil, err
			}
			if consume && len(n.Children) == 0 && len(selection) > 0 {
				return nil, nil
			}
			return newNode(n.Key, n.Values, n.Metadata, children), nil
		case SelectNextLevel:
			// The recursion has reached a key the selection doesn't
			// mention: keep this node as the frontier the caller should
			// ask about next, stripping its children rather than
			// descending into them unfiltered.
			if consume && len(selection) > 0 {
				return nil, nil
			}
			return newNode(n.Key, n.Values, n.Metadata, nil), nil
		}
	}

	indices, kept, err := n.Values.Filter(ValueList(raw))
	if err != nil {
		return nil, err
	}
	if kept.Len() == 0 {
		return nil, nil
	}
	metadata, err := sliceMetadata(n.Metadata, indices)
	if err != nil {
		return nil, err
	}

	// A key named in the selection recurses in the same mode: next_level
	// only starts stripping once the recursion reaches a key the
	// selection doesn't mention.
	childSelection := selection
	if consume {
		childSelection = withoutKey(selection, n.Key)
	}

	if consume && len(n.Children) == 0 && len(childSelection) > 0 {
		return nil, nil
	}

	children, err := selectChildren(n.Children, childSelection, mode, consume)
	if err != nil {
		return nil, err
	}
	return newNode(n.Key, kept, metadata, children), nil
}

func selectChildren(nodes []*Node, selection Selection, mode SelectMode, consume bool) ([]*Node, error) {
	var out []*Node
	for _, c := range nodes {
		sel, err := selectNode(c, selection, mode, consume)
		if err != nil {
			return nil, err
		}
		if sel != nil {
			out = append(out, sel)
		}
	}
	return out, nil
}

func withoutKey(selection Selection, key string) Selection {
	if _, ok := selection[key]; !ok {
		return selection
	}
	out := make(Selection, len(selection)-1)
	for k, v := range selection {
		if k != key {
			out[k] = v
		}
	}
	return out
}
