package qube

// FilterBuilder accumulates per-key value constraints fluently, the way
// the teacher's query.Builder accumulates Eq/In conditions, before a
// terminal Apply call runs Select against the tree being filtered.
type FilterBuilder struct {
	selection    Selection
	mode         SelectMode
	consume      bool
	predicates   map[string]Predicate
	predicateKey []string // preserves call order for deterministic Apply
}

// NewFilter starts a new builder with an empty selection in relaxed mode.
func NewFilter() *FilterBuilder {
	return &FilterBuilder{selection: Selection{}, mode: SelectRelaxed}
}

// Eq constrains key to a single raw value.
func (b *FilterBuilder) Eq(key, value string) *FilterBuilder {
	return b.In(key, value)
}

// In constrains key to any of the given raw values, merging with any
// values already set for that key.
func (b *FilterBuilder) In(key string, values ...string) *FilterBuilder {
	b.selection[key] = append(b.selection[key], values...)
	return b
}

// Predicate narrows key to the values for which fn returns true, applied
// as its own tree walk ahead of the raw Eq/In selection (Select has no
// notion of predicates, only concrete values, so a keyed predicate can't
// be folded into the Selection map the way Eq/In are).
func (b *FilterBuilder) Predicate(key string, fn func(Value) bool) *FilterBuilder {
	if b.predicates == nil {
		b.predicates = make(map[string]Predicate)
	}
	if _, exists := b.predicates[key]; !exists {
		b.predicateKey = append(b.predicateKey, key)
	}
	b.predicates[key] = Predicate(fn)
	return b
}

// Strict switches the builder to strict mode (spec §4.7): a node whose key
// is not named in the selection is dropped together with everything below
// it, while its ancestors are kept.
func (b *FilterBuilder) Strict() *FilterBuilder {
	b.mode = SelectStrict
	return b
}

// NextLevel switches the builder to next-level mode.
func (b *FilterBuilder) NextLevel() *FilterBuilder {
	b.mode = SelectNextLevel
	return b
}

// Consume marks matched keys as consumed during the walk, pruning leaves
// reached with leftover unmatched selection entries.
func (b *FilterBuilder) Consume() *FilterBuilder {
	b.consume = true
	return b
}

// Apply runs every accumulated predicate, then the accumulated Eq/In
// selection, against root.
func (b *FilterBuilder) Apply(root *Node) (*Node, error) {
	cur := root
	for _, key := range b.predicateKey {
		filtered, err := FilterByPredicate(cur, key, b.predicates[key])
		if err != nil {
			return nil, err
		}
		cur = filtered
	}
	if len(b.selection) == 0 {
		return cur, nil
	}
	return Select(cur, b.selection, b.mode, b.consume)
}
