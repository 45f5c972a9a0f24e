package qube

import (
	"strings"
	"unicode/utf8"
)

// ToASCII renders n as the box-drawing tree format used by the original
// formatter: a run of single-child nodes collapses onto one comma-joined
// line ("root, class=d1, dataset=rd"), and a node with zero or more than
// one child fans out beneath it with "├── "/"└── " connectors, each
// continued by "│   " or four spaces depending on whether a sibling
// follows.
func ToASCII(n *Node) string {
	var b strings.Builder
	writeASCIISpine(&b, n, "")
	return b.String()
}

func writeASCIISpine(b *strings.Builder, n *Node, prefix string) {
	summaries := []string{n.summaryLine()}
	node := n
	for len(node.Children) == 1 {
		node = node.Children[0]
		summaries = append(summaries, node.summaryLine())
	}
	b.WriteString(strings.Join(summaries, ", "))
	b.WriteByte('\n')

	for i, c := range node.Children {
		last := i == len(node.Children)-1
		connector, extension := "├── ", "│   "
		if last {
			connector, extension = "└── ", "    "
		}
		b.WriteString(prefix)
		b.WriteString(connector)
		writeASCIISpine(b, c, prefix+extension)
	}
}

// asciiNode is a mutable intermediate tree built while parsing: it lets
// the indent-stack algorithm below append children discovered on later
// lines before anything is hashed, and the finished tree is converted to
// immutable *Node values bottom-up in one pass at the end.
type asciiNode struct {
	key      string
	rawVals  []string
	children []*asciiNode
}

// FromASCII parses the box-drawing tree format produced by ToASCII back
// into a tree, following the original from_tree algorithm: tree-drawing
// characters and leading spaces are stripped to recover an indent level
// (one unit per four stripped characters, relative to the first line's
// own indent), a comma-joined line expands into a chain of single-child
// nodes, and a stack of "current open node at each depth" tracks where
// each line's chain attaches. The very first line must be the bare
// "root" token, optionally followed by a comma-joined spine that becomes
// root's own initial children. It does not attempt to read an
// uncompressed tree where the exact same "key=values" spec repeats as a
// sibling of itself at one indent level — that always indicates a tree
// that needs compression to interpret, not two independent branches
// (two siblings sharing a key name but different values, like two
// distinct "dataset=..." branches, are not ambiguous and are accepted).
func FromASCII(text string) (*Node, error) {
	lines := splitNonEmptyLines(text)
	if len(lines) == 0 {
		return nil, newError(ErrorKindAmbiguousASCII, "ascii", "FromASCII", "empty input")
	}

	root := &asciiNode{key: rootKey}
	seenAt := map[*asciiNode]map[string]bool{}
	var stack []*asciiNode
	initialIndent := -1

	for i, line := range lines {
		stripped := strings.TrimLeft(line, " │├└─")
		raw := utf8.RuneCountInString(line[:len(line)-len(stripped)]) / 4
		if initialIndent == -1 {
			initialIndent = raw
		}
		indent := raw - initialIndent

		specs := splitTrimmed(stripped, ",")
		if len(specs) == 0 {
			return nil, newError(ErrorKindAmbiguousASCII, "ascii", "FromASCII",
				"line "+indexString(i+1)+" is empty after stripping tree characters")
		}

		if i == 0 {
			if indent != 0 {
				return nil, newError(ErrorKindAmbiguousASCII, "ascii", "FromASCII",
					"the first line must be at the base indent level")
			}
			if specs[0] != rootKey {
				return nil, newError(ErrorKindAmbiguousASCII, "ascii", "FromASCII",
					"the first line must start with \""+rootKey+"\"")
			}
			specs = specs[1:]
			bottom := root
			if len(specs) > 0 {
				chain, tail, err := buildASCIIChain(specs)
				if err != nil {
					return nil, err
				}
				root.children = append(root.children, chain)
				bottom = tail
			}
			stack = []*asciiNode{bottom}
			continue
		}

		if indent < 1 || indent > len(stack) {
			return nil, newError(ErrorKindAmbiguousASCII, "ascii", "FromASCII",
				"line "+indexString(i+1)+" has an indent level with no parent")
		}
		stack = stack[:indent]
		parent := stack[len(stack)-1]

		head := specs[0]
		seen := seenAt[parent]
		if seen == nil {
			seen = map[string]bool{}
			seenAt[parent] = seen
		}
		if seen[head] {
			return nil, newError(ErrorKindAmbiguousASCII, "ascii", "FromASCII",
				"repeated sibling spec "+head+" at the same indent level; this parser does not read uncompressed trees")
		}
		seen[head] = true

		chain, tail, err := buildASCIIChain(specs)
		if err != nil {
			return nil, err
		}
		parent.children = append(parent.children, chain)
		stack = append(stack, tail)
	}

	return asciiNodeToNode(root)
}

// buildASCIIChain turns a comma-split list of "key=values" specs into a
// chain of single-child asciiNodes, returning both the chain's head (to
// attach under its parent) and its tail (so later, deeper-indented lines
// can attach their own children beneath it).
func buildASCIIChain(specs []string) (head, tail *asciiNode, err error) {
	nodes := make([]*asciiNode, len(specs))
	for i, spec := range specs {
		key, rawVals, splitErr := splitKeyEquals(spec)
		if splitErr != nil {
			return nil, nil, splitErr
		}
		nodes[i] = &asciiNode{key: key, rawVals: rawVals}
	}
	for i := 0; i < len(nodes)-1; i++ {
		nodes[i].children = []*asciiNode{nodes[i+1]}
	}
	return nodes[0], nodes[len(nodes)-1], nil
}

func asciiNodeToNode(a *asciiNode) (*Node, error) {
	children := make([]*Node, len(a.children))
	for i, c := range a.children {
		child, err := asciiNodeToNode(c)
		if err != nil {
			return nil, err
		}
		children[i] = child
	}

	if a.key == rootKey {
		return newNode(rootKey, &Enum{dtype: DTypeString}, nil, children), nil
	}

	group, err := valueGroupFromRaw(a.rawVals)
	if err != nil {
		return nil, err
	}
	return newNode(a.key, group, nil, children), nil
}

func splitNonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(strings.Trim(line, " │├└─")) != "" {
			out = append(out, line)
		}
	}
	return out
}

func splitTrimmed(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
