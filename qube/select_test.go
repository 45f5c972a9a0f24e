package qube

import "testing"

func buildSelectionTree(t *testing.T) *Node {
	t.Helper()
	return rootWith(
		newNode("level", mustEnum(t, "1", "2"), nil, []*Node{
			leaf(t, "date", "2024-01-01", "2024-01-02"),
		}),
	)
}

func TestSelectRelaxedKeepsUnnamedKeys(t *testing.T) {
	tree := buildSelectionTree(t)
	got, err := Select(tree, Selection{"level": {"1"}}, SelectRelaxed, false)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got.NLeaves() != 2 {
		t.Fatalf("expected both dates to survive unfiltered, got %d leaves", got.NLeaves())
	}
}

func TestSelectStrictDropsUnnamedKeys(t *testing.T) {
	tree := buildSelectionTree(t)
	got, err := Select(tree, Selection{"level": {"1"}}, SelectStrict, false)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got == nil {
		t.Fatalf("expected level=1 to survive strict mode")
	}
	// "date" isn't named in the selection, so strict mode drops it
	// entirely, leaving "level" with no children.
	if len(got.Children) != 1 || len(got.Children[0].Children) != 0 {
		t.Fatalf("expected level=1 to survive with its unnamed 'date' child dropped, got %+v", got)
	}
}

func TestSelectStrictDropsUnnamedTopLevelKey(t *testing.T) {
	tree := buildSelectionTree(t)
	got, err := Select(tree, Selection{"missing": {"x"}}, SelectStrict, false)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got == nil || len(got.Children) != 0 {
		t.Fatalf("expected strict mode to drop 'level' since it isn't named in the selection, got %+v", got)
	}
}

func TestSelectConsumePrunesLeavesWithLeftoverSelection(t *testing.T) {
	tree := buildSelectionTree(t)
	got, err := Select(tree, Selection{"level": {"1"}, "missing": {"x"}}, SelectRelaxed, true)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got == nil {
		t.Fatalf("expected the level=1 branch to survive")
	}
	// The 'date' leaf is reached with "missing" still unconsumed in the
	// selection, so it is pruned, leaving "level=1" with no children.
	if len(got.Children) != 1 || len(got.Children[0].Children) != 0 {
		t.Fatalf("expected level=1 to survive with its date child pruned, got %+v", got)
	}
}

// s1Tree builds testable-property scenario S1's worked tree:
//
//	root
//	├── class=od, expver=0001/0002, param=1/2
//	└── class=rd
//	    ├── expver=0001, param=1/2/3
//	    └── expver=0002, param=1/2
func s1Tree(t *testing.T) *Node {
	t.Helper()
	od := newNode("class", mustEnum(t, "od"), nil, []*Node{
		newNode("expver", mustEnum(t, "0001", "0002"), nil, []*Node{
			leaf(t, "param", "1", "2"),
		}),
	})
	rd := newNode("class", mustEnum(t, "rd"), nil, []*Node{
		newNode("expver", mustEnum(t, "0001"), nil, []*Node{leaf(t, "param", "1", "2", "3")}),
		newNode("expver", mustEnum(t, "0002"), nil, []*Node{leaf(t, "param", "1", "2")}),
	})
	return rootWith(od, rd)
}

// TestSelectNextLevelStripsFrontier reproduces scenario S5:
// select({class:"rd"}, mode=next_level) keeps only the class=rd branch and
// strips its expver children down to frontier nodes, marking "expver" as
// the next dimension to ask about.
func TestSelectNextLevelStripsFrontier(t *testing.T) {
	tree := s1Tree(t)

	got, err := Select(tree, Selection{"class": {"rd"}}, SelectNextLevel, false)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got == nil || len(got.Children) != 1 {
		t.Fatalf("expected only the class=rd branch to survive, got %+v", got)
	}
	rd := got.Children[0]
	if rd.Values.Summary() != "rd" {
		t.Fatalf("expected class=rd, got %q", rd.Values.Summary())
	}
	if len(rd.Children) != 2 {
		t.Fatalf("expected both expver siblings to survive as frontier nodes, got %d", len(rd.Children))
	}
	for _, expver := range rd.Children {
		if expver.Key != "expver" {
			t.Fatalf("expected an expver frontier node, got key %q", expver.Key)
		}
		if len(expver.Children) != 0 {
			t.Fatalf("expected expver's children to be stripped, got %+v", expver.Children)
		}
	}
}

func TestSelectConsumeOffKeepsUnmatchedSelection(t *testing.T) {
	tree := buildSelectionTree(t)
	got, err := Select(tree, Selection{"level": {"1"}, "missing": {"x"}}, SelectRelaxed, false)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got == nil {
		t.Fatalf("expected selection without consume to ignore the unmatched key")
	}
}
