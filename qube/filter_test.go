package qube

import (
	"strconv"
	"testing"
)

func isEvenString(v Value) bool {
	n, err := strconv.Atoi(v.String())
	return err == nil && n%2 == 0
}

func TestFilterBuilderEqAndIn(t *testing.T) {
	tree := rootWith(
		newNode("class", mustEnum(t, "od"), nil, []*Node{
			newNode("expver", mustEnum(t, "1", "2", "3"), nil, nil),
		}),
	)

	got, err := NewFilter().Eq("class", "od").In("expver", "1", "2").Apply(tree)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	expver := got.Children[0].Children[0]
	vals := expver.Values.Values()
	if len(vals) != 2 || vals[0].String() != "1" || vals[1].String() != "2" {
		t.Fatalf("expver values = %v, want [1 2]", vals)
	}
}

func TestFilterBuilderPredicate(t *testing.T) {
	tree := rootWith(
		newNode("class", mustEnum(t, "od"), nil, []*Node{
			newNode("param", mustEnum(t, "1", "2", "3", "4"), nil, nil),
		}),
	)

	got, err := NewFilter().Eq("class", "od").Predicate("param", isEvenString).Apply(tree)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	param := got.Children[0].Children[0]
	vals := param.Values.Values()
	if len(vals) != 2 || vals[0].String() != "2" || vals[1].String() != "4" {
		t.Fatalf("param values = %v, want [2 4]", vals)
	}
}

func TestFilterBuilderPredicateDropsEmptiedBranch(t *testing.T) {
	tree := rootWith(
		newNode("class", mustEnum(t, "od"), nil, []*Node{
			newNode("param", mustEnum(t, "1", "3"), nil, nil),
		}),
	)

	got, err := NewFilter().Predicate("param", isEvenString).Apply(tree)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(got.Children) != 0 {
		t.Fatalf("expected the class branch to be dropped once every param value is filtered out, got %+v", got.Children)
	}
}
