package ast

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangzhangming/sstc/internal/errors"
	"github.com/tangzhangming/sstc/internal/token"
)

func TestParseNodeKind(t *testing.T) {
	for _, name := range []string{"assign", "if", "while", "return", "call", "binary", "unary", "number", "var", "const"} {
		k, ok := ParseNodeKind(name)
		require.True(t, ok, name)
		assert.Equal(t, name, k.String())
	}
	_, ok := ParseNodeKind("invalid")
	assert.False(t, ok)
	_, ok = ParseNodeKind("goto")
	assert.False(t, ok)
}

func TestWalkPreorder(t *testing.T) {
	leaf := func(name string) *Node { return &Node{Kind: NodeVar, Name: name} }

	// if (c) { t1; } else { e1; } n1;
	root := &Node{
		Kind: NodeIf,
		Name: "if",
		Cond: leaf("c"),
		Then: &Node{Kind: NodeAssign, Name: "t1", Left: leaf("tl"), Right: &Node{Kind: NodeCall, Name: "f", Args: []*Node{leaf("a1"), leaf("a2")}}},
		Else: leaf("e1"),
		Next: leaf("n1"),
	}

	var got []string
	Walk(root, func(n *Node) bool {
		got = append(got, n.Name)
		return true
	})
	assert.Equal(t, []string{"if", "c", "t1", "tl", "f", "a1", "a2", "e1", "n1"}, got)
}

func TestWalkSkipsChildren(t *testing.T) {
	root := &Node{Kind: NodeWhile, Name: "w", Cond: &Node{Kind: NodeVar, Name: "c"}, Next: &Node{Kind: NodeReturn, Name: "r"}}

	var got []string
	Walk(root, func(n *Node) bool {
		got = append(got, n.Name)
		return n.Kind != NodeWhile
	})
	assert.Equal(t, []string{"w"}, got)

	Walk(nil, func(*Node) bool {
		t.Fatal("visited nil root")
		return true
	})
}

func TestScope(t *testing.T) {
	outer := NewScope(nil)
	require.NoError(t, outer.Insert(&Symbol{Name: "g", Kind: SymVar}))
	inner := NewScope(outer)
	require.NoError(t, inner.Insert(&Symbol{Name: "b", Kind: SymParam}))
	require.NoError(t, inner.Insert(&Symbol{Name: "l", Kind: SymVar}))
	require.NoError(t, inner.Insert(&Symbol{Name: "a", Kind: SymParam}))

	assert.Error(t, inner.Insert(&Symbol{Name: "l", Kind: SymVar}))
	assert.NotNil(t, inner.Lookup("g"))
	assert.Nil(t, inner.LookupLocal("g"))
	assert.Nil(t, inner.Lookup("missing"))

	var names []string
	for _, p := range inner.Params() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"b", "a"}, names)
}

func validClass() *Class {
	scope := NewScope(nil)
	proc := &Symbol{Name: "m", Kind: SymProc, Type: TypeVoid, Scope: NewScope(scope)}
	g := &Symbol{Name: "g", Kind: SymVar, Type: TypeInt}
	return &Class{
		Symbol: &Symbol{Name: "V", Kind: SymClass, Scope: scope},
		Finals: []*Symbol{{Name: "k", Kind: SymConst, Type: TypeInt, Value: 1, HasValue: true}},
		Vars:   []*Symbol{g},
		Methods: []*Method{{
			Symbol: proc,
			Body:   &Node{Kind: NodeAssign, Left: &Node{Kind: NodeVar, Name: "g", Sym: g}, Right: &Node{Kind: NodeNumber, Value: 1}},
		}},
	}
}

func TestValidateAcceptsResolvedClass(t *testing.T) {
	assert.NoError(t, Validate(validClass()))
}

func TestValidateAggregates(t *testing.T) {
	c := validClass()
	c.Finals[0].HasValue = false
	c.Methods[0].Symbol.Type = TypeBool
	c.Methods[0].Body.Left.Sym = nil
	c.Methods[0].Body.Next = &Node{Kind: NodeCall, Name: "g", Sym: c.Vars[0], Pos: token.Position{Line: 4}}

	err := Validate(c)
	require.Error(t, err)

	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	assert.Len(t, merr.Errors, 4)
	assert.True(t, errors.HasCode(merr.Errors[1], errors.E0911))
	assert.Contains(t, err.Error(), "call to g resolves to a var symbol")
}

func TestValidateRejectsPathLikeClassNames(t *testing.T) {
	for _, name := range []string{"../x", "a/b", `a\b`, "x..y"} {
		t.Run(name, func(t *testing.T) {
			err := Validate(&Class{Symbol: &Symbol{Name: name, Kind: SymClass}})
			require.Error(t, err)
			ce, ok := errors.AsCompileError(err)
			require.True(t, ok)
			assert.Equal(t, errors.E0910, ce.Code)
			assert.NotEmpty(t, ce.Notes)
		})
	}
	assert.NoError(t, Validate(&Class{Symbol: &Symbol{Name: "Plain_1", Kind: SymClass}}))
}

func TestValidateMissingClassSymbol(t *testing.T) {
	err := Validate(&Class{})
	assert.True(t, errors.HasCode(err, errors.E0910))
	assert.True(t, errors.HasCode(Validate(nil), errors.E0910))
}

func TestClassifyReturn(t *testing.T) {
	rt, err := ClassifyReturn(&Symbol{Type: TypeInt})
	require.NoError(t, err)
	assert.Equal(t, TypeInt, rt)

	rt, err = ClassifyReturn(&Symbol{Type: TypeVoid})
	require.NoError(t, err)
	assert.Equal(t, TypeVoid, rt)

	_, err = ClassifyReturn(&Symbol{Name: "p", Type: TypeUnknown})
	assert.True(t, errors.HasCode(err, errors.E0911))
}
