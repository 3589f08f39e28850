package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangzhangming/sstc/internal/ast"
	"github.com/tangzhangming/sstc/internal/errors"
)

const counterJSON = `{
  "class": "Counter",
  "line": 1,
  "finals": [{"name": "step", "value": 2, "line": 2}],
  "vars": [{"name": "count", "line": 3}],
  "methods": [
    {
      "name": "inc", "type": "int", "line": 4,
      "params": [{"name": "n"}],
      "locals": [{"name": "tmp"}],
      "body": [
        {"kind": "assign", "line": 5, "left": {"kind": "var", "name": "tmp"},
         "right": {"kind": "binary", "op": "*", "left": {"kind": "var", "name": "n"}, "right": {"kind": "var", "name": "step"}}},
        {"kind": "while", "line": 6, "cond": {"kind": "binary", "op": "<", "left": {"kind": "number", "value": 0}, "right": {"kind": "var", "name": "tmp"}},
         "then": [
           {"kind": "assign", "left": {"kind": "var", "name": "count"}, "right": {"kind": "number", "value": 1}},
           {"kind": "call", "name": "reset"}
         ]},
        {"kind": "return", "left": {"kind": "var", "name": "count"}}
      ]
    },
    {"name": "reset", "type": "void", "line": 9}
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "Counter.json", counterJSON)
	class, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "Counter", class.Name())
	assert.Equal(t, path, class.Pos.Filename)
	require.Len(t, class.Finals, 1)
	assert.Equal(t, int32(2), class.Finals[0].Value)
	assert.True(t, class.Finals[0].HasValue)
	require.Len(t, class.Vars, 1)
	require.Len(t, class.Methods, 2)

	inc := class.Methods[0]
	assert.Equal(t, ast.TypeInt, inc.Symbol.Type)
	require.Len(t, inc.Symbol.Scope.Params(), 1)

	// 语句链
	first := inc.Body
	require.NotNil(t, first)
	assert.Equal(t, ast.NodeAssign, first.Kind)
	assert.Equal(t, 5, first.Pos.Line)
	assert.Equal(t, ast.NodeWhile, first.Next.Kind)
	assert.Equal(t, ast.NodeReturn, first.Next.Next.Kind)
	assert.Nil(t, first.Next.Next.Next)

	// 对 final 的引用解析为常量节点
	step := first.Right.Right
	assert.Equal(t, ast.NodeConst, step.Kind)
	assert.Same(t, class.Finals[0], step.Sym)

	loop := first.Next.Then
	assert.Same(t, class.Vars[0], loop.Left.Sym)
	call := loop.Next
	assert.Equal(t, ast.NodeCall, call.Kind)
	assert.Same(t, class.Methods[1].Symbol, call.Sym)

	require.NoError(t, ast.Validate(class))
}

func TestCBORRoundTrip(t *testing.T) {
	doc, err := Decode([]byte(counterJSON), FormatJSON)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "Counter.cbor")
	require.NoError(t, Save(path, doc))

	back, err := ReadDocument(path)
	require.NoError(t, err)
	back.File = ""
	assert.Equal(t, doc, back)

	first, err := Encode(doc, FormatCBOR)
	require.NoError(t, err)
	second, err := Encode(back, FormatCBOR)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	class, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Counter", class.Name())
}

func TestResolveReportsEveryUnresolvedIdentifier(t *testing.T) {
	doc := &Document{
		File:  "Bad.json",
		Class: "Bad",
		Methods: []MethodDoc{{
			Name: "m", Type: "void",
			Body: []NodeDoc{
				{Kind: "assign", Line: 2, Left: &NodeDoc{Kind: "var", Name: "ghost", Line: 2}, Right: &NodeDoc{Kind: "number"}},
				{Kind: "call", Line: 3, Name: "nowhere"},
			},
		}},
	}

	_, err := Resolve(doc)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.E0912))
	assert.Contains(t, err.Error(), `"ghost"`)
	assert.Contains(t, err.Error(), `"nowhere"`)
	assert.Contains(t, err.Error(), "Bad.json:3")
}

func TestResolveContractViolations(t *testing.T) {
	v := int32(1)
	tests := []struct {
		name string
		doc  *Document
		want string
	}{
		{
			"duplicate member",
			&Document{Class: "D", Vars: []VarDoc{{Name: "x"}, {Name: "x"}}},
			"already declared",
		},
		{
			"call of a variable",
			&Document{Class: "D", Vars: []VarDoc{{Name: "x"}}, Methods: []MethodDoc{{
				Name: "m", Type: "void", Body: []NodeDoc{{Kind: "call", Name: "x"}},
			}}},
			"not callable",
		},
		{
			"assignment to a number",
			&Document{Class: "D", Methods: []MethodDoc{{
				Name: "m", Type: "void", Body: []NodeDoc{{Kind: "assign", Left: &NodeDoc{Kind: "number"}, Right: &NodeDoc{Kind: "number"}}},
			}}},
			"assignment target",
		},
		{
			"unknown node kind",
			&Document{Class: "D", Methods: []MethodDoc{{
				Name: "m", Type: "void", Body: []NodeDoc{{Kind: "goto"}},
			}}},
			"unknown node kind",
		},
		{
			"const of a variable",
			&Document{Class: "D", Finals: []FinalDoc{{Name: "k", Value: &v}}, Vars: []VarDoc{{Name: "x"}}, Methods: []MethodDoc{{
				Name: "m", Type: "int", Body: []NodeDoc{{Kind: "return", Left: &NodeDoc{Kind: "const", Name: "x"}}},
			}}},
			"not a final constant",
		},
		{
			"expression in statement list",
			&Document{Class: "D", Methods: []MethodDoc{{
				Name: "m", Type: "void", Body: []NodeDoc{{Kind: "number", Value: 1}},
			}}},
			"number node in statement position",
		},
		{
			"expression in then branch",
			&Document{Class: "D", Methods: []MethodDoc{{
				Name: "m", Type: "void", Body: []NodeDoc{{Kind: "if", Cond: &NodeDoc{Kind: "number"}, Then: []NodeDoc{{Kind: "binary", Op: "+"}}}},
			}}},
			"binary node in statement position",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.doc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Resolve(&Document{})
	assert.True(t, errors.HasCode(err, errors.E0910))
}

func TestFinalWithoutValueFailsValidation(t *testing.T) {
	class, err := Resolve(&Document{Class: "F", Finals: []FinalDoc{{Name: "k"}}})
	require.NoError(t, err)
	assert.False(t, class.Finals[0].HasValue)
	assert.Error(t, ast.Validate(class))
}

func TestLoadErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.HasCode(err, errors.E0921))

	_, err = LoadFile(writeFile(t, "A.yaml", "class: A"))
	assert.True(t, errors.HasCode(err, errors.E0921))

	_, err = LoadFile(writeFile(t, "A.json", "{not json"))
	assert.True(t, errors.HasCode(err, errors.E0921))

	assert.Error(t, Save(filepath.Join(t.TempDir(), "A.txt"), &Document{Class: "A"}))
}
