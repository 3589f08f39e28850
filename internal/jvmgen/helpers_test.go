package jvmgen

import (
	"bytes"
	"encoding/binary"

	"github.com/tangzhangming/sstc/internal/ast"
	"github.com/tangzhangming/sstc/internal/token"
)

// classBuilder 在测试中直接构造已解析的语法树
type classBuilder struct {
	class   *ast.Class
	members map[string]*ast.Symbol
}

func newClass(name string) *classBuilder {
	scope := ast.NewScope(nil)
	return &classBuilder{
		class: &ast.Class{
			Symbol: &ast.Symbol{Name: name, Kind: ast.SymClass, Scope: scope},
			Pos:    token.Position{Filename: name + ".json", Line: 1, Column: 1},
		},
		members: make(map[string]*ast.Symbol),
	}
}

func (b *classBuilder) final(name string, v int32) *classBuilder {
	sym := &ast.Symbol{Name: name, Kind: ast.SymConst, Type: ast.TypeInt, Value: v, HasValue: true}
	b.class.Finals = append(b.class.Finals, sym)
	b.members[name] = sym
	return b
}

func (b *classBuilder) global(name string) *classBuilder {
	sym := &ast.Symbol{Name: name, Kind: ast.SymVar, Type: ast.TypeInt}
	b.class.Vars = append(b.class.Vars, sym)
	b.members[name] = sym
	return b
}

// method 声明方法，body 在方法声明之后再构造，以便引用任意成员
func (b *classBuilder) method(name string, ret ast.ValueType, params ...string) *ast.Method {
	scope := ast.NewScope(b.class.Symbol.Scope)
	for _, p := range params {
		param := &ast.Symbol{Name: p, Kind: ast.SymParam, Type: ast.TypeInt}
		if err := scope.Insert(param); err != nil {
			panic(err)
		}
		b.members[p] = param
	}
	sym := &ast.Symbol{Name: name, Kind: ast.SymProc, Type: ret, Scope: scope}
	m := &ast.Method{Symbol: sym}
	b.class.Methods = append(b.class.Methods, m)
	b.members[name] = sym
	return m
}

func (b *classBuilder) ref(name string) *ast.Node {
	return &ast.Node{Kind: ast.NodeVar, Name: name, Sym: b.members[name]}
}

func (b *classBuilder) call(name string, args ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.NodeCall, Name: name, Sym: b.members[name], Args: args}
}

func (b *classBuilder) build() *ast.Class {
	return b.class
}

func num(v int32) *ast.Node {
	return &ast.Node{Kind: ast.NodeNumber, Value: v}
}

func assign(target, value *ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.NodeAssign, Left: target, Right: value}
}

// chain 把语句串成 Next 链
func chain(stmts ...*ast.Node) *ast.Node {
	for i := 0; i+1 < len(stmts); i++ {
		stmts[i].Next = stmts[i+1]
	}
	if len(stmts) == 0 {
		return nil
	}
	return stmts[0]
}

// be 按大端序拼接期望字节
type be struct {
	bytes.Buffer
}

func (b *be) u1(v ...byte) *be {
	b.Write(v)
	return b
}

func (b *be) u2(v ...uint16) *be {
	for _, x := range v {
		binary.Write(&b.Buffer, binary.BigEndian, x)
	}
	return b
}

func (b *be) u4(v uint32) *be {
	binary.Write(&b.Buffer, binary.BigEndian, v)
	return b
}

func (b *be) utf8(s string) *be {
	b.u1(ConstantUtf8)
	b.u2(uint16(len(s)))
	b.WriteString(s)
	return b
}
