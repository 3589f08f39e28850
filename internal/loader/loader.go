// Package loader 读取前端输出的类描述并构造语法树
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/hashicorp/go-multierror"

	"github.com/tangzhangming/sstc/internal/ast"
	"github.com/tangzhangming/sstc/internal/errors"
	"github.com/tangzhangming/sstc/internal/token"
)

// 文档格式
const (
	JSONExtension = ".json"
	CBORExtension = ".cbor"
)

// Format 文档编码格式
type Format int

const (
	FormatJSON Format = iota
	FormatCBOR
)

func (f Format) String() string {
	if f == FormatCBOR {
		return "cbor"
	}
	return "json"
}

// FormatOf 按扩展名判断文档格式
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case JSONExtension:
		return FormatJSON, nil
	case CBORExtension:
		return FormatCBOR, nil
	}
	return 0, fmt.Errorf("unsupported document extension %q (want %s or %s)",
		filepath.Ext(path), JSONExtension, CBORExtension)
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("loader: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Decode 解码文档
func Decode(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatCBOR:
		if err := cbor.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("loader: unmarshal cbor document: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("loader: unmarshal json document: %w", err)
		}
	}
	return &doc, nil
}

// Encode 编码文档，CBOR 使用规范编码，相同文档总是得到相同字节
func Encode(doc *Document, format Format) ([]byte, error) {
	if format == FormatCBOR {
		return cborEncMode.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ReadDocument 读取并解码文档
func ReadDocument(path string) (*Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, errors.Wrap(errors.E0921, err, "cannot load %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.E0921, err, "cannot read %s", path)
	}
	doc, err := Decode(data, format)
	if err != nil {
		return nil, errors.Wrap(errors.E0921, err, "cannot decode %s", path)
	}
	if doc.File == "" {
		doc.File = path
	}
	return doc, nil
}

// LoadFile 读取文档并构造语法树
func LoadFile(path string) (*ast.Class, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	return Resolve(doc)
}

// Save 按扩展名编码并写出文档
func Save(path string, doc *Document) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(doc, format)
	if err != nil {
		return fmt.Errorf("loader: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.IO(path, err)
	}
	return nil
}

// ============================================================================
// 解析
// ============================================================================

type resolver struct {
	file   string
	class  *ast.Class
	errors *multierror.Error
}

// Resolve 建立作用域，把文档中的标识符解析为符号
//
// 所有无法解析的标识符与重复声明一并返回。
func Resolve(doc *Document) (*ast.Class, error) {
	if doc.Class == "" {
		return nil, errors.Newf(errors.E0910, "document declares no class")
	}
	r := &resolver{file: doc.File}

	classScope := ast.NewScope(nil)
	r.class = &ast.Class{
		Symbol: &ast.Symbol{
			Name:  doc.Class,
			Kind:  ast.SymClass,
			Scope: classScope,
			Pos:   r.pos(doc.Line, 0),
		},
		Pos: r.pos(doc.Line, 0),
	}

	for _, f := range doc.Finals {
		sym := &ast.Symbol{Name: f.Name, Kind: ast.SymConst, Type: ast.TypeInt, Pos: r.pos(f.Line, 0)}
		if f.Value != nil {
			sym.Value = *f.Value
			sym.HasValue = true
		}
		r.declare(classScope, sym)
		r.class.Finals = append(r.class.Finals, sym)
	}

	for _, v := range doc.Vars {
		sym := &ast.Symbol{Name: v.Name, Kind: ast.SymVar, Type: ast.TypeInt, Pos: r.pos(v.Line, 0)}
		r.declare(classScope, sym)
		r.class.Vars = append(r.class.Vars, sym)
	}

	// 先声明全部方法，方法体可以调用后声明的方法
	for _, m := range doc.Methods {
		typ, _ := ast.ParseValueType(m.Type)
		scope := ast.NewScope(classScope)
		sym := &ast.Symbol{Name: m.Name, Kind: ast.SymProc, Type: typ, Scope: scope, Pos: r.pos(m.Line, 0)}
		for _, p := range m.Params {
			r.declare(scope, &ast.Symbol{Name: p.Name, Kind: ast.SymParam, Type: ast.TypeInt, Pos: r.pos(p.Line, 0)})
		}
		for _, l := range m.Locals {
			r.declare(scope, &ast.Symbol{Name: l.Name, Kind: ast.SymVar, Type: ast.TypeInt, Pos: r.pos(l.Line, 0)})
		}
		r.declare(classScope, sym)
		r.class.Methods = append(r.class.Methods, &ast.Method{Symbol: sym, Pos: sym.Pos})
	}

	for i, m := range doc.Methods {
		method := r.class.Methods[i]
		method.Body = r.statements(method.Symbol.Scope, m.Body)
	}

	if err := r.errors.ErrorOrNil(); err != nil {
		return nil, err
	}
	return r.class, nil
}

func (r *resolver) pos(line, column int) token.Position {
	return token.Position{Filename: r.file, Line: line, Column: column}
}

func (r *resolver) fail(err error) {
	r.errors = multierror.Append(r.errors, err)
}

func (r *resolver) declare(scope *ast.Scope, sym *ast.Symbol) {
	if err := scope.Insert(sym); err != nil {
		r.fail(errors.Contract(sym.Pos, "%s %s: %v", sym.Kind, sym.Name, err))
	}
}

// statements 把语句列表串成 Next 链，返回首条语句
func (r *resolver) statements(scope *ast.Scope, docs []NodeDoc) *ast.Node {
	var head, tail *ast.Node
	for i := range docs {
		n := r.node(scope, &docs[i])
		if n == nil {
			continue
		}
		if !n.Kind.IsStatement() {
			r.fail(errors.Contract(n.Pos, "%s node in statement position", n.Kind).
				WithNote("statement lists hold assign, if, while, return and call nodes"))
			continue
		}
		if head == nil {
			head = n
		} else {
			tail.Next = n
		}
		tail = n
	}
	return head
}

func (r *resolver) expr(scope *ast.Scope, doc *NodeDoc) *ast.Node {
	if doc == nil {
		return nil
	}
	return r.node(scope, doc)
}

func (r *resolver) node(scope *ast.Scope, doc *NodeDoc) *ast.Node {
	pos := r.pos(doc.Line, doc.Column)
	kind, ok := ast.ParseNodeKind(doc.Kind)
	if !ok {
		r.fail(errors.Contract(pos, "unknown node kind %q", doc.Kind))
		return nil
	}

	n := &ast.Node{Kind: kind, Pos: pos, Name: doc.Name, Op: doc.Op, Value: doc.Value}
	switch kind {
	case ast.NodeVar, ast.NodeConst:
		n.Sym = r.lookup(scope, doc.Name, pos)
		if n.Sym == nil {
			break
		}
		switch n.Sym.Kind {
		case ast.SymConst:
			n.Kind = ast.NodeConst
		case ast.SymProc, ast.SymClass:
			r.fail(errors.Contract(pos, "%s %s used as a value", n.Sym.Kind, doc.Name))
		default:
			if kind == ast.NodeConst {
				r.fail(errors.Contract(pos, "%s is not a final constant", doc.Name))
			}
		}
	case ast.NodeCall:
		n.Sym = r.lookup(scope, doc.Name, pos)
		if n.Sym != nil && n.Sym.Kind != ast.SymProc {
			r.fail(errors.Contract(pos, "%s %s is not callable", n.Sym.Kind, doc.Name))
		}
		for i := range doc.Args {
			if a := r.node(scope, &doc.Args[i]); a != nil {
				n.Args = append(n.Args, a)
			}
		}
	case ast.NodeAssign:
		if doc.Left == nil || doc.Left.Kind != ast.NodeVar.String() {
			r.fail(errors.Contract(pos, "assignment target must be a variable"))
		}
		n.Left = r.expr(scope, doc.Left)
		n.Right = r.expr(scope, doc.Right)
	case ast.NodeIf:
		n.Cond = r.expr(scope, doc.Cond)
		n.Then = r.statements(scope, doc.Then)
		n.Else = r.statements(scope, doc.Else)
	case ast.NodeWhile:
		n.Cond = r.expr(scope, doc.Cond)
		n.Then = r.statements(scope, doc.Then)
	case ast.NodeReturn, ast.NodeUnary:
		n.Left = r.expr(scope, doc.Left)
	case ast.NodeBinary:
		n.Left = r.expr(scope, doc.Left)
		n.Right = r.expr(scope, doc.Right)
	}
	return n
}

func (r *resolver) lookup(scope *ast.Scope, name string, pos token.Position) *ast.Symbol {
	sym := scope.Lookup(name)
	if sym == nil {
		r.fail(errors.At(errors.E0912, pos, "cannot resolve identifier %q", name))
	}
	return sym
}
