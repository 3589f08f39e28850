package ast

import (
	"fmt"

	"github.com/tangzhangming/sstc/internal/token"
)

// SymbolKind 符号种类
type SymbolKind uint8

const (
	SymInvalid SymbolKind = iota
	SymClass              // 类
	SymConst              // final 常量
	SymVar                // 变量
	SymParam              // 参数
	SymProc               // 方法
)

func (k SymbolKind) String() string {
	switch k {
	case SymClass:
		return "class"
	case SymConst:
		return "const"
	case SymVar:
		return "var"
	case SymParam:
		return "param"
	case SymProc:
		return "proc"
	default:
		return "invalid"
	}
}

// ValueType 声明的值类型
type ValueType uint8

const (
	TypeUnknown ValueType = iota
	TypeVoid
	TypeInt
	TypeBool
)

func (t ValueType) String() string {
	switch t {
	case TypeVoid:
		return "void"
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	default:
		return "unknown"
	}
}

// ParseValueType 解析类型名
func ParseValueType(name string) (ValueType, bool) {
	switch name {
	case "void":
		return TypeVoid, true
	case "int":
		return TypeInt, true
	case "bool", "boolean":
		return TypeBool, true
	}
	return TypeUnknown, false
}

// Symbol 符号表条目
type Symbol struct {
	Name     string
	Kind     SymbolKind
	Type     ValueType
	Value    int32 // SymConst 的常量值
	HasValue bool  // SymConst 是否携带常量值
	Scope    *Scope
	Pos      token.Position
}

func (s *Symbol) String() string {
	return fmt.Sprintf("%s %s %s", s.Kind, s.Type, s.Name)
}

// Scope 作用域
type Scope struct {
	Parent  *Scope
	Symbols []*Symbol // 按插入顺序
	index   map[string]*Symbol
}

// NewScope 创建作用域
func NewScope(parent *Scope) *Scope {
	return &Scope{
		Parent: parent,
		index:  make(map[string]*Symbol),
	}
}

// Insert 插入符号，同名符号已存在时返回错误
func (s *Scope) Insert(sym *Symbol) error {
	if _, ok := s.index[sym.Name]; ok {
		return fmt.Errorf("symbol %q already declared in scope", sym.Name)
	}
	s.Symbols = append(s.Symbols, sym)
	s.index[sym.Name] = sym
	return nil
}

// LookupLocal 仅在当前作用域查找
func (s *Scope) LookupLocal(name string) *Symbol {
	return s.index[name]
}

// Lookup 由内向外查找
func (s *Scope) Lookup(name string) *Symbol {
	for sc := s; sc != nil; sc = sc.Parent {
		if sym := sc.index[name]; sym != nil {
			return sym
		}
	}
	return nil
}

// Params 返回作用域中的参数，按声明顺序
func (s *Scope) Params() []*Symbol {
	var params []*Symbol
	for _, sym := range s.Symbols {
		if sym.Kind == SymParam {
			params = append(params, sym)
		}
	}
	return params
}
