package ast

import (
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/tangzhangming/sstc/internal/errors"
)

// Validate 检查前端交来的语法树是否满足后端的输入约定
//
// 这里不做语义检查，只确认生成阶段需要的信息齐全：
// 符号已解析、方法返回类型可分类、常量带值。
// 所有违规一并返回。
func Validate(class *Class) error {
	var result *multierror.Error

	if class == nil || class.Symbol == nil || class.Symbol.Name == "" {
		return errors.Newf(errors.E0910, "class declaration carries no class symbol")
	}
	if strings.ContainsAny(class.Symbol.Name, `/\`) || strings.Contains(class.Symbol.Name, "..") {
		result = multierror.Append(result, errors.Contract(class.Pos,
			"class name %q is not a plain identifier", class.Symbol.Name).
			WithNote("the class name becomes the output file name"))
	}
	if class.Symbol.Kind != SymClass {
		result = multierror.Append(result, errors.Contract(class.Pos,
			"class %s is bound to a %s symbol", class.Symbol.Name, class.Symbol.Kind))
	}

	for _, f := range class.Finals {
		switch {
		case f == nil:
			result = multierror.Append(result, errors.Contract(class.Pos, "nil final in class %s", class.Name()))
		case f.Kind != SymConst:
			result = multierror.Append(result, errors.Contract(f.Pos, "final %s is bound to a %s symbol", f.Name, f.Kind))
		case !f.HasValue:
			result = multierror.Append(result, errors.Contract(f.Pos, "final %s carries no constant value", f.Name))
		}
	}

	for _, v := range class.Vars {
		if v == nil {
			result = multierror.Append(result, errors.Contract(class.Pos, "nil global in class %s", class.Name()))
			continue
		}
		if v.Kind != SymVar {
			result = multierror.Append(result, errors.Contract(v.Pos, "global %s is bound to a %s symbol", v.Name, v.Kind))
		}
	}

	for _, m := range class.Methods {
		if m == nil || m.Symbol == nil {
			pos := class.Pos
			if m != nil {
				pos = m.Pos
			}
			result = multierror.Append(result, errors.Contract(pos, "method carries no symbol"))
			continue
		}
		if m.Symbol.Kind != SymProc {
			result = multierror.Append(result, errors.Contract(m.Pos, "method %s is bound to a %s symbol", m.Symbol.Name, m.Symbol.Kind))
		}
		if _, err := ClassifyReturn(m.Symbol); err != nil {
			result = multierror.Append(result, err)
		}
		if m.Symbol.Scope == nil {
			result = multierror.Append(result, errors.Contract(m.Pos, "method %s carries no scope", m.Symbol.Name))
		}
		Walk(m.Body, func(n *Node) bool {
			if err := validateNode(n); err != nil {
				result = multierror.Append(result, err)
			}
			return true
		})
	}

	return result.ErrorOrNil()
}

func validateNode(n *Node) error {
	switch n.Kind {
	case NodeVar, NodeConst, NodeCall:
		if n.Sym == nil {
			return errors.Contract(n.Pos, "%s node %q carries no resolved symbol", n.Kind, n.Name)
		}
		if n.Kind == NodeCall && n.Sym.Kind != SymProc {
			return errors.Contract(n.Pos, "call to %s resolves to a %s symbol", n.Name, n.Sym.Kind)
		}
		if n.Kind == NodeConst && n.Sym.Kind != SymConst {
			return errors.Contract(n.Pos, "constant reference %s resolves to a %s symbol", n.Name, n.Sym.Kind)
		}
	case NodeAssign, NodeIf, NodeWhile, NodeReturn, NodeBinary, NodeUnary, NodeNumber:
	default:
		return errors.Contract(n.Pos, "node of unknown kind %s", n.Kind)
	}
	return nil
}

// ClassifyReturn 将方法返回类型归为 int 或 void
func ClassifyReturn(proc *Symbol) (ValueType, error) {
	switch proc.Type {
	case TypeInt, TypeVoid:
		return proc.Type, nil
	default:
		return TypeUnknown, errors.At(errors.E0911, proc.Pos,
			"method %s has unclassifiable return type %s", proc.Name, proc.Type)
	}
}
