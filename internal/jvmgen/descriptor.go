package jvmgen

import (
	"strings"

	"github.com/tangzhangming/sstc/internal/ast"
	"github.com/tangzhangming/sstc/internal/errors"
)

// 固定描述符
const (
	IntDescriptor  = "I"
	InitDescriptor = "()V"
	InitName       = "<init>"
)

// MethodDescriptor 生成方法描述符
//
// JavaSST 只有 int 参数，返回 int 或 void：
// "(" + "I"*参数个数 + ")" + ("I" | "V")
func MethodDescriptor(proc *ast.Symbol) (string, error) {
	if proc.Scope == nil {
		return "", errors.Contract(proc.Pos, "method %s carries no scope", proc.Name)
	}
	rt, err := ast.ClassifyReturn(proc)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(strings.Repeat(IntDescriptor, len(proc.Scope.Params())))
	sb.WriteByte(')')
	if rt == ast.TypeInt {
		sb.WriteString(IntDescriptor)
	} else {
		sb.WriteByte('V')
	}
	return sb.String(), nil
}
