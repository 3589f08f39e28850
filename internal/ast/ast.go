// Package ast 定义前端交给后端的 JavaSST 语法树
//
// 语法树由语义分析之后的前端构造，所有标识符都已解析到符号。
// 后端只读取，不再检查程序的正确性。
package ast

import (
	"fmt"
	"strings"

	"github.com/tangzhangming/sstc/internal/token"
)

// NodeKind 节点种类
type NodeKind uint8

const (
	NodeInvalid NodeKind = iota
	NodeAssign           // 赋值: Left = Right
	NodeIf               // if (Cond) Then [else Else]
	NodeWhile            // while (Cond) Then
	NodeReturn           // return [Left]
	NodeCall             // 过程调用: Name(Args...)
	NodeBinary           // 二元运算: Left Op Right
	NodeUnary            // 一元运算: Op Left
	NodeNumber           // 整数字面量
	NodeVar              // 变量引用 (全局、局部或参数)
	NodeConst            // final 常量引用
)

var nodeKindNames = [...]string{
	NodeInvalid: "invalid",
	NodeAssign:  "assign",
	NodeIf:      "if",
	NodeWhile:   "while",
	NodeReturn:  "return",
	NodeCall:    "call",
	NodeBinary:  "binary",
	NodeUnary:   "unary",
	NodeNumber:  "number",
	NodeVar:     "var",
	NodeConst:   "const",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", k)
}

// ParseNodeKind 按名称查找节点种类
func ParseNodeKind(name string) (NodeKind, bool) {
	for k, n := range nodeKindNames {
		if n == name && NodeKind(k) != NodeInvalid {
			return NodeKind(k), true
		}
	}
	return NodeInvalid, false
}

// IsStatement 节点是否为语句
func (k NodeKind) IsStatement() bool {
	switch k {
	case NodeAssign, NodeIf, NodeWhile, NodeReturn, NodeCall:
		return true
	}
	return false
}

// Node 语法树节点
//
// 所有种类共用一个结构体，按 Kind 使用其中的字段。
// 语句通过 Next 串成语句链。
type Node struct {
	Kind  NodeKind
	Pos   token.Position
	Name  string  // NodeVar/NodeConst/NodeCall 的标识符
	Op    string  // NodeBinary/NodeUnary 的运算符
	Value int32   // NodeNumber 的值
	Sym   *Symbol // 已解析的符号

	Left  *Node // 赋值目标、运算数、返回值
	Right *Node // 赋值右值、右运算数
	Cond  *Node // 条件
	Then  *Node // then 分支或循环体的首条语句
	Else  *Node // else 分支的首条语句
	Args  []*Node
	Next  *Node // 下一条语句
}

// Children 返回节点的结构子节点，顺序固定
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	children := make([]*Node, 0, 6+len(n.Args))
	for _, c := range []*Node{n.Cond, n.Then, n.Else, n.Left, n.Right} {
		if c != nil {
			children = append(children, c)
		}
	}
	for _, a := range n.Args {
		if a != nil {
			children = append(children, a)
		}
	}
	if n.Next != nil {
		children = append(children, n.Next)
	}
	return children
}

// IsReference 节点是否引用类成员 (变量引用或过程调用)
func (n *Node) IsReference() bool {
	return n.Kind == NodeVar || n.Kind == NodeCall
}

// String 返回节点的字符串表示（用于调试）
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case NodeNumber:
		return fmt.Sprintf("%d", n.Value)
	case NodeVar, NodeConst:
		return n.Name
	case NodeBinary:
		return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
	case NodeUnary:
		return fmt.Sprintf("(%s%s)", n.Op, n.Left)
	case NodeAssign:
		return fmt.Sprintf("%s = %s;", n.Left, n.Right)
	case NodeCall:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = a.String()
		}
		return fmt.Sprintf("%s(%s)", n.Name, strings.Join(args, ", "))
	case NodeReturn:
		if n.Left == nil {
			return "return;"
		}
		return fmt.Sprintf("return %s;", n.Left)
	case NodeIf:
		if n.Else != nil {
			return fmt.Sprintf("if (%s) {...} else {...}", n.Cond)
		}
		return fmt.Sprintf("if (%s) {...}", n.Cond)
	case NodeWhile:
		return fmt.Sprintf("while (%s) {...}", n.Cond)
	default:
		return n.Kind.String()
	}
}

// Walk 以先序深度优先遍历 root 可达的所有节点
//
// 使用显式栈而不是递归，长语句链不会压深调用栈。
// fn 返回 false 时跳过该节点的子节点。
func Walk(root *Node, fn func(*Node) bool) {
	if root == nil {
		return
	}
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			continue
		}
		children := n.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// ============================================================================
// 声明
// ============================================================================

// Method 方法声明
type Method struct {
	Symbol *Symbol // SymProc，Scope 中含参数与局部变量
	Body   *Node   // 首条语句
	Pos    token.Position
}

// Name 方法名
func (m *Method) Name() string {
	if m.Symbol == nil {
		return ""
	}
	return m.Symbol.Name
}

// Class 编译单元的唯一类
type Class struct {
	Symbol  *Symbol   // SymClass，Scope 为类作用域
	Finals  []*Symbol // final 常量，按声明顺序
	Vars    []*Symbol // 全局变量，按声明顺序
	Methods []*Method // 方法，按声明顺序
	Pos     token.Position
}

// Name 类名
func (c *Class) Name() string {
	if c.Symbol == nil {
		return ""
	}
	return c.Symbol.Name
}
