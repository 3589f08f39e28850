package loader

// Document 前端交给后端的类描述
//
// 同一结构既可编码为 JSON 也可编码为 CBOR。标识符以名字出现，
// 由 Resolve 建立作用域后解析到符号。
type Document struct {
	File    string      `json:"file,omitempty" cbor:"file,omitempty"`
	Class   string      `json:"class" cbor:"class"`
	Line    int         `json:"line,omitempty" cbor:"line,omitempty"`
	Finals  []FinalDoc  `json:"finals,omitempty" cbor:"finals,omitempty"`
	Vars    []VarDoc    `json:"vars,omitempty" cbor:"vars,omitempty"`
	Methods []MethodDoc `json:"methods,omitempty" cbor:"methods,omitempty"`
}

// FinalDoc final int 常量声明
type FinalDoc struct {
	Name  string `json:"name" cbor:"name"`
	Value *int32 `json:"value" cbor:"value"`
	Line  int    `json:"line,omitempty" cbor:"line,omitempty"`
}

// VarDoc 变量声明，全局变量与局部变量共用
type VarDoc struct {
	Name string `json:"name" cbor:"name"`
	Line int    `json:"line,omitempty" cbor:"line,omitempty"`
}

// MethodDoc 方法声明
type MethodDoc struct {
	Name   string    `json:"name" cbor:"name"`
	Type   string    `json:"type" cbor:"type"` // "int" | "void"
	Params []VarDoc  `json:"params,omitempty" cbor:"params,omitempty"`
	Locals []VarDoc  `json:"locals,omitempty" cbor:"locals,omitempty"`
	Body   []NodeDoc `json:"body,omitempty" cbor:"body,omitempty"`
	Line   int       `json:"line,omitempty" cbor:"line,omitempty"`
}

// NodeDoc 语句或表达式
//
//	assign  left = right
//	if      cond, then[], else[]
//	while   cond, then[]
//	return  [left]
//	call    name(args...)
//	binary  left op right
//	unary   op left
//	number  value
//	var     name
//	const   name
type NodeDoc struct {
	Kind   string    `json:"kind" cbor:"kind"`
	Line   int       `json:"line,omitempty" cbor:"line,omitempty"`
	Column int       `json:"column,omitempty" cbor:"column,omitempty"`
	Name   string    `json:"name,omitempty" cbor:"name,omitempty"`
	Op     string    `json:"op,omitempty" cbor:"op,omitempty"`
	Value  int32     `json:"value,omitempty" cbor:"value,omitempty"`
	Left   *NodeDoc  `json:"left,omitempty" cbor:"left,omitempty"`
	Right  *NodeDoc  `json:"right,omitempty" cbor:"right,omitempty"`
	Cond   *NodeDoc  `json:"cond,omitempty" cbor:"cond,omitempty"`
	Then   []NodeDoc `json:"then,omitempty" cbor:"then,omitempty"`
	Else   []NodeDoc `json:"else,omitempty" cbor:"else,omitempty"`
	Args   []NodeDoc `json:"args,omitempty" cbor:"args,omitempty"`
}
