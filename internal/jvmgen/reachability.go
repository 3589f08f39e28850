package jvmgen

import "github.com/tangzhangming/sstc/internal/ast"

// ReferenceSet 方法体中引用到的标识符集合
type ReferenceSet struct {
	names []string // 按首次出现顺序
	seen  map[string]struct{}
}

// CollectReferences 收集所有方法体中的变量引用与过程调用名
//
// 沿条件、分支、语句链、实参等全部结构边深度优先遍历。
// 只按名字记录，是否对应类成员由调用方判断。
func CollectReferences(methods []*ast.Method) *ReferenceSet {
	rs := &ReferenceSet{seen: make(map[string]struct{})}
	for _, m := range methods {
		ast.Walk(m.Body, func(n *ast.Node) bool {
			if n.IsReference() {
				rs.add(n.Name)
			}
			return true
		})
	}
	return rs
}

func (rs *ReferenceSet) add(name string) {
	if _, ok := rs.seen[name]; ok {
		return
	}
	rs.seen[name] = struct{}{}
	rs.names = append(rs.names, name)
}

// Contains 名字是否被引用
func (rs *ReferenceSet) Contains(name string) bool {
	_, ok := rs.seen[name]
	return ok
}

// Names 按首次出现顺序返回引用名
func (rs *ReferenceSet) Names() []string {
	return rs.names
}

// Len 返回引用名数量
func (rs *ReferenceSet) Len() int {
	return len(rs.names)
}
