// Package token 定义前端与后端共享的源码位置信息
package token

import "fmt"

// ============================================================================
// Position - 源代码位置
// ============================================================================

// Position 表示源代码中的一个位置
//
// 前端在构造 AST 时为每个节点填写位置，后端只用它来定位
// 违反输入约定的节点。
type Position struct {
	Filename string `json:"file,omitempty"`   // 文件名
	Line     int    `json:"line,omitempty"`   // 行号 (从1开始)
	Column   int    `json:"column,omitempty"` // 列号 (从1开始)
}

// String 返回位置的字符串表示，格式为 "filename:line:column"
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid 检查位置是否有效
func (p Position) IsValid() bool {
	return p.Line > 0
}
