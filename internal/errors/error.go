package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/tangzhangming/sstc/internal/token"
)

// ============================================================================
// 编译错误
// ============================================================================

// CompileError 后端编译错误
type CompileError struct {
	Code    string   // 错误码 (E0900)
	Level   Level    // 错误级别
	Message string   // 主消息
	File    string   // 文件路径
	Line    int      // 行号
	Column  int      // 列号
	Hints   []string // 修复建议
	Notes   []string // 附加说明
	Cause   error    // 底层错误
}

// Error 实现 error 接口
func (e *CompileError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.File == "" {
		return fmt.Sprintf("[%s] %s", e.Code, msg)
	}
	if e.Line == 0 {
		return fmt.Sprintf("%s: [%s] %s", e.File, e.Code, msg)
	}
	return fmt.Sprintf("%s:%d:%d: [%s] %s", e.File, e.Line, e.Column, e.Code, msg)
}

// Unwrap 返回底层错误
func (e *CompileError) Unwrap() error {
	return e.Cause
}

// Kind 返回错误类别
func (e *CompileError) Kind() Kind {
	return KindOf(e.Code)
}

// WithHint 追加修复建议
func (e *CompileError) WithHint(hint string) *CompileError {
	e.Hints = append(e.Hints, hint)
	return e
}

// WithNote 追加附加说明
func (e *CompileError) WithNote(note string) *CompileError {
	e.Notes = append(e.Notes, note)
	return e
}

// ============================================================================
// 构造函数
// ============================================================================

// Newf 创建不带位置的错误
func Newf(code string, format string, args ...interface{}) *CompileError {
	return &CompileError{
		Code:    code,
		Level:   LevelError,
		Message: fmt.Sprintf(format, args...),
	}
}

// At 创建带源码位置的错误
func At(code string, pos token.Position, format string, args ...interface{}) *CompileError {
	err := Newf(code, format, args...)
	err.File = pos.Filename
	err.Line = pos.Line
	err.Column = pos.Column
	return err
}

// Wrap 包装底层错误
func Wrap(code string, cause error, format string, args ...interface{}) *CompileError {
	err := Newf(code, format, args...)
	err.Cause = cause
	return err
}

// Format 创建格式错误
func Format(code string, format string, args ...interface{}) *CompileError {
	return Newf(code, format, args...)
}

// Contract 创建输入约定错误，pos 指向违规节点
func Contract(pos token.Position, format string, args ...interface{}) *CompileError {
	return At(E0910, pos, format, args...)
}

// IO 创建 I/O 错误
func IO(path string, cause error) *CompileError {
	err := Wrap(E0920, cause, "cannot write %s", path)
	err.File = path
	return err
}

// ============================================================================
// 判定
// ============================================================================

// AsCompileError 从错误链中提取 CompileError
func AsCompileError(err error) (*CompileError, bool) {
	var ce *CompileError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsKind 检查错误链中是否有指定类别的 CompileError
func IsKind(err error, kind Kind) bool {
	ce, ok := AsCompileError(err)
	return ok && ce.Kind() == kind
}

// HasCode 检查错误链中是否有指定错误码
func HasCode(err error, code string) bool {
	ce, ok := AsCompileError(err)
	return ok && ce.Code == code
}
