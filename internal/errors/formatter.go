package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// ============================================================================
// 错误格式化器
// ============================================================================

// Formatter 错误格式化器
type Formatter struct {
	Colors    bool // 是否使用颜色
	ShowHints bool // 是否显示修复建议
}

// NewFormatter 创建默认格式化器
func NewFormatter() *Formatter {
	return &Formatter{
		Colors:    !color.NoColor,
		ShowHints: true,
	}
}

// FormatCompileError 格式化编译错误
//
//	error[E0902]: constant 300 for field big has no push encoding
//	 --> Big.json:3:5
//	 = help: ...
func (f *Formatter) FormatCompileError(err *CompileError) string {
	var sb strings.Builder

	lc := f.levelColor(err.Level)
	code := ""
	if err.Code != "" {
		code = f.paint(lc, "["+err.Code+"]")
	}
	sb.WriteString(fmt.Sprintf("%s%s: %s\n", f.paint(lc, err.Level.String()), code, err.Message))

	if err.File != "" {
		loc := err.File
		if err.Line > 0 {
			loc = fmt.Sprintf("%s:%d:%d", err.File, err.Line, err.Column)
		}
		sb.WriteString(fmt.Sprintf(" %s %s\n", f.paint(color.FgCyan, "-->"), f.paint(color.FgCyan, loc)))
	}

	if err.Cause != nil {
		sb.WriteString(fmt.Sprintf(" %s %v\n", f.paint(color.FgCyan, "= cause:"), err.Cause))
	}

	if f.ShowHints {
		for _, hint := range err.Hints {
			sb.WriteString(fmt.Sprintf(" %s %s\n", f.paint(color.FgCyan, "= help:"), hint))
		}
	}

	for _, note := range err.Notes {
		sb.WriteString(fmt.Sprintf(" %s %s\n", f.paint(color.FgCyan, "= note:"), note))
	}

	return sb.String()
}

// FormatError 格式化任意错误，非 CompileError 按普通消息输出
func (f *Formatter) FormatError(err error) string {
	if ce, ok := AsCompileError(err); ok {
		return f.FormatCompileError(ce)
	}
	return fmt.Sprintf("%s: %v\n", f.paint(color.FgRed, "error"), err)
}

// FormatCompileErrors 格式化多个编译错误
func (f *Formatter) FormatCompileErrors(errs []*CompileError) string {
	var sb strings.Builder

	for i, err := range errs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(f.FormatCompileError(err))
	}

	if len(errs) > 0 {
		countMsg := fmt.Sprintf("error: %d errors found", len(errs))
		if len(errs) == 1 {
			countMsg = "error: 1 error found"
		}
		sb.WriteString("\n" + f.paint(color.FgRed, countMsg) + "\n")
	}

	return sb.String()
}

func (f *Formatter) levelColor(level Level) color.Attribute {
	switch level {
	case LevelError:
		return color.FgRed
	case LevelWarning:
		return color.FgYellow
	case LevelNote:
		return color.FgBlue
	default:
		return color.FgCyan
	}
}

func (f *Formatter) paint(attr color.Attribute, s string) string {
	if !f.Colors {
		return s
	}
	c := color.New(attr, color.Bold)
	c.EnableColor()
	return c.Sprint(s)
}
