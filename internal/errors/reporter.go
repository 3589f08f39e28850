package errors

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
)

// ============================================================================
// 错误报告器
// ============================================================================

// Reporter 错误报告器
type Reporter struct {
	formatter *Formatter
	out       io.Writer
	errors    []*CompileError
}

// NewReporter 创建错误报告器，输出到 out（nil 时为 stderr）
func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		out = os.Stderr
	}
	return &Reporter{
		formatter: NewFormatter(),
		out:       out,
	}
}

// SetFormatter 设置格式化器
func (r *Reporter) SetFormatter(f *Formatter) {
	r.formatter = f
}

// Report 报告错误，multierror 会被展开逐条报告
func (r *Reporter) Report(err error) {
	if err == nil {
		return
	}
	if merr, ok := err.(*multierror.Error); ok {
		for _, e := range merr.Errors {
			r.Report(e)
		}
		return
	}

	ce, ok := AsCompileError(err)
	if !ok {
		ce = &CompileError{Level: LevelError, Message: err.Error()}
	}
	if len(ce.Hints) == 0 {
		ce.Hints = GetSuggestions(ce.Code)
	}

	r.errors = append(r.errors, ce)
	fmt.Fprint(r.out, r.formatter.FormatCompileError(ce))
}

// Errors 返回已报告的错误
func (r *Reporter) Errors() []*CompileError {
	return r.errors
}

// HasErrors 是否报告过错误
func (r *Reporter) HasErrors() bool {
	return len(r.errors) > 0
}

// Summary 输出错误计数
func (r *Reporter) Summary() {
	switch n := len(r.errors); n {
	case 0:
		return
	case 1:
		fmt.Fprintln(r.out, "error: 1 error found")
	default:
		fmt.Fprintf(r.out, "error: %d errors found\n", n)
	}
}
