// Package errors 提供 sstc 后端的结构化错误
package errors

// ============================================================================
// 错误级别
// ============================================================================

// Level 错误级别
type Level int

const (
	LevelError   Level = iota // 错误
	LevelWarning              // 警告
	LevelNote                 // 提示
	LevelHelp                 // 帮助
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelNote:
		return "note"
	case LevelHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ============================================================================
// 错误类别
// ============================================================================

// Kind 错误类别
type Kind int

const (
	KindFormat   Kind = iota + 1 // 违反 class 文件格式约束
	KindContract                 // 上游 AST/符号表违反输入约定
	KindIO                       // 写出失败
)

func (k Kind) String() string {
	switch k {
	case KindFormat:
		return "format"
	case KindContract:
		return "contract"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// ============================================================================
// 后端错误码 (E09xx)
// ============================================================================

const (
	// E0900-E0909: 格式错误
	E0900 = "E0900" // 未知的常量池标签
	E0901 = "E0901" // 字节码超出 65535 字节
	E0902 = "E0902" // 常量值超出可编码范围
	E0903 = "E0903" // 常量池条目超过 65535
	E0904 = "E0904" // Utf8 常量过长

	// E0910-E0919: 输入约定错误
	E0910 = "E0910" // AST 节点缺少已解析的符号信息
	E0911 = "E0911" // 方法返回类型无法分类
	E0912 = "E0912" // 标识符无法解析

	// E0920-E0929: I/O 错误
	E0920 = "E0920" // 写 class 文件失败
	E0921 = "E0921" // 读取输入失败
)

// ============================================================================
// 错误码信息
// ============================================================================

// ErrorInfo 错误码信息
type ErrorInfo struct {
	Code     string // 错误码
	Level    Level  // 错误级别
	Kind     Kind   // 错误类别
	Summary  string // 简短描述
	Category string // 错误分类
}

// backendErrors 后端错误码信息表
var backendErrors = map[string]ErrorInfo{
	E0900: {E0900, LevelError, KindFormat, "unknown constant pool tag", "format"},
	E0901: {E0901, LevelError, KindFormat, "code length exceeds 65535 bytes", "format"},
	E0902: {E0902, LevelError, KindFormat, "constant value has no push encoding", "format"},
	E0903: {E0903, LevelError, KindFormat, "constant pool exceeds 65535 entries", "format"},
	E0904: {E0904, LevelError, KindFormat, "utf8 constant exceeds 65535 bytes", "format"},

	E0910: {E0910, LevelError, KindContract, "node carries no resolved symbol", "contract"},
	E0911: {E0911, LevelError, KindContract, "method return type cannot be classified", "contract"},
	E0912: {E0912, LevelError, KindContract, "identifier cannot be resolved", "contract"},

	E0920: {E0920, LevelError, KindIO, "cannot write class file", "io"},
	E0921: {E0921, LevelError, KindIO, "cannot read input", "io"},
}

// GetErrorInfo 获取错误码信息
func GetErrorInfo(code string) (ErrorInfo, bool) {
	info, ok := backendErrors[code]
	return info, ok
}

// KindOf 返回错误码所属类别
func KindOf(code string) Kind {
	if info, ok := backendErrors[code]; ok {
		return info.Kind
	}
	return 0
}
