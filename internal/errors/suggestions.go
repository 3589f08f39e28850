package errors

// GetSuggestions 根据错误码获取修复建议
func GetSuggestions(code string) []string {
	switch code {
	case E0901:
		return []string{"split the class into smaller units; a method body is limited to 65535 bytes"}
	case E0902:
		return []string{"final field values must lie in the signed byte range -128..127"}
	case E0903:
		return []string{"reduce the number of members; the constant pool is limited to 65535 entries"}
	case E0910, E0911, E0912:
		return []string{"the front end must hand over a fully resolved AST; rerun semantic analysis"}
	case E0920:
		return []string{"check that the output directory exists and is writable"}
	default:
		return nil
	}
}
