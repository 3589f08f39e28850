package jvmgen

import (
	"fmt"
	"io"
	"strings"
)

// DumpConstantPool 以 javap 风格列出常量池
//
//	#1 = Methodref          #2.#3          // java/lang/Object."<init>":()V
func DumpConstantPool(w io.Writer, pool *ConstantPool) {
	fmt.Fprintln(w, "Constant pool:")
	width := len(fmt.Sprint(pool.Len()))
	for i, entry := range pool.Entries() {
		idx := uint16(i + 1)
		ref := fmt.Sprintf("#%d", idx)
		kind, args := describeEntry(entry)
		line := fmt.Sprintf("  %*s = %-18s %s", width+1, ref, kind, args)
		if comment := resolveComment(pool, entry); comment != "" {
			line = fmt.Sprintf("%-50s // %s", line, comment)
		}
		fmt.Fprintln(w, line)
	}
}

func describeEntry(entry ConstantPoolEntry) (kind, args string) {
	switch c := entry.(type) {
	case *ConstantUtf8Info:
		return "Utf8", c.Value
	case *ConstantIntegerInfo:
		return "Integer", fmt.Sprint(c.Value)
	case *ConstantClassInfo:
		return "Class", fmt.Sprintf("#%d", c.NameIndex)
	case *ConstantNameAndTypeInfo:
		return "NameAndType", fmt.Sprintf("#%d:#%d", c.NameIndex, c.DescriptorIndex)
	case *ConstantFieldrefInfo:
		return "Fieldref", fmt.Sprintf("#%d.#%d", c.ClassIndex, c.NameAndTypeIndex)
	case *ConstantMethodrefInfo:
		return "Methodref", fmt.Sprintf("#%d.#%d", c.ClassIndex, c.NameAndTypeIndex)
	default:
		return "Unknown", fmt.Sprintf("%T", entry)
	}
}

// resolveComment 解析条目引用的文本，无法解析时返回空串
func resolveComment(pool *ConstantPool, entry ConstantPoolEntry) string {
	switch c := entry.(type) {
	case *ConstantClassInfo:
		name, err := pool.Utf8(c.NameIndex)
		if err != nil {
			return ""
		}
		return name
	case *ConstantNameAndTypeInfo:
		n, nerr := pool.Utf8(c.NameIndex)
		d, derr := pool.Utf8(c.DescriptorIndex)
		if nerr != nil || derr != nil {
			return ""
		}
		return quoteMember(n) + ":" + d
	case *ConstantFieldrefInfo, *ConstantMethodrefInfo:
		return memberComment(pool, entry)
	}
	return ""
}

func memberComment(pool *ConstantPool, entry ConstantPoolEntry) string {
	var classIdx, natIdx uint16
	switch c := entry.(type) {
	case *ConstantFieldrefInfo:
		classIdx, natIdx = c.ClassIndex, c.NameAndTypeIndex
	case *ConstantMethodrefInfo:
		classIdx, natIdx = c.ClassIndex, c.NameAndTypeIndex
	}
	class, err := pool.ClassName(classIdx)
	if err != nil {
		return ""
	}
	name, desc, err := pool.NameAndType(natIdx)
	if err != nil {
		return ""
	}
	return class + "." + quoteMember(name) + ":" + desc
}

func quoteMember(name string) string {
	if strings.HasPrefix(name, "<") {
		return `"` + name + `"`
	}
	return name
}

// Disassemble 反汇编字节码
//
//	0: aload_0
//	1: invokespecial #1
func Disassemble(w io.Writer, code []byte) {
	for pc := 0; pc < len(code); {
		op := code[pc]
		name, ok := opcodeNames[op]
		if !ok {
			fmt.Fprintf(w, "  %4d: <unknown 0x%02X>\n", pc, op)
			pc++
			continue
		}
		n := operandWidth(op)
		if pc+1+n > len(code) {
			fmt.Fprintf(w, "  %4d: %s <truncated>\n", pc, name)
			return
		}
		switch n {
		case 1:
			fmt.Fprintf(w, "  %4d: %-14s %d\n", pc, name, int8(code[pc+1]))
		case 2:
			idx := uint16(code[pc+1])<<8 | uint16(code[pc+2])
			fmt.Fprintf(w, "  %4d: %-14s #%d\n", pc, name, idx)
		default:
			fmt.Fprintf(w, "  %4d: %s\n", pc, name)
		}
		pc += 1 + n
	}
}

// HexDump 以每行 16 字节输出十六进制
func HexDump(w io.Writer, data []byte) {
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		parts := make([]string, 0, 16)
		for _, b := range data[off:end] {
			parts = append(parts, fmt.Sprintf("%02X", b))
		}
		fmt.Fprintf(w, "  %04x  %s\n", off, strings.Join(parts, " "))
	}
}
