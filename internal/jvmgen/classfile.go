// Package jvmgen 实现 JavaSST 到 JVM class 文件的生成
//
// 生成分三步，数据单向流动：
//
//	PoolBuilder  构建常量池与字段/方法骨架
//	Emitter      生成构造函数字节码
//	ClassFile    序列化为 class 文件字节
package jvmgen

import (
	"io"

	"github.com/tangzhangming/sstc/internal/errors"
)

// Class 文件常量
const (
	ClassFileMagic    = 0xCAFEBABE
	ClassMajorVersion = 52 // Java 8
	ClassMinorVersion = 0

	// MaxCodeLength Code 属性 code_length 字段能表示的上限
	MaxCodeLength = 65535
)

// 常量池标签
const (
	ConstantUtf8        = 1
	ConstantInteger     = 3
	ConstantClass       = 7
	ConstantFieldref    = 9
	ConstantMethodref   = 10
	ConstantNameAndType = 12
)

// 访问标志
const (
	AccDefault = 0x0000
	AccPublic  = 0x0001
	AccFinal   = 0x0010
)

// 固定的属性名
const (
	AttrConstantValue   = "ConstantValue"
	AttrCode            = "Code"
	AttrLineNumberTable = "LineNumberTable"
	AttrStackMapTable   = "StackMapTable"
	AttrSourceFile      = "SourceFile"
)

// ClassFile JVM class 文件结构
type ClassFile struct {
	Magic        uint32
	MinorVersion uint16
	MajorVersion uint16
	Pool         *ConstantPool
	AccessFlags  uint16
	ThisClass    uint16
	SuperClass   uint16
	Fields       []FieldInfo
	Methods      []MethodInfo
	SourceFile   SourceFileAttribute
}

// FieldInfo 字段信息
type FieldInfo struct {
	AccessFlags     uint16
	NameIndex       uint16
	DescriptorIndex uint16
	ConstantValue   *ConstantValueAttribute // 可选
}

// MethodInfo 方法信息
type MethodInfo struct {
	AccessFlags     uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Code            *CodeAttribute // 可选
}

// ConstantValueAttribute ConstantValue 属性
type ConstantValueAttribute struct {
	NameIndex  uint16 // "ConstantValue"
	ValueIndex uint16 // Integer 常量
}

// CodeAttribute Code 属性
type CodeAttribute struct {
	NameIndex uint16 // "Code"
	MaxStack  uint16
	MaxLocals uint16
	Code      []byte
	Nested    CodeAttributes
}

// Length 返回 attribute_length 的值
func (c *CodeAttribute) Length() uint32 {
	// max_stack + max_locals + code_length + exception_table_length + attributes_count
	return 12 + uint32(len(c.Code)) + c.Nested.size()
}

// CodeAttributes Code 属性内嵌的属性表
//
// 零值表示尚未填充：行号表与栈映射帧的生成还没有实现，
// 序列化时写出 0 个属性。填充后才会写出 LineNumbers。
type CodeAttributes struct {
	populated   bool
	LineNumbers []LineNumberTableAttribute
}

// PendingAttributes 返回尚未填充的内嵌属性表
func PendingAttributes() CodeAttributes {
	return CodeAttributes{}
}

// PopulatedAttributes 返回已填充的内嵌属性表
func PopulatedAttributes(tables ...LineNumberTableAttribute) CodeAttributes {
	return CodeAttributes{populated: true, LineNumbers: tables}
}

// Pending 内嵌属性表是否尚未填充
func (c CodeAttributes) Pending() bool {
	return !c.populated
}

// Count 返回 attributes_count
func (c CodeAttributes) Count() uint16 {
	if c.Pending() {
		return 0
	}
	return uint16(len(c.LineNumbers))
}

func (c CodeAttributes) size() uint32 {
	if c.Pending() {
		return 0
	}
	var n uint32
	for i := range c.LineNumbers {
		n += 6 + c.LineNumbers[i].Length()
	}
	return n
}

// LineNumberTableAttribute LineNumberTable 属性
type LineNumberTableAttribute struct {
	NameIndex uint16 // "LineNumberTable"
	Entries   []LineNumberEntry
}

// LineNumberEntry 行号表条目
type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

// Length 返回 attribute_length 的值
func (l *LineNumberTableAttribute) Length() uint32 {
	return 2 + 4*uint32(len(l.Entries))
}

// SourceFileAttribute SourceFile 属性
type SourceFileAttribute struct {
	NameIndex       uint16 // "SourceFile"
	SourceFileIndex uint16 // 源文件名
}

// NewClassFile 创建新的 class 文件
func NewClassFile(pool *ConstantPool) *ClassFile {
	return &ClassFile{
		Magic:        ClassFileMagic,
		MinorVersion: ClassMinorVersion,
		MajorVersion: ClassMajorVersion,
		Pool:         pool,
		AccessFlags:  AccPublic,
	}
}

// Write 将 class 文件写入 io.Writer
//
// 先完整序列化到内存，失败时不会向 w 写出任何字节。
func (cf *ClassFile) Write(w io.Writer) error {
	data, err := cf.ToBytes()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ToBytes 将 class 文件转换为字节数组，所有多字节字段均为大端序
func (cf *ClassFile) ToBytes() ([]byte, error) {
	w := NewByteWriter()

	// Magic number
	w.WriteU32(cf.Magic)

	// Version
	w.WriteU16(cf.MinorVersion)
	w.WriteU16(cf.MajorVersion)

	// Constant pool
	w.WriteU16(cf.Pool.Count())
	for _, entry := range cf.Pool.Entries() {
		if err := writeConstant(w, entry); err != nil {
			return nil, err
		}
	}

	// Access flags, this class, super class
	w.WriteU16(cf.AccessFlags)
	w.WriteU16(cf.ThisClass)
	w.WriteU16(cf.SuperClass)

	// Interfaces
	w.WriteU16(0)

	// Fields
	w.WriteU16(uint16(len(cf.Fields)))
	for i := range cf.Fields {
		writeFieldInfo(w, &cf.Fields[i])
	}

	// Methods
	w.WriteU16(uint16(len(cf.Methods)))
	for i := range cf.Methods {
		if err := writeMethodInfo(w, &cf.Methods[i]); err != nil {
			return nil, err
		}
	}

	// Attributes
	w.WriteU16(1)
	w.WriteU16(cf.SourceFile.NameIndex)
	w.WriteU32(2)
	w.WriteU16(cf.SourceFile.SourceFileIndex)

	if err := w.Err(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// writeConstant 按标签写出常量池条目
//
// 标签集合由格式固定，遇到未知条目必须失败。
func writeConstant(w *ByteWriter, entry ConstantPoolEntry) error {
	switch c := entry.(type) {
	case *ConstantUtf8Info:
		if len(c.Value) > 0xFFFF {
			return errors.Format(errors.E0904, "utf8 constant of %d bytes exceeds 65535", len(c.Value))
		}
		w.WriteU8(ConstantUtf8)
		w.WriteU16(uint16(len(c.Value)))
		w.WriteBytes([]byte(c.Value))
	case *ConstantClassInfo:
		w.WriteU8(ConstantClass)
		w.WriteU16(c.NameIndex)
	case *ConstantNameAndTypeInfo:
		w.WriteU8(ConstantNameAndType)
		w.WriteU16(c.NameIndex)
		w.WriteU16(c.DescriptorIndex)
	case *ConstantFieldrefInfo:
		w.WriteU8(ConstantFieldref)
		w.WriteU16(c.ClassIndex)
		w.WriteU16(c.NameAndTypeIndex)
	case *ConstantMethodrefInfo:
		w.WriteU8(ConstantMethodref)
		w.WriteU16(c.ClassIndex)
		w.WriteU16(c.NameAndTypeIndex)
	case *ConstantIntegerInfo:
		w.WriteU8(ConstantInteger)
		w.WriteU32(uint32(c.Value))
	default:
		tag := -1
		if entry != nil {
			tag = int(entry.Tag())
		}
		return errors.Format(errors.E0900, "unknown constant pool tag %d (%T)", tag, entry)
	}
	return nil
}

func writeFieldInfo(w *ByteWriter, f *FieldInfo) {
	w.WriteU16(f.AccessFlags)
	w.WriteU16(f.NameIndex)
	w.WriteU16(f.DescriptorIndex)
	if f.ConstantValue == nil {
		w.WriteU16(0)
		return
	}
	w.WriteU16(1)
	w.WriteU16(f.ConstantValue.NameIndex)
	w.WriteU32(2)
	w.WriteU16(f.ConstantValue.ValueIndex)
}

func writeMethodInfo(w *ByteWriter, m *MethodInfo) error {
	w.WriteU16(m.AccessFlags)
	w.WriteU16(m.NameIndex)
	w.WriteU16(m.DescriptorIndex)
	if m.Code == nil {
		w.WriteU16(0)
		return nil
	}
	w.WriteU16(1)
	return writeCodeAttribute(w, m.Code)
}

func writeCodeAttribute(w *ByteWriter, c *CodeAttribute) error {
	if len(c.Code) > MaxCodeLength {
		return errors.Format(errors.E0901, "code length %d exceeds %d bytes", len(c.Code), MaxCodeLength)
	}
	w.WriteU16(c.NameIndex)
	w.WriteU32(c.Length())
	w.WriteU16(c.MaxStack)
	w.WriteU16(c.MaxLocals)
	w.WriteU32(uint32(len(c.Code)))
	w.WriteBytes(c.Code)
	w.WriteU16(0) // exception_table_length
	w.WriteU16(c.Nested.Count())
	if c.Nested.Pending() {
		return nil
	}
	for i := range c.Nested.LineNumbers {
		lnt := &c.Nested.LineNumbers[i]
		w.WriteU16(lnt.NameIndex)
		w.WriteU32(lnt.Length())
		w.WriteU16(uint16(len(lnt.Entries)))
		for _, e := range lnt.Entries {
			w.WriteU16(e.StartPC)
			w.WriteU16(e.LineNumber)
		}
	}
	return nil
}
