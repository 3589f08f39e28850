package jvmgen

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/tangzhangming/sstc/internal/errors"
)

// ParsedClass 读回的 class 文件
//
// 只识别生成器会写出的常量标签与属性，用于 inspect 与往返测试。
type ParsedClass struct {
	MinorVersion uint16
	MajorVersion uint16
	Pool         *ConstantPool
	AccessFlags  uint16
	ThisClass    uint16
	SuperClass   uint16
	Fields       []ParsedMember
	Methods      []ParsedMember
	Attributes   []ParsedAttribute
}

// ParsedMember 字段或方法
type ParsedMember struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	Attributes  []ParsedAttribute
	Code        *ParsedCode // 仅方法
}

// ParsedAttribute 未解释的属性
type ParsedAttribute struct {
	Name string
	Data []byte
}

// ParsedCode 解析后的 Code 属性
type ParsedCode struct {
	MaxStack   uint16
	MaxLocals  uint16
	Code       []byte
	Attributes []ParsedAttribute
}

// ParseFile 读取并解析 class 文件
func ParseFile(path string) (*ParsedClass, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.E0921, err, "cannot read %s", path)
	}
	return Parse(data)
}

// Parse 解析 class 文件字节
func Parse(data []byte) (*ParsedClass, error) {
	r := bytes.NewReader(data)
	pc := &ParsedClass{}

	var magic uint32
	if err := read(r, &magic); err != nil {
		return nil, fmt.Errorf("reading magic number: %w", err)
	}
	if magic != ClassFileMagic {
		return nil, fmt.Errorf("invalid magic number: 0x%X (expected 0xCAFEBABE)", magic)
	}
	if err := read(r, &pc.MinorVersion); err != nil {
		return nil, fmt.Errorf("reading minor version: %w", err)
	}
	if err := read(r, &pc.MajorVersion); err != nil {
		return nil, fmt.Errorf("reading major version: %w", err)
	}

	var cpCount uint16
	if err := read(r, &cpCount); err != nil {
		return nil, fmt.Errorf("reading constant pool count: %w", err)
	}
	pool, err := parseConstantPool(r, cpCount)
	if err != nil {
		return nil, fmt.Errorf("parsing constant pool: %w", err)
	}
	pc.Pool = pool

	if err := read(r, &pc.AccessFlags); err != nil {
		return nil, fmt.Errorf("reading access flags: %w", err)
	}
	if err := read(r, &pc.ThisClass); err != nil {
		return nil, fmt.Errorf("reading this_class: %w", err)
	}
	if err := read(r, &pc.SuperClass); err != nil {
		return nil, fmt.Errorf("reading super_class: %w", err)
	}

	var interfacesCount uint16
	if err := read(r, &interfacesCount); err != nil {
		return nil, fmt.Errorf("reading interfaces count: %w", err)
	}
	if _, err := r.Seek(int64(interfacesCount)*2, io.SeekCurrent); err != nil {
		return nil, fmt.Errorf("skipping interfaces: %w", err)
	}

	if pc.Fields, err = parseMembers(r, pool, "field"); err != nil {
		return nil, err
	}
	if pc.Methods, err = parseMembers(r, pool, "method"); err != nil {
		return nil, err
	}
	if pc.Attributes, err = parseAttributes(r, pool); err != nil {
		return nil, fmt.Errorf("parsing class attributes: %w", err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after class attributes", r.Len())
	}

	pool.Freeze()
	return pc, nil
}

func read(r io.Reader, v interface{}) error {
	return binary.Read(r, binary.BigEndian, v)
}

func parseConstantPool(r io.Reader, count uint16) (*ConstantPool, error) {
	pool := NewConstantPool()
	for i := uint16(1); i < count; i++ {
		var tag uint8
		if err := read(r, &tag); err != nil {
			return nil, fmt.Errorf("reading tag of #%d: %w", i, err)
		}
		var entry ConstantPoolEntry
		switch tag {
		case ConstantUtf8:
			var n uint16
			if err := read(r, &n); err != nil {
				return nil, fmt.Errorf("reading length of #%d: %w", i, err)
			}
			buf := make([]byte, n)
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, fmt.Errorf("reading utf8 #%d: %w", i, err)
			}
			entry = &ConstantUtf8Info{Value: string(buf)}
		case ConstantInteger:
			var v int32
			if err := read(r, &v); err != nil {
				return nil, fmt.Errorf("reading integer #%d: %w", i, err)
			}
			entry = &ConstantIntegerInfo{Value: v}
		case ConstantClass:
			c := &ConstantClassInfo{}
			if err := read(r, &c.NameIndex); err != nil {
				return nil, fmt.Errorf("reading class #%d: %w", i, err)
			}
			entry = c
		case ConstantNameAndType:
			c := &ConstantNameAndTypeInfo{}
			if err := read(r, &c.NameIndex); err != nil {
				return nil, fmt.Errorf("reading name_and_type #%d: %w", i, err)
			}
			if err := read(r, &c.DescriptorIndex); err != nil {
				return nil, fmt.Errorf("reading name_and_type #%d: %w", i, err)
			}
			entry = c
		case ConstantFieldref, ConstantMethodref:
			var classIdx, natIdx uint16
			if err := read(r, &classIdx); err != nil {
				return nil, fmt.Errorf("reading member ref #%d: %w", i, err)
			}
			if err := read(r, &natIdx); err != nil {
				return nil, fmt.Errorf("reading member ref #%d: %w", i, err)
			}
			if tag == ConstantFieldref {
				entry = &ConstantFieldrefInfo{ClassIndex: classIdx, NameAndTypeIndex: natIdx}
			} else {
				entry = &ConstantMethodrefInfo{ClassIndex: classIdx, NameAndTypeIndex: natIdx}
			}
		default:
			return nil, errors.Format(errors.E0900, "unknown constant pool tag %d at #%d", tag, i)
		}
		if _, err := pool.Add(entry); err != nil {
			return nil, err
		}
	}
	return pool, nil
}

func parseMembers(r *bytes.Reader, pool *ConstantPool, what string) ([]ParsedMember, error) {
	var count uint16
	if err := read(r, &count); err != nil {
		return nil, fmt.Errorf("reading %ss count: %w", what, err)
	}
	members := make([]ParsedMember, count)
	for i := range members {
		var accessFlags, nameIndex, descIndex uint16
		if err := read(r, &accessFlags); err != nil {
			return nil, fmt.Errorf("reading %s %d access flags: %w", what, i, err)
		}
		if err := read(r, &nameIndex); err != nil {
			return nil, fmt.Errorf("reading %s %d name index: %w", what, i, err)
		}
		if err := read(r, &descIndex); err != nil {
			return nil, fmt.Errorf("reading %s %d descriptor index: %w", what, i, err)
		}
		name, err := pool.Utf8(nameIndex)
		if err != nil {
			return nil, fmt.Errorf("resolving %s %d name: %w", what, i, err)
		}
		desc, err := pool.Utf8(descIndex)
		if err != nil {
			return nil, fmt.Errorf("resolving %s %d descriptor: %w", what, i, err)
		}
		attrs, err := parseAttributes(r, pool)
		if err != nil {
			return nil, fmt.Errorf("parsing %s %s attributes: %w", what, name, err)
		}

		m := ParsedMember{AccessFlags: accessFlags, Name: name, Descriptor: desc, Attributes: attrs}
		for _, attr := range attrs {
			if attr.Name == AttrCode {
				if m.Code, err = parseCode(attr.Data, pool); err != nil {
					return nil, fmt.Errorf("parsing Code attribute for %s: %w", name, err)
				}
				break
			}
		}
		members[i] = m
	}
	return members, nil
}

func parseAttributes(r *bytes.Reader, pool *ConstantPool) ([]ParsedAttribute, error) {
	var count uint16
	if err := read(r, &count); err != nil {
		return nil, fmt.Errorf("reading attributes count: %w", err)
	}
	attrs := make([]ParsedAttribute, count)
	for i := range attrs {
		var nameIndex uint16
		var length uint32
		if err := read(r, &nameIndex); err != nil {
			return nil, fmt.Errorf("reading attribute %d name: %w", i, err)
		}
		if err := read(r, &length); err != nil {
			return nil, fmt.Errorf("reading attribute %d length: %w", i, err)
		}
		name, err := pool.Utf8(nameIndex)
		if err != nil {
			return nil, fmt.Errorf("resolving attribute %d name: %w", i, err)
		}
		if int64(length) > int64(r.Len()) {
			return nil, fmt.Errorf("attribute %s length %d exceeds remaining %d bytes", name, length, r.Len())
		}
		data := make([]byte, length)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("reading attribute %s: %w", name, err)
		}
		attrs[i] = ParsedAttribute{Name: name, Data: data}
	}
	return attrs, nil
}

func parseCode(data []byte, pool *ConstantPool) (*ParsedCode, error) {
	r := bytes.NewReader(data)
	c := &ParsedCode{}
	if err := read(r, &c.MaxStack); err != nil {
		return nil, fmt.Errorf("reading max_stack: %w", err)
	}
	if err := read(r, &c.MaxLocals); err != nil {
		return nil, fmt.Errorf("reading max_locals: %w", err)
	}
	var codeLen uint32
	if err := read(r, &codeLen); err != nil {
		return nil, fmt.Errorf("reading code_length: %w", err)
	}
	if int64(codeLen) > int64(r.Len()) {
		return nil, fmt.Errorf("code_length %d exceeds attribute size", codeLen)
	}
	c.Code = make([]byte, codeLen)
	if _, err := io.ReadFull(r, c.Code); err != nil {
		return nil, fmt.Errorf("reading code: %w", err)
	}
	var excLen uint16
	if err := read(r, &excLen); err != nil {
		return nil, fmt.Errorf("reading exception_table_length: %w", err)
	}
	if _, err := r.Seek(int64(excLen)*8, io.SeekCurrent); err != nil {
		return nil, fmt.Errorf("skipping exception table: %w", err)
	}
	attrs, err := parseAttributes(r, pool)
	if err != nil {
		return nil, err
	}
	c.Attributes = attrs
	return c, nil
}

// ThisClassName 返回本类名
func (pc *ParsedClass) ThisClassName() (string, error) {
	return pc.Pool.ClassName(pc.ThisClass)
}

// SuperClassName 返回父类名
func (pc *ParsedClass) SuperClassName() (string, error) {
	return pc.Pool.ClassName(pc.SuperClass)
}

// FindMethod 按名字和描述符查找方法
func (pc *ParsedClass) FindMethod(name, descriptor string) *ParsedMember {
	for i := range pc.Methods {
		if pc.Methods[i].Name == name && pc.Methods[i].Descriptor == descriptor {
			return &pc.Methods[i]
		}
	}
	return nil
}

// FindField 按名字查找字段
func (pc *ParsedClass) FindField(name string) *ParsedMember {
	for i := range pc.Fields {
		if pc.Fields[i].Name == name {
			return &pc.Fields[i]
		}
	}
	return nil
}

// SourceFile 返回 SourceFile 属性记录的文件名
func (pc *ParsedClass) SourceFile() (string, bool) {
	for _, attr := range pc.Attributes {
		if attr.Name == AttrSourceFile && len(attr.Data) == 2 {
			name, err := pc.Pool.Utf8(binary.BigEndian.Uint16(attr.Data))
			return name, err == nil
		}
	}
	return "", false
}

// ConstantValue 返回字段 ConstantValue 属性指向的整数
func (m *ParsedMember) ConstantValue(pool *ConstantPool) (int32, bool) {
	for _, attr := range m.Attributes {
		if attr.Name != AttrConstantValue || len(attr.Data) != 2 {
			continue
		}
		entry, ok := pool.Get(binary.BigEndian.Uint16(attr.Data))
		if !ok {
			return 0, false
		}
		if c, ok := entry.(*ConstantIntegerInfo); ok {
			return c.Value, true
		}
	}
	return 0, false
}
