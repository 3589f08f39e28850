package jvmgen

import (
	"fmt"

	"github.com/tangzhangming/sstc/internal/errors"
)

// ConstantPoolEntry 常量池条目
//
// 条目集合是封闭的，只有本包定义的六种类型实现该接口。
type ConstantPoolEntry interface {
	Tag() uint8
	constantEntry()
}

// ConstantUtf8Info UTF8 字符串常量
type ConstantUtf8Info struct {
	Value string
}

func (c *ConstantUtf8Info) Tag() uint8     { return ConstantUtf8 }
func (c *ConstantUtf8Info) constantEntry() {}

// ConstantClassInfo 类引用常量
type ConstantClassInfo struct {
	NameIndex uint16
}

func (c *ConstantClassInfo) Tag() uint8     { return ConstantClass }
func (c *ConstantClassInfo) constantEntry() {}

// ConstantNameAndTypeInfo 名称和类型描述符常量
type ConstantNameAndTypeInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndTypeInfo) Tag() uint8     { return ConstantNameAndType }
func (c *ConstantNameAndTypeInfo) constantEntry() {}

// ConstantFieldrefInfo 字段引用常量
type ConstantFieldrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantFieldrefInfo) Tag() uint8     { return ConstantFieldref }
func (c *ConstantFieldrefInfo) constantEntry() {}

// ConstantMethodrefInfo 方法引用常量
type ConstantMethodrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantMethodrefInfo) Tag() uint8     { return ConstantMethodref }
func (c *ConstantMethodrefInfo) constantEntry() {}

// ConstantIntegerInfo 整数常量
type ConstantIntegerInfo struct {
	Value int32
}

func (c *ConstantIntegerInfo) Tag() uint8     { return ConstantInteger }
func (c *ConstantIntegerInfo) constantEntry() {}

// ============================================================================
// 常量池
// ============================================================================

// maxPoolEntries constant_pool_count 为 u2，条目数最多 65534
const maxPoolEntries = 0xFFFF - 1

// ConstantPool 只追加的常量池
//
// 索引从 1 开始连续分配，与插入顺序一致，分配后不再改变。
// 下游结构只保存索引，不持有条目。
type ConstantPool struct {
	entries []ConstantPoolEntry
	utf8    map[string]uint16 // 文本 -> 第一个同文本 Utf8 条目的索引
	frozen  bool
}

// NewConstantPool 创建空常量池
func NewConstantPool() *ConstantPool {
	return &ConstantPool{
		utf8: make(map[string]uint16),
	}
}

// Add 追加条目并返回其索引
func (p *ConstantPool) Add(entry ConstantPoolEntry) (uint16, error) {
	if p.frozen {
		return 0, fmt.Errorf("jvmgen: constant pool is frozen")
	}
	if len(p.entries) >= maxPoolEntries {
		return 0, errors.Format(errors.E0903, "constant pool exceeds %d entries", maxPoolEntries)
	}
	p.entries = append(p.entries, entry)
	idx := uint16(len(p.entries))
	if u, ok := entry.(*ConstantUtf8Info); ok {
		if _, seen := p.utf8[u.Value]; !seen {
			p.utf8[u.Value] = idx
		}
	}
	return idx, nil
}

// FindUtf8 返回第一个文本为 value 的 Utf8 条目索引，不存在时返回 0
//
// 等价于按索引顺序线性扫描所有 Utf8 条目取第一个匹配。
func (p *ConstantPool) FindUtf8(value string) uint16 {
	return p.utf8[value]
}

// Freeze 冻结常量池，之后 Add 返回错误
func (p *ConstantPool) Freeze() {
	p.frozen = true
}

// Frozen 常量池是否已冻结
func (p *ConstantPool) Frozen() bool {
	return p.frozen
}

// Len 返回条目数
func (p *ConstantPool) Len() int {
	return len(p.entries)
}

// Count 返回 constant_pool_count (条目数 + 1)
func (p *ConstantPool) Count() uint16 {
	return uint16(len(p.entries) + 1)
}

// Entries 返回全部条目，第 i 个元素的索引为 i+1，调用方不得修改
func (p *ConstantPool) Entries() []ConstantPoolEntry {
	return p.entries
}

// Get 按索引获取条目
func (p *ConstantPool) Get(index uint16) (ConstantPoolEntry, bool) {
	if index == 0 || int(index) > len(p.entries) {
		return nil, false
	}
	return p.entries[index-1], true
}

// Utf8 按索引获取 Utf8 文本
func (p *ConstantPool) Utf8(index uint16) (string, error) {
	entry, ok := p.Get(index)
	if !ok {
		return "", fmt.Errorf("constant pool index %d out of range", index)
	}
	u, ok := entry.(*ConstantUtf8Info)
	if !ok {
		return "", fmt.Errorf("constant pool index %d: expected Utf8, got tag %d", index, entry.Tag())
	}
	return u.Value, nil
}

// ClassName 解析 Class 条目的类名
func (p *ConstantPool) ClassName(index uint16) (string, error) {
	entry, ok := p.Get(index)
	if !ok {
		return "", fmt.Errorf("constant pool index %d out of range", index)
	}
	c, ok := entry.(*ConstantClassInfo)
	if !ok {
		return "", fmt.Errorf("constant pool index %d: expected Class, got tag %d", index, entry.Tag())
	}
	return p.Utf8(c.NameIndex)
}

// MemberRef 解析 Fieldref/Methodref 条目为 类名、成员名、描述符
func (p *ConstantPool) MemberRef(index uint16) (class, name, descriptor string, err error) {
	entry, ok := p.Get(index)
	if !ok {
		return "", "", "", fmt.Errorf("constant pool index %d out of range", index)
	}
	var classIdx, natIdx uint16
	switch c := entry.(type) {
	case *ConstantFieldrefInfo:
		classIdx, natIdx = c.ClassIndex, c.NameAndTypeIndex
	case *ConstantMethodrefInfo:
		classIdx, natIdx = c.ClassIndex, c.NameAndTypeIndex
	default:
		return "", "", "", fmt.Errorf("constant pool index %d: expected Fieldref or Methodref, got tag %d", index, entry.Tag())
	}
	if class, err = p.ClassName(classIdx); err != nil {
		return "", "", "", err
	}
	name, descriptor, err = p.NameAndType(natIdx)
	return class, name, descriptor, err
}

// NameAndType 解析 NameAndType 条目
func (p *ConstantPool) NameAndType(index uint16) (name, descriptor string, err error) {
	entry, ok := p.Get(index)
	if !ok {
		return "", "", fmt.Errorf("constant pool index %d out of range", index)
	}
	nat, ok := entry.(*ConstantNameAndTypeInfo)
	if !ok {
		return "", "", fmt.Errorf("constant pool index %d: expected NameAndType, got tag %d", index, entry.Tag())
	}
	if name, err = p.Utf8(nat.NameIndex); err != nil {
		return "", "", err
	}
	descriptor, err = p.Utf8(nat.DescriptorIndex)
	return name, descriptor, err
}
