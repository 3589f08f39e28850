package jvmgen

import (
	"go.uber.org/zap"

	"github.com/tangzhangming/sstc/internal/ast"
	"github.com/tangzhangming/sstc/internal/token"
)

// FinalField 构造函数需要赋值的 final 字段
type FinalField struct {
	Symbol   *ast.Symbol
	FieldRef uint16 // Fieldref 索引
}

// ClassSkeleton PoolBuilder 的产物：冻结的常量池与字段/方法骨架
type ClassSkeleton struct {
	ClassName string
	ClassPos  token.Position
	Pool      *ConstantPool

	ThisClass  uint16
	SuperClass uint16
	SuperInit  uint16 // 父类 <init>:()V 的 Methodref，固定为 1

	CodeIndex            uint16
	LineNumberTableIndex uint16
	StackMapTableIndex   uint16
	SourceFile           SourceFileAttribute

	Fields  []FieldInfo  // final 字段在前，顺序与 Finals 一致
	Methods []MethodInfo // Methods[0] 为构造函数

	Finals     []FinalField
	MethodRefs map[string]uint16 // 被引用方法 -> Methodref
	FieldRefs  map[string]uint16 // 被引用全局变量 -> Fieldref
	References *ReferenceSet
}

// PoolBuilder 常量池构建器
//
// 按固定阶段追加条目，索引值会被写进交叉引用，阶段顺序不可调整。
type PoolBuilder struct {
	opts  Options
	log   *zap.Logger
	class *ast.Class
	pool  *ConstantPool
	sk    *ClassSkeleton
	err   error

	initName uint16 // "<init>"
	voidDesc uint16 // "()V"
}

// NewPoolBuilder 创建常量池构建器
func NewPoolBuilder(opts Options) *PoolBuilder {
	opts = opts.withDefaults()
	return &PoolBuilder{
		opts: opts,
		log:  opts.Logger.Named("cpgen"),
	}
}

// Build 为一个类构建常量池与骨架
func (b *PoolBuilder) Build(class *ast.Class) (*ClassSkeleton, error) {
	if err := ast.Validate(class); err != nil {
		return nil, err
	}

	b.class = class
	b.pool = NewConstantPool()
	b.err = nil
	b.sk = &ClassSkeleton{
		ClassName:  class.Name(),
		ClassPos:   class.Pos,
		Pool:       b.pool,
		MethodRefs: make(map[string]uint16),
		FieldRefs:  make(map[string]uint16),
	}

	phases := []struct {
		name string
		fn   func()
	}{
		{"head", b.genPoolHead},
		{"class", b.genPoolClass},
		{"finals", b.genPoolFinals},
		{"references", b.collectReferences},
		{"calls", b.genPoolCalls},
		{"constants", b.genPoolConstants},
		{"unreferenced-vars", b.genNotCalledVars},
		{"code-head", b.genPoolCodeHead},
		{"unreferenced-methods", b.genNotCalledMethods},
		{"end", b.genPoolEnd},
	}
	for _, p := range phases {
		p.fn()
		if b.err != nil {
			return nil, b.err
		}
		b.log.Debug("phase done", zap.String("phase", p.name), zap.Int("entries", b.pool.Len()))
	}

	b.pool.Freeze()
	return b.sk, nil
}

// ============================================================================
// 阶段
// ============================================================================

// genPoolHead 父类构造函数引用
//
//	#1 = Methodref    #2.#3   // java/lang/Object."<init>":()V
//	#2 = Class        #4
//	#3 = NameAndType  #5:#6
//	#4 = Utf8         java/lang/Object
//	#5 = Utf8         <init>
//	#6 = Utf8         ()V
func (b *PoolBuilder) genPoolHead() {
	base := b.next()
	b.sk.SuperInit = b.add(&ConstantMethodrefInfo{ClassIndex: base + 1, NameAndTypeIndex: base + 2})
	b.sk.SuperClass = b.add(&ConstantClassInfo{NameIndex: base + 3})
	b.add(&ConstantNameAndTypeInfo{NameIndex: base + 4, DescriptorIndex: base + 5})
	b.utf8(b.opts.SuperClass)
	b.initName = b.utf8(InitName)
	b.voidDesc = b.utf8(InitDescriptor)
}

// genPoolClass 本类
//
//	#7 = Class  #8
//	#8 = Utf8   Empty
func (b *PoolBuilder) genPoolClass() {
	base := b.next()
	b.sk.ThisClass = b.add(&ConstantClassInfo{NameIndex: base + 1})
	b.utf8(b.sk.ClassName)

	b.sk.Methods = append(b.sk.Methods, MethodInfo{
		AccessFlags:     AccDefault,
		NameIndex:       b.initName,
		DescriptorIndex: b.voidDesc,
	})
}

// genPoolFinals final 字段
//
//	#9  = Fieldref     #7.#10
//	#10 = NameAndType  #11:#12
//	#11 = Utf8         x
//	#12 = Utf8         I        (仅当池中还没有 "I")
func (b *PoolBuilder) genPoolFinals() {
	for _, f := range b.class.Finals {
		ref := b.next()
		b.add(&ConstantFieldrefInfo{ClassIndex: b.sk.ThisClass, NameAndTypeIndex: ref + 1})
		nameIdx, descIdx := b.nameAndType(f.Name, IntDescriptor)

		b.sk.Finals = append(b.sk.Finals, FinalField{Symbol: f, FieldRef: ref})
		b.sk.Fields = append(b.sk.Fields, FieldInfo{
			AccessFlags:     AccFinal,
			NameIndex:       nameIdx,
			DescriptorIndex: descIdx,
		})
	}
}

func (b *PoolBuilder) collectReferences() {
	b.sk.References = CollectReferences(b.class.Methods)
}

// genPoolCalls 被引用的方法与全局变量
//
//	#16 = Methodref    #7.#17   // meth2:(II)I
//	#17 = NameAndType  #18:#19
//	#18 = Utf8         meth2
//	#19 = Utf8         (II)I
func (b *PoolBuilder) genPoolCalls() {
	refs := b.sk.References

	for _, m := range b.class.Methods {
		if !refs.Contains(m.Name()) {
			continue
		}
		desc, err := MethodDescriptor(m.Symbol)
		if err != nil {
			b.fail(err)
			return
		}
		ref := b.next()
		b.add(&ConstantMethodrefInfo{ClassIndex: b.sk.ThisClass, NameAndTypeIndex: ref + 1})
		nameIdx, descIdx := b.nameAndType(m.Name(), desc)

		b.sk.MethodRefs[m.Name()] = ref
		b.sk.Methods = append(b.sk.Methods, MethodInfo{
			AccessFlags:     AccPublic,
			NameIndex:       nameIdx,
			DescriptorIndex: descIdx,
		})
	}

	for _, v := range b.class.Vars {
		if !refs.Contains(v.Name) {
			continue
		}
		ref := b.next()
		b.add(&ConstantFieldrefInfo{ClassIndex: b.sk.ThisClass, NameAndTypeIndex: ref + 1})
		nameIdx, descIdx := b.nameAndType(v.Name, IntDescriptor)

		b.sk.FieldRefs[v.Name] = ref
		b.sk.Fields = append(b.sk.Fields, FieldInfo{
			AccessFlags:     AccDefault,
			NameIndex:       nameIdx,
			DescriptorIndex: descIdx,
		})
	}
}

// genPoolConstants final 字段的 ConstantValue 属性
//
//	#30 = Utf8     ConstantValue
//	#31 = Integer  1
func (b *PoolBuilder) genPoolConstants() {
	if len(b.class.Finals) == 0 {
		return
	}
	cv := b.utf8(AttrConstantValue)
	for i, f := range b.class.Finals {
		idx := b.add(&ConstantIntegerInfo{Value: f.Value})
		b.sk.Fields[i].ConstantValue = &ConstantValueAttribute{NameIndex: cv, ValueIndex: idx}
	}
}

// genNotCalledVars 未被引用的全局变量只需要名字
func (b *PoolBuilder) genNotCalledVars() {
	for _, v := range b.class.Vars {
		if b.sk.References.Contains(v.Name) {
			continue
		}
		nameIdx := b.utf8(v.Name)
		descIdx := b.pool.FindUtf8(IntDescriptor)
		if descIdx == 0 {
			descIdx = b.utf8(IntDescriptor)
		}
		b.sk.Fields = append(b.sk.Fields, FieldInfo{
			AccessFlags:     AccDefault,
			NameIndex:       nameIdx,
			DescriptorIndex: descIdx,
		})
	}
}

// genPoolCodeHead Code 相关属性名
//
//	#9  = Utf8  Code
//	#10 = Utf8  LineNumberTable
//	#11 = Utf8  StackMapTable
func (b *PoolBuilder) genPoolCodeHead() {
	b.sk.CodeIndex = b.utf8(AttrCode)
	b.sk.LineNumberTableIndex = b.utf8(AttrLineNumberTable)
	b.sk.StackMapTableIndex = b.utf8(AttrStackMapTable)
}

// genNotCalledMethods 未被引用的方法只需要名字和描述符
func (b *PoolBuilder) genNotCalledMethods() {
	for _, m := range b.class.Methods {
		if b.sk.References.Contains(m.Name()) {
			continue
		}
		desc, err := MethodDescriptor(m.Symbol)
		if err != nil {
			b.fail(err)
			return
		}
		descIdx := b.pool.FindUtf8(desc)
		nameIdx := b.utf8(m.Name())
		if descIdx == 0 {
			descIdx = b.utf8(desc)
		}
		b.sk.Methods = append(b.sk.Methods, MethodInfo{
			AccessFlags:     AccPublic,
			NameIndex:       nameIdx,
			DescriptorIndex: descIdx,
		})
	}
}

// genPoolEnd SourceFile 属性
//
//	#12 = Utf8  SourceFile
//	#13 = Utf8  Empty.java
func (b *PoolBuilder) genPoolEnd() {
	b.sk.SourceFile = SourceFileAttribute{
		NameIndex:       b.utf8(AttrSourceFile),
		SourceFileIndex: b.utf8(b.sk.ClassName + b.opts.SourceExtension),
	}
}

// ============================================================================
// 辅助方法
// ============================================================================

func (b *PoolBuilder) next() uint16 {
	return uint16(b.pool.Len() + 1)
}

func (b *PoolBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *PoolBuilder) add(entry ConstantPoolEntry) uint16 {
	if b.err != nil {
		return 0
	}
	idx, err := b.pool.Add(entry)
	if err != nil {
		b.fail(err)
		return 0
	}
	return idx
}

func (b *PoolBuilder) utf8(value string) uint16 {
	return b.add(&ConstantUtf8Info{Value: value})
}

// nameAndType 追加 NameAndType 与名字 Utf8
//
// 描述符按文本去重：池中已有同文本 Utf8 时复用第一个，
// 否则紧跟名字追加。名字从不去重。
func (b *PoolBuilder) nameAndType(name, descriptor string) (nameIdx, descIdx uint16) {
	nat := b.next()
	if descIdx = b.pool.FindUtf8(descriptor); descIdx != 0 {
		b.add(&ConstantNameAndTypeInfo{NameIndex: nat + 1, DescriptorIndex: descIdx})
		nameIdx = b.utf8(name)
		return nameIdx, descIdx
	}
	b.add(&ConstantNameAndTypeInfo{NameIndex: nat + 1, DescriptorIndex: nat + 2})
	nameIdx = b.utf8(name)
	descIdx = b.utf8(descriptor)
	return nameIdx, descIdx
}
