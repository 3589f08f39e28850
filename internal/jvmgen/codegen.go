package jvmgen

import (
	"math"

	"go.uber.org/zap"

	"github.com/tangzhangming/sstc/internal/errors"
)

// 构造函数的栈与局部变量大小：this 与一个待写入的常量
const (
	initMaxStack  = 2
	initMaxLocals = 1
)

// Emitter 构造函数字节码生成器
type Emitter struct {
	opts Options
	log  *zap.Logger
	code *ByteWriter // 当前方法的字节码
}

// NewEmitter 创建字节码生成器
func NewEmitter(opts Options) *Emitter {
	opts = opts.withDefaults()
	return &Emitter{
		opts: opts,
		log:  opts.Logger.Named("codegen"),
		code: NewCodeWriter(),
	}
}

// EmitConstructor 生成实例初始化方法的 Code 属性
//
//	aload_0
//	invokespecial #1        // java/lang/Object."<init>":()V
//	aload_0                 // 每个 final 字段
//	iconst_<n> | bipush n
//	putfield #ref
//	return
func (e *Emitter) EmitConstructor(sk *ClassSkeleton) (*CodeAttribute, error) {
	e.code.Reset()

	e.code.WriteU8(OpAload0)
	e.code.WriteU8(OpInvokespecial)
	e.code.WriteU16(sk.SuperInit)

	for _, f := range sk.Finals {
		e.code.WriteU8(OpAload0)
		if err := e.pushInt(f.Symbol.Name, f.Symbol.Value); err != nil {
			return nil, err
		}
		e.code.WriteU8(OpPutfield)
		e.code.WriteU16(f.FieldRef)
	}

	e.code.WriteU8(OpReturn)

	if err := e.code.Err(); err != nil {
		return nil, err
	}

	code := make([]byte, e.code.Len())
	copy(code, e.code.Bytes())

	attr := &CodeAttribute{
		NameIndex: sk.CodeIndex,
		MaxStack:  initMaxStack,
		MaxLocals: initMaxLocals,
		Code:      code,
		Nested:    PendingAttributes(),
	}
	if e.opts.LineNumbers {
		attr.Nested = PopulatedAttributes(LineNumberTableAttribute{
			NameIndex: sk.LineNumberTableIndex,
			Entries:   []LineNumberEntry{{StartPC: 0, LineNumber: classLine(sk)}},
		})
	}

	e.log.Debug("constructor emitted",
		zap.String("class", sk.ClassName),
		zap.Int("finals", len(sk.Finals)),
		zap.Int("bytes", len(code)))
	return attr, nil
}

// pushInt 以最短编码压入整数常量
//
// 0..5 用 iconst_<n>，其余 int8 范围内的值用 bipush。
// 超出 int8 的值没有对应的编码路径，作为不支持的输入报错。
func (e *Emitter) pushInt(name string, v int32) error {
	switch {
	case v >= 0 && v <= 5:
		e.code.WriteU8(byte(OpIconst0 + v))
	case v >= math.MinInt8 && v <= math.MaxInt8:
		e.code.WriteU8(OpBipush)
		e.code.WriteI8(int8(v))
	default:
		return errors.Format(errors.E0902,
			"constant %d for field %s has no push encoding (bipush covers %d..%d)",
			v, name, math.MinInt8, math.MaxInt8)
	}
	return nil
}

func classLine(sk *ClassSkeleton) uint16 {
	if !sk.ClassPos.IsValid() || sk.ClassPos.Line > math.MaxUint16 {
		return 1
	}
	return uint16(sk.ClassPos.Line)
}
